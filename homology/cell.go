package homology

import (
	"fmt"
	"sort"

	"github.com/midoruton/gmsh/mesh"
)

// Cell is a vertex, edge, face or volume of a CellComplex. Cells are
// addressed by handle, their index in the arena of their dimension; handles
// are never reused, eliminated cells stay in the arena as tombstones.
type Cell struct {
	dim      int
	handle   int
	vertices []int // model vertex indices, in orientation order

	boundary   map[int]int64 // (dim-1) handle -> incidence
	coboundary map[int]int64 // (dim+1) handle -> incidence
	original   map[int]int64 // boundary at construction, never mutated

	// pieces is the chain of original cells this cell stands for after
	// reductions, nil while the cell is only itself
	pieces map[int]int64
	// extension is set when the cell is eliminated as the face of a pair:
	// its cochain value is the combination of these same-dimension cells
	extension map[int]int64

	subdomain bool
	alive     bool
}

func newCell(dim, handle int, vertices []int) *Cell {
	return &Cell{
		dim:        dim,
		handle:     handle,
		vertices:   vertices,
		boundary:   make(map[int]int64),
		coboundary: make(map[int]int64),
		alive:      true,
	}
}

func (c *Cell) GetDim() int         { return c.dim }
func (c *Cell) GetHandle() int      { return c.handle }
func (c *Cell) GetNumVertices() int { return len(c.vertices) }
func (c *Cell) InSubdomain() bool   { return c.subdomain }
func (c *Cell) IsAlive() bool       { return c.alive }

// IsCombined reports whether the cell absorbed other cells during reduction
func (c *Cell) IsCombined() bool { return c.pieces != nil }

func (c *Cell) GetVertices() []int {
	v := make([]int, len(c.vertices))
	copy(v, c.vertices)
	return v
}

// GetBoundary returns a copy of the current signed boundary
func (c *Cell) GetBoundary() map[int]int64 { return copyCoeffs(c.boundary) }

// GetCoboundary returns a copy of the current signed coboundary
func (c *Cell) GetCoboundary() map[int]int64 { return copyCoeffs(c.coboundary) }

// GetPieces returns the original cells this cell stands for, with their
// coefficients
func (c *Cell) GetPieces() map[int]int64 {
	if c.pieces == nil {
		return map[int]int64{c.handle: 1}
	}
	return copyCoeffs(c.pieces)
}

// ElementType is the linear mesh element with the cell's vertices
func (c *Cell) ElementType() mesh.ElementType {
	return mesh.LinearTypeFor(c.dim, len(c.vertices))
}

func (c *Cell) String() string {
	state := ""
	if !c.alive {
		state = " (eliminated)"
	}
	if c.subdomain {
		state += " [subdomain]"
	}
	return fmt.Sprintf("%dD cell %d %v%s", c.dim, c.handle, c.vertices, state)
}

// relativeCofaces returns the alive cofaces outside the subdomain
func (cc *CellComplex) relativeCofaces(c *Cell) map[int]int64 {
	rel := make(map[int]int64, len(c.coboundary))
	for h, v := range c.coboundary {
		if !cc.cells[c.dim+1][h].subdomain {
			rel[h] = v
		}
	}
	return rel
}

// relativeFaces returns the alive faces outside the subdomain
func (cc *CellComplex) relativeFaces(c *Cell) map[int]int64 {
	rel := make(map[int]int64, len(c.boundary))
	for h, v := range c.boundary {
		if !cc.cells[c.dim-1][h].subdomain {
			rel[h] = v
		}
	}
	return rel
}

// cellKey is the dedup key of a cell: its sorted vertices, padded with -1
type cellKey [8]int

func makeKey(vertices []int) cellKey {
	var k cellKey
	for i := range k {
		k[i] = -1
	}
	copy(k[:], vertices)
	sort.Ints(k[:len(vertices)])
	return k
}

// normalizePolygon rotates a polygon so its smallest vertex comes first and
// reverses it if the second vertex is larger than the last. The sign is -1
// when the result runs against the given order.
func normalizePolygon(vertices []int) (normalized []int, sign int64) {
	n := len(vertices)
	imin := 0
	for i, v := range vertices {
		if v < vertices[imin] {
			imin = i
		}
	}
	normalized = make([]int, n)
	for i := range normalized {
		normalized[i] = vertices[(imin+i)%n]
	}
	if normalized[1] < normalized[n-1] {
		return normalized, 1
	}
	for i, j := 1, n-1; i < j; i, j = i+1, j-1 {
		normalized[i], normalized[j] = normalized[j], normalized[i]
	}
	return normalized, -1
}

func copyCoeffs(m map[int]int64) map[int]int64 {
	c := make(map[int]int64, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

func sortedHandles(m map[int]int64) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func hasDuplicates(vertices []int) bool {
	for i := range vertices {
		for j := i + 1; j < len(vertices); j++ {
			if vertices[i] == vertices[j] {
				return true
			}
		}
	}
	return false
}
