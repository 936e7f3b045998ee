package homology

import (
	"fmt"
	"os"
	"sort"

	"github.com/midoruton/gmsh/mesh"
	"github.com/midoruton/gmsh/utils"
)

// CellComplex owns the cells of a domain and an optional subdomain, built
// from mesh elements and reduced in place
type CellComplex struct {
	model *mesh.Model
	cells [4][]*Cell
	index [4]map[cellKey]int // construction dedup, canonical key -> handle
	alive [4]int

	domain    []mesh.EntityKey
	subdomain []mesh.EntityKey
}

// NewCellComplex decomposes every element of the domain and subdomain
// entities into vertices, edges, faces and volumes. Cells reached from a
// subdomain element are marked as subdomain cells. On error no complex is
// returned.
func NewCellComplex(m *mesh.Model, domain, subdomain []*mesh.Entity) (*CellComplex, error) {
	cc := &CellComplex{model: m}
	for d := range cc.index {
		cc.index[d] = make(map[cellKey]int)
	}

	inDomain := make(map[mesh.EntityKey]bool)
	numElements := 0
	for _, e := range domain {
		inDomain[e.Key()] = true
		cc.domain = append(cc.domain, e.Key())
		numElements += len(e.Elements)
	}
	if numElements == 0 {
		return nil, ErrEmptyDomain
	}
	for _, e := range subdomain {
		if inDomain[e.Key()] {
			return nil, fmt.Errorf("%w: %dD entity %d", ErrOverlappingDomains, e.Dimension, e.Tag)
		}
		cc.subdomain = append(cc.subdomain, e.Key())
	}

	for _, set := range []struct {
		entities []*mesh.Entity
		sub      bool
	}{{domain, false}, {subdomain, true}} {
		for _, e := range set.entities {
			for _, el := range e.Elements {
				if err := cc.insertElement(el, set.sub); err != nil {
					return nil, fmt.Errorf("element %d of %dD entity %d: %w", el.ID, e.Dimension, e.Tag, err)
				}
			}
		}
	}

	// Keys are only needed while building
	for d := range cc.index {
		cc.index[d] = nil
	}
	return cc, nil
}

func (cc *CellComplex) insertElement(el mesh.Element, sub bool) error {
	linear := el.Type.GetLinearType()
	dim := linear.GetDimension()
	if linear == mesh.Unknown || dim < 0 || dim > 3 {
		return fmt.Errorf("%w: %s", ErrUnsupportedElement, el.Type)
	}
	corners := el.Type.GetCornerNodes(el.Nodes)
	if corners == nil {
		return fmt.Errorf("%w: %s with %d nodes", ErrDegenerateElement, el.Type, len(el.Nodes))
	}
	for _, v := range corners {
		if v < 0 || v >= len(cc.model.Vertices) {
			return fmt.Errorf("%w: vertex index %d", ErrMissingVertex, v)
		}
	}
	if hasDuplicates(corners) {
		return fmt.Errorf("%w: repeated vertex in %v", ErrDegenerateElement, corners)
	}
	_, _, err := cc.insertCell(dim, corners, sub)
	return err
}

// insertCell returns the handle of the cell spanned by vertices, creating it
// and its faces if needed, and the sign of the given vertex order relative
// to the stored orientation
func (cc *CellComplex) insertCell(dim int, vertices []int, sub bool) (handle int, sign int64, err error) {
	var (
		oriented = vertices
		key      = makeKey(vertices)
	)
	sign = 1
	switch dim {
	case 1:
		oriented = []int{vertices[0], vertices[1]}
		if vertices[0] > vertices[1] {
			oriented[0], oriented[1] = vertices[1], vertices[0]
			sign = -1
		}
	case 2:
		oriented, sign = normalizePolygon(vertices)
	}

	if h, ok := cc.index[dim][key]; ok {
		c := cc.cells[dim][h]
		if dim == 2 && !equalInts(c.vertices, oriented) {
			return 0, 0, fmt.Errorf("%w: face %v conflicts with face %v", ErrDegenerateElement, vertices, c.vertices)
		}
		if sub {
			cc.markSubdomain(c)
		}
		return h, sign, nil
	}

	if dim == 2 && mesh.LinearTypeFor(2, len(vertices)) == mesh.Unknown {
		return 0, 0, fmt.Errorf("%w: %d sided face", ErrUnsupportedElement, len(vertices))
	}
	if dim == 3 && mesh.LinearTypeFor(3, len(vertices)) == mesh.Unknown {
		return 0, 0, fmt.Errorf("%w: %d vertex volume", ErrUnsupportedElement, len(vertices))
	}

	stored := make([]int, len(oriented))
	copy(stored, oriented)
	c := newCell(dim, len(cc.cells[dim]), stored)
	c.subdomain = sub

	switch dim {
	case 1:
		lo, _, _ := cc.insertCell(0, stored[:1], sub)
		hi, _, _ := cc.insertCell(0, stored[1:], sub)
		c.boundary[lo] = -1
		c.boundary[hi] = 1
	case 2:
		for _, e := range mesh.GetPolygonEdges(stored) {
			h, s, err := cc.insertCell(1, e[:], sub)
			if err != nil {
				return 0, 0, err
			}
			c.boundary[h] += s
		}
	case 3:
		faces := mesh.GetElementFaces(mesh.LinearTypeFor(3, len(stored)), stored)
		for _, f := range faces {
			h, s, err := cc.insertCell(2, f, sub)
			if err != nil {
				return 0, 0, err
			}
			c.boundary[h] += s
		}
	}
	for h, v := range c.boundary {
		if v == 0 {
			delete(c.boundary, h)
			continue
		}
		cc.cells[dim-1][h].coboundary[c.handle] = v
	}
	c.original = copyCoeffs(c.boundary)

	cc.cells[dim] = append(cc.cells[dim], c)
	cc.index[dim][key] = c.handle
	cc.alive[dim]++
	return c.handle, sign, nil
}

// markSubdomain marks a cell and its closure as subdomain cells
func (cc *CellComplex) markSubdomain(c *Cell) {
	if c.subdomain {
		return
	}
	c.subdomain = true
	for h := range c.boundary {
		cc.markSubdomain(cc.cells[c.dim-1][h])
	}
}

// GetCells returns the alive cells of dimension d ordered by handle
func (cc *CellComplex) GetCells(d int) []*Cell {
	if d < 0 || d > 3 {
		return nil
	}
	cells := make([]*Cell, 0, cc.alive[d])
	for _, c := range cc.cells[d] {
		if c.alive {
			cells = append(cells, c)
		}
	}
	return cells
}

// GetCell returns the cell with the given handle, alive or not
func (cc *CellComplex) GetCell(d, handle int) (*Cell, bool) {
	if d < 0 || d > 3 || handle < 0 || handle >= len(cc.cells[d]) {
		return nil, false
	}
	return cc.cells[d][handle], true
}

// GetSize returns the number of alive cells of dimension d
func (cc *CellComplex) GetSize(d int) int {
	if d < 0 || d > 3 {
		return 0
	}
	return cc.alive[d]
}

// GetNumOriginalCells returns the number of cells of dimension d built from
// the mesh, eliminated ones included
func (cc *CellComplex) GetNumOriginalCells(d int) int {
	if d < 0 || d > 3 {
		return 0
	}
	return len(cc.cells[d])
}

// GetDim returns the highest dimension with alive cells, -1 if empty
func (cc *CellComplex) GetDim() int {
	for d := 3; d >= 0; d-- {
		if cc.alive[d] > 0 {
			return d
		}
	}
	return -1
}

// GetModel returns the mesh the complex was built from
func (cc *CellComplex) GetModel() *mesh.Model { return cc.model }

// GetDomain returns the keys of the domain entities
func (cc *CellComplex) GetDomain() []mesh.EntityKey { return cc.domain }

// GetSubdomain returns the keys of the subdomain entities
func (cc *CellComplex) GetSubdomain() []mesh.EntityKey { return cc.subdomain }

// SwapSubdomain exchanges the roles of domain-only and subdomain cells.
// Eliminated cells are flipped as well so that the original cells stay in
// step with the reduced ones.
func (cc *CellComplex) SwapSubdomain() {
	for d := range cc.cells {
		for _, c := range cc.cells[d] {
			c.subdomain = !c.subdomain
		}
	}
	cc.domain, cc.subdomain = cc.subdomain, cc.domain
}

// subdomainFlags records the subdomain flag of every cell, eliminated ones
// included, indexed by dimension and handle
func (cc *CellComplex) subdomainFlags() (flags [4][]bool) {
	for d := range cc.cells {
		flags[d] = make([]bool, len(cc.cells[d]))
		for h, c := range cc.cells[d] {
			flags[d][h] = c.subdomain
		}
	}
	return
}

// GetSubdomainSize returns the number of alive subdomain cells of dimension d
func (cc *CellComplex) GetSubdomainSize(d int) (n int) {
	for _, c := range cc.GetCells(d) {
		if c.subdomain {
			n++
		}
	}
	return
}

// ElementID is the element number of an original cell in written files,
// stable across reductions
func (cc *CellComplex) ElementID(d, handle int) int {
	offset := 0
	for k := 0; k < d; k++ {
		offset += len(cc.cells[k])
	}
	return offset + handle + 1
}

// CheckConsistency verifies that boundaries only reference alive cells,
// that boundary and coboundary agree and that the boundary of every
// boundary vanishes
func (cc *CellComplex) CheckConsistency() (err error) {
	defer catchOverflow(&err)
	for d := 0; d <= 3; d++ {
		for _, c := range cc.GetCells(d) {
			for h, v := range c.boundary {
				f, ok := cc.GetCell(d-1, h)
				if !ok || !f.alive || f.coboundary[c.handle] != v {
					return fmt.Errorf("%w: %v and its face %d", ErrInconsistentIncidence, c, h)
				}
			}
			for h, v := range c.coboundary {
				f, ok := cc.GetCell(d+1, h)
				if !ok || !f.alive || f.boundary[c.handle] != v {
					return fmt.Errorf("%w: %v and its coface %d", ErrInconsistentIncidence, c, h)
				}
			}
			if d < 2 {
				continue
			}
			bb := make(map[int]int64)
			for h, v := range c.boundary {
				for g, w := range cc.cells[d-1][h].boundary {
					bb[g] = utils.AddInt64(bb[g], utils.MulInt64(v, w))
				}
			}
			for g, v := range bb {
				if v != 0 {
					return fmt.Errorf("%w: %v reaches %dD cell %d with %d",
						ErrBoundaryOfBoundary, c, d-2, g, v)
				}
			}
		}
	}
	return nil
}

// WriteComplexMSH writes the mesh vertices and one element per original
// cell making up the alive cells, every element tagged "2 1 1". The
// support of the given chains is written too, a cochain can live on
// eliminated cells.
func (cc *CellComplex) WriteComplexMSH(filename string, chains ...*Chain) error {
	var seen [4]map[int]bool
	for d := range seen {
		seen[d] = make(map[int]bool)
		for _, c := range cc.GetCells(d) {
			for h := range c.GetPieces() {
				seen[d][h] = true
			}
		}
	}
	for _, c := range chains {
		exp, err := c.Expand()
		if err != nil {
			return err
		}
		for h := range exp {
			seen[c.dim][h] = true
		}
	}

	var elems []mesh.ElementRecord
	for d := 0; d <= 3; d++ {
		handles := make([]int, 0, len(seen[d]))
		for h := range seen[d] {
			handles = append(handles, h)
		}
		sort.Ints(handles)
		for _, h := range handles {
			orig := cc.cells[d][h]
			elems = append(elems, mesh.ElementRecord{
				ID:          cc.ElementID(d, h),
				Type:        orig.ElementType(),
				Nodes:       orig.vertices,
				PhysicalTag: 1,
				EntityTag:   1,
			})
		}
	}

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	mw := mesh.NewMSHWriter(f, cc.model.Vertices, cc.model.NodeIDs)
	if err = mw.WriteHeader(); err == nil {
		if err = mw.WriteNodes(nil); err == nil {
			if err = mw.WriteElements(elems); err == nil {
				err = mw.Flush()
			}
		}
	}
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
