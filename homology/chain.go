package homology

import (
	"fmt"
	"sort"

	"github.com/midoruton/gmsh/mesh"
	"github.com/midoruton/gmsh/utils"
)

// Chain is an integer combination of cells of one dimension of a
// CellComplex. A cochain holds values on cells instead and is expanded
// through the cell extensions rather than the pieces.
type Chain struct {
	cc      *CellComplex
	dim     int
	cells   []int
	coeffs  []int64
	name    string
	torsion int64
	cochain bool
	sub     [4][]bool // subdomain flags when the chain was made
}

// NewChain pairs cells (handles of dimension dim) with coefficients
func NewChain(cc *CellComplex, dim int, cells []int, coeffs []int64, name string) (*Chain, error) {
	return newChain(cc, dim, cells, coeffs, name, false)
}

// NewCochain pairs cells with cochain values, the cells left out and the
// subdomain cells take 0
func NewCochain(cc *CellComplex, dim int, cells []int, coeffs []int64, name string) (*Chain, error) {
	return newChain(cc, dim, cells, coeffs, name, true)
}

func newChain(cc *CellComplex, dim int, cells []int, coeffs []int64, name string, cochain bool) (*Chain, error) {
	if dim < 0 || dim > 3 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDimension, dim)
	}
	if len(cells) != len(coeffs) {
		return nil, fmt.Errorf("%w: %d cells, %d coefficients", ErrChainLength, len(cells), len(coeffs))
	}
	for _, h := range cells {
		if _, ok := cc.GetCell(dim, h); !ok {
			return nil, fmt.Errorf("%w: no %dD cell %d", ErrInconsistentIncidence, dim, h)
		}
	}
	return &Chain{
		cc:      cc,
		dim:     dim,
		cells:   append([]int(nil), cells...),
		coeffs:  append([]int64(nil), coeffs...),
		name:    name,
		cochain: cochain,
		sub:     cc.subdomainFlags(),
	}, nil
}

func (c *Chain) GetDim() int         { return c.dim }
func (c *Chain) GetName() string     { return c.name }
func (c *Chain) GetCells() []int     { return append([]int(nil), c.cells...) }
func (c *Chain) GetCoeffs() []int64  { return append([]int64(nil), c.coeffs...) }
func (c *Chain) GetTorsion() int64   { return c.torsion }
func (c *Chain) IsCochain() bool     { return c.cochain }
func (c *Chain) SetTorsion(t int64)  { c.torsion = t }
func (c *Chain) SetName(name string) { c.name = name }

// IsZero reports whether every coefficient vanishes
func (c *Chain) IsZero() bool {
	for _, v := range c.coeffs {
		if v != 0 {
			return false
		}
	}
	return true
}

// Expand rewrites the chain over the original cells of the mesh. Chains go
// through the pieces of every cell, cochains are pulled back through the
// extensions of the eliminated cells.
func (c *Chain) Expand() (exp map[int]int64, err error) {
	defer catchOverflow(&err)
	if c.cochain {
		return c.expandCochain(), nil
	}
	exp = make(map[int]int64)
	for i, h := range c.cells {
		if c.coeffs[i] == 0 {
			continue
		}
		for ph, pv := range c.cc.cells[c.dim][h].GetPieces() {
			exp[ph] = utils.AddInt64(exp[ph], utils.MulInt64(c.coeffs[i], pv))
			if exp[ph] == 0 {
				delete(exp, ph)
			}
		}
	}
	return exp, nil
}

func (c *Chain) expandCochain() map[int]int64 {
	given := make(map[int]int64, len(c.cells))
	for i, h := range c.cells {
		given[h] = utils.AddInt64(given[h], c.coeffs[i])
	}
	arena := c.cc.cells[c.dim]
	values := make(map[int]int64, len(arena))
	var value func(h int) int64
	value = func(h int) int64 {
		if v, ok := values[h]; ok {
			return v
		}
		var v int64
		if g, ok := given[h]; ok {
			v = g
		} else {
			for yh, e := range arena[h].extension {
				v = utils.AddInt64(v, utils.MulInt64(e, value(yh)))
			}
		}
		if c.inSubdomain(c.dim, h) {
			v = 0
		}
		values[h] = v
		return v
	}
	exp := make(map[int]int64)
	for h := range arena {
		if v := value(h); v != 0 {
			exp[h] = v
		}
	}
	return exp
}

func (c *Chain) inSubdomain(d, h int) bool {
	return d >= 0 && d <= 3 && h < len(c.sub[d]) && c.sub[d][h]
}

// IsCycle checks the expanded chain against the boundaries the complex was
// built with. A relative cycle may have boundary in the subdomain. For a
// cochain the coboundary must vanish on every original cell one dimension
// up, outside the subdomain when relative.
func (c *Chain) IsCycle(relative bool) (bool, error) {
	exp, err := c.Expand()
	if err != nil {
		return false, err
	}
	if c.cochain {
		return c.isCocycle(exp, relative)
	}
	if c.dim == 0 {
		return true, nil
	}
	bd, err := c.originalBoundary(exp)
	if err != nil {
		return false, err
	}
	for h, v := range bd {
		if v == 0 {
			continue
		}
		if relative && c.inSubdomain(c.dim-1, h) {
			continue
		}
		return false, nil
	}
	return true, nil
}

func (c *Chain) isCocycle(exp map[int]int64, relative bool) (ok bool, err error) {
	defer catchOverflow(&err)
	if c.dim == 3 {
		return true, nil
	}
	for zh, z := range c.cc.cells[c.dim+1] {
		if relative && c.inSubdomain(c.dim+1, zh) {
			continue
		}
		var v int64
		for yh, w := range z.original {
			v = utils.AddInt64(v, utils.MulInt64(w, exp[yh]))
		}
		if v != 0 {
			return false, nil
		}
	}
	return true, nil
}

func (c *Chain) originalBoundary(exp map[int]int64) (bd map[int]int64, err error) {
	defer catchOverflow(&err)
	bd = make(map[int]int64)
	for h, v := range exp {
		for fh, fv := range c.cc.cells[c.dim][h].original {
			bd[fh] = utils.AddInt64(bd[fh], utils.MulInt64(v, fv))
		}
	}
	return bd, nil
}

// WriteChainMSH appends the chain to an MSH file written by
// WriteComplexMSH, as an $ElementNodeData view holding each coefficient on
// every node of its element
func (c *Chain) WriteChainMSH(filename string) error {
	exp, err := c.Expand()
	if err != nil {
		return err
	}
	handles := make([]int, 0, len(exp))
	for h := range exp {
		handles = append(handles, h)
	}
	sort.Ints(handles)

	view := &mesh.ElementNodeData{
		Name:       c.name,
		Components: 1,
		Elements:   make([]mesh.ElementNodeValues, 0, len(handles)),
	}
	for _, h := range handles {
		orig := c.cc.cells[c.dim][h]
		values := make([]float64, len(orig.vertices))
		for i := range values {
			values[i] = float64(exp[h])
		}
		view.Elements = append(view.Elements, mesh.ElementNodeValues{
			ElementID: c.cc.ElementID(c.dim, h),
			NumNodes:  len(orig.vertices),
			Values:    values,
		})
	}
	return mesh.AppendElementNodeData(filename, view)
}

func (c *Chain) String() string {
	kind := "chain"
	if c.cochain {
		kind = "cochain"
	}
	return fmt.Sprintf("%s: %dD %s on %d cells", c.name, c.dim, kind, len(c.cells))
}
