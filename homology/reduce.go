package homology

import (
	"github.com/midoruton/gmsh/utils"
)

// ReduceComplex eliminates reduction pairs until none is left and returns
// the number of eliminated pairs
func (cc *CellComplex) ReduceComplex() int {
	return cc.ReduceComplexBounded(0)
}

// ReduceComplexBounded eliminates at most limit reduction pairs, limit <= 0
// means no bound. A reduction pair (a, b) has b in the coboundary of a with
// a unit coefficient and is found in two ways, both restricted to cells
// outside the subdomain:
//   - free face: a has b as its only coface
//   - coreduction: b has a as its only face
//
// Cells are swept by dimension, top first, then by handle, until a full
// sweep finds nothing, so the result is deterministic.
func (cc *CellComplex) ReduceComplexBounded(limit int) (count int) {
	for {
		found := false
		for d := 3; d >= 0; d-- {
			for _, c := range cc.cells[d] {
				if !c.alive || c.subdomain {
					continue
				}
				a, b, ok := cc.findReductionPair(c)
				if !ok || !cc.eliminate(a, b) {
					continue
				}
				found = true
				count++
				if limit > 0 && count >= limit {
					return
				}
			}
		}
		if !found {
			return
		}
	}
}

func (cc *CellComplex) findReductionPair(c *Cell) (a, b *Cell, ok bool) {
	if c.dim < 3 {
		if rel := cc.relativeCofaces(c); len(rel) == 1 {
			for h, v := range rel {
				if v == 1 || v == -1 {
					return c, cc.cells[c.dim+1][h], true
				}
			}
		}
	}
	if c.dim > 0 {
		if rel := cc.relativeFaces(c); len(rel) == 1 {
			for h, v := range rel {
				if v == 1 || v == -1 {
					return cc.cells[c.dim-1][h], c, true
				}
			}
		}
	}
	return nil, nil, false
}

// Combine merges pairs of dim-cells across a (dim-1)-cell that has exactly
// two cofaces outside the subdomain, both with unit coefficients. The cell
// with the larger handle is absorbed into the other one, which keeps the
// pieces of both. Returns the number of merges.
func (cc *CellComplex) Combine(dim int) (count int) {
	if dim < 1 || dim > 3 {
		return 0
	}
	for {
		found := false
		for _, a := range cc.cells[dim-1] {
			if !a.alive || a.subdomain {
				continue
			}
			rel := cc.relativeCofaces(a)
			if len(rel) != 2 {
				continue
			}
			hs := sortedHandles(rel)
			if !isUnit(rel[hs[0]]) || !isUnit(rel[hs[1]]) {
				continue
			}
			if cc.eliminate(a, cc.cells[dim][hs[1]]) {
				found = true
				count++
			}
		}
		if !found {
			return
		}
	}
}

// eliminate removes the pair (a, b), ε = <∂b, a> = ±1. Every other coface x
// of a, with α = <∂x, a>, becomes x - αε b: its boundary loses a and gains
// -αε ∂b, its pieces gain -αε pieces(b). Cofaces of b drop b. Cochains pull
// back through a -> -ε(∂b - εa) and b -> 0, recorded as the extension of a.
// The update is planned first and skipped if it would overflow.
func (cc *CellComplex) eliminate(a, b *Cell) bool {
	eps := b.boundary[a.handle]
	if !isUnit(eps) || a.coboundary[b.handle] != eps {
		return false
	}

	type update struct {
		x        *Cell
		boundary map[int]int64 // changed entries only, zero means removed
		pieces   map[int]int64
	}
	var updates []update
	var extension map[int]int64
	planned := func() (ok bool) {
		defer func() {
			if r := recover(); r != nil {
				if r != utils.ErrIntegerOverflow {
					panic(r)
				}
				ok = false
			}
		}()
		for _, xh := range sortedHandles(a.coboundary) {
			if xh == b.handle {
				continue
			}
			x := cc.cells[b.dim][xh]
			q := utils.MulInt64(a.coboundary[xh], -eps)
			u := update{x: x, boundary: make(map[int]int64, len(b.boundary))}
			for yh, beta := range b.boundary {
				u.boundary[yh] = utils.AddInt64(x.boundary[yh], utils.MulInt64(q, beta))
			}
			u.pieces = x.GetPieces()
			for ph, pv := range b.GetPieces() {
				u.pieces[ph] = utils.AddInt64(u.pieces[ph], utils.MulInt64(q, pv))
				if u.pieces[ph] == 0 {
					delete(u.pieces, ph)
				}
			}
			updates = append(updates, u)
		}
		extension = make(map[int]int64, len(b.boundary))
		for yh, beta := range b.boundary {
			if yh != a.handle {
				extension[yh] = utils.MulInt64(-eps, beta)
			}
		}
		return true
	}()
	if !planned {
		return false
	}

	faces := cc.cells[b.dim-1]
	for _, u := range updates {
		for yh, v := range u.boundary {
			if v == 0 {
				delete(u.x.boundary, yh)
				delete(faces[yh].coboundary, u.x.handle)
				continue
			}
			u.x.boundary[yh] = v
			faces[yh].coboundary[u.x.handle] = v
		}
		u.x.pieces = u.pieces
	}
	a.extension = extension

	if b.dim < 3 {
		for zh := range b.coboundary {
			delete(cc.cells[b.dim+1][zh].boundary, b.handle)
		}
	}
	for yh := range b.boundary {
		delete(faces[yh].coboundary, b.handle)
	}
	if a.dim > 0 {
		for yh := range a.boundary {
			delete(cc.cells[a.dim-1][yh].coboundary, a.handle)
		}
	}
	for _, c := range []*Cell{a, b} {
		c.alive = false
		c.boundary = make(map[int]int64)
		c.coboundary = make(map[int]int64)
		cc.alive[c.dim]--
	}
	return true
}

func isUnit(v int64) bool {
	return v == 1 || v == -1
}
