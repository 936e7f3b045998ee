package homology

import (
	"fmt"

	"github.com/midoruton/gmsh/utils"
)

// ChainComplex holds the boundary matrices of a CellComplex and, once
// computed, its homology or cohomology groups. It copies what it needs and
// does not track later changes of the CellComplex.
type ChainComplex struct {
	relative bool
	dim      int

	cells    [4][]int            // handles, in matrix order
	boundary [5]*utils.IntSparse // boundary[k]: rows (k-1)-cells, cols k-cells
	// subdomain flags of every cell at construction, relative complexes only
	subdomain [4][]bool

	computed   bool
	cohomology bool
	betti      [4]int
	torsion    [4][]int64
	generators [4][][]int64 // free generators first, then torsion ones
	genTorsion [4][]int64   // 0 for free generators
}

// NewChainComplex builds the boundary matrices over the alive cells. A
// relative complex leaves the subdomain cells out, which is the quotient by
// the subdomain.
func NewChainComplex(cc *CellComplex, relative bool) *ChainComplex {
	cx := &ChainComplex{
		relative: relative,
		dim:      cc.GetDim(),
	}
	if relative {
		cx.subdomain = cc.subdomainFlags()
	}
	var index [4]map[int]int
	for d := 0; d <= 3; d++ {
		index[d] = make(map[int]int)
		for _, c := range cc.GetCells(d) {
			if relative && c.subdomain {
				continue
			}
			index[d][c.handle] = len(cx.cells[d])
			cx.cells[d] = append(cx.cells[d], c.handle)
		}
	}
	for k := 0; k <= 4; k++ {
		nr, nc := cx.size(k-1), cx.size(k)
		cx.boundary[k] = utils.NewIntSparse(nr, nc)
		if k == 0 || k == 4 {
			continue
		}
		for j, h := range cx.cells[k] {
			for fh, v := range cc.cells[k][h].boundary {
				if i, ok := index[k-1][fh]; ok {
					cx.boundary[k].Set(i, j, v)
				}
			}
		}
	}
	return cx
}

func (cx *ChainComplex) size(d int) int {
	if d < 0 || d > 3 {
		return 0
	}
	return len(cx.cells[d])
}

// ComputeHomology computes Betti numbers, torsion coefficients and
// generating cycles of every dimension
func (cx *ChainComplex) ComputeHomology() error {
	return cx.compute(false)
}

// ComputeCohomology computes the same on the transposed matrices; the
// generators are cocycles
func (cx *ChainComplex) ComputeCohomology() error {
	return cx.compute(true)
}

// compute finds for each dimension k, with in the map into C_k and out the
// map out of it:
//
//	SNF(in) = U in W, columns of U^-1 adapted to the image of in
//	B = U^-1[:, rank(in):], the complement of the image lattice
//	ker(out) on B from the column transform of SNF(out B)
//
// Columns i of U^-1 with diagonal d_i > 1 are the torsion generators.
func (cx *ChainComplex) compute(dual bool) (err error) {
	defer catchOverflow(&err)
	if err = cx.checkBoundaries(); err != nil {
		return
	}

	var (
		betti      [4]int
		torsion    [4][]int64
		generators [4][][]int64
		genTorsion [4][]int64
	)
	for k := 0; k <= 3; k++ {
		n := cx.size(k)
		if n == 0 {
			continue
		}
		var in, out *utils.IntSparse
		if dual {
			in = cx.boundary[k].Transpose()
			out = cx.boundary[k+1].Transpose()
		} else {
			in = cx.boundary[k+1]
			out = cx.boundary[k]
		}

		snfIn := utils.SmithNormalForm(in, true, false)
		r := snfIn.Rank
		B := snfIn.RowInverse.ColumnRange(r, n)
		snfOut := utils.SmithNormalForm(out.Mul(B), false, true)
		K := snfOut.ColTransform.ColumnRange(snfOut.Rank, n-r)
		free := B.Mul(K)

		_, nfree := free.Dims()
		betti[k] = nfree
		for j := 0; j < nfree; j++ {
			generators[k] = append(generators[k], denseColumn(free, j))
			genTorsion[k] = append(genTorsion[k], 0)
		}
		for i, d := range snfIn.Diag {
			if d > 1 {
				torsion[k] = append(torsion[k], d)
				generators[k] = append(generators[k], denseColumn(snfIn.RowInverse, i))
				genTorsion[k] = append(genTorsion[k], d)
			}
		}
	}

	cx.betti, cx.torsion = betti, torsion
	cx.generators, cx.genTorsion = generators, genTorsion
	cx.cohomology = dual
	cx.computed = true
	return nil
}

// checkBoundaries verifies ∂(k-1) ∂k = 0 exactly
func (cx *ChainComplex) checkBoundaries() error {
	for k := 2; k <= 3; k++ {
		if !cx.boundary[k-1].Mul(cx.boundary[k]).IsZero() {
			return fmt.Errorf("%w: ∂%d∂%d", ErrBoundaryOfBoundary, k-1, k)
		}
	}
	return nil
}

func denseColumn(m *utils.IntSparse, j int) []int64 {
	nr, _ := m.Dims()
	v := make([]int64, nr)
	for i, x := range m.Column(j) {
		v[i] = x
	}
	return v
}

func (cx *ChainComplex) IsComputed() bool { return cx.computed }

// IsCohomology reports whether the last computation was the dual one
func (cx *ChainComplex) IsCohomology() bool { return cx.cohomology }

func (cx *ChainComplex) IsRelative() bool { return cx.relative }

// GetDim returns the top dimension of the underlying complex
func (cx *ChainComplex) GetDim() int { return cx.dim }

// GetCells returns the cell handles indexing dimension d, in coefficient
// vector order
func (cx *ChainComplex) GetCells(d int) []int {
	if d < 0 || d > 3 {
		return nil
	}
	h := make([]int, len(cx.cells[d]))
	copy(h, cx.cells[d])
	return h
}

// GetBasisSize returns the number of generators of dimension d, free and
// torsion
func (cx *ChainComplex) GetBasisSize(d int) int {
	if d < 0 || d > 3 {
		return 0
	}
	return len(cx.generators[d])
}

// GetCoeffVector returns generator i of dimension d over GetCells(d)
func (cx *ChainComplex) GetCoeffVector(d, i int) ([]int64, error) {
	if !cx.computed {
		return nil, ErrNotComputed
	}
	if i < 0 || i >= cx.GetBasisSize(d) {
		return nil, fmt.Errorf("generator %d of dimension %d: %w", i, d, ErrInvalidDimension)
	}
	v := make([]int64, len(cx.generators[d][i]))
	copy(v, cx.generators[d][i])
	return v, nil
}

// GetTorsion returns the order of generator i of dimension d, 0 if it is
// free
func (cx *ChainComplex) GetTorsion(d, i int) int64 {
	if i < 0 || i >= cx.GetBasisSize(d) {
		return 0
	}
	return cx.genTorsion[d][i]
}

func (cx *ChainComplex) GetBettiNumber(d int) int {
	if d < 0 || d > 3 {
		return 0
	}
	return cx.betti[d]
}

// GetTorsionCoefficients returns the invariant factors > 1 of dimension d
func (cx *ChainComplex) GetTorsionCoefficients(d int) []int64 {
	if d < 0 || d > 3 {
		return nil
	}
	return append([]int64(nil), cx.torsion[d]...)
}

// GetBoundaryMatrix returns a copy of ∂k, k in 0..4
func (cx *ChainComplex) GetBoundaryMatrix(k int) *utils.IntSparse {
	if k < 0 || k > 4 {
		return nil
	}
	return cx.boundary[k].Clone()
}

// BoundaryOperator exports ∂k as a read only sparse float matrix
func (cx *ChainComplex) BoundaryOperator(k int) utils.DOK {
	return cx.boundary[k].ToDOK(fmt.Sprintf("boundary%d", k))
}
