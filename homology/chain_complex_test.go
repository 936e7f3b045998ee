package homology

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/midoruton/gmsh/mesh"
)

func TestChainComplexBoundaryOperators(t *testing.T) {
	cc := wholeComplex(t, mesh.GetStandardTestMeshes().SingleTet)
	cx := NewChainComplex(cc, false)

	for k, dims := range [][2]int{{0, 4}, {4, 6}, {6, 4}, {4, 1}, {1, 0}} {
		nr, nc := cx.GetBoundaryMatrix(k).Dims()
		assert.Equal(t, dims, [2]int{nr, nc}, "boundary %d", k)
	}
	assert.Nil(t, cx.GetBoundaryMatrix(5))

	d1 := cx.BoundaryOperator(1)
	assert.Equal(t, "boundary1", d1.Name())
	assert.True(t, d1.IsReadOnly())
	assert.Equal(t, 12, d1.NNZ())
	for k := 2; k <= 3; k++ {
		p := cx.BoundaryOperator(k - 1).ToCSR().Mul(cx.BoundaryOperator(k).ToCSR())
		assert.True(t, p.IsZero(), "boundary %d of boundary %d", k-1, k)
	}

	// Copies do not alias the complex
	b := cx.GetBoundaryMatrix(3)
	b.Set(0, 0, 7)
	assert.NotEqual(t, int64(7), cx.GetBoundaryMatrix(3).At(0, 0))
}

func TestChainComplexHomology(t *testing.T) {
	tm := mesh.GetStandardTestMeshes()

	t.Run("torus", func(t *testing.T) {
		cx := NewChainComplex(wholeComplex(t, tm.TorusSurface), false)
		require.NoError(t, cx.ComputeHomology())
		assert.True(t, cx.IsComputed())
		assert.False(t, cx.IsCohomology())
		assert.Equal(t, 2, cx.GetDim())
		assert.Equal(t, []int{1, 2, 1}, []int{cx.GetBettiNumber(0), cx.GetBettiNumber(1), cx.GetBettiNumber(2)})
		assert.Equal(t, 2, cx.GetBasisSize(1))
		assert.Equal(t, int64(0), cx.GetTorsion(1, 0))
	})

	t.Run("projective plane", func(t *testing.T) {
		cc := wholeComplex(t, tm.ProjectivePlane)
		cx := NewChainComplex(cc, false)
		require.NoError(t, cx.ComputeHomology())
		assert.Equal(t, 1, cx.GetBettiNumber(0))
		assert.Equal(t, 0, cx.GetBettiNumber(1))
		assert.Equal(t, 0, cx.GetBettiNumber(2))
		assert.Equal(t, []int64{2}, cx.GetTorsionCoefficients(1))
		assert.Empty(t, cx.GetTorsionCoefficients(2))

		// The torsion generator is a cycle of order two
		require.Equal(t, 1, cx.GetBasisSize(1))
		assert.Equal(t, int64(2), cx.GetTorsion(1, 0))
		coeffs, err := cx.GetCoeffVector(1, 0)
		require.NoError(t, err)
		chain, err := NewChain(cc, 1, cx.GetCells(1), coeffs, "torsion")
		require.NoError(t, err)
		assert.False(t, chain.IsZero())
		ok, err := chain.IsCycle(false)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("projective plane cohomology", func(t *testing.T) {
		cx := NewChainComplex(wholeComplex(t, tm.ProjectivePlane), false)
		require.NoError(t, cx.ComputeCohomology())
		assert.True(t, cx.IsCohomology())
		assert.Equal(t, 1, cx.GetBettiNumber(0))
		assert.Equal(t, 0, cx.GetBettiNumber(1))
		assert.Equal(t, 0, cx.GetBettiNumber(2))
		assert.Empty(t, cx.GetTorsionCoefficients(1))
		assert.Equal(t, []int64{2}, cx.GetTorsionCoefficients(2))
	})

	t.Run("torus cohomology", func(t *testing.T) {
		cx := NewChainComplex(wholeComplex(t, tm.TorusSurface), false)
		require.NoError(t, cx.ComputeCohomology())
		assert.Equal(t, []int{1, 2, 1}, []int{cx.GetBettiNumber(0), cx.GetBettiNumber(1), cx.GetBettiNumber(2)})
	})
}

func TestChainComplexRelative(t *testing.T) {
	m := buildModel(t, mesh.GetStandardTestMeshes().TetWithBoundary)
	cc, err := NewCellComplex(m, m.GetPhysicalEntities([]int{1}), m.GetPhysicalEntities([]int{2}))
	require.NoError(t, err)

	rel := NewChainComplex(cc, true)
	assert.True(t, rel.IsRelative())
	assert.Empty(t, rel.GetCells(0))
	assert.Equal(t, []int{0}, rel.GetCells(3))
	require.NoError(t, rel.ComputeHomology())
	for d, b := range []int{0, 0, 0, 1} {
		assert.Equal(t, b, rel.GetBettiNumber(d))
	}

	// Without the quotient the tetrahedron is contractible
	abs := NewChainComplex(cc, false)
	require.NoError(t, abs.ComputeHomology())
	for d, b := range []int{1, 0, 0, 0} {
		assert.Equal(t, b, abs.GetBettiNumber(d))
	}
}

func TestChainComplexState(t *testing.T) {
	cc := wholeComplex(t, mesh.GetStandardTestMeshes().SolidTorus)
	cx := NewChainComplex(cc, false)

	_, err := cx.GetCoeffVector(1, 0)
	assert.True(t, errors.Is(err, ErrNotComputed))
	assert.False(t, cx.IsComputed())

	require.NoError(t, cx.ComputeHomology())
	first, err := cx.GetCoeffVector(1, 0)
	require.NoError(t, err)
	require.NoError(t, cx.ComputeHomology())
	second, err := cx.GetCoeffVector(1, 0)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cx.GetBettiNumber(1))

	_, err = cx.GetCoeffVector(1, 5)
	assert.Error(t, err)
	assert.Equal(t, 0, cx.GetBettiNumber(7))
	assert.Nil(t, cx.GetCells(-1))

	// Later reductions do not change a built chain complex
	n := len(cx.GetCells(1))
	cc.ReduceComplex()
	assert.Equal(t, n, len(cx.GetCells(1)))
}

func TestChainComplexCorrupted(t *testing.T) {
	tm := mesh.GetStandardTestMeshes()

	cc := wholeComplex(t, tm.SingleTet)
	corruptTetFace(cc, func(v int64) int64 { return -v })
	for _, dual := range []bool{false, true} {
		cx := NewChainComplex(cc, false)
		var err error
		if dual {
			err = cx.ComputeCohomology()
		} else {
			err = cx.ComputeHomology()
		}
		assert.True(t, errors.Is(err, ErrBoundaryOfBoundary), "cohomology %v", dual)
		assert.False(t, cx.IsComputed())
	}

	cc = wholeComplex(t, tm.SingleTet)
	corruptTetFace(cc, func(int64) int64 { return math.MinInt64 })
	cx := NewChainComplex(cc, false)
	assert.True(t, errors.Is(cx.ComputeHomology(), ErrCoefficientOverflow))
}

func TestChainExpandOverflow(t *testing.T) {
	cc := wholeComplex(t, mesh.GetStandardTestMeshes().SingleTet)
	cc.cells[1][0].pieces = map[int]int64{0: -1}
	c, err := NewChain(cc, 1, []int{0}, []int64{math.MinInt64}, "edge")
	require.NoError(t, err)
	_, err = c.Expand()
	assert.True(t, errors.Is(err, ErrCoefficientOverflow))
	_, err = c.IsCycle(false)
	assert.True(t, errors.Is(err, ErrCoefficientOverflow))

	cc.cells[0][0].extension = map[int]int64{1: -1}
	co, err := NewCochain(cc, 0, []int{1}, []int64{math.MinInt64}, "vertex")
	require.NoError(t, err)
	_, err = co.Expand()
	assert.True(t, errors.Is(err, ErrCoefficientOverflow))
}
