package homology

import (
	"errors"
	"io"
	"math"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/midoruton/gmsh/mesh"
)

func buildModel(t *testing.T, cm mesh.CompleteMesh) *mesh.Model {
	t.Helper()
	m, err := cm.BuildModel()
	require.NoError(t, err)
	return m
}

// wholeComplex builds the cell complex of every entity of the mesh
func wholeComplex(t *testing.T, cm mesh.CompleteMesh) *CellComplex {
	t.Helper()
	m := buildModel(t, cm)
	cc, err := NewCellComplex(m, m.GetEntities(), nil)
	require.NoError(t, err)
	return cc
}

func sizes(cc *CellComplex) []int {
	return []int{cc.GetSize(0), cc.GetSize(1), cc.GetSize(2), cc.GetSize(3)}
}

func quietOptions() Options {
	log := logrus.New()
	log.SetOutput(io.Discard)
	opts := DefaultOptions()
	opts.Logger = log
	return opts
}

func TestCellComplexSizes(t *testing.T) {
	tm := mesh.GetStandardTestMeshes()
	testCases := []struct {
		name  string
		mesh  mesh.CompleteMesh
		sizes []int
	}{
		{"tet", tm.SingleTet, []int{4, 6, 4, 1}},
		{"quadratic tet", tm.SingleTet10, []int{4, 6, 4, 1}},
		{"two tets", tm.TwoTets, []int{8, 12, 8, 2}},
		{"octahedron", tm.Octahedron, []int{6, 12, 8, 0}},
		{"torus", tm.TorusSurface, []int{16, 48, 32, 0}},
		{"solid torus", tm.SolidTorus, []int{16, 32, 20, 4}},
		{"projective plane", tm.ProjectivePlane, []int{6, 15, 10, 0}},
		{"prism and pyramid", tm.PrismPyramid, []int{7, 13, 9, 2}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cc := wholeComplex(t, tc.mesh)
			assert.Equal(t, tc.sizes, sizes(cc))
			assert.Equal(t, tc.mesh.Dimension, cc.GetDim())
			assert.NoError(t, cc.CheckConsistency())
		})
	}
}

func TestCellComplexTetIncidence(t *testing.T) {
	cc := wholeComplex(t, mesh.GetStandardTestMeshes().SingleTet)

	// Edges run from the lower to the higher vertex
	for _, e := range cc.GetCells(1) {
		v := e.GetVertices()
		require.Len(t, v, 2)
		assert.Less(t, v[0], v[1])
		assert.Len(t, e.GetBoundary(), 2)
	}
	// Every triangle has three edges with unit coefficients and sits on the
	// tetrahedron with a unit coefficient
	for _, f := range cc.GetCells(2) {
		bd := f.GetBoundary()
		assert.Len(t, bd, 3)
		for _, v := range bd {
			assert.True(t, isUnit(v))
		}
		cob := f.GetCoboundary()
		require.Len(t, cob, 1)
		assert.True(t, isUnit(cob[0]))
	}
	tet, ok := cc.GetCell(3, 0)
	require.True(t, ok)
	assert.Equal(t, mesh.Tet, tet.ElementType())
	assert.Len(t, tet.GetBoundary(), 4)
	assert.False(t, tet.IsCombined())
	assert.Equal(t, map[int]int64{0: 1}, tet.GetPieces())

	_, ok = cc.GetCell(3, 1)
	assert.False(t, ok)
	_, ok = cc.GetCell(4, 0)
	assert.False(t, ok)
}

func TestCellComplexSharedFaces(t *testing.T) {
	// The prism and the pyramid share their quad face
	cc := wholeComplex(t, mesh.GetStandardTestMeshes().PrismPyramid)
	shared := 0
	for _, f := range cc.GetCells(2) {
		if len(f.GetCoboundary()) == 2 {
			shared++
			assert.Equal(t, mesh.Quad, f.ElementType())
			// Consistently oriented neighbours induce opposite signs
			var sum int64
			for _, v := range f.GetCoboundary() {
				sum += v
			}
			assert.Equal(t, int64(0), sum)
		}
	}
	assert.Equal(t, 1, shared)
}

func TestCellComplexElementID(t *testing.T) {
	cc := wholeComplex(t, mesh.GetStandardTestMeshes().SingleTet)
	assert.Equal(t, 1, cc.ElementID(0, 0))
	assert.Equal(t, 4, cc.ElementID(0, 3))
	assert.Equal(t, 5, cc.ElementID(1, 0))
	assert.Equal(t, 11, cc.ElementID(2, 0))
	assert.Equal(t, 15, cc.ElementID(3, 0))
}

func TestCellComplexSubdomain(t *testing.T) {
	m := buildModel(t, mesh.GetStandardTestMeshes().TetWithBoundary)
	cc, err := NewCellComplex(m, m.GetPhysicalEntities([]int{1}), m.GetPhysicalEntities([]int{2}))
	require.NoError(t, err)

	assert.Equal(t, []int{4, 6, 4, 1}, sizes(cc))
	assert.Equal(t, 4, cc.GetSubdomainSize(0))
	assert.Equal(t, 6, cc.GetSubdomainSize(1))
	assert.Equal(t, 4, cc.GetSubdomainSize(2))
	assert.Equal(t, 0, cc.GetSubdomainSize(3))
	assert.Equal(t, []mesh.EntityKey{{Dimension: 2, Tag: 1}}, cc.GetSubdomain())
	assert.Equal(t, []mesh.EntityKey{{Dimension: 3, Tag: 1}}, cc.GetDomain())

	cc.SwapSubdomain()
	assert.Equal(t, 0, cc.GetSubdomainSize(2))
	assert.Equal(t, 1, cc.GetSubdomainSize(3))
	assert.Equal(t, []mesh.EntityKey{{Dimension: 3, Tag: 1}}, cc.GetSubdomain())

	cc.SwapSubdomain()
	assert.Equal(t, 4, cc.GetSubdomainSize(2))
	assert.Equal(t, 0, cc.GetSubdomainSize(3))
	assert.Equal(t, []mesh.EntityKey{{Dimension: 2, Tag: 1}}, cc.GetSubdomain())
}

func TestCellComplexConstructionErrors(t *testing.T) {
	tm := mesh.GetStandardTestMeshes()

	t.Run("empty domain", func(t *testing.T) {
		m := buildModel(t, tm.SingleTet)
		_, err := NewCellComplex(m, nil, nil)
		assert.True(t, errors.Is(err, ErrEmptyDomain))
		_, err = NewCellComplex(m, m.GetPhysicalEntities([]int{42}), nil)
		assert.True(t, errors.Is(err, ErrEmptyDomain))
	})

	t.Run("overlapping domains", func(t *testing.T) {
		m := buildModel(t, tm.SingleTet)
		ents := m.GetEntities()
		_, err := NewCellComplex(m, ents, ents)
		assert.True(t, errors.Is(err, ErrOverlappingDomains))
	})

	t.Run("degenerate element", func(t *testing.T) {
		m := mesh.NewModel()
		for i, x := range [][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}} {
			m.AddNode(i+1, x)
		}
		require.NoError(t, m.AddElement(1, mesh.Tet, []int{1}, 1, []int{1, 1, 2, 3}))
		_, err := NewCellComplex(m, m.GetEntities(), nil)
		assert.True(t, errors.Is(err, ErrDegenerateElement))
	})

	t.Run("missing vertex", func(t *testing.T) {
		m := buildModel(t, tm.SingleTet)
		ent := m.GetOrCreateEntity(3, 1)
		ent.Elements = append(ent.Elements, mesh.Element{ID: 2, Type: mesh.Tet, Nodes: []int{0, 1, 2, 7}})
		_, err := NewCellComplex(m, m.GetEntities(), nil)
		assert.True(t, errors.Is(err, ErrMissingVertex))
	})

	t.Run("unsupported element", func(t *testing.T) {
		m := buildModel(t, tm.SingleTet)
		ent := m.GetOrCreateEntity(3, 1)
		ent.Elements = append(ent.Elements, mesh.Element{ID: 2, Type: mesh.Unknown, Nodes: []int{0, 1}})
		_, err := NewCellComplex(m, m.GetEntities(), nil)
		assert.True(t, errors.Is(err, ErrUnsupportedElement))
	})
}

// corruptTetFace sets the coefficient of the first face of the tetrahedron
// on both sides of the incidence
func corruptTetFace(cc *CellComplex, v func(int64) int64) {
	tet := cc.cells[3][0]
	f := sortedHandles(tet.boundary)[0]
	tet.boundary[f] = v(tet.boundary[f])
	cc.cells[2][f].coboundary[0] = tet.boundary[f]
}

func TestCellComplexCorrupted(t *testing.T) {
	tm := mesh.GetStandardTestMeshes()

	t.Run("boundary of boundary", func(t *testing.T) {
		cc := wholeComplex(t, tm.SingleTet)
		corruptTetFace(cc, func(v int64) int64 { return -v })
		assert.True(t, errors.Is(cc.CheckConsistency(), ErrBoundaryOfBoundary))
	})

	t.Run("one sided incidence", func(t *testing.T) {
		cc := wholeComplex(t, tm.SingleTet)
		f := sortedHandles(cc.cells[3][0].boundary)[0]
		delete(cc.cells[2][f].coboundary, 0)
		assert.True(t, errors.Is(cc.CheckConsistency(), ErrInconsistentIncidence))
	})

	t.Run("eliminated face", func(t *testing.T) {
		cc := wholeComplex(t, tm.SingleTet)
		cc.cells[0][0].alive = false
		assert.True(t, errors.Is(cc.CheckConsistency(), ErrInconsistentIncidence))
	})

	t.Run("overflow", func(t *testing.T) {
		cc := wholeComplex(t, tm.SingleTet)
		corruptTetFace(cc, func(int64) int64 { return math.MinInt64 })
		assert.True(t, errors.Is(cc.CheckConsistency(), ErrCoefficientOverflow))
	})
}

func TestWriteComplexMSH(t *testing.T) {
	tm := mesh.GetStandardTestMeshes()
	filename := filepath.Join(t.TempDir(), "tet.msh")

	cc := wholeComplex(t, tm.SingleTet)
	require.NoError(t, cc.WriteComplexMSH(filename))
	m, err := mesh.ReadMeshFile(filename)
	require.NoError(t, err)
	assert.Equal(t, 4, m.NumVertices)
	assert.Equal(t, 15, m.NumElements)
	for d := 0; d <= 3; d++ {
		ent, ok := m.Entities[mesh.EntityKey{Dimension: d, Tag: 1}]
		require.True(t, ok)
		assert.Equal(t, []int{1}, ent.PhysicalTags)
	}

	cc.ReduceComplex()
	require.NoError(t, cc.WriteComplexMSH(filename))
	m, err = mesh.ReadMeshFile(filename)
	require.NoError(t, err)
	assert.Equal(t, 4, m.NumVertices)
	assert.Equal(t, 1, m.NumElements)
}
