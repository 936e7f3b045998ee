package mesh

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestComplex(t *testing.T, filename string) {
	t.Helper()
	f, err := os.Create(filename)
	require.NoError(t, err)
	defer f.Close()

	vertices := [][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0.5, 0.5, 1}}
	mw := NewMSHWriter(f, vertices, nil)
	require.NoError(t, mw.WriteHeader())
	require.NoError(t, mw.WriteNodes([]int{0, 1, 2}))
	require.NoError(t, mw.WriteElements([]ElementRecord{
		{ID: 1, Type: Point, Nodes: []int{0}, PhysicalTag: 1, EntityTag: 1},
		{ID: 7, Type: Line, Nodes: []int{0, 1}, PhysicalTag: 1, EntityTag: 1},
		{ID: 12, Type: Triangle, Nodes: []int{0, 1, 2}, PhysicalTag: 1, EntityTag: 1},
	}))
	require.NoError(t, mw.Flush())
}

func TestMSHWriterRoundTrip(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "complex.msh")
	writeTestComplex(t, filename)

	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Contains(t, string(data), "$MeshFormat\n2.2 0 8\n$EndMeshFormat\n")
	assert.Contains(t, string(data), "12 2 2 1 1 1 2 3\n")

	m, err := ReadMeshFile(filename)
	require.NoError(t, err)
	assert.Equal(t, 3, m.NumVertices)
	assert.Equal(t, 3, m.NumElements)
	ent := m.Entities[EntityKey{Dimension: 1, Tag: 1}]
	require.NotNil(t, ent)
	assert.Equal(t, 7, ent.Elements[0].ID)
}

func TestMSHWriterErrors(t *testing.T) {
	var buf bytes.Buffer
	mw := NewMSHWriter(&buf, [][]float64{{0, 0, 0}}, []int{42})
	assert.Error(t, mw.WriteNodes([]int{3}))
	assert.Error(t, mw.WriteElements([]ElementRecord{{ID: 1, Type: Unknown}}))

	err := mw.WriteElementNodeData(&ElementNodeData{Name: "bad", Components: 2})
	assert.Error(t, err)
	err = mw.WriteElementNodeData(&ElementNodeData{
		Name:       "short",
		Components: 1,
		Elements:   []ElementNodeValues{{ElementID: 1, NumNodes: 2, Values: []float64{1}}},
	})
	assert.Error(t, err)
}

func TestMSHWriterNodeIDs(t *testing.T) {
	var buf bytes.Buffer
	mw := NewMSHWriter(&buf, [][]float64{{0, 0, 0}, {1, 0, 0}}, []int{42, 7})
	require.NoError(t, mw.WriteNodes(nil))
	require.NoError(t, mw.WriteElements([]ElementRecord{{ID: 3, Type: Line, Nodes: []int{1, 0}, PhysicalTag: 1, EntityTag: 1}}))
	require.NoError(t, mw.Flush())

	out := buf.String()
	assert.Contains(t, out, "42 0 0 0\n")
	assert.Contains(t, out, "7 1 0 0\n")
	assert.Contains(t, out, "3 1 2 1 1 7 42\n")
}

func TestAppendElementNodeData(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "views.msh")
	writeTestComplex(t, filename)

	views := []ElementNodeData{
		{
			Name:       "1D Generator 1",
			Components: 1,
			Elements: []ElementNodeValues{
				{ElementID: 7, NumNodes: 2, Values: []float64{-1, -1}},
			},
		},
		{
			Name:       "2D Generator 1",
			Components: 3,
			Elements: []ElementNodeValues{
				{ElementID: 12, NumNodes: 3, Values: []float64{1, 0, 0, 1, 0, 0, 1, 0, 0}},
			},
		},
	}
	for i := range views {
		require.NoError(t, AppendElementNodeData(filename, &views[i]))
	}

	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "$ElementNodeData\n"))
	assert.Contains(t, string(data), "\"1D Generator 1\"\n1\n0\n3\n0\n1\n1\n7 2 -1 -1\n")

	read, err := ReadElementNodeData(filename)
	require.NoError(t, err)
	assert.Equal(t, views, read)

	// The mesh itself is still readable with the views appended
	m, err := ReadGmsh22(filename)
	require.NoError(t, err)
	assert.Equal(t, 3, m.NumElements)

	assert.Error(t, AppendElementNodeData(filepath.Join(t.TempDir(), "missing.msh"), &views[0]))
}

func TestReadElementNodeDataErrors(t *testing.T) {
	for name, block := range map[string]string{
		"negative element count": "1\n\"cut\"\n1\n0\n3\n0\n1\n-2\n$EndElementNodeData\n",
		"negative tag count":     "-1\n$EndElementNodeData\n",
		"truncated":              "1\n\"cut\"\n1\n0\n3\n0\n1\n2\n7 2 1 1\n",
	} {
		t.Run(name, func(t *testing.T) {
			filename := filepath.Join(t.TempDir(), "views.msh")
			writeTestComplex(t, filename)
			f, err := os.OpenFile(filename, os.O_APPEND|os.O_WRONLY, 0644)
			require.NoError(t, err)
			_, err = f.WriteString("$ElementNodeData\n" + block)
			require.NoError(t, err)
			require.NoError(t, f.Close())

			_, err = ReadElementNodeData(filename)
			assert.Error(t, err)
		})
	}
}
