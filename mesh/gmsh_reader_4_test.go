package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Two triangles on surface 1 (physical 20) and their shared edge on curve 1
// (physical 10)
const gmsh41Square = `$MeshFormat
4.1 0 8
$EndMeshFormat
$PhysicalNames
2
1 10 "cut"
2 20 "square"
$EndPhysicalNames
$Entities
0 1 1 0
1 0 0 0 1 1 0 1 10 2 1 -2
1 0 0 0 1 1 0 1 20 4 1 2 3 4
$EndEntities
$Nodes
2 4 1 4
1 1 0 2
1
3
0 0 0
1 1 0
2 1 0 2
2
4
1 0 0
0 1 0
$EndNodes
$Elements
2 3 1 3
1 1 1 1
3 1 3
2 1 2 2
1 1 2 3
2 1 3 4
$EndElements
`

// TestReadGmsh4Version tests reading version 4.x format
func TestReadGmsh4Version(t *testing.T) {
	content := `$MeshFormat
4.1 0 8
$EndMeshFormat
$Entities
0 0 0 0
$EndEntities
$Nodes
0 0 0 0
$EndNodes
$Elements
0 0 0 0
$EndElements`

	tmpFile := createTempMshFile(t, content)

	mesh, err := ReadGmsh4(tmpFile)
	if err != nil {
		t.Fatalf("Failed to read Gmsh 4 file: %v", err)
	}
	if mesh.FormatVersion != "4.1" {
		t.Errorf("Expected version 4.1, got %s", mesh.FormatVersion)
	}
	if mesh.IsBinary {
		t.Error("Expected ASCII format, got binary")
	}
}

// TestReadGmsh4Entities checks physical tags carried by $Entities
func TestReadGmsh4Entities(t *testing.T) {
	tmpFile := createTempMshFile(t, gmsh41Square)

	mesh, err := ReadGmshAuto(tmpFile)
	require.NoError(t, err)

	assert.Equal(t, "cut", mesh.PhysicalNames[EntityKey{Dimension: 1, Tag: 10}])
	assert.Equal(t, "square", mesh.PhysicalNames[EntityKey{Dimension: 2, Tag: 20}])

	curve := mesh.Entities[EntityKey{Dimension: 1, Tag: 1}]
	require.NotNil(t, curve)
	assert.Equal(t, []int{10}, curve.PhysicalTags)

	surface := mesh.Entities[EntityKey{Dimension: 2, Tag: 1}]
	require.NotNil(t, surface)
	assert.Equal(t, []int{20}, surface.PhysicalTags)
}

// TestReadGmsh4Elements checks node blocks and element blocks
func TestReadGmsh4Elements(t *testing.T) {
	tmpFile := createTempMshFile(t, gmsh41Square)

	mesh, err := ReadGmsh4(tmpFile)
	require.NoError(t, err)

	assert.Equal(t, 4, mesh.NumVertices)
	assert.Equal(t, 3, mesh.NumElements)
	assert.Equal(t, 2, mesh.GetMeshDimension())

	// Node tags 1 and 3 come in the first block
	idx, ok := mesh.GetNodeIndex(3)
	require.True(t, ok)
	assert.Equal(t, []float64{1, 1, 0}, mesh.Vertices[idx])

	surface := mesh.Entities[EntityKey{Dimension: 2, Tag: 1}]
	require.Len(t, surface.Elements, 2)
	assert.Equal(t, Triangle, surface.Elements[0].Type)
	assert.Equal(t, 2, surface.Elements[1].ID)

	curve := mesh.Entities[EntityKey{Dimension: 1, Tag: 1}]
	require.Len(t, curve.Elements, 1)
	assert.Equal(t, Line, curve.Elements[0].Type)

	ents := mesh.GetPhysicalEntities([]int{20, 10})
	require.Len(t, ents, 2)
	assert.Equal(t, 1, ents[0].Dimension)
	assert.Equal(t, 2, ents[1].Dimension)
}

// TestReadGmsh4DimensionMismatch rejects elements on an entity of another
// dimension
func TestReadGmsh4DimensionMismatch(t *testing.T) {
	content := `$MeshFormat
4.1 0 8
$EndMeshFormat
$Nodes
1 2 1 2
2 1 0 2
1
2
0 0 0
1 0 0
$EndNodes
$Elements
1 1 1 1
2 1 1 1
1 1 2
$EndElements`

	_, err := ReadGmsh4(createTempMshFile(t, content))
	assert.Error(t, err)
}

// TestReadGmsh4TruncatedUnknownBlock stops at EOF inside a skipped block
func TestReadGmsh4TruncatedUnknownBlock(t *testing.T) {
	content := `$MeshFormat
4.1 0 8
$EndMeshFormat
$Nodes
1 1 1 1
0 1 0 1
1
0 0 0
$EndNodes
$Elements
1 3 1 3
2 1 99 3
1 1
`

	_, err := ReadGmsh4(createTempMshFile(t, content))
	assert.Error(t, err)
}

func TestReadGmsh4NegativeBlockSize(t *testing.T) {
	content := `$MeshFormat
4.1 0 8
$EndMeshFormat
$Nodes
1 1 1 1
0 1 0 -1
$EndNodes`

	_, err := ReadGmsh4(createTempMshFile(t, content))
	assert.Error(t, err)
}
