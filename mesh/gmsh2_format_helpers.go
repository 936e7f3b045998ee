package mesh

import (
	"fmt"
	"strings"
)

// Gmsh22TestBuilder helps build Gmsh 2.2 format test files
type Gmsh22TestBuilder struct {
	tm *TestMeshes
}

// NewGmsh22TestBuilder creates a new builder with standard test meshes
func NewGmsh22TestBuilder() *Gmsh22TestBuilder {
	return &Gmsh22TestBuilder{
		tm: GetStandardTestMeshes(),
	}
}

// BuildTwoTetsTest creates a Gmsh 2.2 file with two disjoint tetrahedra
func (b *Gmsh22TestBuilder) BuildTwoTetsTest() string {
	mesh := b.tm.TwoTets
	return b.BuildFromCompleteMesh(&mesh)
}

// BuildTorusTest creates a Gmsh 2.2 file with the triangulated torus surface
func (b *Gmsh22TestBuilder) BuildTorusTest() string {
	mesh := b.tm.TorusSurface
	return b.BuildFromCompleteMesh(&mesh)
}

// BuildFromCompleteMesh creates a complete Gmsh 2.2 format file from a
// CompleteMesh. Every element carries two tags: physical, geometric.
func (b *Gmsh22TestBuilder) BuildFromCompleteMesh(mesh *CompleteMesh) string {
	var sections []string
	sections = append(sections, b.buildHeader())
	sections = append(sections, b.buildNodes(mesh))
	sections = append(sections, b.buildElements(mesh))
	return strings.Join(sections, "\n") + "\n"
}

func (b *Gmsh22TestBuilder) buildHeader() string {
	return `$MeshFormat
2.2 0 8
$EndMeshFormat`
}

func (b *Gmsh22TestBuilder) buildNodes(mesh *CompleteMesh) string {
	numNodes := len(mesh.Nodes.Nodes)

	var lines []string
	lines = append(lines, "$Nodes")
	lines = append(lines, fmt.Sprintf("%d", numNodes))

	// Node lines: id x y z
	for i := 0; i < numNodes; i++ {
		coords := mesh.Nodes.Nodes[i]
		lines = append(lines, fmt.Sprintf("%d %.17g %.17g %.17g", i+1, coords[0], coords[1], coords[2]))
	}

	lines = append(lines, "$EndNodes")
	return strings.Join(lines, "\n")
}

func (b *Gmsh22TestBuilder) buildElements(mesh *CompleteMesh) string {
	totalElements := 0
	for _, elemSet := range mesh.Elements {
		totalElements += len(elemSet.Elements)
	}

	var lines []string
	lines = append(lines, "$Elements")
	lines = append(lines, fmt.Sprintf("%d", totalElements))

	elemID := 1
	for _, elemSet := range mesh.Elements {
		gmshType := elemSet.Type.GmshType()

		for i, elem := range elemSet.Elements {
			props := ElementProps{}
			if i < len(elemSet.Properties) {
				props = elemSet.Properties[i]
			}

			// Format: elem-id elem-type 2 physical geometric node1 node2 ...
			var sb strings.Builder
			fmt.Fprintf(&sb, "%d %d 2 %d %d", elemID, gmshType, props.PhysicalTag, props.GeometricTag)
			for _, nodeName := range elem {
				fmt.Fprintf(&sb, " %d", mesh.Nodes.NodeIDMap[nodeName])
			}
			lines = append(lines, sb.String())
			elemID++
		}
	}

	lines = append(lines, "$EndElements")
	return strings.Join(lines, "\n")
}
