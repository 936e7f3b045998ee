package mesh

import (
	"fmt"
	"math"
)

// TestMeshes provides a collection of small meshes with known topology, used
// by the reader tests and by the homology tests
type TestMeshes struct {
	SingleTet       CompleteMesh // contractible, sizes (4,6,4,1)
	SingleTet10     CompleteMesh // same tetrahedron, quadratic nodes
	TwoTets         CompleteMesh // two disjoint tetrahedra
	TetWithBoundary CompleteMesh // volume 1, boundary triangles 2
	Octahedron      CompleteMesh // sphere surface
	TorusSurface    CompleteMesh // 4x4 triangulated torus surface
	SolidTorus      CompleteMesh // ring of four hexahedra
	ProjectivePlane CompleteMesh // 6 vertex RP2
	PrismPyramid    CompleteMesh // prism and pyramid glued on a quad
}

// NodeSet represents a set of nodes with their coordinates
type NodeSet struct {
	Nodes     [][]float64    // Coordinates [N][3]
	NodeMap   map[string]int // Logical name -> array index
	NodeIDMap map[string]int // Logical name -> node ID (1-based)
}

// ElementSet represents a set of elements with connectivity
type ElementSet struct {
	Type       ElementType
	Elements   [][]string     // Connectivity using logical node names
	Properties []ElementProps // Additional properties per element
}

// ElementProps holds additional element properties
type ElementProps struct {
	PhysicalTag  int
	GeometricTag int
}

// CompleteMesh represents a complete mesh with nodes and elements
type CompleteMesh struct {
	Nodes     NodeSet
	Elements  []ElementSet
	Dimension int
	// Expected Betti numbers of the whole mesh, free ranks only
	Betti []int
}

// GetStandardTestMeshes returns a set of standard test meshes
func GetStandardTestMeshes() *TestMeshes {
	tm := &TestMeshes{}
	tm.SingleTet = createSingleTetMesh()
	tm.SingleTet10 = createSingleTet10Mesh()
	tm.TwoTets = createTwoTetsMesh()
	tm.TetWithBoundary = createTetWithBoundaryMesh()
	tm.Octahedron = createOctahedronMesh()
	tm.TorusSurface = createTorusSurfaceMesh(4, 4)
	tm.SolidTorus = createSolidTorusMesh()
	tm.ProjectivePlane = createProjectivePlaneMesh()
	tm.PrismPyramid = createPrismPyramidMesh()
	return tm
}

// Node set creators

// newNodeSet names node i "n<i>", node IDs are 1-based
func newNodeSet(nodes [][]float64) NodeSet {
	nodeMap := make(map[string]int, len(nodes))
	nodeIDMap := make(map[string]int, len(nodes))
	for i := range nodes {
		name := nodeName(i)
		nodeMap[name] = i
		nodeIDMap[name] = i + 1
	}
	return NodeSet{
		Nodes:     nodes,
		NodeMap:   nodeMap,
		NodeIDMap: nodeIDMap,
	}
}

func nodeName(i int) string {
	return fmt.Sprintf("n%d", i)
}

// newElementSet builds an element set from index connectivity, every element
// on the same physical group and geometric entity
func newElementSet(etype ElementType, conn [][]int, physical, geometric int) ElementSet {
	es := ElementSet{Type: etype}
	for _, c := range conn {
		names := make([]string, len(c))
		for j, idx := range c {
			names[j] = nodeName(idx)
		}
		es.Elements = append(es.Elements, names)
		es.Properties = append(es.Properties, ElementProps{
			PhysicalTag:  physical,
			GeometricTag: geometric,
		})
	}
	return es
}

func tetraNodes() [][]float64 {
	return [][]float64{
		{0, 0, 0},
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
}

// Complete mesh creators

func createSingleTetMesh() CompleteMesh {
	return CompleteMesh{
		Nodes: newNodeSet(tetraNodes()),
		Elements: []ElementSet{
			newElementSet(Tet, [][]int{{0, 1, 2, 3}}, 1, 1),
		},
		Dimension: 3,
		Betti:     []int{1, 0, 0, 0},
	}
}

func createSingleTet10Mesh() CompleteMesh {
	nodes := append(tetraNodes(),
		[]float64{0.5, 0, 0},   // 4: edge 0-1
		[]float64{0.5, 0.5, 0}, // 5: edge 1-2
		[]float64{0, 0.5, 0},   // 6: edge 0-2
		[]float64{0, 0, 0.5},   // 7: edge 0-3
		[]float64{0, 0.5, 0.5}, // 8: edge 2-3
		[]float64{0.5, 0, 0.5}, // 9: edge 1-3
	)
	return CompleteMesh{
		Nodes: newNodeSet(nodes),
		Elements: []ElementSet{
			newElementSet(Tet10, [][]int{{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}}, 1, 1),
		},
		Dimension: 3,
		Betti:     []int{1, 0, 0, 0},
	}
}

func createTwoTetsMesh() CompleteMesh {
	nodes := tetraNodes()
	for _, x := range tetraNodes() {
		nodes = append(nodes, []float64{x[0] + 3, x[1], x[2]})
	}
	return CompleteMesh{
		Nodes: newNodeSet(nodes),
		Elements: []ElementSet{
			newElementSet(Tet, [][]int{{0, 1, 2, 3}, {4, 5, 6, 7}}, 1, 1),
		},
		Dimension: 3,
		Betti:     []int{2, 0, 0, 0},
	}
}

func createTetWithBoundaryMesh() CompleteMesh {
	tet := []int{0, 1, 2, 3}
	faces := GetElementFaces(Tet, tet)
	return CompleteMesh{
		Nodes: newNodeSet(tetraNodes()),
		Elements: []ElementSet{
			newElementSet(Tet, [][]int{tet}, 1, 1),
			newElementSet(Triangle, faces, 2, 1),
		},
		Dimension: 3,
		Betti:     []int{1, 0, 0, 0},
	}
}

func createOctahedronMesh() CompleteMesh {
	nodes := [][]float64{
		{1, 0, 0}, {-1, 0, 0},
		{0, 1, 0}, {0, -1, 0},
		{0, 0, 1}, {0, 0, -1},
	}
	tris := [][]int{
		{0, 2, 4}, {2, 1, 4}, {1, 3, 4}, {3, 0, 4},
		{2, 0, 5}, {1, 2, 5}, {3, 1, 5}, {0, 3, 5},
	}
	return CompleteMesh{
		Nodes: newNodeSet(nodes),
		Elements: []ElementSet{
			newElementSet(Triangle, tris, 1, 1),
		},
		Dimension: 2,
		Betti:     []int{1, 0, 1},
	}
}

// createTorusSurfaceMesh triangulates an nu x nv periodic grid embedded as a
// torus of radii 2 and 1; nu, nv >= 3
func createTorusSurfaceMesh(nu, nv int) CompleteMesh {
	const R, r = 2.0, 1.0
	idx := func(i, j int) int { return (i%nu)*nv + j%nv }
	var nodes [][]float64
	for i := 0; i < nu; i++ {
		theta := 2 * math.Pi * float64(i) / float64(nu)
		for j := 0; j < nv; j++ {
			phi := 2 * math.Pi * float64(j) / float64(nv)
			nodes = append(nodes, []float64{
				(R + r*math.Cos(phi)) * math.Cos(theta),
				(R + r*math.Cos(phi)) * math.Sin(theta),
				r * math.Sin(phi),
			})
		}
	}
	var tris [][]int
	for i := 0; i < nu; i++ {
		for j := 0; j < nv; j++ {
			a, b, c, d := idx(i, j), idx(i+1, j), idx(i+1, j+1), idx(i, j+1)
			tris = append(tris, []int{a, b, c}, []int{a, c, d})
		}
	}
	return CompleteMesh{
		Nodes: newNodeSet(nodes),
		Elements: []ElementSet{
			newElementSet(Triangle, tris, 1, 1),
		},
		Dimension: 2,
		Betti:     []int{1, 2, 1},
	}
}

// createSolidTorusMesh builds four hexahedra around a square hole. Nodes
// 0-3 inner bottom, 4-7 outer bottom, 8-15 the same at z=1.
func createSolidTorusMesh() CompleteMesh {
	var nodes [][]float64
	for _, z := range []float64{0, 1} {
		for _, rad := range []float64{1, 2} {
			for k := 0; k < 4; k++ {
				angle := math.Pi/4 + float64(k)*math.Pi/2
				nodes = append(nodes, []float64{
					rad * math.Sqrt2 * math.Cos(angle),
					rad * math.Sqrt2 * math.Sin(angle),
					z,
				})
			}
		}
	}
	var hexes [][]int
	for k := 0; k < 4; k++ {
		k1 := (k + 1) % 4
		hexes = append(hexes, []int{
			k, 4 + k, 4 + k1, k1,
			8 + k, 12 + k, 12 + k1, 8 + k1,
		})
	}
	return CompleteMesh{
		Nodes: newNodeSet(nodes),
		Elements: []ElementSet{
			newElementSet(Hex, hexes, 1, 1),
		},
		Dimension: 3,
		Betti:     []int{1, 1, 0, 0},
	}
}

// createProjectivePlaneMesh is the minimal 6 vertex triangulation of the
// real projective plane. H1 is Z/2, so the free Betti numbers are (1,0,0).
func createProjectivePlaneMesh() CompleteMesh {
	var nodes [][]float64
	for i := 0; i < 6; i++ {
		angle := 2 * math.Pi * float64(i) / 6
		nodes = append(nodes, []float64{math.Cos(angle), math.Sin(angle), 0})
	}
	oneBased := [][]int{
		{1, 2, 3}, {1, 3, 4}, {1, 4, 5}, {1, 5, 6}, {1, 6, 2},
		{2, 3, 5}, {3, 4, 6}, {4, 5, 2}, {5, 6, 3}, {6, 2, 4},
	}
	tris := make([][]int, len(oneBased))
	for i, t := range oneBased {
		tris[i] = []int{t[0] - 1, t[1] - 1, t[2] - 1}
	}
	return CompleteMesh{
		Nodes: newNodeSet(nodes),
		Elements: []ElementSet{
			newElementSet(Triangle, tris, 1, 1),
		},
		Dimension: 2,
		Betti:     []int{1, 0, 0},
	}
}

// createPrismPyramidMesh glues a pyramid onto the quad face 1-2-5-4 of a
// prism
func createPrismPyramidMesh() CompleteMesh {
	nodes := [][]float64{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, // prism bottom
		{0, 0, 1}, {1, 0, 1}, {0, 1, 1}, // prism top
		{1, 1, 1}, // pyramid apex
	}
	return CompleteMesh{
		Nodes: newNodeSet(nodes),
		Elements: []ElementSet{
			newElementSet(Prism, [][]int{{0, 1, 2, 3, 4, 5}}, 1, 1),
			newElementSet(Pyramid, [][]int{{1, 2, 5, 4, 6}}, 1, 2),
		},
		Dimension: 3,
		Betti:     []int{1, 0, 0, 0},
	}
}

// BuildModel converts a CompleteMesh directly into a Model, numbering
// elements from 1 in element set order
func (cm *CompleteMesh) BuildModel() (*Model, error) {
	m := NewModel()
	m.FormatVersion = "2.2"
	m.DataSize = 8
	for i, x := range cm.Nodes.Nodes {
		m.AddNode(i+1, x)
	}
	elemID := 1
	for _, es := range cm.Elements {
		for i, elem := range es.Elements {
			props := ElementProps{}
			if i < len(es.Properties) {
				props = es.Properties[i]
			}
			nodeIDs := make([]int, len(elem))
			for j, name := range elem {
				id, ok := cm.Nodes.NodeIDMap[name]
				if !ok {
					return nil, fmt.Errorf("element %d: unknown node name %q", elemID, name)
				}
				nodeIDs[j] = id
			}
			var physical []int
			if props.PhysicalTag != 0 {
				physical = []int{props.PhysicalTag}
			}
			if err := m.AddElement(elemID, es.Type, physical, props.GeometricTag, nodeIDs); err != nil {
				return nil, err
			}
			elemID++
		}
	}
	return m, nil
}

// ValidateNodeCoordinates checks if node coordinates match expected values
func ValidateNodeCoordinates(nodes [][]float64, expected [][]float64, tolerance float64) error {
	if len(nodes) != len(expected) {
		return fmt.Errorf("node count mismatch: got %d, expected %d", len(nodes), len(expected))
	}
	for i := range nodes {
		for j := 0; j < 3; j++ {
			if math.Abs(nodes[i][j]-expected[i][j]) > tolerance {
				return fmt.Errorf("node %d coordinate %d mismatch: got %f, expected %f",
					i, j, nodes[i][j], expected[i][j])
			}
		}
	}
	return nil
}
