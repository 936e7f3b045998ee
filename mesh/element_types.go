package mesh

// ElementType represents the Gmsh element families the homology engine can
// decompose into cells
type ElementType int

const (
	Unknown ElementType = iota
	// 0D elements
	Point
	// 1D elements
	Line
	Line3 // 3-node line (quadratic)
	// 2D elements
	Triangle
	Quad
	Triangle6  // 6-node triangle (quadratic)
	Triangle9  // 9-node triangle
	Triangle10 // 10-node triangle
	Quad8      // 8-node quad (quadratic)
	Quad9      // 9-node quad
	// 3D elements
	Tet
	Hex
	Prism
	Pyramid
	Tet10     // 10-node tetrahedron (quadratic)
	Hex20     // 20-node hexahedron (quadratic)
	Hex27     // 27-node hexahedron
	Prism15   // 15-node prism (quadratic)
	Prism18   // 18-node prism
	Pyramid13 // 13-node pyramid
	Pyramid14 // 14-node pyramid
)

// String representation of element types
func (e ElementType) String() string {
	names := []string{
		"Unknown",
		"Point",
		"Line", "Line3",
		"Triangle", "Quad", "Triangle6", "Triangle9", "Triangle10", "Quad8", "Quad9",
		"Tet", "Hex", "Prism", "Pyramid",
		"Tet10", "Hex20", "Hex27", "Prism15", "Prism18", "Pyramid13", "Pyramid14",
	}
	if int(e) >= 0 && int(e) < len(names) {
		return names[e]
	}
	return "Invalid"
}

// GetDimension returns the topological dimension of the element
func (e ElementType) GetDimension() int {
	switch e {
	case Point:
		return 0
	case Line, Line3:
		return 1
	case Triangle, Quad, Triangle6, Triangle9, Triangle10, Quad8, Quad9:
		return 2
	case Tet, Hex, Prism, Pyramid, Tet10, Hex20, Hex27, Prism15, Prism18, Pyramid13, Pyramid14:
		return 3
	default:
		return -1
	}
}

// GetNumNodes returns the number of nodes for each element type
func (e ElementType) GetNumNodes() int {
	switch e {
	case Point:
		return 1
	case Line:
		return 2
	case Line3:
		return 3
	case Triangle:
		return 3
	case Quad:
		return 4
	case Triangle6:
		return 6
	case Triangle9:
		return 9
	case Triangle10:
		return 10
	case Quad8:
		return 8
	case Quad9:
		return 9
	case Tet:
		return 4
	case Hex:
		return 8
	case Prism:
		return 6
	case Pyramid:
		return 5
	case Tet10:
		return 10
	case Hex20:
		return 20
	case Hex27:
		return 27
	case Prism15:
		return 15
	case Prism18:
		return 18
	case Pyramid13:
		return 13
	case Pyramid14:
		return 14
	default:
		return 0
	}
}

// GetLinearType maps a higher order element onto the linear element spanned
// by its corner nodes. Gmsh stores corner nodes first.
func (e ElementType) GetLinearType() ElementType {
	switch e {
	case Line3:
		return Line
	case Triangle6, Triangle9, Triangle10:
		return Triangle
	case Quad8, Quad9:
		return Quad
	case Tet10:
		return Tet
	case Hex20, Hex27:
		return Hex
	case Prism15, Prism18:
		return Prism
	case Pyramid13, Pyramid14:
		return Pyramid
	default:
		return e
	}
}

// GetNumCorners returns the number of corner (vertex) nodes
func (e ElementType) GetNumCorners() int {
	return e.GetLinearType().GetNumNodes()
}

// GetCornerNodes returns the corner node entries of an element node list
func (e ElementType) GetCornerNodes(nodes []int) []int {
	nc := e.GetNumCorners()
	if len(nodes) < nc {
		return nil
	}
	return nodes[:nc]
}

// LinearTypeFor returns the linear element of the given dimension with nv
// corner vertices, or Unknown
func LinearTypeFor(dim, nv int) ElementType {
	switch dim {
	case 0:
		return Point
	case 1:
		return Line
	case 2:
		switch nv {
		case 3:
			return Triangle
		case 4:
			return Quad
		}
	case 3:
		switch nv {
		case 4:
			return Tet
		case 5:
			return Pyramid
		case 6:
			return Prism
		case 8:
			return Hex
		}
	}
	return Unknown
}

// GetElementFaces returns the faces of a 3D element as vertex lists. The
// faces of each element are consistently oriented (outward for a positively
// oriented element), so every edge is traversed once in each direction.
func GetElementFaces(elemType ElementType, vertices []int) [][]int {
	v := elemType.GetCornerNodes(vertices)
	if v == nil {
		return [][]int{}
	}
	switch elemType.GetLinearType() {
	case Tet:
		return [][]int{
			{v[0], v[2], v[1]}, // Face 0
			{v[0], v[1], v[3]}, // Face 1
			{v[0], v[3], v[2]}, // Face 2
			{v[1], v[2], v[3]}, // Face 3
		}
	case Hex:
		return [][]int{
			{v[0], v[3], v[2], v[1]}, // Face 0 (bottom)
			{v[4], v[5], v[6], v[7]}, // Face 1 (top)
			{v[0], v[1], v[5], v[4]}, // Face 2
			{v[1], v[2], v[6], v[5]}, // Face 3
			{v[2], v[3], v[7], v[6]}, // Face 4
			{v[3], v[0], v[4], v[7]}, // Face 5
		}
	case Prism:
		return [][]int{
			{v[0], v[2], v[1]},       // Face 0 (bottom tri)
			{v[3], v[4], v[5]},       // Face 1 (top tri)
			{v[0], v[1], v[4], v[3]}, // Face 2 (quad)
			{v[1], v[2], v[5], v[4]}, // Face 3 (quad)
			{v[2], v[0], v[3], v[5]}, // Face 4 (quad)
		}
	case Pyramid:
		return [][]int{
			{v[0], v[3], v[2], v[1]}, // Face 0 (base quad)
			{v[0], v[1], v[4]},       // Face 1 (tri)
			{v[1], v[2], v[4]},       // Face 2 (tri)
			{v[2], v[3], v[4]},       // Face 3 (tri)
			{v[3], v[0], v[4]},       // Face 4 (tri)
		}
	default:
		return [][]int{}
	}
}

// GetPolygonEdges returns the edges of a 2D cell traversed in its cyclic
// vertex order
func GetPolygonEdges(vertices []int) [][2]int {
	n := len(vertices)
	edges := make([][2]int, n)
	for i := 0; i < n; i++ {
		edges[i] = [2]int{vertices[i], vertices[(i+1)%n]}
	}
	return edges
}

// gmshElementType maps Gmsh element type numbers (2.2 and 4.x share them)
// to our ElementType
var gmshElementType = map[int]ElementType{
	1:  Line,       // 2-node line
	2:  Triangle,   // 3-node triangle
	3:  Quad,       // 4-node quadrangle
	4:  Tet,        // 4-node tetrahedron
	5:  Hex,        // 8-node hexahedron
	6:  Prism,      // 6-node prism
	7:  Pyramid,    // 5-node pyramid
	8:  Line3,      // 3-node line
	9:  Triangle6,  // 6-node triangle
	10: Quad9,      // 9-node quadrangle
	11: Tet10,      // 10-node tetrahedron
	12: Hex27,      // 27-node hexahedron
	13: Prism18,    // 18-node prism
	14: Pyramid14,  // 14-node pyramid
	15: Point,      // 1-node point
	16: Quad8,      // 8-node quadrangle
	17: Hex20,      // 20-node hexahedron
	18: Prism15,    // 15-node prism
	19: Pyramid13,  // 13-node pyramid
	20: Triangle9,  // 9-node triangle
	21: Triangle10, // 10-node triangle
}

// elementTypeToGmsh converts our ElementType to the Gmsh type number
var elementTypeToGmsh = map[ElementType]int{
	Point:      15,
	Line:       1,
	Line3:      8,
	Triangle:   2,
	Triangle6:  9,
	Triangle9:  20,
	Triangle10: 21,
	Quad:       3,
	Quad8:      16,
	Quad9:      10,
	Tet:        4,
	Tet10:      11,
	Hex:        5,
	Hex20:      17,
	Hex27:      12,
	Prism:      6,
	Prism15:    18,
	Prism18:    13,
	Pyramid:    7,
	Pyramid13:  19,
	Pyramid14:  14,
}

// GmshType returns the Gmsh element type number, 0 if unknown
func (e ElementType) GmshType() int {
	return elementTypeToGmsh[e]
}

// FromGmshType returns the ElementType for a Gmsh element type number
func FromGmshType(gmshType int) (ElementType, bool) {
	t, ok := gmshElementType[gmshType]
	return t, ok
}
