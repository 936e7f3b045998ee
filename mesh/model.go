package mesh

import (
	"fmt"
	"sort"
)

// Element is a single mesh element. Nodes holds indices into Model.Vertices,
// not Gmsh node tags.
type Element struct {
	ID    int // Gmsh element tag
	Type  ElementType
	Nodes []int
}

// EntityKey identifies a geometric entity, Gmsh numbers entities per dimension
type EntityKey struct {
	Dimension int
	Tag       int
}

// Entity is a geometric entity (point, curve, surface, volume) together with
// the mesh elements classified on it
type Entity struct {
	Dimension    int
	Tag          int
	PhysicalTags []int
	Elements     []Element
}

// Key returns the (dimension, tag) identity of the entity
func (e *Entity) Key() EntityKey {
	return EntityKey{Dimension: e.Dimension, Tag: e.Tag}
}

// HasPhysical reports whether the entity belongs to the physical group tag
func (e *Entity) HasPhysical(tag int) bool {
	for _, p := range e.PhysicalTags {
		if p == tag {
			return true
		}
	}
	return false
}

// Model is a read-only view of an already generated mesh: node coordinates
// plus elements grouped by geometric entity
type Model struct {
	FormatVersion string
	IsBinary      bool
	DataSize      int

	Vertices [][]float64 // Vertex coordinates [nvertices][3]
	NodeIDs  []int       // Gmsh node tag of each vertex index

	Entities      map[EntityKey]*Entity
	PhysicalNames map[EntityKey]string // (dimension, physical tag) -> name

	NumVertices int
	NumElements int

	nodeIDMap map[int]int // Gmsh node tag -> vertex index
}

// NewModel creates an empty model
func NewModel() *Model {
	return &Model{
		Entities:      make(map[EntityKey]*Entity),
		PhysicalNames: make(map[EntityKey]string),
		nodeIDMap:     make(map[int]int),
	}
}

// AddNode appends a node; a repeated tag overwrites the coordinates
func (m *Model) AddNode(nodeID int, coords []float64) {
	xyz := make([]float64, 3)
	copy(xyz, coords)
	if idx, ok := m.nodeIDMap[nodeID]; ok {
		m.Vertices[idx] = xyz
		return
	}
	m.nodeIDMap[nodeID] = len(m.Vertices)
	m.Vertices = append(m.Vertices, xyz)
	m.NodeIDs = append(m.NodeIDs, nodeID)
	m.NumVertices = len(m.Vertices)
}

// GetNodeIndex returns the vertex index of a Gmsh node tag
func (m *Model) GetNodeIndex(nodeID int) (int, bool) {
	idx, ok := m.nodeIDMap[nodeID]
	return idx, ok
}

// GetOrCreateEntity returns the entity with the given key, creating it empty
func (m *Model) GetOrCreateEntity(dim, tag int) *Entity {
	key := EntityKey{Dimension: dim, Tag: tag}
	ent, ok := m.Entities[key]
	if !ok {
		ent = &Entity{Dimension: dim, Tag: tag}
		m.Entities[key] = ent
	}
	return ent
}

// AddElement classifies an element on the entity (dim of the element type,
// entityTag) and records the physical tags on that entity. nodeIDs are Gmsh
// node tags.
func (m *Model) AddElement(elemID int, etype ElementType, physicalTags []int, entityTag int, nodeIDs []int) error {
	if len(nodeIDs) != etype.GetNumNodes() {
		return fmt.Errorf("element %d: expected %d nodes for %s, got %d",
			elemID, etype.GetNumNodes(), etype, len(nodeIDs))
	}
	nodes := make([]int, len(nodeIDs))
	for i, nodeID := range nodeIDs {
		idx, ok := m.nodeIDMap[nodeID]
		if !ok {
			return fmt.Errorf("element %d references unknown node %d", elemID, nodeID)
		}
		nodes[i] = idx
	}
	ent := m.GetOrCreateEntity(etype.GetDimension(), entityTag)
	for _, p := range physicalTags {
		if p != 0 && !ent.HasPhysical(p) {
			ent.PhysicalTags = append(ent.PhysicalTags, p)
		}
	}
	ent.Elements = append(ent.Elements, Element{ID: elemID, Type: etype, Nodes: nodes})
	m.NumElements++
	return nil
}

// GetEntities returns all entities ordered by dimension then tag
func (m *Model) GetEntities() []*Entity {
	ents := make([]*Entity, 0, len(m.Entities))
	for _, e := range m.Entities {
		ents = append(ents, e)
	}
	sortEntities(ents)
	return ents
}

// GetPhysicalEntities returns the entities belonging to any of the physical
// groups, ordered by dimension then tag
func (m *Model) GetPhysicalEntities(physicalTags []int) []*Entity {
	var ents []*Entity
	for _, e := range m.Entities {
		for _, p := range physicalTags {
			if e.HasPhysical(p) {
				ents = append(ents, e)
				break
			}
		}
	}
	sortEntities(ents)
	return ents
}

// GetMeshDimension returns the highest element dimension in the model
func (m *Model) GetMeshDimension() int {
	dim := -1
	for _, e := range m.Entities {
		if len(e.Elements) > 0 && e.Dimension > dim {
			dim = e.Dimension
		}
	}
	return dim
}

func sortEntities(ents []*Entity) {
	sort.Slice(ents, func(i, j int) bool {
		if ents[i].Dimension != ents[j].Dimension {
			return ents[i].Dimension < ents[j].Dimension
		}
		return ents[i].Tag < ents[j].Tag
	})
}

// PrintStatistics prints model statistics
func (m *Model) PrintStatistics() {
	fmt.Printf("Model Statistics:\n")
	fmt.Printf("  Vertices: %d\n", m.NumVertices)
	fmt.Printf("  Elements: %d\n", m.NumElements)
	fmt.Printf("  Entities: %d\n", len(m.Entities))

	typeCounts := make(map[ElementType]int)
	for _, e := range m.Entities {
		for _, el := range e.Elements {
			typeCounts[el.Type]++
		}
	}
	types := make([]ElementType, 0, len(typeCounts))
	for t := range typeCounts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	fmt.Printf("  Element types:\n")
	for _, t := range types {
		fmt.Printf("    %s: %d\n", t, typeCounts[t])
	}
}
