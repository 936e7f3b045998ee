package mesh

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ReadGmsh4 reads an ASCII Gmsh MSH file format version 4.x. Physical tags
// come from the $Entities section, elements are classified on the entity of
// their block.
func ReadGmsh4(filename string) (*Model, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := newMeshScanner(file)
	m := NewModel()

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "$MeshFormat":
			if err := readMeshFormat(scanner, m); err != nil {
				return nil, err
			}

		case "$PhysicalNames":
			if err := readPhysicalNames(scanner, m); err != nil {
				return nil, err
			}

		case "$Entities":
			if err := readEntities4(scanner, m); err != nil {
				return nil, err
			}

		case "$Nodes":
			if err := readNodes4(scanner, m); err != nil {
				return nil, err
			}

		case "$Elements":
			if err := readElements4(scanner, m); err != nil {
				return nil, err
			}

		case "$PartitionedEntities", "$Periodic", "$GhostElements",
			"$NodeData", "$ElementData", "$ElementNodeData":
			if err := skipSection(scanner, "$End"+line[1:]); err != nil {
				return nil, err
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %v", err)
	}

	return m, nil
}

// readEntities4 reads the Entities section (new in v4). Only the entity tags
// and their physical tags are kept, bounding boxes and bounding entities are
// parsed past.
func readEntities4(scanner *bufio.Scanner, m *Model) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in Entities")
	}

	// Read counts: numPoints numCurves numSurfaces numVolumes
	counts := strings.Fields(scanner.Text())
	if len(counts) < 4 {
		return fmt.Errorf("invalid entity counts")
	}

	for dim := 0; dim < 4; dim++ {
		num, _ := strconv.Atoi(counts[dim])
		for i := 0; i < num; i++ {
			if !scanner.Scan() {
				return fmt.Errorf("unexpected EOF reading %dD entity", dim)
			}
			fields := strings.Fields(scanner.Text())

			// Points carry X Y Z, higher entities a bounding box of 6 values
			pos := 7
			if dim == 0 {
				pos = 4
			}
			if len(fields) < pos {
				return fmt.Errorf("invalid %dD entity line: %s", dim, scanner.Text())
			}

			tag, _ := strconv.Atoi(fields[0])
			ent := m.GetOrCreateEntity(dim, tag)

			if pos < len(fields) {
				numPhysTags, _ := strconv.Atoi(fields[pos])
				pos++
				for j := 0; j < numPhysTags && pos+j < len(fields); j++ {
					p, _ := strconv.Atoi(fields[pos+j])
					if p != 0 && !ent.HasPhysical(p) {
						ent.PhysicalTags = append(ent.PhysicalTags, p)
					}
				}
			}
		}
	}

	return skipSection(scanner, "$EndEntities")
}

// readNodes4 reads nodes in v4 format
func readNodes4(scanner *bufio.Scanner, m *Model) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in Nodes")
	}

	// Format: numEntityBlocks numNodes minNodeTag maxNodeTag
	header := strings.Fields(scanner.Text())
	if len(header) < 4 {
		return fmt.Errorf("invalid Nodes header")
	}

	numEntityBlocks, _ := strconv.Atoi(header[0])

	for i := 0; i < numEntityBlocks; i++ {
		// Read entity info: entityDim entityTag parametric numNodes
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF in node entity block %d", i)
		}

		blockHeader := strings.Fields(scanner.Text())
		if len(blockHeader) < 4 {
			return fmt.Errorf("invalid node block header")
		}

		numNodesInBlock, _ := strconv.Atoi(blockHeader[3])
		if numNodesInBlock < 0 {
			return fmt.Errorf("invalid node block size %d", numNodesInBlock)
		}

		// Node tags come first, then one coordinate line per node
		nodeTags := make([]int, numNodesInBlock)
		for j := 0; j < numNodesInBlock; j++ {
			if !scanner.Scan() {
				return fmt.Errorf("unexpected EOF reading node tags")
			}
			nodeTags[j], _ = strconv.Atoi(strings.TrimSpace(scanner.Text()))
		}

		for j := 0; j < numNodesInBlock; j++ {
			if !scanner.Scan() {
				return fmt.Errorf("unexpected EOF reading node coordinates")
			}

			fields := strings.Fields(scanner.Text())
			if len(fields) < 3 {
				return fmt.Errorf("invalid node coordinate line")
			}

			// Parametric coordinates, if any, follow XYZ and are ignored
			coords := make([]float64, 3)
			for k := 0; k < 3; k++ {
				coords[k], _ = strconv.ParseFloat(fields[k], 64)
			}
			m.AddNode(nodeTags[j], coords)
		}
	}

	return skipSection(scanner, "$EndNodes")
}

// readElements4 reads elements in v4 format
func readElements4(scanner *bufio.Scanner, m *Model) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in Elements")
	}

	// Format: numEntityBlocks numElements minElementTag maxElementTag
	header := strings.Fields(scanner.Text())
	if len(header) < 4 {
		return fmt.Errorf("invalid Elements header")
	}

	numEntityBlocks, _ := strconv.Atoi(header[0])

	for i := 0; i < numEntityBlocks; i++ {
		// Read entity info: entityDim entityTag elementType numElements
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF in element entity block %d", i)
		}

		blockHeader := strings.Fields(scanner.Text())
		if len(blockHeader) < 4 {
			return fmt.Errorf("invalid element block header")
		}

		entityDim, _ := strconv.Atoi(blockHeader[0])
		entityTag, _ := strconv.Atoi(blockHeader[1])
		gmshType, _ := strconv.Atoi(blockHeader[2])
		numElemsInBlock, _ := strconv.Atoi(blockHeader[3])

		elemType, ok := FromGmshType(gmshType)
		if !ok {
			// Skip unknown element types
			for j := 0; j < numElemsInBlock; j++ {
				if !scanner.Scan() {
					return fmt.Errorf("unexpected EOF in element block %d", i)
				}
			}
			continue
		}
		if elemType.GetDimension() != entityDim {
			return fmt.Errorf("element block %d: %s elements on a %dD entity",
				i, elemType, entityDim)
		}

		// Physical tags live on the entity
		physicalTags := m.GetOrCreateEntity(entityDim, entityTag).PhysicalTags

		expectedNodes := elemType.GetNumNodes()

		for j := 0; j < numElemsInBlock; j++ {
			if !scanner.Scan() {
				return fmt.Errorf("unexpected EOF reading elements")
			}

			fields := strings.Fields(scanner.Text())
			if len(fields) < 1+expectedNodes {
				return fmt.Errorf("invalid element line: expected at least %d fields, got %d",
					1+expectedNodes, len(fields))
			}

			elemTag, _ := strconv.Atoi(fields[0])

			nodeIDs := make([]int, expectedNodes)
			for k := 0; k < expectedNodes; k++ {
				nodeIDs[k], _ = strconv.Atoi(fields[1+k])
			}

			if err := m.AddElement(elemTag, elemType, physicalTags, entityTag, nodeIDs); err != nil {
				return err
			}
		}
	}

	return skipSection(scanner, "$EndElements")
}
