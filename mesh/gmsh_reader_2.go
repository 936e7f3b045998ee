package mesh

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ReadGmsh22 reads an ASCII Gmsh MSH file format version 2.2. Elements of
// every dimension are kept and classified on their elementary entity, the
// first tag is the physical group.
func ReadGmsh22(filename string) (*Model, error) {
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

		case "$Nodes":
			if err := readNodes22(scanner, m); err != nil {
				return nil, err
			}

		case "$Elements":
			if err := readElements22(scanner, m); err != nil {
				return nil, err
			}

		case "$Periodic", "$NodeData", "$ElementData", "$ElementNodeData":
			// Skip sections the homology engine does not consume
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

// readNodes22 reads nodes in v2.2 format
func readNodes22(scanner *bufio.Scanner, m *Model) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in Nodes")
	}

	numNodes, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return fmt.Errorf("invalid node count: %v", err)
	}
	if numNodes < 0 {
		return fmt.Errorf("invalid node count: %d", numNodes)
	}
	m.Vertices = make([][]float64, 0, numNodes)

	for i := 0; i < numNodes; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading nodes")
		}

		parts := strings.Fields(scanner.Text())
		if len(parts) < 4 {
			return fmt.Errorf("invalid node line: %s", scanner.Text())
		}

		nodeID, err := strconv.Atoi(parts[0])
		if err != nil {
			return fmt.Errorf("invalid node id %q", parts[0])
		}
		coords := make([]float64, 3)
		for k := 0; k < 3; k++ {
			if coords[k], err = strconv.ParseFloat(parts[1+k], 64); err != nil {
				return fmt.Errorf("node %d: invalid coordinate %q", nodeID, parts[1+k])
			}
		}

		m.AddNode(nodeID, coords)
	}

	return skipSection(scanner, "$EndNodes")
}

// readElements22 reads elements in v2.2 format:
// elm-number elm-type number-of-tags < tag > ... node-number-list
func readElements22(scanner *bufio.Scanner, m *Model) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in Elements")
	}

	numElements, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return fmt.Errorf("invalid element count: %v", err)
	}
	if numElements < 0 {
		return fmt.Errorf("invalid element count: %d", numElements)
	}

	for i := 0; i < numElements; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading elements")
		}

		parts := strings.Fields(scanner.Text())
		if len(parts) < 3 {
			return fmt.Errorf("invalid element line: %s", scanner.Text())
		}

		elemID, _ := strconv.Atoi(parts[0])
		gmshType, _ := strconv.Atoi(parts[1])
		numTags, _ := strconv.Atoi(parts[2])

		if numTags < 0 || len(parts) < 3+numTags {
			return fmt.Errorf("element %d: invalid element tags", elemID)
		}

		// Read tags
		tags := make([]int, numTags)
		for j := 0; j < numTags; j++ {
			tags[j], _ = strconv.Atoi(parts[3+j])
		}

		etype, ok := FromGmshType(gmshType)
		if !ok {
			// Skip unknown element types
			continue
		}

		expectedNodes := etype.GetNumNodes()
		nodeStart := 3 + numTags
		if len(parts) < nodeStart+expectedNodes {
			return fmt.Errorf("element %d: expected %d nodes, got %d",
				elemID, expectedNodes, len(parts)-nodeStart)
		}

		nodeIDs := make([]int, expectedNodes)
		for j := 0; j < expectedNodes; j++ {
			nodeIDs[j], _ = strconv.Atoi(parts[nodeStart+j])
		}

		var physical []int
		entityTag := 0
		if numTags > 0 {
			physical = []int{tags[0]}
		}
		if numTags > 1 {
			entityTag = tags[1]
		}

		if err := m.AddElement(elemID, etype, physical, entityTag, nodeIDs); err != nil {
			return err
		}
	}

	return skipSection(scanner, "$EndElements")
}
