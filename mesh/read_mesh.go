package mesh

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ReadMeshFile reads a mesh file based on extension
func ReadMeshFile(filename string) (*Model, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".msh":
		return ReadGmshAuto(filename)
	default:
		return nil, fmt.Errorf("unsupported mesh format: %s", ext)
	}
}

// ReadGmshAuto automatically detects the Gmsh format version and reads the file
func ReadGmshAuto(filename string) (*Model, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var version string

	// Look for $MeshFormat section to determine version
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "$MeshFormat" {
			if scanner.Scan() {
				parts := strings.Fields(scanner.Text())
				if len(parts) > 0 {
					version = parts[0]
					break
				}
			}
		}
	}

	switch {
	case strings.HasPrefix(version, "4."):
		return ReadGmsh4(filename)
	case strings.HasPrefix(version, "2."):
		return ReadGmsh22(filename)
	case version == "":
		return nil, fmt.Errorf("could not find $MeshFormat section")
	default:
		return nil, fmt.Errorf("unsupported Gmsh format version: %s", version)
	}
}

// readMeshFormat reads the MeshFormat section (common to v2.2 and v4)
func readMeshFormat(scanner *bufio.Scanner, m *Model) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in MeshFormat")
	}

	parts := strings.Fields(scanner.Text())
	if len(parts) < 3 {
		return fmt.Errorf("invalid MeshFormat line")
	}

	m.FormatVersion = parts[0]
	fileType, _ := strconv.Atoi(parts[1])
	m.IsBinary = fileType == 1
	m.DataSize, _ = strconv.Atoi(parts[2])
	if m.IsBinary {
		return fmt.Errorf("binary Gmsh files are not supported")
	}

	return skipSection(scanner, "$EndMeshFormat")
}

// readPhysicalNames reads physical group names (common to v2.2 and v4)
func readPhysicalNames(scanner *bufio.Scanner, m *Model) error {
	if !scanner.Scan() {
		return fmt.Errorf("unexpected EOF in PhysicalNames")
	}

	numNames, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return fmt.Errorf("invalid PhysicalNames count: %v", err)
	}

	for i := 0; i < numNames; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("unexpected EOF reading physical names")
		}

		parts := strings.Fields(scanner.Text())
		if len(parts) < 3 {
			return fmt.Errorf("invalid physical name line: %s", scanner.Text())
		}
		dimension, _ := strconv.Atoi(parts[0])
		tag, _ := strconv.Atoi(parts[1])
		// Names may contain spaces
		name := strings.Trim(strings.Join(parts[2:], " "), "\"")
		m.PhysicalNames[EntityKey{Dimension: dimension, Tag: tag}] = name
	}

	return skipSection(scanner, "$EndPhysicalNames")
}

// skipSection skips a section until the end marker
func skipSection(scanner *bufio.Scanner, endMarker string) error {
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == endMarker {
			return nil
		}
	}
	return fmt.Errorf("unexpected EOF while looking for %s", endMarker)
}

// newMeshScanner returns a line scanner able to hold long element lines
func newMeshScanner(file *os.File) *bufio.Scanner {
	scanner := bufio.NewScanner(file)
	const maxScanTokenSize = 1024 * 1024 * 10 // 10MB
	buf := make([]byte, 64*1024)
	scanner.Buffer(buf, maxScanTokenSize)
	return scanner
}
