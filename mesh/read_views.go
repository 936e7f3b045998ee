package mesh

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ReadElementNodeData reads every $ElementNodeData block of a MSH 2.2 file,
// in file order
func ReadElementNodeData(filename string) ([]ElementNodeData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := newMeshScanner(file)
	var views []ElementNodeData
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) != "$ElementNodeData" {
			continue
		}
		d, err := readElementNodeData(scanner)
		if err != nil {
			return nil, err
		}
		views = append(views, d)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %v", err)
	}
	return views, nil
}

func readElementNodeData(scanner *bufio.Scanner) (d ElementNodeData, err error) {
	next := func() (string, error) {
		if !scanner.Scan() {
			return "", fmt.Errorf("unexpected EOF in ElementNodeData")
		}
		return strings.TrimSpace(scanner.Text()), nil
	}
	readTags := func() ([]string, error) {
		line, err := next()
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid tag count %q", line)
		}
		tags := make([]string, n)
		for i := range tags {
			if tags[i], err = next(); err != nil {
				return nil, err
			}
		}
		return tags, nil
	}

	strTags, err := readTags()
	if err != nil {
		return
	}
	if len(strTags) > 0 {
		if d.Name, err = strconv.Unquote(strTags[0]); err != nil {
			d.Name, err = strings.Trim(strTags[0], "\""), nil
		}
	}
	realTags, err := readTags()
	if err != nil {
		return
	}
	if len(realTags) > 0 {
		d.Time, _ = strconv.ParseFloat(realTags[0], 64)
	}
	intTags, err := readTags()
	if err != nil {
		return
	}
	if len(intTags) < 3 {
		return d, fmt.Errorf("view %q: expected 3 integer tags, got %d", d.Name, len(intTags))
	}
	d.TimeStep, _ = strconv.Atoi(intTags[0])
	d.Components, _ = strconv.Atoi(intTags[1])
	numElements, err := strconv.Atoi(intTags[2])
	if err != nil || numElements < 0 {
		return d, fmt.Errorf("view %q: invalid element count %q", d.Name, intTags[2])
	}

	d.Elements = make([]ElementNodeValues, 0, numElements)
	for i := 0; i < numElements; i++ {
		line, err := next()
		if err != nil {
			return d, err
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return d, fmt.Errorf("view %q: invalid element line %q", d.Name, line)
		}
		var e ElementNodeValues
		e.ElementID, _ = strconv.Atoi(fields[0])
		e.NumNodes, _ = strconv.Atoi(fields[1])
		if len(fields) != 2+e.NumNodes*d.Components {
			return d, fmt.Errorf("view %q element %d: expected %d values, got %d",
				d.Name, e.ElementID, e.NumNodes*d.Components, len(fields)-2)
		}
		e.Values = make([]float64, len(fields)-2)
		for k := range e.Values {
			e.Values[k], _ = strconv.ParseFloat(fields[2+k], 64)
		}
		d.Elements = append(d.Elements, e)
	}
	if err = skipSection(scanner, "$EndElementNodeData"); err != nil {
		return d, err
	}
	return d, nil
}
