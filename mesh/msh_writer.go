package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
)

// ElementRecord is one element line of a MSH 2.2 $Elements section. Nodes are
// vertex indices, they are written with the Gmsh tags of the model nodes.
type ElementRecord struct {
	ID          int
	Type        ElementType
	Nodes       []int
	PhysicalTag int
	EntityTag   int
}

// ElementNodeValues holds the values of one element in an $ElementNodeData
// block: NumNodes * components values, node major
type ElementNodeValues struct {
	ElementID int
	NumNodes  int
	Values    []float64
}

// ElementNodeData is a post-processing view attached to written elements
type ElementNodeData struct {
	Name       string
	Time       float64
	TimeStep   int
	Components int // 1 for scalar, 3 for vector
	Elements   []ElementNodeValues
}

// MSHWriter writes legacy MSH 2.2 ASCII files
type MSHWriter struct {
	w        *bufio.Writer
	vertices [][]float64
	nodeIDs  []int
}

// NewMSHWriter writes nodes taken from vertices, labelled with nodeIDs. A nil
// nodeIDs labels vertex i as i+1.
func NewMSHWriter(w io.Writer, vertices [][]float64, nodeIDs []int) *MSHWriter {
	return &MSHWriter{
		w:        bufio.NewWriter(w),
		vertices: vertices,
		nodeIDs:  nodeIDs,
	}
}

func (mw *MSHWriter) nodeTag(idx int) int {
	if mw.nodeIDs == nil {
		return idx + 1
	}
	return mw.nodeIDs[idx]
}

// WriteHeader writes the $MeshFormat section
func (mw *MSHWriter) WriteHeader() error {
	_, err := fmt.Fprintf(mw.w, "$MeshFormat\n2.2 0 8\n$EndMeshFormat\n")
	return err
}

// WriteNodes writes the vertices listed in used (all vertices if nil)
func (mw *MSHWriter) WriteNodes(used []int) error {
	if used == nil {
		used = make([]int, len(mw.vertices))
		for i := range used {
			used[i] = i
		}
	}
	fmt.Fprintf(mw.w, "$Nodes\n%d\n", len(used))
	for _, idx := range used {
		if idx < 0 || idx >= len(mw.vertices) {
			return fmt.Errorf("node index %d out of range", idx)
		}
		x := mw.vertices[idx]
		fmt.Fprintf(mw.w, "%d %s %s %s\n", mw.nodeTag(idx),
			formatFloat(x[0]), formatFloat(x[1]), formatFloat(x[2]))
	}
	_, err := fmt.Fprintf(mw.w, "$EndNodes\n")
	return err
}

// WriteElements writes the $Elements section with two tags per element
func (mw *MSHWriter) WriteElements(elems []ElementRecord) error {
	fmt.Fprintf(mw.w, "$Elements\n%d\n", len(elems))
	for _, e := range elems {
		gmshType := e.Type.GmshType()
		if gmshType == 0 {
			return fmt.Errorf("element %d: type %s has no Gmsh number", e.ID, e.Type)
		}
		fmt.Fprintf(mw.w, "%d %d 2 %d %d", e.ID, gmshType, e.PhysicalTag, e.EntityTag)
		for _, n := range e.Nodes {
			fmt.Fprintf(mw.w, " %d", mw.nodeTag(n))
		}
		fmt.Fprintln(mw.w)
	}
	_, err := fmt.Fprintf(mw.w, "$EndElements\n")
	return err
}

// WriteElementNodeData writes one $ElementNodeData block
func (mw *MSHWriter) WriteElementNodeData(d *ElementNodeData) error {
	return writeElementNodeData(mw.w, d)
}

// Flush flushes the buffered output
func (mw *MSHWriter) Flush() error {
	return mw.w.Flush()
}

func writeElementNodeData(w io.Writer, d *ElementNodeData) error {
	comps := d.Components
	if comps != 1 && comps != 3 {
		return fmt.Errorf("view %q: %d components, expected 1 or 3", d.Name, comps)
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "$ElementNodeData\n")
	// string tags
	fmt.Fprintf(bw, "1\n%s\n", strconv.Quote(d.Name))
	// real tags
	fmt.Fprintf(bw, "1\n%s\n", formatFloat(d.Time))
	// integer tags: time step, components, number of elements
	fmt.Fprintf(bw, "3\n%d\n%d\n%d\n", d.TimeStep, comps, len(d.Elements))
	for _, e := range d.Elements {
		if len(e.Values) != e.NumNodes*comps {
			return fmt.Errorf("view %q element %d: %d values for %d nodes",
				d.Name, e.ElementID, len(e.Values), e.NumNodes)
		}
		fmt.Fprintf(bw, "%d %d", e.ElementID, e.NumNodes)
		for _, v := range e.Values {
			fmt.Fprintf(bw, " %s", formatFloat(v))
		}
		fmt.Fprintln(bw)
	}
	fmt.Fprintf(bw, "$EndElementNodeData\n")
	return bw.Flush()
}

// AppendElementNodeData appends a view to an existing MSH file
func AppendElementNodeData(filename string, d *ElementNodeData) error {
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	if err = writeElementNodeData(f, d); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
