package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElementTypeProperties(t *testing.T) {
	tests := []struct {
		etype   ElementType
		dim     int
		nodes   int
		corners int
		linear  ElementType
	}{
		{Point, 0, 1, 1, Point},
		{Line3, 1, 3, 2, Line},
		{Triangle6, 2, 6, 3, Triangle},
		{Quad9, 2, 9, 4, Quad},
		{Tet10, 3, 10, 4, Tet},
		{Hex27, 3, 27, 8, Hex},
		{Prism15, 3, 15, 6, Prism},
		{Pyramid13, 3, 13, 5, Pyramid},
	}
	for _, tt := range tests {
		t.Run(tt.etype.String(), func(t *testing.T) {
			assert.Equal(t, tt.dim, tt.etype.GetDimension())
			assert.Equal(t, tt.nodes, tt.etype.GetNumNodes())
			assert.Equal(t, tt.corners, tt.etype.GetNumCorners())
			assert.Equal(t, tt.linear, tt.etype.GetLinearType())
			assert.Equal(t, tt.linear, LinearTypeFor(tt.dim, tt.corners))

			gt, ok := FromGmshType(tt.etype.GmshType())
			require.True(t, ok)
			assert.Equal(t, tt.etype, gt)
		})
	}
	assert.Equal(t, Unknown, LinearTypeFor(2, 5))
}

// Every edge of a closed, consistently oriented face set is traversed once
// in each direction
func TestGetElementFacesOrientation(t *testing.T) {
	for _, etype := range []ElementType{Tet, Hex, Prism, Pyramid} {
		t.Run(etype.String(), func(t *testing.T) {
			n := etype.GetNumNodes()
			vertices := make([]int, n)
			for i := range vertices {
				vertices[i] = 10 + i
			}
			traversed := make(map[[2]int]int)
			for _, face := range GetElementFaces(etype, vertices) {
				for _, e := range GetPolygonEdges(face) {
					traversed[e]++
				}
			}
			for e, count := range traversed {
				assert.Equal(t, 1, count, "edge %v", e)
				assert.Equal(t, 1, traversed[[2]int{e[1], e[0]}], "reverse of edge %v", e)
			}
		})
	}
	assert.Empty(t, GetElementFaces(Triangle, []int{0, 1, 2}))
}
