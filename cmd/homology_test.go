package cmd

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/midoruton/gmsh/mesh"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestProcessInput(t *testing.T) {
	fileInput := writeFile(t, "input.yaml", `
Title: Test Case
MeshFile: from_file.msh
Domain: [1]
Subdomain: [2]
Reduce: false
ThickCuts: false
`)
	ip, err := processInput(&HomologyRun{
		InputFile: fileInput,
		Subdomain: []int{5},
		Cuts:      true,
		Combine:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, "from_file.msh", ip.MeshFile)
	assert.Equal(t, []int{1}, ip.Domain)
	assert.Equal(t, []int{5}, ip.Subdomain)
	assert.Equal(t, "from_file_homology.msh", ip.Output)
	assert.True(t, ip.ThickCuts)
	assert.False(t, ip.GetReduce())
	assert.True(t, ip.GetCombine())

	ip, err = processInput(&HomologyRun{MeshFile: "a.msh", Output: "b.msh", NoReduce: true})
	require.NoError(t, err)
	assert.Equal(t, "b.msh", ip.Output)
	assert.False(t, ip.GetReduce())
	assert.False(t, ip.GetCombine())

	_, err = processInput(&HomologyRun{Combine: true})
	assert.Error(t, err)
	_, err = processInput(&HomologyRun{InputFile: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestCutsFile(t *testing.T) {
	assert.Equal(t, "out_cuts.msh", cutsFile("out.msh"))
	assert.Equal(t, "dir/out_cuts", cutsFile("dir/out"))
}

func TestRunHomologyTorus(t *testing.T) {
	meshFile := writeFile(t, "torus.msh", mesh.NewGmsh22TestBuilder().BuildTorusTest())
	ip, err := processInput(&HomologyRun{MeshFile: meshFile, Domain: []int{1}, Combine: true})
	require.NoError(t, err)
	require.NoError(t, RunHomology(ip, quietLogger()))

	views, err := mesh.ReadElementNodeData(ip.Output)
	require.NoError(t, err)
	names := make([]string, len(views))
	for i, v := range views {
		names[i] = v.Name
	}
	assert.Equal(t, []string{
		"0D Generator 1",
		"1D Generator 1",
		"1D Generator 2",
		"2D Generator 1",
	}, names)
}

func TestRunHomologyThickCuts(t *testing.T) {
	tm := mesh.GetStandardTestMeshes()
	content := mesh.NewGmsh22TestBuilder().BuildFromCompleteMesh(&tm.TetWithBoundary)
	meshFile := writeFile(t, "tet.msh", content)
	ip, err := processInput(&HomologyRun{MeshFile: meshFile, Subdomain: []int{2}, Cuts: true, Combine: true})
	require.NoError(t, err)
	require.NoError(t, RunHomology(ip, quietLogger()))

	views, err := mesh.ReadElementNodeData(ip.Output)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "3D Generator 1", views[0].Name)

	cuts, err := mesh.ReadElementNodeData(cutsFile(ip.Output))
	require.NoError(t, err)
	require.Len(t, cuts, 2)
	assert.Equal(t, "2D Thick cut 1", cuts[1].Name)

	// Thick cuts without a subdomain fail
	ip.Subdomain = nil
	assert.Error(t, RunHomology(ip, quietLogger()))
}
