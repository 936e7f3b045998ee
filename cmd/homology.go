/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/midoruton/gmsh/InputParameters"
	"github.com/midoruton/gmsh/homology"
	"github.com/midoruton/gmsh/mesh"
	"github.com/midoruton/gmsh/utils"
)

type HomologyRun struct {
	MeshFile  string
	InputFile string
	Domain    []int
	Subdomain []int
	Output    string
	Cuts      bool
	NoReduce  bool
	Combine   bool
	Profile   bool
}

// HomologyCmd represents the homology command
var HomologyCmd = &cobra.Command{
	Use:   "homology",
	Short: "Compute homology generators and thick cuts of a Gmsh mesh",
	Long: `
Reads a Gmsh mesh (MSH 2.2 or 4.1 ASCII), builds the cell complex of the
domain physical groups relative to the subdomain physical groups, reduces it
and writes the generators as post-processing views.

gmsh homology -F coil.msh -d 1 -s 2 --cuts`,
	Run: func(cmd *cobra.Command, args []string) {
		hr := &HomologyRun{
			MeshFile:  viper.GetString("meshFile"),
			InputFile: viper.GetString("inputFile"),
			Domain:    viper.GetIntSlice("domain"),
			Subdomain: viper.GetIntSlice("subdomain"),
			Output:    viper.GetString("output"),
			Cuts:      viper.GetBool("cuts"),
			NoReduce:  viper.GetBool("noReduce"),
			Combine:   viper.GetBool("combine"),
			Profile:   viper.GetBool("profile"),
		}
		ip, err := processInput(hr)
		if err != nil {
			fmt.Printf("error: %s\n", err.Error())
			os.Exit(1)
		}
		if hr.Profile {
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
		}
		if err = RunHomology(ip, logrus.StandardLogger()); err != nil {
			logrus.WithError(err).Error("homology failed")
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(HomologyCmd)
	HomologyCmd.Flags().StringP("meshFile", "F", "", "Mesh file to read in Gmsh (.msh) format")
	HomologyCmd.Flags().StringP("inputFile", "I", "", "YAML file for input parameters like:\n\t- Domain, Subdomain (physical groups)\n\t- ThickCuts")
	HomologyCmd.Flags().IntSliceP("domain", "d", nil, "physical groups of the domain, default is all but the subdomain")
	HomologyCmd.Flags().IntSliceP("subdomain", "s", nil, "physical groups of the subdomain")
	HomologyCmd.Flags().StringP("output", "o", "", "output file, default is <meshFile>_homology.msh")
	HomologyCmd.Flags().Bool("cuts", false, "also compute thick cuts, needs a subdomain")
	HomologyCmd.Flags().Bool("noReduce", false, "compute on the unreduced complex")
	HomologyCmd.Flags().Bool("combine", true, "merge cells across faces with two cofaces")
	HomologyCmd.Flags().Bool("profile", false, "write a CPU profile to the current directory")
	for _, name := range []string{"meshFile", "inputFile", "domain", "subdomain", "output",
		"cuts", "noReduce", "combine", "profile"} {
		_ = viper.BindPFlag(name, HomologyCmd.Flags().Lookup(name))
	}
}

// processInput merges the input file with the command line, the command line
// wins where it sets something
func processInput(hr *HomologyRun) (ip *InputParameters.HomologyParameters, err error) {
	ip = &InputParameters.HomologyParameters{}
	if len(hr.InputFile) != 0 {
		var data []byte
		if data, err = os.ReadFile(hr.InputFile); err != nil {
			return nil, err
		}
		if err = ip.Parse(data); err != nil {
			return nil, fmt.Errorf("%s: %w", hr.InputFile, err)
		}
	}
	if len(hr.MeshFile) != 0 {
		ip.MeshFile = hr.MeshFile
	}
	if len(ip.MeshFile) == 0 {
		exampleFile := `
########################################
Title: "Coil"
MeshFile: coil.msh
Domain: [1]
Subdomain: [2]
ThickCuts: true
########################################
`
		fmt.Printf("Example File:%s\n", exampleFile)
		return nil, fmt.Errorf("must supply a mesh file (-F, --meshFile) or an input file (-I, --inputFile) naming one")
	}
	if len(hr.Domain) != 0 {
		ip.Domain = hr.Domain
	}
	if len(hr.Subdomain) != 0 {
		ip.Subdomain = hr.Subdomain
	}
	if len(hr.Output) != 0 {
		ip.Output = hr.Output
	}
	if len(ip.Output) == 0 {
		ip.Output = strings.TrimSuffix(ip.MeshFile, filepath.Ext(ip.MeshFile)) + "_homology.msh"
	}
	if hr.Cuts {
		ip.ThickCuts = true
	}
	if hr.NoReduce {
		f := false
		ip.Reduce = &f
	}
	if !hr.Combine {
		f := false
		ip.Combine = &f
	}
	return ip, nil
}

// RunHomology reads the mesh and writes the generators, and the thick cuts
// when asked for, to ip.Output. Cuts go to a second file with a "_cuts"
// suffix.
func RunHomology(ip *InputParameters.HomologyParameters, log logrus.FieldLogger) (err error) {
	if len(ip.Title) != 0 {
		log = log.WithField("title", ip.Title)
	}
	defer func() {
		log.WithField("memory", utils.GetMemUsage().String()).Debug("run finished")
	}()
	m, err := mesh.ReadMeshFile(ip.MeshFile)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"file":     ip.MeshFile,
		"vertices": m.NumVertices,
		"elements": m.NumElements,
	}).Info("mesh read")

	opts := homology.DefaultOptions()
	opts.Reduce = ip.GetReduce()
	opts.Combine = ip.GetCombine()
	opts.MaxReductions = ip.MaxReductions
	opts.Dimensions = ip.Dimensions
	opts.Logger = log

	h, err := homology.NewHomology(m, ip.Domain, ip.Subdomain, opts)
	if err != nil {
		return err
	}
	if _, err = h.FindGenerators(ip.Output); err != nil {
		return err
	}
	if !ip.ThickCuts {
		return nil
	}
	_, err = h.FindThickCuts(cutsFile(ip.Output))
	return err
}

func cutsFile(output string) string {
	ext := filepath.Ext(output)
	return strings.TrimSuffix(output, ext) + "_cuts" + ext
}
