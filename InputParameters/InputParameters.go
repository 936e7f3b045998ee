package InputParameters

import (
	"fmt"
	"sort"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file
type HomologyParameters struct {
	Title         string `yaml:"Title"`
	MeshFile      string `yaml:"MeshFile"`
	Domain        []int  `yaml:"Domain"`    // Physical group tags, empty means everything but the subdomain
	Subdomain     []int  `yaml:"Subdomain"` // Physical group tags
	Output        string `yaml:"Output"`
	Reduce        *bool  `yaml:"Reduce"`
	Combine       *bool  `yaml:"Combine"`
	MaxReductions int    `yaml:"MaxReductions"`
	ThickCuts     bool   `yaml:"ThickCuts"`
	Dimensions    []int  `yaml:"Dimensions"` // Dimensions of the written chains, empty means all
}

func (ip *HomologyParameters) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, ip); err != nil {
		return err
	}
	for _, d := range ip.Dimensions {
		if d < 0 || d > 3 {
			return fmt.Errorf("dimension %d out of range [0,3]", d)
		}
	}
	return nil
}

// GetReduce defaults to true when the file does not set Reduce
func (ip *HomologyParameters) GetReduce() bool {
	return ip.Reduce == nil || *ip.Reduce
}

// GetCombine defaults to true when the file does not set Combine
func (ip *HomologyParameters) GetCombine() bool {
	return ip.Combine == nil || *ip.Combine
}

func (ip *HomologyParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%s]\t\t= Mesh File\n", ip.MeshFile)
	fmt.Printf("%v\t\t\t= Domain\n", sortedTags(ip.Domain))
	fmt.Printf("%v\t\t\t= Subdomain\n", sortedTags(ip.Subdomain))
	fmt.Printf("[%s]\t\t= Output\n", ip.Output)
	fmt.Printf("%v\t\t\t= Reduce\n", ip.GetReduce())
	fmt.Printf("%v\t\t\t= Combine\n", ip.GetCombine())
	fmt.Printf("%v\t\t\t= Thick Cuts\n", ip.ThickCuts)
	if len(ip.Dimensions) != 0 {
		fmt.Printf("%v\t\t\t= Dimensions\n", sortedTags(ip.Dimensions))
	}
}

func sortedTags(tags []int) []int {
	s := make([]int, len(tags))
	copy(s, tags)
	sort.Ints(s)
	return s
}
