// Package pillars holds the fixed catalog of mandatory SOW compliance pillars.
//
// The catalog is loaded once from an embedded YAML file at init time and is
// immutable afterwards. Every audit is validated against exactly this set; a
// result naming any other pillar, or missing any of these, is rejected.
package pillars

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed pillars.yaml
var catalogYAML []byte

// Pillar is one mandatory compliance pillar.
type Pillar struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

var (
	catalog []Pillar
	byName  map[string]Pillar
)

func init() {
	var doc struct {
		Pillars []Pillar `yaml:"pillars"`
	}
	if err := yaml.Unmarshal(catalogYAML, &doc); err != nil {
		panic(fmt.Sprintf("pillars: embedded catalog invalid: %v", err))
	}
	if len(doc.Pillars) != 9 {
		panic(fmt.Sprintf("pillars: embedded catalog has %d entries, want 9", len(doc.Pillars)))
	}
	catalog = doc.Pillars
	byName = make(map[string]Pillar, len(catalog))
	for _, p := range catalog {
		byName[p.Name] = p
	}
}

// All returns the catalog in display order. Callers must not modify the slice.
func All() []Pillar {
	out := make([]Pillar, len(catalog))
	copy(out, catalog)
	return out
}

// Names returns the mandatory pillar names in display order.
func Names() []string {
	out := make([]string, len(catalog))
	for i, p := range catalog {
		out[i] = p.Name
	}
	return out
}

// Count is the number of mandatory pillars.
func Count() int {
	return len(catalog)
}

// IsMandatory reports whether name is one of the mandatory pillars.
// Matching is exact, case-sensitive.
func IsMandatory(name string) bool {
	_, ok := byName[name]
	return ok
}

// Describe returns the catalog description for name, or "" when unknown.
func Describe(name string) string {
	return byName[name].Description
}
