package loader

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DocType describes what a class of banking document contains and how
// urgently its content should be treated downstream.
type DocType struct {
	Type     string   `yaml:"type"`
	Contains []string `yaml:"contains"`
	Priority string   `yaml:"priority"`
}

// Mapping maps a filename keyword to its document type. A file matches the
// first keyword found in its lowercased name.
type Mapping map[string]DocType

// DefaultMapping covers the standard banking document classes.
func DefaultMapping() Mapping {
	return Mapping{
		"loan_handbook": {
			Type:     "loan_products",
			Contains: []string{"rates", "terms", "amortization"},
			Priority: "high",
		},
		"regulatory_manual": {
			Type:     "compliance",
			Contains: []string{"regulations", "requirements", "procedures"},
			Priority: "critical",
		},
		"rate_sheet": {
			Type:     "current_rates",
			Contains: []string{"rates", "pricing", "fees"},
			Priority: "high",
		},
		"policy": {
			Type:     "internal_policy",
			Contains: []string{"procedures", "guidelines", "standards"},
			Priority: "medium",
		},
	}
}

// LoadMapping reads a doc-type mapping from a YAML file.
func LoadMapping(path string) (Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open mapping file: %w", err)
	}
	defer f.Close()

	m := Mapping{}
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("unable to parse mapping file: %w", err)
	}
	return m, nil
}

// Identify returns the document type for a filename. Keywords are checked
// in sorted order so a name matching two keywords resolves the same way
// every run. Unknown files get the general_banking fallback.
func (m Mapping) Identify(filename string) DocType {
	lower := strings.ToLower(filename)
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if strings.Contains(lower, key) {
			return m[key]
		}
	}
	return DocType{
		Type:     "general_banking",
		Contains: []string{"general"},
		Priority: "low",
	}
}
