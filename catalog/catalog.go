// Package catalog provides the vendor discovery and rating collaborators.
// Both are backed by a dataset embedded at build time; the workflow treats
// them as pluggable sources behind small interfaces.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed data/vendors.yaml
var vendorData []byte

// Vendor is one candidate returned by a category lookup.
type Vendor struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

// Source looks up candidate vendors for a category. An unknown category
// yields an empty list, never an error.
type Source interface {
	Lookup(category string) []Vendor
	Categories() []string
}

// Static is the embedded vendor catalog.
type Static struct {
	categories map[string][]Vendor
}

type vendorFile struct {
	Categories map[string][]Vendor `yaml:"categories"`
}

// NewStatic loads the embedded vendor dataset.
func NewStatic() (*Static, error) {
	var f vendorFile
	if err := yaml.Unmarshal(vendorData, &f); err != nil {
		return nil, fmt.Errorf("parse embedded vendor data: %w", err)
	}
	return &Static{categories: f.Categories}, nil
}

// MustStatic loads the embedded catalog and panics on a corrupt build.
func MustStatic() *Static {
	s, err := NewStatic()
	if err != nil {
		panic(err)
	}
	return s
}

// Lookup returns the candidates for a category. Unknown categories return
// an empty slice.
func (s *Static) Lookup(category string) []Vendor {
	vendors := s.categories[category]
	out := make([]Vendor, len(vendors))
	copy(out, vendors)
	return out
}

// Categories returns the known category names, sorted.
func (s *Static) Categories() []string {
	names := make([]string, 0, len(s.categories))
	for name := range s.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
