// Package criteria holds the weighted evaluation criteria a session scores
// vendors against, plus the advisory restriction list shown to reviewers.
package criteria

import (
	"errors"
	"fmt"
)

// Weight bounds for a single criterion. The UI slider moves in steps of 5;
// the store only enforces the range.
const (
	MinWeight = 0
	MaxWeight = 50
)

// RequiredTotal is the weight sum required before scoring may begin.
const RequiredTotal = 100

// Sentinel errors for criteria operations.
var (
	ErrUnknownCriterion = errors.New("unknown criterion")
	ErrWeightOutOfRange = fmt.Errorf("weight must be between %d and %d", MinWeight, MaxWeight)
)

// Criterion is one named, weighted evaluation dimension.
type Criterion struct {
	Name        string `json:"name" yaml:"name"`
	Weight      int    `json:"weight" yaml:"weight"`
	Description string `json:"description" yaml:"description"`
}

// Set is an ordered collection of criteria. Order is the seed order and is
// preserved through exports and scoring breakdowns.
type Set struct {
	items []Criterion
	index map[string]int
}

// NewSet builds a Set from the given criteria, preserving order.
// Later duplicates of a name replace earlier ones.
func NewSet(items []Criterion) *Set {
	s := &Set{index: make(map[string]int, len(items))}
	for _, c := range items {
		if i, ok := s.index[c.Name]; ok {
			s.items[i] = c
			continue
		}
		s.index[c.Name] = len(s.items)
		s.items = append(s.items, c)
	}
	return s
}

// DefaultSet returns the seed criteria for a fresh session.
func DefaultSet() *Set {
	return NewSet([]Criterion{
		{Name: "HIPAA Compliance", Weight: 25, Description: "Full HIPAA/HITECH compliance, BAA availability"},
		{Name: "Data Security", Weight: 20, Description: "Encryption, access controls, SOC2/ISO 27001"},
		{Name: "EHR Integration", Weight: 15, Description: "Epic, Cerner, Allscripts, HL7 FHIR"},
		{Name: "Pricing & TCO", Weight: 15, Description: "Transparent pricing, ROI potential"},
		{Name: "Customer Support", Weight: 10, Description: "24/7 healthcare-specific SLA"},
		{Name: "Scalability", Weight: 10, Description: "Growth & enterprise readiness"},
		{Name: "Implementation Time", Weight: 5, Description: "Time to go-live & onboarding"},
	})
}

// DefaultRestrictions returns the seed restriction list. Restrictions are
// advisory: they are displayed to the reviewer and carried into documents,
// never mechanically enforced against vendor data.
func DefaultRestrictions() []string {
	return []string{
		"Must be HIPAA compliant with signed BAA",
		"Must have 3+ years healthcare experience",
		"Must support HL7 FHIR standards",
		"No vendors under active FDA warning letters",
	}
}

// SetWeight updates the weight of a named criterion. The total may
// transiently differ from RequiredTotal; IsValid gates scoring.
func (s *Set) SetWeight(name string, weight int) error {
	if weight < MinWeight || weight > MaxWeight {
		return fmt.Errorf("%w: got %d", ErrWeightOutOfRange, weight)
	}
	i, ok := s.index[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCriterion, name)
	}
	s.items[i].Weight = weight
	return nil
}

// TotalWeight returns the sum of all weights. Pure, no side effects.
func (s *Set) TotalWeight() int {
	total := 0
	for _, c := range s.items {
		total += c.Weight
	}
	return total
}

// IsValid reports whether the weights sum to exactly RequiredTotal.
func (s *Set) IsValid() bool {
	return s.TotalWeight() == RequiredTotal
}

// Len returns the number of criteria in the set.
func (s *Set) Len() int {
	return len(s.items)
}

// Get returns the named criterion.
func (s *Set) Get(name string) (Criterion, bool) {
	i, ok := s.index[name]
	if !ok {
		return Criterion{}, false
	}
	return s.items[i], true
}

// List returns the criteria in seed order. The returned slice is a copy.
func (s *Set) List() []Criterion {
	out := make([]Criterion, len(s.items))
	copy(out, s.items)
	return out
}

// Names returns the criterion names in seed order.
func (s *Set) Names() []string {
	names := make([]string, len(s.items))
	for i, c := range s.items {
		names[i] = c.Name
	}
	return names
}

// Clone returns an independent copy of the set.
func (s *Set) Clone() *Set {
	return NewSet(s.List())
}
