// Package rfp generates category-aware Request for Proposal documents.
//
// Template resolution is two-tiered: a curated JSON template per vendor
// category when one exists, otherwise a structure drafted by the LLM. Both
// paths render through the same docx builder so output quality does not
// depend on provenance.
package rfp

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Source records where a template came from.
type Source string

const (
	// SourceTemplate marks a curated, pre-built template.
	SourceTemplate Source = "template"
	// SourceGenerated marks an LLM-drafted template.
	SourceGenerated Source = "ai_generated"
)

// Mandatory requirement count bounds for a valid template.
const (
	minMandatory = 4
	maxMandatory = 6
)

// ErrInvalidTemplate is returned when a template fails shape validation.
var ErrInvalidTemplate = errors.New("invalid rfp template")

// Section is one numbered block of vendor questions.
type Section struct {
	Number      string   `json:"number"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Questions   []string `json:"questions"`
}

// Template is the category-level RFP structure, before runtime context is
// merged in.
type Template struct {
	Category              string    `json:"category"`
	ShortDescription      string    `json:"short_description"`
	MandatoryRequirements []string  `json:"mandatory_requirements"`
	Sections              []Section `json:"sections"`
}

// Validate checks the template shape. Curated files and LLM output go
// through the same checks; a generated template that fails here is treated
// as a generation failure.
func (t *Template) Validate() error {
	var problems []string
	if strings.TrimSpace(t.ShortDescription) == "" {
		problems = append(problems, "short_description is empty")
	}
	if n := len(t.MandatoryRequirements); n < minMandatory || n > maxMandatory {
		problems = append(problems, fmt.Sprintf(
			"mandatory_requirements has %d entries, want %d-%d", n, minMandatory, maxMandatory))
	}
	if len(t.Sections) == 0 {
		problems = append(problems, "no sections")
	}
	for i, sec := range t.Sections {
		if strings.TrimSpace(sec.Title) == "" {
			problems = append(problems, fmt.Sprintf("section %d has no title", i+1))
		}
		if len(sec.Questions) == 0 {
			problems = append(problems, fmt.Sprintf("section %q has no questions", sec.Title))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTemplate, strings.Join(problems, "; "))
	}
	return nil
}

// categoryKeys maps display category names to template file keys.
var categoryKeys = map[string]string{
	"EHR / Electronic Health Records":      "ehr",
	"Medical Billing & Revenue Cycle":      "medical_billing",
	"Telemedicine / Virtual Care Platform": "telemedicine",
	"Healthcare Analytics & AI":            "healthcare_analytics",
	"Medical Device Software":              "medical_device_software",
}

// CategoryKey returns the template file key for a display category name.
func CategoryKey(category string) (string, bool) {
	key, ok := categoryKeys[category]
	return key, ok
}

// RefNumber derives the document reference, e.g. RFP-EHR-2026-001. The
// prefix is the category key uppercased with underscores removed, capped at
// six characters; unknown categories use GEN.
func RefNumber(category string, now time.Time) string {
	key, ok := categoryKeys[category]
	if !ok {
		key = "GEN"
	}
	prefix := strings.ToUpper(strings.ReplaceAll(key, "_", ""))
	if len(prefix) > 6 {
		prefix = prefix[:6]
	}
	return fmt.Sprintf("RFP-%s-%s-001", prefix, now.Format("2006"))
}
