// Package export builds the downloadable report document from a finalized
// session and round-trips it through JSON.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/c360studio/vendoriq/scoring"
	"github.com/c360studio/vendoriq/workflow"
)

// DefaultTitle is the fixed report title.
const DefaultTitle = "Vendor Selection Report"

// ErrNoReport is returned when exporting a session that has not finalized.
var ErrNoReport = errors.New("session has no finalized report")

// RankedVendor is one shortlist entry with its explicit rank position.
type RankedVendor struct {
	Rank int `json:"rank"`
	scoring.ScoredVendor
}

// Document is the exported report. Generated carries the human-readable
// report date ("January 02, 2006"), not a machine timestamp.
type Document struct {
	Title        string         `json:"title"`
	Organisation string         `json:"organisation"`
	Category     string         `json:"category"`
	Generated    string         `json:"generated"`
	TopVendors   []RankedVendor `json:"top_vendors"`
	Restrictions []string       `json:"restrictions"`
	Criteria     map[string]int `json:"criteria"`
}

// Build assembles the export document from a session at the Report stage.
func Build(s *workflow.Session) (*Document, error) {
	if s.Report == nil {
		return nil, ErrNoReport
	}

	vendors := make([]RankedVendor, len(s.Report.Vendors))
	for i, v := range s.Report.Vendors {
		vendors[i] = RankedVendor{Rank: i + 1, ScoredVendor: v}
	}

	weights := make(map[string]int, s.Criteria.Len())
	for _, c := range s.Criteria.List() {
		weights[c.Name] = c.Weight
	}

	return &Document{
		Title:        DefaultTitle,
		Organisation: s.Organisation,
		Category:     s.Category,
		Generated:    s.Report.Generated.Format("January 02, 2006"),
		TopVendors:   vendors,
		Restrictions: append([]string(nil), s.Restrictions...),
		Criteria:     weights,
	}, nil
}

// Marshal renders the document as indented JSON.
func (d *Document) Marshal() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Parse reads a document back from JSON.
func Parse(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse report document: %w", err)
	}
	return &d, nil
}

// Filename returns the dated report filename, e.g. vendor_report_20260830.json.
func Filename(now time.Time) string {
	return fmt.Sprintf("vendor_report_%s.json", now.Format("20060102"))
}

// WriteFile marshals the document and writes it to path.
func (d *Document) WriteFile(path string) error {
	data, err := d.Marshal()
	if err != nil {
		return fmt.Errorf("marshal report document: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report document: %w", err)
	}
	return nil
}
