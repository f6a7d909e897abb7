// Package ranking implements the human-override controller over a session's
// scored vendors: stable descending order, a top-N candidate split, promote
// and include/exclude operations, free-text notes, and finalization into an
// immutable report.
package ranking

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/c360studio/vendoriq/scoring"
)

// TopN is the size of the final-candidate split. Vendors beyond the first
// TopN are promotable but not included until promoted.
const TopN = 7

// Sentinel errors for ranking operations.
var (
	ErrVendorNotFound = errors.New("vendor not in ranking")
	ErrNothingKept    = errors.New("no vendors marked for inclusion")
)

// Entry is one vendor in the working ranking with its override state.
type Entry struct {
	scoring.ScoredVendor
	Keep bool `json:"keep"`
}

// Ranking is the mutable working state of the Rank stage. Operations mutate
// in place under the session's single-owner discipline.
type Ranking struct {
	entries []Entry
}

// New builds a ranking from scored vendors, stable-sorted descending by
// total. Ties keep their scoring order. Every entry starts kept.
func New(scored []scoring.ScoredVendor) *Ranking {
	entries := make([]Entry, len(scored))
	for i, v := range scored {
		entries[i] = Entry{ScoredVendor: v, Keep: true}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Total > entries[j].Total
	})
	return &Ranking{entries: entries}
}

// Entries returns a copy of the full working order.
func (r *Ranking) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Candidates returns the top-TopN view that feeds the final report.
func (r *Ranking) Candidates() []Entry {
	n := min(TopN, len(r.entries))
	out := make([]Entry, n)
	copy(out, r.entries[:n])
	return out
}

// Promotable returns the entries outside the top-TopN split.
func (r *Ranking) Promotable() []Entry {
	if len(r.entries) <= TopN {
		return nil
	}
	out := make([]Entry, len(r.entries)-TopN)
	copy(out, r.entries[TopN:])
	return out
}

// Promote moves the named vendor to rank 1, preserving the relative order
// of everyone else. The list is deliberately not re-sorted afterwards: a
// promotion is a standing human override and may hold a lower-scoring
// vendor above higher-scoring ones for the rest of the session.
func (r *Ranking) Promote(vendorName string) error {
	i := r.find(vendorName)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrVendorNotFound, vendorName)
	}
	promoted := r.entries[i]
	r.entries = append(r.entries[:i], r.entries[i+1:]...)
	r.entries = append([]Entry{promoted}, r.entries...)
	return nil
}

// SetKeep toggles whether the named vendor flows into the final report.
func (r *Ranking) SetKeep(vendorName string, keep bool) error {
	i := r.find(vendorName)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrVendorNotFound, vendorName)
	}
	r.entries[i].Keep = keep
	return nil
}

// Annotate attaches an optional free-text note carried into the final report.
func (r *Ranking) Annotate(vendorName, note string) error {
	i := r.find(vendorName)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrVendorNotFound, vendorName)
	}
	r.entries[i].Note = note
	return nil
}

func (r *Ranking) find(vendorName string) int {
	for i, e := range r.entries {
		if e.Name == vendorName {
			return i
		}
	}
	return -1
}

// Report is the immutable, human-confirmed shortlist with summary figures.
type Report struct {
	Vendors   []scoring.ScoredVendor `json:"vendors"`
	Generated time.Time              `json:"generated"`
}

// Finalize snapshots the kept candidates, in their current order and with
// their notes, into a Report. It fails when nothing is kept; the working
// ranking is left untouched either way so the user can adjust and retry.
func (r *Ranking) Finalize(now time.Time) (*Report, error) {
	var kept []scoring.ScoredVendor
	for _, e := range r.Candidates() {
		if e.Keep {
			kept = append(kept, e.ScoredVendor)
		}
	}
	if len(kept) == 0 {
		return nil, ErrNothingKept
	}
	return &Report{Vendors: kept, Generated: now}, nil
}

// TopScore returns the first vendor's total, or 0 for an empty report.
func (rep *Report) TopScore() float64 {
	if len(rep.Vendors) == 0 {
		return 0
	}
	return rep.Vendors[0].Total
}

// AverageScore returns the mean total rounded to one decimal.
func (rep *Report) AverageScore() float64 {
	if len(rep.Vendors) == 0 {
		return 0
	}
	var sum float64
	for _, v := range rep.Vendors {
		sum += v.Total
	}
	avg := sum / float64(len(rep.Vendors))
	return math.Round(avg*10) / 10
}
