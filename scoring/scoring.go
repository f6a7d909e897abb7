// Package scoring computes normalized weighted vendor scores.
//
// The contribution of each criterion is (rating/10) * weight. The total is
// the sum of raw contributions rounded to one decimal; each displayed
// contribution is rounded to two decimals independently. The two roundings
// can disagree by up to 0.1 in displayed figures; that mismatch is
// documented behavior and must not be reconciled.
package scoring

import (
	"math"

	"github.com/c360studio/vendoriq/catalog"
	"github.com/c360studio/vendoriq/criteria"
)

// CriterionScore is the per-criterion breakdown entry for one vendor.
type CriterionScore struct {
	Raw      int     `json:"raw"`
	Weight   int     `json:"weight"`
	Weighted float64 `json:"weighted"`
}

// ScoredVendor is a vendor with its computed weighted total and breakdown.
type ScoredVendor struct {
	Name      string                    `json:"name"`
	Total     float64                   `json:"total"`
	Breakdown map[string]CriterionScore `json:"breakdown"`
	Note      string                    `json:"note,omitempty"`
}

// Score evaluates one vendor against the criteria set. Missing ratings fall
// back to the neutral default; the function is total over its input domain
// and deterministic.
func Score(vendorName string, ratings map[string]int, set *criteria.Set) ScoredVendor {
	breakdown := make(map[string]CriterionScore, set.Len())
	var total float64

	for _, crit := range set.List() {
		raw, ok := ratings[crit.Name]
		if !ok {
			raw = catalog.DefaultRating
		}
		weighted := float64(raw) / 10 * float64(crit.Weight)
		total += weighted
		breakdown[crit.Name] = CriterionScore{
			Raw:      raw,
			Weight:   crit.Weight,
			Weighted: round2(weighted),
		}
	}

	return ScoredVendor{
		Name:      vendorName,
		Total:     round1(total),
		Breakdown: breakdown,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
