package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed data/ratings.yaml
var ratingData []byte

// DefaultRating is the neutral mid-scale rating substituted for any vendor
// or criterion absent from the rating source. Mid-scale rather than zero so
// an unrated vendor is not unfairly buried.
const DefaultRating = 5

// RatingSource supplies raw per-criterion ratings for a vendor.
// Implementations never fail: unrecognized vendors receive the default
// mid-scale profile.
type RatingSource interface {
	RatingsFor(vendorName string, criteriaNames []string) map[string]int
}

// StaticRatings is the embedded rating table.
type StaticRatings struct {
	vendors map[string]map[string]int
}

type ratingFile struct {
	Vendors map[string]map[string]int `yaml:"vendors"`
}

// NewStaticRatings loads the embedded rating dataset.
func NewStaticRatings() (*StaticRatings, error) {
	var f ratingFile
	if err := yaml.Unmarshal(ratingData, &f); err != nil {
		return nil, fmt.Errorf("parse embedded rating data: %w", err)
	}
	return &StaticRatings{vendors: f.Vendors}, nil
}

// MustStaticRatings loads the embedded ratings and panics on a corrupt build.
func MustStaticRatings() *StaticRatings {
	r, err := NewStaticRatings()
	if err != nil {
		panic(err)
	}
	return r
}

// RatingsFor returns the rating profile for a vendor. Unknown vendors get
// DefaultRating for every named criterion.
func (r *StaticRatings) RatingsFor(vendorName string, criteriaNames []string) map[string]int {
	if known, ok := r.vendors[vendorName]; ok {
		out := make(map[string]int, len(known))
		for crit, rating := range known {
			out[crit] = rating
		}
		return out
	}
	return DefaultProfile(criteriaNames)
}

// DefaultProfile builds the documented mid-scale profile for the given
// criterion names.
func DefaultProfile(criteriaNames []string) map[string]int {
	out := make(map[string]int, len(criteriaNames))
	for _, name := range criteriaNames {
		out[name] = DefaultRating
	}
	return out
}
