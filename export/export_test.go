package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/vendoriq/catalog"
	"github.com/c360studio/vendoriq/workflow"
)

type stubCatalog struct{}

func (stubCatalog) Lookup(category string) []catalog.Vendor {
	return []catalog.Vendor{
		{Name: "Acme Health", Description: "enterprise EHR"},
		{Name: "BetaCare", Description: "mid-market EHR"},
	}
}

func (stubCatalog) Categories() []string { return []string{"EHR Systems"} }

type stubRatings struct{}

func (stubRatings) RatingsFor(vendorName string, criteriaNames []string) map[string]int {
	if vendorName == "Acme Health" {
		out := make(map[string]int, len(criteriaNames))
		for _, name := range criteriaNames {
			out[name] = 8
		}
		return out
	}
	return catalog.DefaultProfile(criteriaNames)
}

// finalizedSession drives a session all the way to the Report stage.
func finalizedSession(t *testing.T) *workflow.Session {
	t.Helper()
	s := workflow.NewSession(
		workflow.WithCatalog(stubCatalog{}),
		workflow.WithRatings(stubRatings{}),
		workflow.WithDelays(0, 0),
		workflow.WithClock(func() time.Time {
			return time.Date(2026, 8, 30, 14, 0, 0, 0, time.UTC)
		}),
	)
	steps := []workflow.Action{
		{Type: workflow.ActionSetOrganisation, Text: "Riverside Clinic"},
		{Type: workflow.ActionSetCategory, Text: "EHR Systems"},
		{Type: workflow.ActionDiscover},
		{Type: workflow.ActionApprove},
		{Type: workflow.ActionScore, Selected: []string{"Acme Health", "BetaCare"}},
		{Type: workflow.ActionRank},
		{Type: workflow.ActionAnnotate, Name: "Acme Health", Text: "preferred incumbent"},
		{Type: workflow.ActionFinalize},
	}
	for _, a := range steps {
		require.NoError(t, s.Apply(a), "action %s", a.Type)
	}
	return s
}

func TestBuild(t *testing.T) {
	s := finalizedSession(t)

	doc, err := Build(s)
	require.NoError(t, err)

	assert.Equal(t, DefaultTitle, doc.Title)
	assert.Equal(t, "Riverside Clinic", doc.Organisation)
	assert.Equal(t, "EHR Systems", doc.Category)
	assert.Equal(t, "August 30, 2026", doc.Generated)

	require.Len(t, doc.TopVendors, 2)
	assert.Equal(t, 1, doc.TopVendors[0].Rank)
	assert.Equal(t, "Acme Health", doc.TopVendors[0].Name)
	assert.Equal(t, "preferred incumbent", doc.TopVendors[0].Note)
	assert.Equal(t, 2, doc.TopVendors[1].Rank)
	assert.Equal(t, "BetaCare", doc.TopVendors[1].Name)

	// Default criteria carry through as name -> weight
	assert.Equal(t, 25, doc.Criteria["HIPAA Compliance"])
	assert.Equal(t, 100, sumWeights(doc.Criteria))
	assert.NotEmpty(t, doc.Restrictions)
}

func sumWeights(weights map[string]int) int {
	var total int
	for _, w := range weights {
		total += w
	}
	return total
}

func TestBuild_RequiresFinalizedReport(t *testing.T) {
	s := workflow.NewSession(
		workflow.WithCatalog(stubCatalog{}),
		workflow.WithRatings(stubRatings{}),
		workflow.WithDelays(0, 0),
	)
	_, err := Build(s)
	assert.ErrorIs(t, err, ErrNoReport)
}

func TestDocument_RoundTrip(t *testing.T) {
	s := finalizedSession(t)
	doc, err := Build(s)
	require.NoError(t, err)

	data, err := doc.Marshal()
	require.NoError(t, err)

	parsed, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, doc, parsed)
}

func TestParse_InvalidJSON(t *testing.T) {
	_, err := Parse([]byte("not json"))
	assert.Error(t, err)
}

func TestFilename(t *testing.T) {
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "vendor_report_20260830.json", Filename(now))
}

func TestWriteFile(t *testing.T) {
	s := finalizedSession(t)
	doc, err := Build(s)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, doc.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	parsed, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, doc.Organisation, parsed.Organisation)
}
