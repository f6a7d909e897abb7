package rfp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/vendoriq/criteria"
)

// fixedSource always yields the same template with a fixed provenance.
type fixedSource struct {
	tmpl   *Template
	source Source
	err    error
}

func (f *fixedSource) Has(string) bool { return f.source == SourceTemplate }

func (f *fixedSource) FetchOrGenerate(context.Context, string, *criteria.Set, []string) (*Template, Source, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	return f.tmpl, f.source, nil
}

func testClock() func() time.Time {
	return func() time.Time { return time.Date(2026, 8, 30, 10, 15, 30, 0, time.UTC) }
}

func testRequest() Request {
	return Request{
		Category:     "EHR / Electronic Health Records",
		Organisation: "St. Mary's Hospital",
		TopVendors:   []string{"Epic Systems", "Oracle Health (Cerner)"},
		Criteria:     criteria.DefaultSet(),
		Restrictions: criteria.DefaultRestrictions(),
	}
}

func TestGenerate_WritesDocument(t *testing.T) {
	dir := t.TempDir()
	gen := NewGenerator(&fixedSource{tmpl: validTemplate(), source: SourceTemplate}, dir,
		WithGeneratorClock(testClock()))

	res, err := gen.Generate(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, SourceTemplate, res.Source)
	assert.Equal(t, filepath.Join(dir, "RFP_EHR___Electronic_Health_Records_20260830_101530.docx"), res.Path)

	info, err := os.Stat(res.Path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestGenerate_NoPartialOutput(t *testing.T) {
	dir := t.TempDir()
	gen := NewGenerator(&fixedSource{tmpl: validTemplate(), source: SourceTemplate}, dir,
		WithGeneratorClock(testClock()))

	_, err := gen.Generate(context.Background(), testRequest())
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.False(t, strings.HasPrefix(entries[0].Name(), ".rfp-"), "temp file left behind")
}

func TestGenerate_GeneratedProvenancePassesThrough(t *testing.T) {
	gen := NewGenerator(&fixedSource{tmpl: validTemplate(), source: SourceGenerated}, t.TempDir(),
		WithGeneratorClock(testClock()))

	res, err := gen.Generate(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, SourceGenerated, res.Source)
}

func TestGenerate_DefaultsDeadlineAndCriteria(t *testing.T) {
	gen := NewGenerator(&fixedSource{tmpl: validTemplate(), source: SourceTemplate}, t.TempDir(),
		WithGeneratorClock(testClock()))

	req := testRequest()
	req.Criteria = nil
	req.Deadline = ""
	_, err := gen.Generate(context.Background(), req)
	assert.NoError(t, err)
}

func TestGenerate_Validation(t *testing.T) {
	gen := NewGenerator(&fixedSource{tmpl: validTemplate(), source: SourceTemplate}, t.TempDir())

	t.Run("missing_category", func(t *testing.T) {
		req := testRequest()
		req.Category = ""
		_, err := gen.Generate(context.Background(), req)
		assert.Error(t, err)
	})

	t.Run("missing_organisation", func(t *testing.T) {
		req := testRequest()
		req.Organisation = ""
		_, err := gen.Generate(context.Background(), req)
		assert.Error(t, err)
	})

	t.Run("bad_deadline", func(t *testing.T) {
		req := testRequest()
		req.Deadline = Deadline("someday")
		_, err := gen.Generate(context.Background(), req)
		assert.Error(t, err)
	})
}

func TestGenerate_SourceErrorPropagates(t *testing.T) {
	gen := NewGenerator(&fixedSource{err: ErrNoTemplate}, t.TempDir())
	_, err := gen.Generate(context.Background(), testRequest())
	assert.ErrorIs(t, err, ErrNoTemplate)
}

func TestCombinedSource(t *testing.T) {
	store, err := NewFileStore("")
	require.NoError(t, err)

	t.Run("curated_template_preferred", func(t *testing.T) {
		src := &CombinedSource{Store: store, Fallback: NewGenerative(&stubCompleter{content: "unused"}, nil)}
		tmpl, source, err := src.FetchOrGenerate(context.Background(),
			"EHR / Electronic Health Records", criteria.DefaultSet(), nil)
		require.NoError(t, err)
		assert.Equal(t, SourceTemplate, source)
		assert.NotEmpty(t, tmpl.Sections)
	})

	t.Run("fallback_for_unknown_category", func(t *testing.T) {
		src := &CombinedSource{Store: store, Fallback: NewGenerative(&stubCompleter{content: templateJSON(t)}, nil)}
		_, source, err := src.FetchOrGenerate(context.Background(),
			"Lab Information Systems", criteria.DefaultSet(), nil)
		require.NoError(t, err)
		assert.Equal(t, SourceGenerated, source)
	})

	t.Run("no_fallback_configured", func(t *testing.T) {
		src := &CombinedSource{Store: store}
		_, _, err := src.FetchOrGenerate(context.Background(),
			"Lab Information Systems", criteria.DefaultSet(), nil)
		assert.ErrorIs(t, err, ErrNoTemplate)
	})
}

func TestDeadline_IsValid(t *testing.T) {
	assert.True(t, Deadline1to2.IsValid())
	assert.True(t, Deadline2to4.IsValid())
	assert.True(t, Deadline4to6.IsValid())
	assert.False(t, Deadline("next quarter").IsValid())
	assert.False(t, Deadline("").IsValid())
}
