package rfp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/c360studio/vendoriq/criteria"
)

// ErrNoTemplate is returned when no curated template exists and no
// generative fallback is configured.
var ErrNoTemplate = errors.New("no template available for category")

// Deadline is the response-deadline label printed on the cover page.
type Deadline string

// Deadline labels offered to the user.
const (
	Deadline1to2 Deadline = "1-2 weeks"
	Deadline2to4 Deadline = "2-4 weeks"
	Deadline4to6 Deadline = "4-6 weeks"
)

// DefaultDeadline is used when a request leaves the deadline unset.
const DefaultDeadline = Deadline2to4

// IsValid reports whether d is one of the offered labels.
func (d Deadline) IsValid() bool {
	switch d {
	case Deadline1to2, Deadline2to4, Deadline4to6:
		return true
	}
	return false
}

// TemplateSource resolves the template for a category, reporting where it
// came from.
type TemplateSource interface {
	// Has reports whether a curated template exists for the category.
	Has(category string) bool

	// FetchOrGenerate returns the template for the category, drafting one
	// when no curated template exists.
	FetchOrGenerate(ctx context.Context, category string, set *criteria.Set, restrictions []string) (*Template, Source, error)
}

// CombinedSource resolves templates from the file store first and falls
// back to LLM generation.
type CombinedSource struct {
	Store    *FileStore
	Fallback *Generative
	Logger   *slog.Logger
}

// Has reports whether the file store holds a curated template.
func (c *CombinedSource) Has(category string) bool {
	return c.Store != nil && c.Store.Has(category)
}

// FetchOrGenerate prefers the curated template and only calls the LLM when
// the store has none.
func (c *CombinedSource) FetchOrGenerate(ctx context.Context, category string, set *criteria.Set, restrictions []string) (*Template, Source, error) {
	if c.Store != nil {
		if tmpl, ok := c.Store.Get(category); ok {
			return tmpl, SourceTemplate, nil
		}
	}
	if c.Fallback == nil {
		return nil, "", fmt.Errorf("%w: %s", ErrNoTemplate, category)
	}
	if c.Logger != nil {
		c.Logger.Info("No curated template, generating via LLM", "category", category)
	}
	tmpl, err := c.Fallback.GenerateTemplate(ctx, category, set, restrictions)
	if err != nil {
		return nil, "", err
	}
	return tmpl, SourceGenerated, nil
}

// Request carries everything needed to produce one RFP document.
type Request struct {
	Category     string
	Organisation string
	TopVendors   []string
	Criteria     *criteria.Set
	Restrictions []string
	Deadline     Deadline
}

// Result reports where the document landed and its template provenance.
type Result struct {
	Path   string
	Source Source
}

// Generator produces RFP .docx documents.
type Generator struct {
	source    TemplateSource
	outputDir string
	clock     func() time.Time
	logger    *slog.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithGeneratorClock sets the time source for dates and filenames.
func WithGeneratorClock(clock func() time.Time) GeneratorOption {
	return func(g *Generator) { g.clock = clock }
}

// WithGeneratorLogger sets the structured logger.
func WithGeneratorLogger(logger *slog.Logger) GeneratorOption {
	return func(g *Generator) { g.logger = logger }
}

// NewGenerator creates a generator writing documents into outputDir.
func NewGenerator(source TemplateSource, outputDir string, opts ...GeneratorOption) *Generator {
	g := &Generator{
		source:    source,
		outputDir: outputDir,
		clock:     time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Generate resolves the template, merges the runtime context, and renders
// the document. The file is written to a temporary name and renamed into
// place so a failed render never leaves partial output.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	if req.Category == "" {
		return nil, fmt.Errorf("category is required")
	}
	if req.Organisation == "" {
		return nil, fmt.Errorf("organisation is required")
	}
	if req.Criteria == nil {
		req.Criteria = criteria.DefaultSet()
	}
	if req.Deadline == "" {
		req.Deadline = DefaultDeadline
	}
	if !req.Deadline.IsValid() {
		return nil, fmt.Errorf("invalid deadline label: %q", req.Deadline)
	}

	tmpl, source, err := g.source.FetchOrGenerate(ctx, req.Category, req.Criteria, req.Restrictions)
	if err != nil {
		return nil, err
	}

	now := g.clock()
	docCtx := documentContext{
		Organisation: req.Organisation,
		Category:     req.Category,
		TopVendors:   req.TopVendors,
		Criteria:     req.Criteria,
		Restrictions: req.Restrictions,
		Deadline:     req.Deadline,
		IssueDate:    now.Format("January 02, 2006"),
		RefNumber:    RefNumber(req.Category, now),
		Source:       source,
	}

	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	safeName := unsafeNameChars.ReplaceAllString(req.Category, "_")
	filename := fmt.Sprintf("RFP_%s_%s.docx", safeName, now.Format("20060102_150405"))
	outPath := filepath.Join(g.outputDir, filename)

	if err := g.writeAtomic(tmpl, docCtx, outPath); err != nil {
		return nil, err
	}

	g.logger.Info("RFP document generated",
		"path", outPath,
		"category", req.Category,
		"source", string(source))
	return &Result{Path: outPath, Source: source}, nil
}

func (g *Generator) writeAtomic(tmpl *Template, docCtx documentContext, outPath string) error {
	doc := renderDocument(tmpl, docCtx)

	tmp, err := os.CreateTemp(g.outputDir, ".rfp-*.docx")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := doc.WriteTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("render document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp output: %w", err)
	}
	if err := os.Rename(tmpName, outPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("finalize output: %w", err)
	}
	return nil
}
