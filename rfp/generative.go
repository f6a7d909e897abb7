package rfp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/c360studio/vendoriq/criteria"
	"github.com/c360studio/vendoriq/llm"
)

// ErrGeneration is returned when the LLM could not produce a usable template.
var ErrGeneration = errors.New("template generation failed")

// Completer is the LLM surface Generative needs. Satisfied by *llm.Client;
// tests substitute a deterministic stub.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (*llm.Response, error)
}

// Generative drafts RFP templates via the LLM for categories that have no
// curated template.
type Generative struct {
	client Completer
	logger *slog.Logger
}

// NewGenerative creates a generative template source.
func NewGenerative(client Completer, logger *slog.Logger) *Generative {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generative{client: client, logger: logger}
}

// GenerateTemplate asks the model for a complete template structure. The
// response must contain a JSON object matching the Template shape; fenced
// output, stray comments and trailing commas are tolerated, anything worse
// is a generation error.
func (g *Generative) GenerateTemplate(ctx context.Context, category string, set *criteria.Set, restrictions []string) (*Template, error) {
	prompt := buildPrompt(category, set, restrictions)

	resp, err := g.client.Complete(ctx, llm.Request{
		Messages:  []llm.Message{{Role: "user", Content: prompt}},
		MaxTokens: 4096,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	raw := llm.ExtractJSON(resp.Content)
	if raw == "" {
		return nil, fmt.Errorf("%w: no JSON object in model output", ErrGeneration)
	}

	var tmpl Template
	if err := json.Unmarshal([]byte(raw), &tmpl); err != nil {
		return nil, fmt.Errorf("%w: parse model output: %v", ErrGeneration, err)
	}
	if tmpl.Category == "" {
		tmpl.Category = category
	}
	if err := tmpl.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	g.logger.Info("Generated template via LLM",
		"category", category,
		"sections", len(tmpl.Sections),
		"model", resp.Model)
	return &tmpl, nil
}

// buildPrompt renders the procurement-expert prompt. Section structure and
// question counts are fixed so output stays renderable.
func buildPrompt(category string, set *criteria.Set, restrictions []string) string {
	var criteriaList strings.Builder
	for _, c := range set.List() {
		fmt.Fprintf(&criteriaList, "- %s (weight: %d%%)\n", c.Name, c.Weight)
	}

	var restrictionList strings.Builder
	for _, r := range restrictions {
		fmt.Fprintf(&restrictionList, "- %s\n", r)
	}

	return fmt.Sprintf(`You are a healthcare procurement expert. Generate a comprehensive RFP template
for the vendor category: %q

Evaluation criteria being used:
%s
Hard restrictions / disqualifiers:
%s
Return ONLY a valid JSON object with this exact structure:
{
  "category": %q,
  "short_description": "One sentence describing what this RFP is for",
  "mandatory_requirements": [
    "List 4-6 absolute must-have compliance or regulatory requirements specific to this category"
  ],
  "sections": [
    {
      "number": "01",
      "title": "Section Title",
      "description": "Brief intro paragraph for this section",
      "questions": [
        "Question 1 for vendors to answer",
        "Question 2 for vendors to answer"
      ]
    }
  ]
}

Include these 7 sections in order:
1. Company Background & History (10 questions)
2. Technical Specifications & Integrations (12 questions specific to %s)
3. Compliance & Security (12 questions - include category-specific regulations)
4. Pricing & Licensing Model (12 questions)
5. Implementation Timeline & Support (12 questions)
6. References & Case Studies (6 questions)
7. SLA & Performance Guarantees (10 questions)

Make all questions highly specific to %q - not generic.
Return ONLY the JSON. No preamble, no explanation, no markdown backticks.`,
		category, criteriaList.String(), restrictionList.String(), category, category, category)
}
