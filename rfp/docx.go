package rfp

import (
	"fmt"

	"github.com/fumiama/go-docx"

	"github.com/c360studio/vendoriq/criteria"
)

// Palette shared with the report surfaces.
const (
	colorNavy = "1B2E45"
	colorTeal = "0E7490"
	colorGray = "6B7A87"
	colorRed  = "CC0000"
)

// documentContext is the runtime data merged into a template at render time.
type documentContext struct {
	Organisation string
	Category     string
	TopVendors   []string
	Criteria     *criteria.Set
	Restrictions []string
	Deadline     Deadline
	IssueDate    string
	RefNumber    string
	Source       Source
}

// renderDocument lays the template and context out as a Word document.
// Curated and generated templates render identically apart from the
// provenance note on the cover.
func renderDocument(tmpl *Template, ctx documentContext) *docx.Docx {
	doc := docx.New().WithDefaultTheme()

	renderCover(doc, tmpl, ctx)
	renderVendors(doc, ctx)
	renderMandatory(doc, tmpl)
	renderCriteria(doc, ctx)
	renderRestrictions(doc, ctx)
	renderSections(doc, tmpl)

	closing := doc.AddParagraph()
	closing.AddText(fmt.Sprintf("%s - Confidential & Proprietary - %s",
		ctx.Organisation, ctx.RefNumber)).Size("18").Color(colorGray)

	return doc
}

func renderCover(doc *docx.Docx, tmpl *Template, ctx documentContext) {
	title := doc.AddParagraph().Justification("center")
	title.AddText("REQUEST FOR PROPOSAL").Size("56").Color(colorNavy).Bold()

	category := doc.AddParagraph().Justification("center")
	category.AddText(ctx.Category).Size("40").Color(colorTeal)

	desc := doc.AddParagraph().Justification("center")
	desc.AddText(tmpl.ShortDescription).Size("22").Color(colorGray).Italic()

	doc.AddParagraph()

	issuer := doc.AddParagraph().Justification("center")
	issuer.AddText("Issued by: " + ctx.Organisation).Size("24")

	issued := doc.AddParagraph().Justification("center")
	issued.AddText("Issue Date: " + ctx.IssueDate).Size("24")

	deadline := doc.AddParagraph().Justification("center")
	deadline.AddText(fmt.Sprintf("Response Deadline: [Insert Date - %s from issue]",
		ctx.Deadline)).Size("24").Color(colorRed).Bold()

	ref := doc.AddParagraph().Justification("center")
	ref.AddText("RFP Reference: " + ctx.RefNumber).Size("24")

	if ctx.Source == SourceGenerated {
		note := doc.AddParagraph().Justification("center")
		note.AddText("AI-Generated Template").Size("18").Color(colorTeal)
	}

	doc.AddParagraph()
}

func renderVendors(doc *docx.Docx, ctx documentContext) {
	if len(ctx.TopVendors) == 0 {
		return
	}
	heading(doc, "Invited Vendors")
	intro := doc.AddParagraph()
	intro.AddText("This request for proposal is issued to the following shortlisted vendors:").Size("22")
	for _, name := range ctx.TopVendors {
		bullet(doc, name)
	}
}

func renderMandatory(doc *docx.Docx, tmpl *Template) {
	heading(doc, "Mandatory Requirements")
	intro := doc.AddParagraph()
	intro.AddText("Proposals that do not satisfy every requirement below will be disqualified:").Size("22")
	for _, req := range tmpl.MandatoryRequirements {
		bullet(doc, req)
	}
}

func renderCriteria(doc *docx.Docx, ctx documentContext) {
	heading(doc, "Evaluation Criteria")
	intro := doc.AddParagraph()
	intro.AddText("Responses are scored against the following weighted criteria:").Size("22")
	for _, c := range ctx.Criteria.List() {
		line := doc.AddParagraph()
		line.AddText(fmt.Sprintf("%s (%d%%)", c.Name, c.Weight)).Size("20").Color(colorNavy).Bold()
		if c.Description != "" {
			line.AddText("  " + c.Description).Size("20").Color(colorGray)
		}
	}
}

func renderRestrictions(doc *docx.Docx, ctx documentContext) {
	if len(ctx.Restrictions) == 0 {
		return
	}
	heading(doc, "Restrictions & Disqualifiers")
	for _, r := range ctx.Restrictions {
		bullet(doc, r)
	}
}

func renderSections(doc *docx.Docx, tmpl *Template) {
	for _, sec := range tmpl.Sections {
		heading(doc, fmt.Sprintf("%s  %s", sec.Number, sec.Title))
		if sec.Description != "" {
			desc := doc.AddParagraph()
			desc.AddText(sec.Description).Size("22").Color(colorGray).Italic()
		}
		for i, q := range sec.Questions {
			question := doc.AddParagraph()
			question.AddText(fmt.Sprintf("%d. %s", i+1, q)).Size("22")
		}
	}
}

func heading(doc *docx.Docx, text string) {
	doc.AddParagraph()
	h := doc.AddParagraph()
	h.AddText(text).Size("28").Color(colorNavy).Bold()
}

func bullet(doc *docx.Docx, text string) {
	p := doc.AddParagraph()
	p.AddText("• " + text).Size("22")
}
