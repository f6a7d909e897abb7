package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/c360studio/vendoriq/catalog"
	"github.com/c360studio/vendoriq/rfp"
)

var (
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	optionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	noteStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
)

func rfpCmd(logLevel *string) *cobra.Command {
	var (
		category     string
		organisation string
		vendors      []string
		deadline     string
		outputDir    string
	)

	cmd := &cobra.Command{
		Use:   "rfp",
		Short: "Generate an RFP document without running the wizard",
		Long: `Generates a Request for Proposal document for a vendor category.

Curated templates cover the standard healthcare categories; anything else
falls back to LLM generation and the document is marked AI-generated.
Flags left unset are prompted for interactively.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRFP(*logLevel, category, organisation, vendors, deadline, outputDir)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Software category (e.g. \"EHR / Electronic Health Records\")")
	cmd.Flags().StringVar(&organisation, "organisation", "", "Issuing organisation name")
	cmd.Flags().StringSliceVar(&vendors, "vendors", nil, "Shortlisted vendor names")
	cmd.Flags().StringVar(&deadline, "deadline", string(rfp.DefaultDeadline), "Response deadline (1-2 weeks, 2-4 weeks, 4-6 weeks)")
	cmd.Flags().StringVar(&outputDir, "output", "", "Output directory (overrides config)")
	return cmd
}

func runRFP(logLevel, category, organisation string, vendors []string, deadline, outputDir string) error {
	logger := setupLogging(logLevel)

	cfg, err := loadConfig(logger)
	if err != nil {
		return err
	}
	if outputDir != "" {
		cfg.RFP.OutputDir = outputDir
	}

	reader := bufio.NewReader(os.Stdin)
	if category == "" {
		category, err = promptCategory(reader)
		if err != nil {
			return err
		}
	}
	if organisation == "" {
		organisation, err = promptLine(reader, "Issuing organisation")
		if err != nil {
			return err
		}
	}
	if len(vendors) == 0 {
		line, err := promptLine(reader, "Shortlisted vendors (comma-separated, optional)")
		if err != nil {
			return err
		}
		for _, v := range strings.Split(line, ",") {
			if v = strings.TrimSpace(v); v != "" {
				vendors = append(vendors, v)
			}
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.LLM.Timeout)
	defer cancel()

	generator, err := newGenerator(ctx, cfg)
	if err != nil {
		return err
	}

	result, err := generator.Generate(ctx, rfp.Request{
		Category:     category,
		Organisation: organisation,
		TopVendors:   vendors,
		Deadline:     rfp.Deadline(deadline),
	})
	if err != nil {
		return err
	}

	fmt.Println(successStyle.Render("RFP generated: ") + result.Path)
	if result.Source == rfp.SourceGenerated {
		fmt.Println(noteStyle.Render("Template was AI-generated; review before distribution."))
	}
	return nil
}

// promptCategory shows the known catalog categories as a numbered list and
// accepts either a number or a free-form category name.
func promptCategory(reader *bufio.Reader) (string, error) {
	categories := knownCategories()
	fmt.Println(promptStyle.Render("Software category"))
	for i, c := range categories {
		fmt.Println(optionStyle.Render(fmt.Sprintf("  %d. %s", i+1, c)))
	}

	line, err := promptLine(reader, "Choose a number or type a category")
	if err != nil {
		return "", err
	}
	if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(categories) {
		return categories[n-1], nil
	}
	if line == "" {
		return "", fmt.Errorf("category is required")
	}
	return line, nil
}

func promptLine(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(promptStyle.Render(label + ": "))
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func knownCategories() []string {
	if src, err := catalog.NewStatic(); err == nil {
		return src.Categories()
	}
	return nil
}
