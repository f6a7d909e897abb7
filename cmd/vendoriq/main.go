// Package main provides the vendoriq binary entry point.
// VendorIQ guides healthcare organisations through a six-stage vendor
// selection workflow and produces RFP documents for the shortlist.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	// Register LLM providers via init()
	_ "github.com/c360studio/vendoriq/llm/providers"

	"github.com/spf13/cobra"

	"github.com/c360studio/vendoriq/config"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "vendoriq"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Healthcare vendor selection assistant",
		Long: `VendorIQ is a guided workflow for selecting healthcare software vendors.

It provides:
- A six-stage wizard: Configure, Discover, Review, Score, Rank, Report
- Weighted multi-criteria scoring against a curated vendor catalog
- RFP document generation from curated templates with an LLM fallback

Configuration is layered: built-in defaults, then ~/.config/vendoriq/config.yaml,
then a vendoriq.yaml found in the current or a parent directory.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(serveCmd(&logLevel))
	cmd.AddCommand(rfpCmd(&logLevel))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

// setupLogging configures the default slog logger and returns it.
func setupLogging(logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

func loadConfig(logger *slog.Logger) (*config.Config, error) {
	loader := config.NewLoader(logger)
	if err := loader.EnsureUserConfig(); err != nil {
		logger.Warn("Failed to create user config", "error", err)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func printBanner() {
	fmt.Println("╔═══════════════════════════════════════════════╗")
	fmt.Println("║             VendorIQ v" + Version + "                    ║")
	fmt.Println("║      Healthcare Vendor Selection              ║")
	fmt.Println("╚═══════════════════════════════════════════════╝")
}
