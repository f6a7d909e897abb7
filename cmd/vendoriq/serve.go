package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/c360studio/vendoriq/catalog"
	"github.com/c360studio/vendoriq/config"
	"github.com/c360studio/vendoriq/llm"
	"github.com/c360studio/vendoriq/metrics"
	"github.com/c360studio/vendoriq/rfp"
	"github.com/c360studio/vendoriq/server"
	"github.com/c360studio/vendoriq/workflow"
)

func serveCmd(logLevel *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP JSON API for the selection wizard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(*logLevel, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	return cmd
}

func runServe(logLevel, addr string) error {
	printBanner()
	logger := setupLogging(logLevel)

	cfg, err := loadConfig(logger)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.HTTP.Addr = addr
	}

	vendors, err := catalog.NewStatic()
	if err != nil {
		return fmt.Errorf("load vendor catalog: %w", err)
	}
	ratings, err := catalog.NewStaticRatings()
	if err != nil {
		return fmt.Errorf("load rating table: %w", err)
	}

	session := workflow.NewSession(
		workflow.WithCatalog(vendors),
		workflow.WithRatings(ratings),
		workflow.WithDelays(cfg.Workflow.DiscoverDelay, cfg.Workflow.ScoreDelay),
		workflow.WithLogger(logger),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	generator, err := newGenerator(ctx, cfg)
	if err != nil {
		return err
	}

	srv := server.New(session,
		server.WithGenerator(generator),
		server.WithMetrics(metrics.New()),
		server.WithLogger(logger),
	)

	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("VendorIQ API listening", "addr", cfg.HTTP.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// newGenerator wires the template store, the LLM fallback and the output
// directory into an RFP generator. When a templates overlay directory is
// configured, hot reload runs until ctx is cancelled.
func newGenerator(ctx context.Context, cfg *config.Config) (*rfp.Generator, error) {
	store, err := rfp.NewFileStore(cfg.RFP.TemplatesDir)
	if err != nil {
		return nil, fmt.Errorf("load rfp templates: %w", err)
	}
	if cfg.RFP.TemplatesDir != "" {
		if err := store.Watch(ctx); err != nil {
			return nil, fmt.Errorf("watch rfp templates: %w", err)
		}
	}

	client := llm.NewClient(llm.Endpoint{
		Provider: cfg.LLM.Provider,
		URL:      cfg.LLM.Endpoint,
		Model:    cfg.LLM.Model,
	}, llm.WithHTTPClient(&http.Client{Timeout: cfg.LLM.Timeout}))

	source := &rfp.CombinedSource{
		Store:    store,
		Fallback: rfp.NewGenerative(client, nil),
	}

	if err := os.MkdirAll(cfg.RFP.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return rfp.NewGenerator(source, cfg.RFP.OutputDir), nil
}
