package main

import (
	"fmt"
	"log/slog"
	"os"

	"financial_statements/pkg/core/config"
	"financial_statements/pkg/core/ingest"
	"financial_statements/pkg/core/statements"

	"github.com/spf13/cobra"
)

var cfgFile string

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "statements",
	Short: "Reconstruct financial statement tables from SEC 10-K filings",
	Long: `statements locates the five primary financial statements of a 10-K filing
(operations, balance sheet, comprehensive income, shareholders' equity, cash flows)
and rebuilds each one as a table of line items by reporting period.

Example Usage:
  statements parse aapl-20240928.htm --format md
  statements walk AAPL --limit 3 --export
  statements serve
  statements layout setup
  statements migrate up`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"Path to the YAML configuration file (default config/statements.yaml when present)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// setup loads the configuration and builds the logger shared by every command.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	return cfg, newLogger(), nil
}

func newReconstructor(cfg *config.Config, logger *slog.Logger) (*statements.Reconstructor, error) {
	headings, err := cfg.HeadingSet()
	if err != nil {
		return nil, err
	}
	return statements.NewReconstructor(
		statements.WithLogger(logger),
		statements.WithMalformedPolicy(cfg.Malformed()),
		statements.WithMatchPolicy(cfg.Policy()),
		statements.WithHeadings(headings),
	), nil
}

func newExtractor(cfg *config.Config, r *statements.Reconstructor, logger *slog.Logger) (*ingest.Extractor, error) {
	client := ingest.NewEDGARClient(
		ingest.WithUserAgent(cfg.UserAgent),
		ingest.WithRate(cfg.SECRate),
		ingest.WithClientLogger(logger),
	)

	cache, err := ingest.NewDocumentCache(cfg.CacheDir)
	if err != nil {
		return nil, err
	}

	walker := ingest.NewWalker(r,
		ingest.WithPacing(cfg.PacingDuration()),
		ingest.WithConcurrency(cfg.Concurrency),
		ingest.WithWalkerLogger(logger),
	)

	directory := ingest.NewTickerDirectory(cfg.CIKCache, client, logger)
	extractor := ingest.NewExtractor(directory, client, ingest.NewCachedFetcher(cache, client, logger), walker, logger)
	extractor.Forms = cfg.Forms
	extractor.Limit = cfg.Limit
	return extractor, nil
}
