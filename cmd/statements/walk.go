package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"financial_statements/pkg/core/config"
	"financial_statements/pkg/core/export"
	"financial_statements/pkg/core/ingest"
	"financial_statements/pkg/core/statements"
	"financial_statements/pkg/core/store"

	"github.com/spf13/cobra"
)

var walkLimit int

var walkExport bool

var walkSave bool

var walkRefreshTickers bool

var walkCmd = &cobra.Command{
	Use:   "walk <ticker>",
	Short: "Walk a company's 10-K history and reconstruct every filing",
	Long: `walk resolves the ticker to its CIK, lists the company's annual reports newest
first and reconstructs the statements of each one. Fetches are paced; a filing that
cannot be fetched or parsed is reported as absent and the walk continues.

With --export every present statement is written as an XLSX workbook under the
output layout. With --save the tables are stored in PostgreSQL.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWalk(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(walkCmd)

	walkCmd.Flags().IntVar(&walkLimit, "limit", 0, "Walk at most this many filings (0 uses the configured limit)")
	walkCmd.Flags().BoolVar(&walkExport, "export", false, "Write XLSX workbooks under the output directory")
	walkCmd.Flags().BoolVar(&walkSave, "save", false, "Store the reconstructed tables in PostgreSQL")
	walkCmd.Flags().BoolVar(&walkRefreshTickers, "refresh-tickers", false, "Download the SEC ticker file again before resolving the ticker")
}

func runWalk(cmd *cobra.Command, ticker string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	if walkLimit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}
	cfg.Merge(&config.Config{Limit: walkLimit})

	r, err := newReconstructor(cfg, logger)
	if err != nil {
		return err
	}
	extractor, err := newExtractor(cfg, r, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if walkRefreshTickers {
		if dir, ok := extractor.Directory.(*ingest.TickerDirectory); ok {
			if err := dir.Refresh(ctx); err != nil {
				return fmt.Errorf("failed to refresh tickers: %w", err)
			}
		}
	}

	results, err := extractor.ExtractHistory(ctx, ticker)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	printSummary(cmd, results)
	if err != nil {
		return fmt.Errorf("walk interrupted: %w", err)
	}

	if walkExport {
		exporter := export.NewXLSXExporter(export.Layout{Root: cfg.OutputDir}, logger)
		paths, err := exporter.ExportHistory(ticker, results)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", p)
		}
	}

	if walkSave {
		if len(results) == 0 {
			return nil
		}
		pool, err := store.InitDB(ctx, cfg.Database.DSN)
		if err != nil {
			return err
		}
		defer pool.Close()

		runID, err := store.NewStatementRepo(pool).SaveHistory(ctx, ticker, results[0].Record.CIK, results)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved run %s\n", runID)
	}
	return nil
}

func printSummary(cmd *cobra.Command, results []ingest.FilingResult) {
	out := cmd.OutOrStdout()
	for _, res := range results {
		if res.Absent() {
			fmt.Fprintf(out, "%s  %s  absent: %v\n", res.Record.Label(), res.Record.AccessionNumber, res.Err)
			continue
		}
		fmt.Fprintf(out, "%s  %s  %d/%d statements\n",
			res.Record.Label(), res.Record.AccessionNumber, len(res.Filing.Present()), len(statements.All))
	}
}
