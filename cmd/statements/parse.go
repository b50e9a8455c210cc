package main

import (
	"encoding/json"
	"fmt"
	"os"

	"financial_statements/pkg/core/export"
	"financial_statements/pkg/core/statements"
	"financial_statements/pkg/core/tables"

	"github.com/spf13/cobra"
)

var parseStatement string

var parseFormat string

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Reconstruct the statements of a local filing document",
	Long: `parse reads a filing's primary HTML document from disk, decodes it (older
filings are windows-1252) and prints every reconstructed statement. Statements that
cannot be found are reported as absent with the reason.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runParse(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVar(
		&parseStatement,
		"statement",
		"",
		"Print only this statement (operations, balance_sheet, comprehensive_income, shareholders_equity, cash_flows)",
	)

	parseCmd.Flags().StringVar(
		&parseFormat,
		"format",
		"json",
		"Output format: json, md or html",
	)
}

func runParse(cmd *cobra.Command, path string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	r, err := newReconstructor(cfg, logger)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	doc, err := tables.ReadDocument(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	filing := r.ReconstructDocument(doc)

	if parseStatement != "" {
		st, err := statements.ParseStatement(parseStatement)
		if err != nil {
			return err
		}
		filing = &statements.ReconstructedFiling{
			Statements: map[statements.Statement]statements.Result{st: filing.Statements[st]},
		}
	}

	out := cmd.OutOrStdout()
	switch parseFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(filing)
	case "md":
		_, err := fmt.Fprint(out, export.RenderFilingMarkdown(filing))
		return err
	case "html":
		html, err := export.RenderHTML(export.RenderFilingMarkdown(filing))
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(out, html)
		return err
	}
	return fmt.Errorf("unknown format %q", parseFormat)
}
