package main

import (
	"fmt"

	"financial_statements/pkg/core/export"

	"github.com/spf13/cobra"
)

var layoutFilesOnly bool

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Manage the XLSX output directory tree",
}

var layoutSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the balance_sheet, income_statement and cashflow_statement directories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup()
		if err != nil {
			return err
		}
		if err := (export.Layout{Root: cfg.OutputDir}).Setup(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "layout ready under %s\n", cfg.OutputDir)
		return nil
	},
}

var layoutTeardownCmd = &cobra.Command{
	Use:   "teardown",
	Short: "Remove the output tree, or only its files with --files-only",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup()
		if err != nil {
			return err
		}
		mode := export.TeardownRemoveAll
		if layoutFilesOnly {
			mode = export.TeardownPurgeFiles
		}
		return (export.Layout{Root: cfg.OutputDir}).Teardown(mode)
	},
}

func init() {
	rootCmd.AddCommand(layoutCmd)
	layoutCmd.AddCommand(layoutSetupCmd)
	layoutCmd.AddCommand(layoutTeardownCmd)

	layoutTeardownCmd.Flags().BoolVar(&layoutFilesOnly, "files-only", false, "Delete files but keep the directories")
}
