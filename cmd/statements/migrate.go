package main

import (
	"fmt"

	"financial_statements/pkg/core/store"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate <up|down|version>",
	Short:     "Apply, revert or inspect the statement table schema",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"up", "down", "version"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		dsn := cfg.Database.DSN
		if dsn == "" {
			return fmt.Errorf("database DSN not set (database.dsn, FS_DATABASE_DSN or DATABASE_URL)")
		}

		switch args[0] {
		case "up":
			if err := store.Migrate(dsn, store.Up); err != nil {
				return err
			}
			logger.Info("[Migrate] migrations applied")
		case "down":
			if err := store.Migrate(dsn, store.Down); err != nil {
				return err
			}
			logger.Info("[Migrate] migrations reverted")
		case "version":
			v, dirty, err := store.SchemaVersion(dsn)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %v)\n", v, dirty)
		default:
			return fmt.Errorf("unknown migrate action %q (want up, down or version)", args[0])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
