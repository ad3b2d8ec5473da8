package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/nihongo-dict/internal/adapter/postgres"
)

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.cfg.RequireDatabase(); err != nil {
				return err
			}

			applied, err := postgres.Migrate(cmd.Context(), e.cfg.Database.DSN, e.log)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", len(applied))
			return nil
		},
	}
}
