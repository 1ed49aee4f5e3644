package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/rentscore/rentscore/internal/platform"
	"github.com/rentscore/rentscore/internal/roster"
)

func newMigrateCmd() *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations for the postgres roster backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			url := firstNonEmpty(databaseURL, cfg.Roster.DatabaseURL)
			if url == "" {
				return eris.New("no database URL: set --database-url or roster.database_url")
			}
			db, err := roster.OpenPostgres(cmd.Context(), url)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := platform.AutoMigrate(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
			return nil
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", "", "Postgres connection URL (default: roster.database_url)")
	return cmd
}
