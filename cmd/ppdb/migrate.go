package main

import (
	"github.com/mehmetcc/ppdb/internal/database"
	"github.com/spf13/cobra"
)

func migrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.load()
			if err != nil {
				return err
			}
			defer e.logger.Sync()

			db, err := e.database(cmd.Context(), true)
			if err != nil {
				return err
			}
			return db.Close()
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.load()
			if err != nil {
				return err
			}
			defer e.logger.Sync()

			db, err := e.database(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer db.Close()

			database.SetMigrationLogger(e.logger)
			return database.Rollback(cmd.Context(), db)
		},
	}

	cmd.AddCommand(up, down)
	return cmd
}
