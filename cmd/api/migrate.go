package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and exit",
		RunE: func(*cobra.Command, []string) error {
			_, log, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			defer closeDB(db, log)

			if err := db.Migrate(); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			log.Info("database schema is up to date")
			return nil
		},
	}
}
