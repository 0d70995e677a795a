package cmd

import (
	"github.com/bitelog/bite/internal/db"
	"github.com/spf13/cobra"
)

func MigrateCmd() *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations (DB_DRIVER, DB_CONNECTION)",
	}

	migrate.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, driver, err := openDB()
			if err != nil {
				return err
			}
			defer conn.Close()
			return db.RunMigrations(cmd.Context(), conn.DB, driver)
		},
	})

	migrate.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, driver, err := openDB()
			if err != nil {
				return err
			}
			defer conn.Close()
			return db.MigrateDown(cmd.Context(), conn.DB, driver)
		},
	})

	return migrate
}
