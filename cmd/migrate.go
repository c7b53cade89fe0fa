package cmd

import (
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"
)

var (
	migrateSourceURL string
	migrateDown      bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn, err := resolveDatabaseURL()
		if err != nil {
			return err
		}
		m, err := migrate.New(migrateSourceURL, dsn)
		if err != nil {
			return fmt.Errorf("init migrations: %w", err)
		}
		op := m.Up
		if migrateDown {
			op = m.Down
		}
		if err := op(); err != nil && err != migrate.ErrNoChange {
			return fmt.Errorf("run migrations: %w", err)
		}
		if migrateDown {
			fmt.Println("migrations rolled back")
		} else {
			fmt.Println("migrations applied")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().StringVar(&migrateSourceURL, "migrations", "file://migrations", "migration source URL")
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "roll back all migrations")
}
