// Package cmd wires the spaceledger command line interface.
package cmd

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"spaceledger/internal/audit"
	bookingpg "spaceledger/internal/booking/infrastructure/postgres"
	catalogpg "spaceledger/internal/catalog/infrastructure/postgres"
	"spaceledger/internal/ingestion/application"
	"spaceledger/internal/ingestion/notify"
	"spaceledger/internal/ingestion/sources"
)

var (
	cfgFile     string
	databaseURL string
)

var rootCmd = &cobra.Command{
	Use:   "spaceledger",
	Short: "Rental space revenue ingestion",
	Long: `spaceledger imports reservation exports from rental space
marketplaces, normalizes them into one booking ledger, and keeps an
audit trail of every import run.`,
	Version:      "0.1.0",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, also via INGEST_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "postgres connection string (also via DATABASE_URL or PG_DSN)")
}

// loadIngestConfig resolves ingestion configuration, with the --config
// flag taking priority over the INGEST_CONFIG environment variable.
func loadIngestConfig() (application.Config, error) {
	if cfgFile != "" {
		os.Setenv("INGEST_CONFIG", cfgFile)
	}
	return application.LoadConfig()
}

func resolveDatabaseURL() (string, error) {
	if databaseURL != "" {
		return databaseURL, nil
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn, nil
	}
	if dsn := os.Getenv("PG_DSN"); dsn != "" {
		return dsn, nil
	}
	return "", errors.New("database url required (--database-url, DATABASE_URL or PG_DSN)")
}

func openDatabase() (*sql.DB, error) {
	dsn, err := resolveDatabaseURL()
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func newLogger() *log.Logger {
	return log.New(os.Stdout, "", log.LstdFlags)
}

// buildImportService assembles the full ingestion stack over one
// database handle.
func buildImportService(db *sql.DB, cfg application.Config, logger *log.Logger) (*application.ImportService, *audit.Repository, error) {
	registry := sources.DefaultRegistry(cfg.ParserConfig())
	bookings := bookingpg.NewBookingRepository(db)
	mappings := catalogpg.NewMappingRepository(db)
	spaces := catalogpg.NewSpaceRepository(db)
	audits := audit.NewRepository(db)

	var opts []application.ImportOption
	if cfg.WebhookURL != "" {
		opts = append(opts, application.WithNotifier(notify.NewWebhookNotifier(cfg.WebhookURL)))
	}
	service, err := application.NewImportService(registry, bookings, mappings, spaces, audits, cfg, logger, opts...)
	if err != nil {
		return nil, nil, err
	}
	return service, audits, nil
}
