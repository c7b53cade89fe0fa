package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"spaceledger/internal/audit"
	booking "spaceledger/internal/booking/domain"
	bookingpg "spaceledger/internal/booking/infrastructure/postgres"
	catalogpg "spaceledger/internal/catalog/infrastructure/postgres"
	"spaceledger/internal/ingestion/application"
	"spaceledger/internal/ingestion/interfaces"
	"spaceledger/internal/ingestion/sources"
	"spaceledger/internal/observability/metrics"
)

var (
	ingestSource     string
	ingestDryRun     bool
	ingestForce      bool
	ingestReportXLSX string
	ingestReportPDF  string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Import one marketplace export file",
	Long: `Import a reservation export into the booking ledger.

The source is derived from the file name prefix (spacee_june.csv imports
as spacee) unless --source is given. Files whose content was already
imported are refused; pass --force to import them again.`,
	Example: `  spaceledger ingest drops/spacemarket_2024-06.csv
  spaceledger ingest export.csv --source spacee --report-xlsx run.xlsx
  spaceledger ingest export.csv --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestSource, "source", "", "source id (default: derived from the file name)")
	ingestCmd.Flags().BoolVar(&ingestDryRun, "dry-run", false, "parse and resolve against live data without writing")
	ingestCmd.Flags().BoolVar(&ingestForce, "force", false, "import even if identical content was imported before")
	ingestCmd.Flags().StringVar(&ingestReportXLSX, "report-xlsx", "", "write the run report as xlsx to this path")
	ingestCmd.Flags().StringVar(&ingestReportPDF, "report-pdf", "", "write the run report as pdf to this path")
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := args[0]
	cfg, err := loadIngestConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	content, encoding, err := sources.DecodeText(data)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	source := ingestSource
	if source == "" {
		source = application.SourceFromFile(filepath.Base(path))
	}

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()
	logger := newLogger()

	hash := audit.ContentHash([]byte(content))
	prior, err := audit.NewRepository(db).ListByContentHash(cmd.Context(), hash)
	if err != nil {
		return fmt.Errorf("duplicate check: %w", err)
	}
	if len(prior) > 0 && !ingestForce {
		if !ingestDryRun {
			return fmt.Errorf("identical content already imported as run %s (use --force to import again)", prior[0].ID)
		}
		fmt.Printf("note: identical content already imported as run %s\n", prior[0].ID)
	}

	var service *application.ImportService
	if ingestDryRun {
		service, err = buildDryRunService(db, cfg, logger)
	} else {
		service, _, err = buildImportService(db, cfg, logger)
	}
	if err != nil {
		return err
	}

	report, runErr := service.Run(cmd.Context(), source, filepath.Base(path), content)

	fmt.Printf("run %s (%s)\n", report.RunID, report.Outcome)
	if ingestDryRun {
		fmt.Printf("  mode:       dry run, nothing written\n")
	}
	fmt.Printf("  source:     %s\n", report.Source)
	fmt.Printf("  encoding:   %s\n", encoding)
	fmt.Printf("  parsed:     %d\n", report.RowsParsed)
	fmt.Printf("  inserted:   %d\n", report.Inserted)
	fmt.Printf("  duplicates: %d\n", report.Skipped)
	fmt.Printf("  unmapped:   %d\n", report.Unmapped)
	fmt.Printf("  row errors: %d\n", len(report.Errors))
	fmt.Printf("  warnings:   %d\n", len(report.Warnings))
	if len(report.UnmappedNames) > 0 {
		fmt.Printf("  unmapped names: %s\n", strings.Join(report.UnmappedNames, "、"))
	}

	if err := writeRunReports(*report); err != nil {
		return err
	}
	return runErr
}

func writeRunReports(report application.Report) error {
	if ingestReportXLSX != "" {
		if err := writeRunReport(ingestReportXLSX, "xlsx", report, interfaces.BuildRunReportXLSX); err != nil {
			return err
		}
	}
	if ingestReportPDF != "" {
		if err := writeRunReport(ingestReportPDF, "pdf", report, interfaces.BuildRunReportPDF); err != nil {
			return err
		}
	}
	return nil
}

func writeRunReport(path, format string, report application.Report, build func(application.Report) ([]byte, error)) error {
	started := time.Now()
	data, err := build(report)
	if err != nil {
		metrics.ObserveExport(format, metrics.ResultError, time.Since(started))
		return fmt.Errorf("build %s report: %w", format, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		metrics.ObserveExport(format, metrics.ResultError, time.Since(started))
		return fmt.Errorf("write %s: %w", path, err)
	}
	metrics.ObserveExport(format, metrics.ResultSuccess, time.Since(started))
	fmt.Printf("report written: %s\n", path)
	return nil
}

// dryRunBookings previews inserts without writing them. Reads still hit
// the live repository so duplicate detection matches a real run.
type dryRunBookings struct {
	booking.Repository
}

func (dryRunBookings) InsertBatch(ctx context.Context, items []booking.Booking) (int, error) {
	return len(items), nil
}

func buildDryRunService(db *sql.DB, cfg application.Config, logger *log.Logger) (*application.ImportService, error) {
	registry := sources.DefaultRegistry(cfg.ParserConfig())
	bookings := dryRunBookings{Repository: bookingpg.NewBookingRepository(db)}
	mappings := catalogpg.NewMappingRepository(db)
	spaces := catalogpg.NewSpaceRepository(db)
	return application.NewImportService(registry, bookings, mappings, spaces, audit.NewMemoryStore(), cfg, logger)
}
