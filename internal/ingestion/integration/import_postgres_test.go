package integration_test

import (
	"context"
	"database/sql"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"

	"spaceledger/internal/audit"
	bookingpg "spaceledger/internal/booking/infrastructure/postgres"
	catalogapp "spaceledger/internal/catalog/application"
	catalogpg "spaceledger/internal/catalog/infrastructure/postgres"
	"spaceledger/internal/ingestion/application"
	"spaceledger/internal/ingestion/sources"
)

const ledgerCatalog = `spaces:
  - name: 北新宿スペース
    address: 東京都新宿区北新宿1-1-1
  - name: 西早稲田スペース
mappings:
  - source: generic
    display_name: 北新宿スペース
    space: 北新宿スペース
  - source: generic
    display_name: 西早稲田スペース
    space: 西早稲田スペース
`

const ledgerCSV = `予約番号,スペース名,利用日,開始時刻,終了時刻,合計金額,ステータス
IT-001,北新宿スペース,2024-06-01,10:00,12:00,8000,確定
IT-002,西早稲田スペース,2024-06-02,13:00,15:00,6000,確定
IT-003,不明スペース,2024-06-03,09:00,10:00,3000,確定
`

func TestImportClosedLoopPostgres(t *testing.T) {
	db := openDB(t)
	defer db.Close()

	if err := applyLedgerMigrations(db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	ctx := context.Background()
	cleanupLedgerTables(ctx, db)

	spaces := catalogpg.NewSpaceRepository(db)
	mappings := catalogpg.NewMappingRepository(db)
	bookings := bookingpg.NewBookingRepository(db)
	audits := audit.NewRepository(db)

	catalogService, err := catalogapp.NewService(spaces, mappings)
	if err != nil {
		t.Fatalf("catalog service: %v", err)
	}
	summary, err := catalogService.LoadFile(ctx, []byte(ledgerCatalog))
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if summary.Spaces != 2 || summary.Mappings != 2 {
		t.Fatalf("expected 2 spaces and 2 mappings, got %+v", summary)
	}
	// Reloading the same file must update in place, not duplicate.
	if _, err := catalogService.LoadFile(ctx, []byte(ledgerCatalog)); err != nil {
		t.Fatalf("reload catalog: %v", err)
	}
	var mappingCount int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM source_mappings").Scan(&mappingCount); err != nil {
		t.Fatalf("count mappings: %v", err)
	}
	if mappingCount != 2 {
		t.Fatalf("expected 2 mappings after reload, got %d", mappingCount)
	}

	logger := log.New(io.Discard, "", 0)
	service, err := application.NewImportService(
		sources.DefaultRegistry(sources.Config{}),
		bookings, mappings, spaces, audits,
		application.Config{ChunkSize: 2}, logger,
	)
	if err != nil {
		t.Fatalf("import service: %v", err)
	}

	report, err := service.Run(ctx, "generic", "generic_june.csv", ledgerCSV)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if report.Inserted != 2 || report.Skipped != 0 || report.Unmapped != 1 {
		t.Fatalf("first run: expected 2 inserted, 0 skipped, 1 unmapped, got %d/%d/%d",
			report.Inserted, report.Skipped, report.Unmapped)
	}

	// Identical content again: persisted ids are skipped, nothing new lands.
	second, err := service.Run(ctx, "generic", "generic_june_copy.csv", ledgerCSV)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Inserted != 0 || second.Skipped != 2 {
		t.Fatalf("second run: expected 0 inserted, 2 skipped, got %d/%d", second.Inserted, second.Skipped)
	}

	counts, err := bookings.CountBySource(ctx)
	if err != nil {
		t.Fatalf("count by source: %v", err)
	}
	if counts["generic"] != 2 {
		t.Fatalf("expected 2 stored generic bookings, got %d", counts["generic"])
	}

	var spaceID sql.NullString
	if err := db.QueryRowContext(ctx, "SELECT space_id FROM bookings WHERE external_id = $1", "IT-001").Scan(&spaceID); err != nil {
		t.Fatalf("booking row: %v", err)
	}
	if !spaceID.Valid || spaceID.String == "" {
		t.Fatalf("expected resolved space id on stored booking")
	}

	entries, err := audits.ListByContentHash(ctx, audit.ContentHash([]byte(ledgerCSV)))
	if err != nil {
		t.Fatalf("list audits: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 audit entries for the content, got %d", len(entries))
	}

	recent, err := audits.ListRecent(ctx, 1)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(recent) != 1 || recent[0].FileName != "generic_june_copy.csv" {
		t.Fatalf("expected the copy run first, got %+v", recent)
	}
}

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return db
}

func applyLedgerMigrations(db *sql.DB) error {
	root := projectRoot()
	files := []string{
		filepath.Join(root, "migrations", "0001_create_catalog.up.sql"),
		filepath.Join(root, "migrations", "0002_create_bookings.up.sql"),
		filepath.Join(root, "migrations", "0003_create_import_audits.up.sql"),
	}
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if _, err := db.Exec(string(content)); err != nil {
			return err
		}
	}
	return nil
}

func projectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return filepath.Clean(filepath.Join(dir, "..", "..", ".."))
}

func cleanupLedgerTables(ctx context.Context, db *sql.DB) {
	_, _ = db.ExecContext(ctx, "DELETE FROM bookings")
	_, _ = db.ExecContext(ctx, "DELETE FROM import_audits")
	_, _ = db.ExecContext(ctx, "DELETE FROM source_mappings")
	_, _ = db.ExecContext(ctx, "DELETE FROM rooms")
	_, _ = db.ExecContext(ctx, "DELETE FROM spaces")
}
