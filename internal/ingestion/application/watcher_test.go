package application

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
)

func writeDropFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func fileExists(t *testing.T, path string) bool {
	t.Helper()
	_, err := os.Stat(path)
	if err == nil {
		return true
	}
	if os.IsNotExist(err) {
		return false
	}
	t.Fatalf("stat %s: %v", path, err)
	return false
}

func TestWatcherScanImportsAndArchives(t *testing.T) {
	f := newImportFixture(t)
	f.addListing(t, "generic", "sp-kita", "北新宿スペース")
	dir := t.TempDir()

	csv := "予約番号,スペース名,利用日,合計金額\nW-1,北新宿スペース,2024-06-10,3000\n"
	writeDropFile(t, dir, "generic_june.csv", csv)
	writeDropFile(t, dir, "notes.txt", "not a csv")

	watcher, err := NewWatcher(f.service, f.audits, WatchConfig{Dir: dir, IntervalSeconds: 60}, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	if err := watcher.Scan(context.Background()); err != nil {
		t.Fatalf("scan: %v", err)
	}

	if got := len(f.bookings.All()); got != 1 {
		t.Fatalf("expected 1 booking, got %d", got)
	}
	if !fileExists(t, filepath.Join(dir, "processed", "generic_june.csv")) {
		t.Fatal("imported file must move to processed/")
	}
	if !fileExists(t, filepath.Join(dir, "notes.txt")) {
		t.Fatal("non-csv files must stay put")
	}
}

func TestWatcherSkipsAlreadyImportedContent(t *testing.T) {
	f := newImportFixture(t)
	f.addListing(t, "generic", "sp-kita", "北新宿スペース")
	dir := t.TempDir()

	csv := "予約番号,スペース名,利用日,合計金額\nW-2,北新宿スペース,2024-06-10,3000\n"
	watcher, err := NewWatcher(f.service, f.audits, WatchConfig{Dir: dir, IntervalSeconds: 60}, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}

	writeDropFile(t, dir, "generic_june.csv", csv)
	if err := watcher.Scan(context.Background()); err != nil {
		t.Fatalf("first scan: %v", err)
	}

	// Same content under a new name: recognized by hash, no second run.
	writeDropFile(t, dir, "generic_june_copy.csv", csv)
	if err := watcher.Scan(context.Background()); err != nil {
		t.Fatalf("second scan: %v", err)
	}

	if got := len(f.audits.All()); got != 1 {
		t.Fatalf("expected one audit entry, got %d", got)
	}
	if got := len(f.bookings.All()); got != 1 {
		t.Fatalf("expected one booking, got %d", got)
	}
	if !fileExists(t, filepath.Join(dir, "processed", "generic_june_copy.csv")) {
		t.Fatal("skipped duplicate must still move to processed/")
	}
}

func TestWatcherMovesBrokenFilesToFailed(t *testing.T) {
	f := newImportFixture(t)
	dir := t.TempDir()

	writeDropFile(t, dir, "generic_broken.csv", "foo,bar\n1,2\n")
	watcher, err := NewWatcher(f.service, f.audits, WatchConfig{Dir: dir, IntervalSeconds: 60}, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	if err := watcher.Scan(context.Background()); err != nil {
		t.Fatalf("scan: %v", err)
	}

	if !fileExists(t, filepath.Join(dir, "failed", "generic_broken.csv")) {
		t.Fatal("unparseable file must move to failed/")
	}
	if got := len(f.audits.All()); got != 0 {
		t.Fatalf("structural failure must not be audited, got %d entries", got)
	}
}

func TestSourceFromFile(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"spacemarket_2024-06.csv", "spacemarket"},
		{"SPACEE_07.CSV", "spacee"},
		{"instabase_月次_6月.csv", "instabase"},
		{"export.csv", "export"},
		{"ｓｐａｃｅｅ_wide.csv", "spacee"},
	}
	for _, tc := range cases {
		if got := SourceFromFile(tc.name); got != tc.want {
			t.Fatalf("%s: expected source %q, got %q", tc.name, tc.want, got)
		}
	}
}
