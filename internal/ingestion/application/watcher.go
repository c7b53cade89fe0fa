package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"spaceledger/internal/audit"
	"spaceledger/internal/ingestion/normalize"
	"spaceledger/internal/ingestion/sources"
	"spaceledger/internal/observability/metrics"
)

// Handled files are moved into sibling status directories so a crashed
// run never re-imports what already landed.
const (
	processedDirName = "processed"
	failedDirName    = "failed"
)

// Watcher scans a drop directory for marketplace exports and feeds them
// through the import pipeline. File names follow the
// <source>_<anything>.csv convention.
type Watcher struct {
	service  *ImportService
	audits   audit.Store
	dir      string
	interval time.Duration
	logger   *log.Logger
}

// NewWatcher constructs a watcher over one drop directory.
func NewWatcher(service *ImportService, audits audit.Store, cfg WatchConfig, logger *log.Logger) (*Watcher, error) {
	if service == nil {
		return nil, errors.New("watcher: nil import service")
	}
	if audits == nil {
		return nil, errors.New("watcher: nil audit store")
	}
	if cfg.Dir == "" {
		return nil, errors.New("watcher: empty watch dir")
	}
	interval := time.Duration(cfg.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Watcher{
		service:  service,
		audits:   audits,
		dir:      cfg.Dir,
		interval: interval,
		logger:   logger,
	}, nil
}

// Start scans once immediately, then on every tick until the context is
// cancelled.
func (w *Watcher) Start(ctx context.Context) {
	if w == nil {
		return
	}
	if err := w.Scan(ctx); err != nil {
		w.logger.Printf("watch: scan error: %v", err)
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.Scan(ctx); err != nil {
				w.logger.Printf("watch: scan error: %v", err)
			}
		}
	}
}

// Scan processes every csv file currently sitting in the drop directory.
func (w *Watcher) Scan(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("watch: read %s: %w", w.dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		w.handle(ctx, entry.Name())
	}
	return nil
}

func (w *Watcher) handle(ctx context.Context, name string) {
	path := filepath.Join(w.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		w.logger.Printf("watch: read %s: %v", name, err)
		return
	}
	content, encoding, err := sources.DecodeText(data)
	if err != nil {
		w.logger.Printf("watch: decode %s: %v", name, err)
		w.move(name, failedDirName)
		metrics.IncWatchFile("failed")
		return
	}

	// The hash matches what the import run will record, so a file that
	// already went through under any name is recognized here.
	prior, err := w.audits.ListByContentHash(ctx, audit.ContentHash([]byte(content)))
	if err != nil {
		w.logger.Printf("watch: audit lookup for %s: %v", name, err)
		return
	}
	if len(prior) > 0 {
		w.logger.Printf("watch: %s already imported as %s, skipping", name, prior[0].FileName)
		w.move(name, processedDirName)
		metrics.IncWatchFile("skipped")
		return
	}

	source := SourceFromFile(name)
	report, err := w.service.Run(ctx, source, name, content)
	if err != nil {
		w.logger.Printf("watch: import %s: %v", name, err)
		w.move(name, failedDirName)
		metrics.IncWatchFile("failed")
		return
	}
	w.logger.Printf("watch: imported %s source=%s encoding=%s outcome=%s inserted=%d",
		name, source, encoding, report.Outcome, report.Inserted)
	w.move(name, processedDirName)
	metrics.IncWatchFile("imported")
}

func (w *Watcher) move(name, status string) {
	dest := filepath.Join(w.dir, status)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		w.logger.Printf("watch: mkdir %s: %v", dest, err)
		return
	}
	if err := os.Rename(filepath.Join(w.dir, name), filepath.Join(dest, name)); err != nil {
		w.logger.Printf("watch: move %s: %v", name, err)
	}
}

// SourceFromFile extracts the source id from a drop file name, so
// spacemarket_2024-06.csv routes to the spacemarket parser.
func SourceFromFile(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if source, _, found := strings.Cut(base, "_"); found && source != "" {
		return strings.ToLower(normalize.Fold(source))
	}
	return strings.ToLower(normalize.Fold(base))
}
