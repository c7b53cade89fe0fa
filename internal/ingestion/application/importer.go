package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"spaceledger/internal/audit"
	booking "spaceledger/internal/booking/domain"
	catalog "spaceledger/internal/catalog/domain"
	"spaceledger/internal/ingestion/sources"
	"spaceledger/internal/observability/metrics"
)

// Report is the outcome of one ingestion run.
type Report struct {
	RunID         string
	Source        string
	FileName      string
	ContentHash   string
	Outcome       string
	RowsParsed    int
	Inserted      int
	Skipped       int      // duplicate external ids
	Unmapped      int      // records dropped for lack of a mapping
	UnmappedNames []string // distinct display names, first-seen order
	Errors        []sources.RowError
	Warnings      []sources.Warning
	StartedAt     time.Time
	Duration      time.Duration
}

// Failed reports whether the import did not happen at all. Row errors and
// unmapped records leave the run usable; only structural parse failures
// and persistence failures do not.
func (r Report) Failed() bool {
	return r.Outcome == audit.StatusError
}

// Notifier pushes a run summary to an operator channel.
type Notifier interface {
	NotifyRun(ctx context.Context, report Report) error
}

// ImportService runs the ingestion pipeline over one uploaded file:
// parse, deduplicate, resolve identities, persist in ordered chunks, and
// write the audit entry.
type ImportService struct {
	registry  *sources.Registry
	bookings  booking.Repository
	mappings  catalog.MappingRepository
	spaces    catalog.SpaceRepository
	audits    audit.Store
	notifier  Notifier
	cfg       Config
	logger    *log.Logger
	chunkSize int
}

// ImportOption configures the service.
type ImportOption func(*ImportService)

// WithNotifier attaches a run notifier.
func WithNotifier(n Notifier) ImportOption {
	return func(s *ImportService) {
		s.notifier = n
	}
}

// WithChunkSize overrides the persistence chunk size.
func WithChunkSize(size int) ImportOption {
	return func(s *ImportService) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// NewImportService constructs the service.
func NewImportService(
	registry *sources.Registry,
	bookings booking.Repository,
	mappings catalog.MappingRepository,
	spaces catalog.SpaceRepository,
	audits audit.Store,
	cfg Config,
	logger *log.Logger,
	opts ...ImportOption,
) (*ImportService, error) {
	if registry == nil {
		return nil, errors.New("import service: nil registry")
	}
	if bookings == nil {
		return nil, errors.New("import service: nil booking repository")
	}
	if mappings == nil {
		return nil, errors.New("import service: nil mapping repository")
	}
	if spaces == nil {
		return nil, errors.New("import service: nil space repository")
	}
	if audits == nil {
		return nil, errors.New("import service: nil audit store")
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &ImportService{
		registry:  registry,
		bookings:  bookings,
		mappings:  mappings,
		spaces:    spaces,
		audits:    audits,
		cfg:       cfg,
		logger:    logger,
		chunkSize: cfg.ChunkSize,
	}
	if s.chunkSize <= 0 {
		s.chunkSize = DefaultChunkSize
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run ingests one uploaded file for one source. A structural parse
// failure returns before anything is written, including the audit entry;
// every other outcome is audited exactly once.
func (s *ImportService) Run(ctx context.Context, source, fileName, content string) (*Report, error) {
	started := time.Now()
	report := &Report{
		RunID:       uuid.New().String(),
		Source:      source,
		FileName:    fileName,
		ContentHash: audit.ContentHash([]byte(content)),
		StartedAt:   started.UTC(),
	}

	parser, ok := s.registry.Resolve(source)
	if !ok {
		return s.abort(report, started, fmt.Errorf("import: no parser for source %q", source))
	}
	res, err := parser.Parse(content)
	if err != nil {
		return s.abort(report, started, fmt.Errorf("import: parse %s: %w", fileName, err))
	}
	report.RowsParsed = len(res.Bookings)
	report.Errors = res.Errors
	report.Warnings = res.Warnings

	fatal := s.pipeline(ctx, source, res.Bookings, report)
	return s.finish(ctx, report, started, fatal)
}

// pipeline filters, resolves and persists parsed bookings. The returned
// error is fatal: remaining chunks were abandoned.
func (s *ImportService) pipeline(ctx context.Context, source string, parsed []booking.Booking, report *Report) error {
	mappings, err := s.mappings.ListBySource(ctx, source)
	if err != nil {
		return fmt.Errorf("import: load mappings: %w", err)
	}
	identities, err := s.spaces.ListIdentities(ctx)
	if err != nil {
		return fmt.Errorf("import: load identities: %w", err)
	}
	existing, err := s.bookings.ListExternalIDs(ctx)
	if err != nil {
		return fmt.Errorf("import: load external ids: %w", err)
	}

	resolver := catalog.NewResolver(mappings, s.cfg.AmbiguousListings(source), identities)
	index := NewDedupIndex(existing)

	var queue []booking.Booking
	seenUnmapped := make(map[string]struct{})
	for _, b := range parsed {
		if index.Duplicate(b.ExternalID) {
			report.Skipped++
			continue
		}
		resolution := resolver.Resolve(b.DisplayName, b.SubSpaceLabel)
		if resolution.Note != "" {
			report.Warnings = append(report.Warnings, sources.Warning{Row: b.Row, Message: resolution.Note})
		}
		if !resolution.OK {
			report.Unmapped++
			if _, seen := seenUnmapped[b.DisplayName]; !seen {
				seenUnmapped[b.DisplayName] = struct{}{}
				report.UnmappedNames = append(report.UnmappedNames, b.DisplayName)
			}
			continue
		}
		b.Source = source
		b.ImportID = report.RunID
		b.SpaceID = resolution.Identity.SpaceID
		b.RoomID = resolution.Identity.RoomID
		index.Add(b.ExternalID)
		queue = append(queue, b)
	}

	for start := 0; start < len(queue); start += s.chunkSize {
		end := start + s.chunkSize
		if end > len(queue) {
			end = len(queue)
		}
		n, err := s.bookings.InsertBatch(ctx, queue[start:end])
		report.Inserted += n
		if err != nil {
			metrics.IncChunkFailure(source)
			return fmt.Errorf("import: insert chunk at record %d: %w", start, err)
		}
	}
	return nil
}

// abort ends a run that failed before any row was processed. No audit
// entry is written.
func (s *ImportService) abort(report *Report, started time.Time, err error) (*Report, error) {
	report.Outcome = audit.StatusError
	report.Duration = time.Since(started)
	metrics.ObserveImportRun(report.Source, report.Outcome, report.Duration)
	s.logger.Printf("import: run=%s source=%s file=%s rejected: %v", report.RunID, report.Source, report.FileName, err)
	return report, err
}

// finish writes the audit entry, emits metrics and notifies. It runs for
// every outcome past the parse gate, including persistence failures.
func (s *ImportService) finish(ctx context.Context, report *Report, started time.Time, fatal error) (*Report, error) {
	report.Outcome = runOutcome(report, fatal)
	report.Duration = time.Since(started)

	entry := audit.Entry{
		ID:          report.RunID,
		Source:      report.Source,
		FileName:    report.FileName,
		ContentHash: report.ContentHash,
		RecordCount: report.Inserted,
		Status:      report.Outcome,
		Message:     auditMessage(report, fatal),
	}
	auditErr := s.audits.Insert(ctx, entry)
	if auditErr != nil {
		s.logger.Printf("import: run=%s audit entry not written: %v", report.RunID, auditErr)
	}

	metrics.ObserveImportRun(report.Source, report.Outcome, report.Duration)
	metrics.AddRecords(report.Source, metrics.DispositionInserted, report.Inserted)
	metrics.AddRecords(report.Source, metrics.DispositionDuplicate, report.Skipped)
	metrics.AddRecords(report.Source, metrics.DispositionUnmapped, report.Unmapped)
	metrics.AddRecords(report.Source, metrics.DispositionRowError, len(report.Errors))

	if s.notifier != nil {
		if err := s.notifier.NotifyRun(ctx, *report); err != nil {
			s.logger.Printf("import: run=%s notify failed: %v", report.RunID, err)
		}
	}

	s.logger.Printf("import: run=%s source=%s file=%s outcome=%s parsed=%d inserted=%d skipped=%d unmapped=%d errors=%d warnings=%d duration=%s",
		report.RunID, report.Source, report.FileName, report.Outcome,
		report.RowsParsed, report.Inserted, report.Skipped, report.Unmapped,
		len(report.Errors), len(report.Warnings), report.Duration.Round(time.Millisecond))

	if fatal != nil {
		return report, fatal
	}
	if auditErr != nil {
		return report, fmt.Errorf("import: write audit entry: %w", auditErr)
	}
	return report, nil
}

// runOutcome classifies a run. Success means every parsed record landed;
// anything dropped along the way makes the run partial so the operator
// reviews the report.
func runOutcome(report *Report, fatal error) string {
	if fatal != nil {
		return audit.StatusError
	}
	if report.Inserted > 0 && report.Skipped == 0 && report.Unmapped == 0 && len(report.Errors) == 0 {
		return audit.StatusSuccess
	}
	return audit.StatusPartial
}

func auditMessage(report *Report, fatal error) string {
	if fatal != nil {
		return fatal.Error()
	}
	msg := fmt.Sprintf("parsed=%d inserted=%d duplicates=%d unmapped=%d row_errors=%d warnings=%d",
		report.RowsParsed, report.Inserted, report.Skipped, report.Unmapped, len(report.Errors), len(report.Warnings))
	if len(report.UnmappedNames) > 0 {
		msg += " unmapped_names=" + strings.Join(report.UnmappedNames, "、")
	}
	return msg
}
