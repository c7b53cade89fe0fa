package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "spaceledger_"

// Label values shared with callers.
const (
	ResultSuccess = "success"
	ResultError   = "error"

	DispositionInserted  = "inserted"
	DispositionDuplicate = "duplicate"
	DispositionUnmapped  = "unmapped"
	DispositionRowError  = "row_error"
)

var (
	registerOnce sync.Once

	importRuns     *prometheus.CounterVec
	importDuration *prometheus.HistogramVec
	importRecords  *prometheus.CounterVec
	chunkFailures  *prometheus.CounterVec

	watchFiles *prometheus.CounterVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		importRuns = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "import_runs_total",
				Help: "Total import runs by source and outcome",
			},
			[]string{"source", "outcome"},
		)
		importDuration = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "import_run_duration_seconds",
				Help:    "Import run duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source", "outcome"},
		)
		importRecords = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "import_records_total",
				Help: "Total processed records by source and disposition",
			},
			[]string{"source", "disposition"},
		)
		chunkFailures = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "import_chunk_failures_total",
				Help: "Total persistence chunk failures by source",
			},
			[]string{"source"},
		)

		watchFiles = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "watch_files_total",
				Help: "Total files picked up by the drop directory watcher, by result",
			},
			[]string{"result"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_export_total",
				Help: "Total run report exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_export_latency_seconds",
				Help:    "Run report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			importRuns,
			importDuration,
			importRecords,
			chunkFailures,
			watchFiles,
			exportTotal,
			exportLatency,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveImportRun records one finished run with its outcome.
func ObserveImportRun(source, outcome string, duration time.Duration) {
	if source == "" {
		source = "unknown"
	}
	if outcome == "" {
		outcome = ResultSuccess
	}
	if importRuns != nil {
		importRuns.WithLabelValues(source, outcome).Inc()
	}
	if importDuration != nil {
		importDuration.WithLabelValues(source, outcome).Observe(duration.Seconds())
	}
}

// AddRecords increments the record counter by disposition.
func AddRecords(source, disposition string, count int) {
	if count <= 0 {
		return
	}
	if source == "" {
		source = "unknown"
	}
	if disposition == "" {
		disposition = "unknown"
	}
	if importRecords != nil {
		importRecords.WithLabelValues(source, disposition).Add(float64(count))
	}
}

// IncChunkFailure counts a failed persistence chunk.
func IncChunkFailure(source string) {
	if source == "" {
		source = "unknown"
	}
	if chunkFailures != nil {
		chunkFailures.WithLabelValues(source).Inc()
	}
}

// IncWatchFile counts a file handled by the directory watcher.
func IncWatchFile(result string) {
	if result == "" {
		result = "unknown"
	}
	if watchFiles != nil {
		watchFiles.WithLabelValues(result).Inc()
	}
}

// ObserveExport records report export latency and result.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = ResultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}
