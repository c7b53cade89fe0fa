package cmd

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"spaceledger/internal/ingestion/application"
	"spaceledger/internal/observability/metrics"
)

var (
	watchOnce        bool
	watchDir         string
	watchInterval    int
	watchMetricsAddr string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the drop directory and import new files",
	Long: `Scan the configured drop directory on an interval and import every
CSV file found there. Handled files move to processed/ or failed/ next
to the drop directory.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "scan a single time and exit")
	watchCmd.Flags().StringVar(&watchDir, "dir", "", "drop directory (overrides config)")
	watchCmd.Flags().IntVar(&watchInterval, "interval", 0, "scan interval in seconds (overrides config)")
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "serve /metrics and /healthz on this address")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadIngestConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("dir") {
		cfg.Watch.Dir = watchDir
	}
	if cmd.Flags().Changed("interval") {
		cfg.Watch.IntervalSeconds = watchInterval
	}
	logger := newLogger()

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	service, audits, err := buildImportService(db, cfg, logger)
	if err != nil {
		return err
	}
	watcher, err := application.NewWatcher(service, audits, cfg.Watch, logger)
	if err != nil {
		return err
	}

	if watchOnce {
		return watcher.Scan(cmd.Context())
	}

	metrics.Init(db, logger)
	if watchMetricsAddr != "" {
		go serveMetrics(watchMetricsAddr, logger)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Printf("watch: dir=%s interval=%ds", cfg.Watch.Dir, cfg.Watch.IntervalSeconds)
	watcher.Start(ctx)
	return nil
}

func serveMetrics(addr string, logger *log.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	logger.Printf("metrics listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Printf("metrics server error: %v", err)
	}
}
