package application

import (
	"os"
	"path/filepath"
	"testing"

	"spaceledger/internal/ingestion/sources"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("INGEST_CONFIG", "")
	t.Setenv("INGEST_CHUNK_SIZE", "")
	t.Setenv("INGEST_WEBHOOK_URL", "")
	t.Setenv("INGEST_WATCH_DIR", "")
	t.Setenv("INGEST_WATCH_INTERVAL", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ChunkSize != DefaultChunkSize {
		t.Fatalf("expected default chunk size %d, got %d", DefaultChunkSize, cfg.ChunkSize)
	}
	if cfg.Watch.IntervalSeconds != 60 {
		t.Fatalf("expected default interval 60, got %d", cfg.Watch.IntervalSeconds)
	}
	if cfg.Watch.Dir == "" {
		t.Fatal("expected a default watch dir")
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ingest.yaml")
	content := `
chunk_size: 25
webhook_url: https://hooks.example.com/ingest
watch:
  dir: /srv/ingest/drop
  interval_seconds: 30
sources:
  spacee:
    ambiguous_listings:
      - 新宿第2ビル会議室
  spacemarket:
    known_locations:
      - contains: 渋谷
        name: 渋谷スペース
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("INGEST_CONFIG", path)
	t.Setenv("INGEST_CHUNK_SIZE", "")
	t.Setenv("INGEST_WATCH_DIR", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ChunkSize != 25 {
		t.Fatalf("expected chunk size 25, got %d", cfg.ChunkSize)
	}
	if cfg.WebhookURL != "https://hooks.example.com/ingest" {
		t.Fatalf("unexpected webhook url %q", cfg.WebhookURL)
	}
	if cfg.Watch.Dir != "/srv/ingest/drop" || cfg.Watch.IntervalSeconds != 30 {
		t.Fatalf("unexpected watch config %+v", cfg.Watch)
	}

	ambiguous := cfg.AmbiguousListings("spacee")
	if len(ambiguous) != 1 || ambiguous[0] != "新宿第2ビル会議室" {
		t.Fatalf("unexpected ambiguous listings %v", ambiguous)
	}
	if got := cfg.AmbiguousListings("instabase"); len(got) != 0 {
		t.Fatalf("expected no ambiguous listings for instabase, got %v", got)
	}

	parserCfg := cfg.ParserConfig()
	want := sources.LocationRule{Contains: "渋谷", Name: "渋谷スペース"}
	if len(parserCfg.SpacemarketLocations) != 1 || parserCfg.SpacemarketLocations[0] != want {
		t.Fatalf("unexpected parser locations %v", parserCfg.SpacemarketLocations)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("INGEST_CONFIG", "")
	t.Setenv("INGEST_CHUNK_SIZE", "500")
	t.Setenv("INGEST_WATCH_DIR", "/tmp/drop")
	t.Setenv("INGEST_WATCH_INTERVAL", "120")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ChunkSize != 500 {
		t.Fatalf("expected chunk size 500, got %d", cfg.ChunkSize)
	}
	if cfg.Watch.Dir != "/tmp/drop" {
		t.Fatalf("expected watch dir /tmp/drop, got %q", cfg.Watch.Dir)
	}
	if cfg.Watch.IntervalSeconds != 120 {
		t.Fatalf("expected interval 120, got %d", cfg.Watch.IntervalSeconds)
	}
}
