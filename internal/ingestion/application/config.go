package application

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"spaceledger/internal/ingestion/sources"
)

// DefaultChunkSize bounds one persistence statement. Chunks keep
// transaction and memory size flat on large month-end exports.
const DefaultChunkSize = 100

// SourceConfig tunes one source's heuristics.
type SourceConfig struct {
	// AmbiguousListings are display names shared by several physical
	// rooms; records for them must carry a matching sub-space label.
	AmbiguousListings []string `yaml:"ambiguous_listings"`
	// KnownLocations extend the built-in title extraction rules.
	KnownLocations []LocationRule `yaml:"known_locations"`
}

// LocationRule maps a listing title substring to a canonical venue name.
type LocationRule struct {
	Contains string `yaml:"contains"`
	Name     string `yaml:"name"`
}

// WatchConfig defines the drop directory scan.
type WatchConfig struct {
	Dir             string `yaml:"dir"`
	IntervalSeconds int    `yaml:"interval_seconds"`
}

// Config defines ingestion configuration.
type Config struct {
	ChunkSize  int                     `yaml:"chunk_size"`
	WebhookURL string                  `yaml:"webhook_url"`
	Watch      WatchConfig             `yaml:"watch"`
	Sources    map[string]SourceConfig `yaml:"sources"`
}

// LoadConfig loads config from yaml or env.
func LoadConfig() (Config, error) {
	cfg := Config{
		ChunkSize:  getenvIntDefault("INGEST_CHUNK_SIZE", DefaultChunkSize),
		WebhookURL: os.Getenv("INGEST_WEBHOOK_URL"),
		Watch: WatchConfig{
			Dir:             getenvDefault("INGEST_WATCH_DIR", filepath.FromSlash("var/ingest/incoming")),
			IntervalSeconds: getenvIntDefault("INGEST_WATCH_INTERVAL", 60),
		},
	}

	if path := os.Getenv("INGEST_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.WebhookURL == "" {
		cfg.WebhookURL = os.Getenv("INGEST_WEBHOOK_URL")
	}
	if cfg.Watch.IntervalSeconds <= 0 {
		cfg.Watch.IntervalSeconds = 60
	}
	if cfg.Watch.Dir == "" {
		return cfg, errors.New("ingestion: watch dir required")
	}
	return cfg, nil
}

// AmbiguousListings returns the configured multi-room listing names for a
// source.
func (c Config) AmbiguousListings(source string) []string {
	if c.Sources == nil {
		return nil
	}
	return c.Sources[source].AmbiguousListings
}

// ParserConfig converts the per-source tuning into parser configuration.
func (c Config) ParserConfig() sources.Config {
	var out sources.Config
	if c.Sources == nil {
		return out
	}
	for _, rule := range c.Sources[sources.SourceSpacemarket].KnownLocations {
		if rule.Contains == "" || rule.Name == "" {
			continue
		}
		out.SpacemarketLocations = append(out.SpacemarketLocations, sources.LocationRule{
			Contains: rule.Contains,
			Name:     rule.Name,
		})
	}
	return out
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
