package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP      HTTPConfig
	Logging   LoggingConfig
	GCP       GCPConfig
	Scoring   ScoringConfig
	Batch     BatchConfig
	Narrative NarrativeConfig
	Notion    NotionConfig
}

// HTTPConfig governs the API server.
type HTTPConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// APIToken enables bearer authentication when set.
	APIToken       string
	AllowedOrigins string
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level  string
	Format string // console|json
}

// GCPConfig names the BigQuery table and GCS bucket used by the service.
type GCPConfig struct {
	ProjectID      string
	Dataset        string
	DecisionsTable string
	Bucket         string
	ReportPrefix   string

	// PersistDecisions turns on the BigQuery decision sink.
	PersistDecisions bool
}

// ScoringConfig points at an optional YAML override of the scoring rules.
type ScoringConfig struct {
	ConfigPath string
}

// BatchConfig tunes the batch processor and the job queue.
type BatchConfig struct {
	Workers            int
	ApplicationTimeout time.Duration
	QueueSize          int
	MaxRetries         int
}

// NarrativeConfig controls the optional underwriter summary.
type NarrativeConfig struct {
	Enabled bool
	Model   string
}

// NotionConfig identifies the review database for referred applications.
type NotionConfig struct {
	Token      string
	DatabaseID string
}

const (
	defaultPort               = 8080
	defaultReadTimeout        = 15 * time.Second
	defaultWriteTimeout       = 60 * time.Second
	defaultIdleTimeout        = 60 * time.Second
	defaultShutdownTimeout    = 30 * time.Second
	defaultLoggingLevel       = "info"
	defaultLoggingFormat      = "console"
	defaultDataset            = "hcstc"
	defaultDecisionsTable     = "decisions"
	defaultReportPrefix       = "reports"
	defaultBatchWorkers       = 4
	defaultApplicationTimeout = 30
	defaultQueueSize          = 100
	defaultMaxRetries         = 3
	defaultNarrativeModel     = "gemini-2.5-flash"
)

// Load reads configuration from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		HTTP: HTTPConfig{
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			IdleTimeout:     defaultIdleTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
			APIToken:        os.Getenv("API_TOKEN"),
			AllowedOrigins:  valueOrDefault("ALLOWED_ORIGINS", "*"),
		},
		Logging: LoggingConfig{
			Level:  valueOrDefault("LOG_LEVEL", defaultLoggingLevel),
			Format: valueOrDefault("LOG_FORMAT", defaultLoggingFormat),
		},
		GCP: GCPConfig{
			ProjectID:        firstNonEmpty(os.Getenv("GCP_PROJECT_ID"), os.Getenv("GOOGLE_CLOUD_PROJECT")),
			Dataset:          valueOrDefault("BQ_DATASET", defaultDataset),
			DecisionsTable:   valueOrDefault("BQ_DECISIONS_TABLE", defaultDecisionsTable),
			Bucket:           os.Getenv("GCS_BUCKET"),
			ReportPrefix:     valueOrDefault("GCS_REPORT_PREFIX", defaultReportPrefix),
			PersistDecisions: parseBoolWithDefault("PERSIST_DECISIONS", false),
		},
		Scoring: ScoringConfig{
			ConfigPath: os.Getenv("SCORING_CONFIG_PATH"),
		},
		Batch: BatchConfig{
			Workers:    parseIntWithDefault("BATCH_WORKERS", defaultBatchWorkers),
			QueueSize:  parseIntWithDefault("JOB_QUEUE_SIZE", defaultQueueSize),
			MaxRetries: parseIntWithDefault("JOB_MAX_RETRIES", defaultMaxRetries),
		},
		Narrative: NarrativeConfig{
			Enabled: parseBoolWithDefault("NARRATIVE_ENABLED", false),
			Model:   valueOrDefault("NARRATIVE_MODEL", defaultNarrativeModel),
		},
		Notion: NotionConfig{
			Token:      os.Getenv("NOTION_TOKEN"),
			DatabaseID: os.Getenv("NOTION_DATABASE_ID"),
		},
	}

	port, err := parsePort("PORT", defaultPort)
	if err != nil {
		return Config{}, err
	}
	cfg.HTTP.Port = port

	seconds := parseIntWithDefault("APPLICATION_TIMEOUT_SECONDS", defaultApplicationTimeout)
	if seconds <= 0 {
		return Config{}, fmt.Errorf("invalid APPLICATION_TIMEOUT_SECONDS value %d: must be positive", seconds)
	}
	cfg.Batch.ApplicationTimeout = time.Duration(seconds) * time.Second

	if cfg.Batch.Workers <= 0 {
		return Config{}, fmt.Errorf("invalid BATCH_WORKERS value %d: must be positive", cfg.Batch.Workers)
	}

	if v := os.Getenv("SERVER_SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SERVER_SHUTDOWN_TIMEOUT: %w", err)
		}
		cfg.HTTP.ShutdownTimeout = d
	}

	return cfg, nil
}

// NotionEnabled reports whether both Notion settings are present.
func (c Config) NotionEnabled() bool {
	return c.Notion.Token != "" && c.Notion.DatabaseID != ""
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func parseIntWithDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			return val
		}
	}
	return fallback
}

func parsePort(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		if port <= 0 || port > 65535 {
			return 0, fmt.Errorf("port %d is out of range", port)
		}
		return port, nil
	}
	return fallback, nil
}
