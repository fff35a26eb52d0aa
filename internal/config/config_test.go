package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "LOG_LEVEL", "BQ_DATASET", "BATCH_WORKERS", "APPLICATION_TIMEOUT_SECONDS", "NARRATIVE_ENABLED", "GCP_PROJECT_ID", "GOOGLE_CLOUD_PROJECT", "NOTION_TOKEN", "NOTION_DATABASE_ID"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.HTTP.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.HTTP.Port)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.GCP.Dataset != "hcstc" || cfg.GCP.DecisionsTable != "decisions" {
		t.Errorf("GCP = %+v", cfg.GCP)
	}
	if cfg.Batch.Workers != 4 || cfg.Batch.ApplicationTimeout != 30*time.Second {
		t.Errorf("Batch = %+v", cfg.Batch)
	}
	if cfg.Narrative.Enabled || cfg.Narrative.Model != "gemini-2.5-flash" {
		t.Errorf("Narrative = %+v", cfg.Narrative)
	}
	if cfg.NotionEnabled() {
		t.Error("Notion should be disabled without credentials")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "fallback-project")
	t.Setenv("GCP_PROJECT_ID", "")
	t.Setenv("BATCH_WORKERS", "8")
	t.Setenv("APPLICATION_TIMEOUT_SECONDS", "5")
	t.Setenv("NARRATIVE_ENABLED", "true")
	t.Setenv("PERSIST_DECISIONS", "1")
	t.Setenv("NOTION_TOKEN", "secret")
	t.Setenv("NOTION_DATABASE_ID", "db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.HTTP.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.HTTP.Port)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Format = %q, want json", cfg.Logging.Format)
	}
	if cfg.GCP.ProjectID != "fallback-project" {
		t.Errorf("ProjectID = %q, want fallback-project", cfg.GCP.ProjectID)
	}
	if cfg.Batch.Workers != 8 || cfg.Batch.ApplicationTimeout != 5*time.Second {
		t.Errorf("Batch = %+v", cfg.Batch)
	}
	if !cfg.Narrative.Enabled || !cfg.GCP.PersistDecisions {
		t.Error("expected narrative and persistence enabled")
	}
	if !cfg.NotionEnabled() {
		t.Error("expected Notion enabled")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "non-numeric port", key: "PORT", value: "http"},
		{name: "port out of range", key: "PORT", value: "70000"},
		{name: "zero timeout", key: "APPLICATION_TIMEOUT_SECONDS", value: "0"},
		{name: "negative workers", key: "BATCH_WORKERS", value: "-2"},
		{name: "bad shutdown timeout", key: "SERVER_SHUTDOWN_TIMEOUT", value: "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%q: expected an error", tt.key, tt.value)
			}
		})
	}
}
