package common

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.Database.DSN != "file:factset.db" {
		t.Errorf("DSN = %q", cfg.Database.DSN)
	}
	if cfg.Pipeline.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Pipeline.Workers)
	}
	if cfg.Export.EstimateMarker != "*" {
		t.Errorf("EstimateMarker = %q, want *", cfg.Export.EstimateMarker)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/factset")
	t.Setenv("PIPELINE_WORKERS", "8")
	t.Setenv("DB_DIAL_TIMEOUT", "10s")
	t.Setenv("EXPORT_ESTIMATE_MARKER", "(e)")

	cfg := LoadConfig()
	if cfg.Database.DSN != "postgres://localhost/factset" {
		t.Errorf("DSN = %q", cfg.Database.DSN)
	}
	if cfg.Pipeline.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Pipeline.Workers)
	}
	if cfg.Database.DialTimeout != 10*time.Second {
		t.Errorf("DialTimeout = %v, want 10s", cfg.Database.DialTimeout)
	}
	if cfg.Export.EstimateMarker != "(e)" {
		t.Errorf("EstimateMarker = %q", cfg.Export.EstimateMarker)
	}
}

func TestLoadConfigIgnoresMalformedEnv(t *testing.T) {
	t.Setenv("PIPELINE_WORKERS", "many")
	t.Setenv("DB_DIAL_TIMEOUT", "soon")

	cfg := LoadConfig()
	if cfg.Pipeline.Workers != 4 {
		t.Errorf("malformed int must fall back to default, got %d", cfg.Pipeline.Workers)
	}
	if cfg.Database.DialTimeout != 3*time.Second {
		t.Errorf("malformed duration must fall back to default, got %v", cfg.Database.DialTimeout)
	}
}

func TestValidate(t *testing.T) {
	cfg := LoadConfig()
	cfg.Pipeline.Workers = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero workers accepted")
	}

	cfg = LoadConfig()
	cfg.Database.DSN = ""
	if err := cfg.Validate(); err == nil {
		t.Error("empty DSN accepted")
	}
}
