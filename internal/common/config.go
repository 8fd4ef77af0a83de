package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Pipeline PipelineConfig
	Export   ExportConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// PipelineConfig holds extraction pipeline configuration
type PipelineConfig struct {
	Workers      int
	ImageLimit   int
	StageTimeout time.Duration
}

// ExportConfig holds export-related configuration
type ExportConfig struct {
	CSVPath           string
	ConfidenceCSVPath string
	EstimateMarker    string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", "file:factset.db"),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Pipeline: PipelineConfig{
			Workers:      getEnvAsInt("PIPELINE_WORKERS", 4),
			ImageLimit:   getEnvAsInt("PIPELINE_IMAGE_LIMIT", 0),
			StageTimeout: getEnvAsDuration("PIPELINE_STAGE_TIMEOUT", 2*time.Minute),
		},
		Export: ExportConfig{
			CSVPath:           getEnv("EXPORT_CSV", "output/extracted_estimates.csv"),
			ConfidenceCSVPath: getEnv("EXPORT_CONFIDENCE_CSV", "output/extracted_estimates_confidence.csv"),
			EstimateMarker:    getEnv("EXPORT_ESTIMATE_MARKER", "*"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Pipeline.Workers < 1 {
		return NewAppError("CONFIG_ERROR", "PIPELINE_WORKERS must be >= 1", ErrInvalidInput)
	}
	return nil
}
