// Package config provides application configuration loading from environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Storage backends.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Defaults applied when a variable is unset or invalid.
const (
	DefaultDataDir       = "./data"
	DefaultDueDays       = 30
	DefaultUpcomingLimit = 10
	DefaultLogFormat     = "console"
)

// DefaultTaxRate is the tax percentage applied to new invoices.
var DefaultTaxRate = decimal.NewFromInt(10)

// Config holds all configuration for the application.
type Config struct {
	StorageBackend string
	DataDir        string
	DatabaseURL    string
	GeminiAPIKey   string
	LogLevel       string
	LogFormat      string
	DefaultTaxRate decimal.Decimal
	DefaultDueDays int
	UpcomingLimit  int

	TelemetryExporter string
	OTLPProtocol      string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		StorageBackend: strings.ToLower(strings.TrimSpace(os.Getenv("STORAGE_BACKEND"))),
		DataDir:        strings.TrimSpace(os.Getenv("DATA_DIR")),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		LogLevel:       os.Getenv("LOG_LEVEL"),
		LogFormat:      strings.ToLower(strings.TrimSpace(os.Getenv("LOG_FORMAT"))),
		DefaultTaxRate: DefaultTaxRate,
		DefaultDueDays: DefaultDueDays,
		UpcomingLimit:  DefaultUpcomingLimit,

		TelemetryExporter: strings.ToLower(strings.TrimSpace(os.Getenv("TELEMETRY_EXPORTER"))),
		OTLPProtocol:      strings.ToLower(strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_PROTOCOL"))),
	}

	if cfg.StorageBackend == "" {
		cfg.StorageBackend = BackendFile
	}
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir
	}
	cfg.DataDir = filepath.Clean(cfg.DataDir)
	if cfg.TelemetryExporter == "" {
		cfg.TelemetryExporter = "none"
	}
	if cfg.OTLPProtocol != "http/protobuf" {
		cfg.OTLPProtocol = "grpc"
	}
	if cfg.LogFormat != "json" {
		cfg.LogFormat = DefaultLogFormat
	}

	if rateStr := strings.TrimSpace(os.Getenv("DEFAULT_TAX_RATE")); rateStr != "" {
		if rate, err := decimal.NewFromString(rateStr); err == nil && !rate.IsNegative() {
			cfg.DefaultTaxRate = rate
		}
	}
	if daysStr := os.Getenv("DEFAULT_DUE_DAYS"); daysStr != "" {
		if d, err := strconv.Atoi(strings.TrimSpace(daysStr)); err == nil && d >= 1 && d <= 365 {
			cfg.DefaultDueDays = d
		}
	}
	if limitStr := os.Getenv("UPCOMING_LIMIT"); limitStr != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(limitStr)); err == nil && n > 0 {
			cfg.UpcomingLimit = n
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks that all required configuration is present.
func (c *Config) validate() error {
	var errs []string

	switch c.StorageBackend {
	case BackendFile, BackendMemory:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, "DATABASE_URL is required for the postgres backend")
		}
	default:
		errs = append(errs, fmt.Sprintf("STORAGE_BACKEND %q is not one of file, postgres, memory", c.StorageBackend))
	}

	switch c.TelemetryExporter {
	case "none", "stdout", "otlp":
	default:
		errs = append(errs, fmt.Sprintf("TELEMETRY_EXPORTER %q is not one of none, stdout, otlp", c.TelemetryExporter))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// ReceiptScanningEnabled reports whether a Gemini API key is configured.
func (c *Config) ReceiptScanningEnabled() bool {
	return c.GeminiAPIKey != ""
}
