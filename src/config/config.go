package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"go.uber.org/zap/zapcore"
)

// Config holds all configuration values for the intent compiler
type Config struct {
	// General configuration
	LogLevel string `json:"log_level"`

	// Output configuration
	OutputDir     string `json:"output_dir"`
	EnableCaching bool   `json:"enable_caching"`
	Verify        bool   `json:"verify"`

	// Catalog configuration
	CatalogPath      string `json:"catalog_path"`
	DefaultSliceType string `json:"default_slice_type"`

	// Reproducible builds
	SourceDateEpoch string `json:"source_date_epoch"`

	// Metrics configuration
	MetricsFile string `json:"metrics_file"`
}

// LoadConfig loads configuration from environment variables with defaults
func LoadConfig() (*Config, error) {
	config := &Config{}

	config.LogLevel = getEnvString("LOG_LEVEL", "info")

	config.OutputDir = getEnvString("INTENT_COMPILER_OUTPUT_DIR", "rendered/krm")
	config.EnableCaching = getEnvBool("INTENT_COMPILER_ENABLE_CACHING", true)
	config.Verify = getEnvBool("INTENT_COMPILER_VERIFY", false)

	config.CatalogPath = getEnvString("INTENT_COMPILER_CATALOG", "")
	config.DefaultSliceType = getEnvString("INTENT_COMPILER_DEFAULT_SLICE_TYPE", "")

	config.SourceDateEpoch = getEnvString("SOURCE_DATE_EPOCH", "")

	config.MetricsFile = getEnvString("INTENT_COMPILER_METRICS_FILE", "")

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate checks every value and reports all problems at once. Flags may
// change a loaded config, so callers validate again after applying them.
func (c *Config) Validate() error {
	var errors []string

	if c.OutputDir == "" {
		errors = append(errors, "INTENT_COMPILER_OUTPUT_DIR must not be empty")
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("LOG_LEVEL %q must be one of debug, info, warn or error", c.LogLevel))
	}

	if c.SourceDateEpoch != "" {
		if epoch, err := strconv.ParseInt(c.SourceDateEpoch, 10, 64); err != nil || epoch < 0 {
			errors = append(errors, "SOURCE_DATE_EPOCH must be a non-negative integer")
		}
	}

	if c.CatalogPath != "" {
		ext := strings.ToLower(filepath.Ext(c.CatalogPath))
		if ext != ".yaml" && ext != ".yml" {
			errors = append(errors, "INTENT_COMPILER_CATALOG must be a .yaml or .yml file")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errors, ", "))
	}

	return nil
}

// GetLogLevel returns the zap level for the configured log level
func (c *Config) GetLogLevel() zapcore.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Timestamp returns the build timestamp. SOURCE_DATE_EPOCH wins when set;
// otherwise now is used.
func (c *Config) Timestamp(now func() time.Time) time.Time {
	if c.SourceDateEpoch != "" {
		if epoch, err := strconv.ParseInt(c.SourceDateEpoch, 10, 64); err == nil {
			return time.Unix(epoch, 0).UTC()
		}
	}
	return now().UTC()
}

// PrintConfig logs the configuration
func (c *Config) PrintConfig(logger logr.Logger) {
	logger.Info("Configuration loaded",
		"log_level", c.LogLevel,
		"output_dir", c.OutputDir,
		"enable_caching", c.EnableCaching,
		"verify", c.Verify,
		"catalog_path", c.CatalogPath,
		"default_slice_type", c.DefaultSliceType,
		"source_date_epoch", c.SourceDateEpoch,
		"metrics_file", c.MetricsFile,
	)
}

// Environment variable helper functions
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
