package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that functionality.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	// Unmarshal over the default set so enabled flags keep their
	// default of true unless the file switches them off explicitly.
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	// Fields the file set to a zero value fall back to defaults.
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention SENTINEL_SECTION_FIELD (e.g., SENTINEL_SERVER_LISTEN_ADDRESS).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	// Re-validate after overrides
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format SENTINEL_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("SENTINEL_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("SENTINEL_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("SENTINEL_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("SENTINEL_SERVER_IDLE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.IdleTimeout = d
		}
	}
	if val := os.Getenv("SENTINEL_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}
	if val := os.Getenv("SENTINEL_SERVER_MAX_BODY_BYTES"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Server.MaxBodyBytes = i
		}
	}

	// Limit overrides
	if val := os.Getenv("SENTINEL_LIMITS_MAX_DOCUMENT_BYTES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Limits.MaxDocumentBytes = i
		}
	}
	if val := os.Getenv("SENTINEL_LIMITS_PARSE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Limits.ParseTimeout = d
		}
	}
	if val := os.Getenv("SENTINEL_LIMITS_MAX_DEPTH"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Limits.MaxDepth = i
		}
	}
	if val := os.Getenv("SENTINEL_LIMITS_MAX_NODES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Limits.MaxNodes = i
		}
	}

	// Schema overrides
	if val := os.Getenv("SENTINEL_SCHEMA_DIR"); val != "" {
		cfg.Schema.Dir = val
	}
	if val := os.Getenv("SENTINEL_SCHEMA_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Schema.Watch = b
		}
	}
	if val := os.Getenv("SENTINEL_SCHEMA_REFRESH_SCHEDULE"); val != "" {
		cfg.Schema.RefreshSchedule = val
	}

	// History overrides
	if val := os.Getenv("SENTINEL_HISTORY_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.History.Enabled = b
		}
	}
	if val := os.Getenv("SENTINEL_HISTORY_BACKEND"); val != "" {
		cfg.History.Backend = val
	}
	if val := os.Getenv("SENTINEL_HISTORY_SQLITE_PATH"); val != "" {
		cfg.History.SQLitePath = val
	}
	if val := os.Getenv("SENTINEL_HISTORY_BUFFER_SIZE"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.History.BufferSize = i
		}
	}
	if val := os.Getenv("SENTINEL_HISTORY_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.History.RetentionDays = i
		}
	}
	if val := os.Getenv("SENTINEL_HISTORY_RETENTION_SCHEDULE"); val != "" {
		cfg.History.RetentionSchedule = val
	}

	// Telemetry overrides
	if val := os.Getenv("SENTINEL_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("SENTINEL_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("SENTINEL_TELEMETRY_LOGGING_ADD_SOURCE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Logging.AddSource = b
		}
	}
	if val := os.Getenv("SENTINEL_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("SENTINEL_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
}
