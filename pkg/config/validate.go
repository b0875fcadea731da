package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateLimits(&cfg.Limits)...)
	errs = append(errs, validateSchema(&cfg.Schema)...)
	errs = append(errs, validateHistory(&cfg.History)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateServer validates HTTP server configuration.
func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}

	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must be positive",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must be positive",
		})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.idle_timeout",
			Message: "idle timeout must be positive",
		})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.shutdown_timeout",
			Message: "shutdown timeout must be positive",
		})
	}

	if cfg.MaxBodyBytes <= 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_body_bytes",
			Message: "max body bytes must be positive",
		})
	}

	return errs
}

// validateLimits validates document parsing limits.
func validateLimits(cfg *LimitsConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxDocumentBytes <= 0 {
		errs = append(errs, FieldError{
			Field:   "limits.max_document_bytes",
			Message: "max document bytes must be positive",
		})
	}
	if cfg.ParseTimeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "limits.parse_timeout",
			Message: "parse timeout must be positive",
		})
	}
	if cfg.MaxDepth <= 0 {
		errs = append(errs, FieldError{
			Field:   "limits.max_depth",
			Message: "max depth must be positive",
		})
	}
	if cfg.MaxNodes <= 0 {
		errs = append(errs, FieldError{
			Field:   "limits.max_nodes",
			Message: "max nodes must be positive",
		})
	}

	return errs
}

// validateSchema validates schema directory configuration.
func validateSchema(cfg *SchemaConfig) []FieldError {
	var errs []FieldError

	// Dir is optional; without it the compiled-in schemas are used and
	// watch/refresh settings have nothing to act on.
	if cfg.Dir == "" {
		if cfg.Watch {
			errs = append(errs, FieldError{
				Field:   "schema.watch",
				Message: "watch requires schema.dir to be set",
			})
		}
		if cfg.RefreshSchedule != "" {
			errs = append(errs, FieldError{
				Field:   "schema.refresh_schedule",
				Message: "refresh schedule requires schema.dir to be set",
			})
		}
		return errs
	}

	if cfg.RefreshSchedule != "" {
		if _, err := cron.ParseStandard(cfg.RefreshSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "schema.refresh_schedule",
				Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.RefreshSchedule, err),
			})
		}
	}

	return errs
}

// validateHistory validates history store configuration.
func validateHistory(cfg *HistoryConfig) []FieldError {
	var errs []FieldError

	// If history is disabled, skip validation
	if !cfg.Enabled {
		return errs
	}

	validBackends := map[string]bool{"sqlite": true, "memory": true}
	if cfg.Backend == "" {
		errs = append(errs, FieldError{
			Field:   "history.backend",
			Message: "backend is required when history is enabled",
		})
	} else if !validBackends[cfg.Backend] {
		errs = append(errs, FieldError{
			Field:   "history.backend",
			Message: fmt.Sprintf("invalid backend %q: must be 'sqlite' or 'memory'", cfg.Backend),
		})
	}

	if cfg.Backend == "sqlite" && cfg.SQLitePath == "" {
		errs = append(errs, FieldError{
			Field:   "history.sqlite_path",
			Message: "sqlite path is required for sqlite backend",
		})
	}

	if cfg.BufferSize <= 0 {
		errs = append(errs, FieldError{
			Field:   "history.buffer_size",
			Message: "buffer size must be positive",
		})
	}
	if cfg.RetentionDays < 0 {
		errs = append(errs, FieldError{
			Field:   "history.retention_days",
			Message: "retention days must be non-negative",
		})
	}

	if cfg.RetentionSchedule != "" {
		if _, err := cron.ParseStandard(cfg.RetentionSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "history.retention_schedule",
				Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.RetentionSchedule, err),
			})
		}
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if cfg.Logging.Level == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: "logging level is required",
		})
	} else if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if cfg.Logging.Format == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: "logging format is required",
		})
	} else if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json', 'text', or 'console'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Path == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path is required when metrics are enabled",
			})
		} else if !strings.HasPrefix(cfg.Metrics.Path, "/") {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path must start with '/'",
			})
		}
	}

	return errs
}
