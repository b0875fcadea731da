// Package config provides configuration management for Sentinel.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with comprehensive validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention SENTINEL_SECTION_FIELD.
// For example:
//
//   - SENTINEL_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - SENTINEL_SCHEMA_DIR overrides schema.dir
//   - SENTINEL_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based configuration.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton Pattern
//
// For application-wide configuration access, use the singleton pattern:
//
//	// At application startup
//	if err := config.Initialize("config.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Anywhere in the application
//	cfg := config.GetConfig()
//	fmt.Println(cfg.Server.ListenAddress)
//
// For testing, prefer dependency injection with explicit Config instances
// rather than the global singleton.
//
// # Validation
//
// All configuration is validated automatically during loading. Validation includes:
//
//   - Required field checks (e.g., listen address, sqlite path)
//   - Range validation (e.g., limits and timeouts must be positive)
//   - Format validation (e.g., cron schedules must parse)
//   - Logical validation (e.g., schema watching requires a schema directory)
//
// Validation errors include field paths and helpful messages:
//
//	configuration validation failed with 2 errors:
//	  - history.backend: invalid backend "redis": must be 'sqlite' or 'memory'
//	  - telemetry.logging.level: invalid logging level "verbose": must be 'debug', 'info', 'warn', or 'error'
//
// # Example Configuration
//
// Here is a minimal configuration file:
//
//	server:
//	  listen_address: "127.0.0.1:8466"
//
//	schema:
//	  dir: "./schemas"
//	  watch: true
//
//	history:
//	  enabled: true
//	  backend: "sqlite"
//	  sqlite_path: "data/history.db"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
package config
