package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8466"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxBodyBytes    = int64(2 * 1024 * 1024)

	// Limit defaults
	DefaultMaxDocumentBytes = 1024 * 1024
	DefaultParseTimeout     = 5 * time.Second
	DefaultMaxDepth         = 64
	DefaultMaxNodes         = 500_000

	// History defaults
	DefaultHistoryEnabled           = true
	DefaultHistoryBackend           = "sqlite"
	DefaultHistorySQLitePath        = "data/history.db"
	DefaultHistoryBufferSize        = 1000
	DefaultHistoryRetentionDays     = 90
	DefaultHistoryRetentionSchedule = "0 3 * * *"

	// Telemetry defaults
	DefaultLoggingLevel   = "info"
	DefaultLoggingFormat  = "json"
	DefaultMetricsEnabled = true
	DefaultMetricsPath    = "/metrics"
)

// DefaultConfig returns a configuration with every field set to its
// default. It is what the CLI runs with when no file is given.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	// Enabled flags default to true, which ApplyDefaults cannot express
	// without clobbering an explicit false. They are set here and survive
	// file parsing because LoadConfig unmarshals over the default set.
	cfg.History.Enabled = DefaultHistoryEnabled
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	return cfg
}

// ApplyDefaults fills in default values for any configuration fields that
// are unset (zero values). Explicitly set values are left alone.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}

	if cfg.Limits.MaxDocumentBytes == 0 {
		cfg.Limits.MaxDocumentBytes = DefaultMaxDocumentBytes
	}
	if cfg.Limits.ParseTimeout == 0 {
		cfg.Limits.ParseTimeout = DefaultParseTimeout
	}
	if cfg.Limits.MaxDepth == 0 {
		cfg.Limits.MaxDepth = DefaultMaxDepth
	}
	if cfg.Limits.MaxNodes == 0 {
		cfg.Limits.MaxNodes = DefaultMaxNodes
	}

	if cfg.History.Backend == "" {
		cfg.History.Backend = DefaultHistoryBackend
	}
	if cfg.History.SQLitePath == "" {
		cfg.History.SQLitePath = DefaultHistorySQLitePath
	}
	if cfg.History.BufferSize == 0 {
		cfg.History.BufferSize = DefaultHistoryBufferSize
	}
	if cfg.History.RetentionDays == 0 {
		cfg.History.RetentionDays = DefaultHistoryRetentionDays
	}
	if cfg.History.RetentionSchedule == "" {
		cfg.History.RetentionSchedule = DefaultHistoryRetentionSchedule
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
}
