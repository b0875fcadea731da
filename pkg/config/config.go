package config

import "time"

// Config is the root configuration structure for Sentinel. It contains
// all configuration sections for the HTTP server, document load limits,
// schema sources, run history, and telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen address
	// and timeouts.
	Server ServerConfig `yaml:"server"`

	// Limits contains the resource limits applied to every document load.
	Limits LimitsConfig `yaml:"limits"`

	// Schema contains configuration for where schema definitions come from
	// and how they are refreshed.
	Schema SchemaConfig `yaml:"schema"`

	// History contains configuration for validation/diff run recording.
	History HistoryConfig `yaml:"history"`

	// Telemetry contains configuration for logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP API server.
type ServerConfig struct {
	// ListenAddress is the address and port for the server to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8466", "0.0.0.0:8466").
	// Default: "127.0.0.1:8466"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next
	// request when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown before in-flight requests are abandoned.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxBodyBytes limits the size of request bodies. Requests beyond it
	// are rejected before any parsing happens.
	// Default: 2097152 (2MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// LimitsConfig contains the resource limits enforced by the document
// loader. They exist to make hostile input a bounded cost.
type LimitsConfig struct {
	// MaxDocumentBytes is the maximum accepted document size, checked
	// before any parsing.
	// Default: 1048576 (1MB)
	MaxDocumentBytes int `yaml:"max_document_bytes"`

	// ParseTimeout bounds the total time one load may take, enforced
	// during recursive descent.
	// Default: 5s
	ParseTimeout time.Duration `yaml:"parse_timeout"`

	// MaxDepth is the maximum nesting depth of a document.
	// Default: 64
	MaxDepth int `yaml:"max_depth"`

	// MaxNodes is the maximum number of nodes one document may expand to,
	// counting alias expansion.
	// Default: 500000
	MaxNodes int `yaml:"max_nodes"`
}

// SchemaConfig contains configuration for schema definition sources.
type SchemaConfig struct {
	// Dir is a directory of *.schema.yaml definition artifacts. When
	// empty, only the compiled-in definitions are served.
	// Default: "" (builtin only)
	Dir string `yaml:"dir"`

	// Watch enables reloading the registry when files under Dir change.
	// Ignored when Dir is empty.
	// Default: false
	Watch bool `yaml:"watch"`

	// RefreshSchedule is a cron expression for periodic registry reloads,
	// for deployments where file events are unreliable (e.g. NFS).
	// Empty disables scheduled reloads.
	// Default: ""
	RefreshSchedule string `yaml:"refresh_schedule"`
}

// HistoryConfig contains configuration for run-history recording.
type HistoryConfig struct {
	// Enabled controls whether validation and diff runs are recorded.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Backend selects the history store.
	// Options: "sqlite", "memory"
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// SQLitePath is the database file path when Backend is "sqlite".
	// Default: "data/history.db"
	SQLitePath string `yaml:"sqlite_path"`

	// BufferSize is the async recorder queue length. Records are dropped,
	// not blocked on, when the queue is full.
	// Default: 1000
	BufferSize int `yaml:"buffer_size"`

	// RetentionDays is how long records are kept. Zero disables pruning.
	// Default: 90
	RetentionDays int `yaml:"retention_days"`

	// RetentionSchedule is the cron expression for the pruning job.
	// Default: "0 3 * * *"
	RetentionSchedule string `yaml:"retention_schedule"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format ("json", "text", "console").
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in logs.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are recorded and exposed.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the metrics endpoint path.
	// Default: "/metrics"
	Path string `yaml:"path"`
}
