// Package telemetry provides observability for Sentinel.
//
// # Components
//
//   - logging: structured slog-based logging with request context fields
//   - metrics: Prometheus metrics collection
//
// The core validation and analysis packages stay silent. The engine
// facade records load outcomes, validation verdicts and classified
// change counts when a collector is attached, so the HTTP server and
// the CLI share one instrumentation point; watchers report schema
// reload outcomes through the same collector.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//	collector := metrics.NewCollector(metrics.Config{Enabled: true}, nil)
//
//	eng := engine.New(registry).WithCollector(collector)
package telemetry
