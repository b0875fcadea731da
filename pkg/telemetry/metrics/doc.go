// Package metrics provides Prometheus metrics for the validation service.
//
// # Metrics
//
//   - sentinel_loads_total{outcome}: document load attempts
//   - sentinel_validations_total{outcome}: validation verdicts
//   - sentinel_diffs_total: change-analysis runs
//   - sentinel_changes_total{severity}: classified changes
//   - sentinel_schema_reloads_total{outcome}: registry reloads
//   - sentinel_parse_duration_seconds: load+validate latency
//   - sentinel_document_size_bytes: submitted document sizes
//
// The engine facade is the single instrumentation point for loads,
// validations and diffs; schema reload outcomes are reported by whoever
// drives the reload. The parser, validator and analyzer never touch the
// collector.
package metrics
