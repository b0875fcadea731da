package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Load outcomes for the loads_total counter.
const (
	OutcomeOK                = "ok"
	OutcomeSecurityViolation = "security_violation"
	OutcomeParseError        = "parse_error"
)

// Config contains configuration for the Collector.
type Config struct {
	// Enabled toggles all recording. A disabled collector still registers
	// its metrics so dashboards see zeros instead of gaps.
	Enabled bool

	// Namespace prefixes every metric name. Defaults to "sentinel".
	Namespace string
}

// Collector owns the Prometheus metrics for the validation service. One
// collector is shared by every front door; all methods are safe for
// concurrent use.
type Collector struct {
	enabled  bool
	registry *prometheus.Registry

	loadsTotal       *prometheus.CounterVec
	validationsTotal *prometheus.CounterVec
	diffsTotal       prometheus.Counter
	changesTotal     *prometheus.CounterVec
	schemaReloads    *prometheus.CounterVec

	parseDuration prometheus.Histogram
	documentSize  prometheus.Histogram
}

// NewCollector creates a collector and registers its metrics with the
// given registry. If registry is nil a fresh one is created.
func NewCollector(cfg Config, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "sentinel"
	}

	c := &Collector{
		enabled:  cfg.Enabled,
		registry: registry,

		loadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "loads_total",
				Help:      "Total number of document load attempts",
			},
			[]string{"outcome"},
		),

		validationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validations_total",
				Help:      "Total number of validations by verdict",
			},
			[]string{"outcome"},
		),

		diffsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "diffs_total",
				Help:      "Total number of change-analysis runs",
			},
		),

		changesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "changes_total",
				Help:      "Total number of classified changes by severity",
			},
			[]string{"severity"},
		),

		schemaReloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "schema_reloads_total",
				Help:      "Total number of schema registry reloads",
			},
			[]string{"outcome"},
		),

		parseDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "parse_duration_seconds",
				Help:      "Time spent loading and validating one document",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
		),

		documentSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "document_size_bytes",
				Help:      "Size of submitted documents in bytes",
				Buckets:   prometheus.ExponentialBuckets(256, 2, 13), // 256B to 1MiB
			},
		),
	}

	registry.MustRegister(
		c.loadsTotal,
		c.validationsTotal,
		c.diffsTotal,
		c.changesTotal,
		c.schemaReloads,
		c.parseDuration,
		c.documentSize,
	)

	return c
}

// RecordLoad records one load attempt: its outcome, the submitted size,
// and the time spent.
func (c *Collector) RecordLoad(outcome string, size int, duration time.Duration) {
	if !c.enabled {
		return
	}
	c.loadsTotal.WithLabelValues(outcome).Inc()
	c.documentSize.Observe(float64(size))
	c.parseDuration.Observe(duration.Seconds())
}

// RecordValidation records one validation verdict.
func (c *Collector) RecordValidation(valid bool) {
	if !c.enabled {
		return
	}
	outcome := "valid"
	if !valid {
		outcome = "invalid"
	}
	c.validationsTotal.WithLabelValues(outcome).Inc()
}

// RecordDiff records one completed change analysis and its classified
// change counts per severity.
func (c *Collector) RecordDiff(errors, warnings, info int) {
	if !c.enabled {
		return
	}
	c.diffsTotal.Inc()
	if errors > 0 {
		c.changesTotal.WithLabelValues("error").Add(float64(errors))
	}
	if warnings > 0 {
		c.changesTotal.WithLabelValues("warning").Add(float64(warnings))
	}
	if info > 0 {
		c.changesTotal.WithLabelValues("info").Add(float64(info))
	}
}

// RecordSchemaReload records one registry reload attempt.
func (c *Collector) RecordSchemaReload(ok bool) {
	if !c.enabled {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	c.schemaReloads.WithLabelValues(outcome).Inc()
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
