// Package engine is the facade the front doors call. It wires the loader,
// the validator, and the change analyzer into the two operations the rest
// of the system consumes, and keeps them stateless per call so one engine
// can serve any number of concurrent requests.
package engine

import (
	"io"
	"log/slog"
	"time"

	"actionspec-hq/sentinel/pkg/analysis"
	"actionspec-hq/sentinel/pkg/spec/document"
	"actionspec-hq/sentinel/pkg/spec/loader"
	"actionspec-hq/sentinel/pkg/spec/schema"
	"actionspec-hq/sentinel/pkg/spec/specerr"
	"actionspec-hq/sentinel/pkg/spec/validator"
	"actionspec-hq/sentinel/pkg/telemetry/metrics"
)

// Result is the outcome of one ParseAndValidate call. Document is empty
// whenever Valid is false.
type Result struct {
	Valid    bool              `json:"valid"`
	Document document.Document `json:"spec"`
	Errors   []string          `json:"errors"`
}

// Engine bundles the validation pipeline. The zero value is not usable;
// construct with New.
type Engine struct {
	loader    *loader.Loader
	validator *validator.Validator
	logger    *slog.Logger
	collector *metrics.Collector
}

// New creates an engine over the given registry with default load limits
// and no logging.
func New(registry *schema.Registry) *Engine {
	return &Engine{
		loader:    loader.New(),
		validator: validator.New(registry),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithLoader replaces the document loader, usually to tighten or relax
// its limits.
func (e *Engine) WithLoader(l *loader.Loader) *Engine {
	e.loader = l
	return e
}

// WithLogger attaches a logger for debug-level operational traces. The
// engine's outputs stay deterministic regardless.
func (e *Engine) WithLogger(logger *slog.Logger) *Engine {
	e.logger = logger.With("component", "engine")
	return e
}

// WithCollector attaches a metrics collector. Load outcomes, validation
// verdicts and diff change counts are recorded here so every front door
// shares one instrumentation point.
func (e *Engine) WithCollector(c *metrics.Collector) *Engine {
	e.collector = c
	return e
}

// ParseAndValidate turns raw YAML into a validated document. Author-facing
// problems, from oversized input to field violations, come back inside the
// Result; the returned error is non-nil only for an internal schema fault.
func (e *Engine) ParseAndValidate(raw []byte, versionHint string) (Result, error) {
	start := time.Now()
	doc, err := e.loader.Load(raw)
	if err != nil {
		e.recordLoad(loadOutcome(err), len(raw), time.Since(start))
		e.logger.Debug("load rejected", "size", len(raw), "error", err)
		return invalidResult(err.Error()), nil
	}
	e.recordLoad(metrics.OutcomeOK, len(raw), time.Since(start))

	errs, err := e.validator.ValidateAs(doc, versionHint)
	if err != nil {
		return Result{}, err
	}
	if errs.HasErrors() {
		if e.collector != nil {
			e.collector.RecordValidation(false)
		}
		e.logger.Debug("validation failed", "errors", errs.Count())
		return invalidResult(errs.Messages()...), nil
	}

	if e.collector != nil {
		e.collector.RecordValidation(true)
	}
	e.logger.Debug("document valid", "name", doc.Name(), "kind", doc.Kind())
	return Result{Valid: true, Document: doc, Errors: []string{}}, nil
}

// Diff classifies the changes between two documents. old may be nil for a
// first deployment.
func (e *Engine) Diff(old, new document.Document) *analysis.Report {
	report := analysis.Diff(old, new)
	if e.collector != nil {
		e.collector.RecordDiff(len(report.Errors), len(report.Warnings), len(report.Info))
	}
	e.logger.Debug("diff computed",
		"errors", len(report.Errors),
		"warnings", len(report.Warnings),
		"info", len(report.Info))
	return report
}

func (e *Engine) recordLoad(outcome string, size int, duration time.Duration) {
	if e.collector == nil {
		return
	}
	e.collector.RecordLoad(outcome, size, duration)
}

func loadOutcome(err error) string {
	if specerr.IsSecurityViolation(err) {
		return metrics.OutcomeSecurityViolation
	}
	return metrics.OutcomeParseError
}

func invalidResult(errors ...string) Result {
	return Result{Valid: false, Document: document.Document{}, Errors: errors}
}
