package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// SpecNameKey is the context key for the document name under work.
	SpecNameKey contextKey = "spec"

	// SchemaVersionKey is the context key for the schema version in use.
	SchemaVersionKey contextKey = "schema_version"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithSpecName adds a document name to the context.
func WithSpecName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, SpecNameKey, name)
}

// GetSpecName retrieves the document name from the context.
func GetSpecName(ctx context.Context) string {
	if name, ok := ctx.Value(SpecNameKey).(string); ok {
		return name
	}
	return ""
}

// WithSchemaVersion adds a schema version to the context.
func WithSchemaVersion(ctx context.Context, version string) context.Context {
	return context.WithValue(ctx, SchemaVersionKey, version)
}

// GetSchemaVersion retrieves the schema version from the context.
func GetSchemaVersion(ctx context.Context) string {
	if version, ok := ctx.Value(SchemaVersionKey).(string); ok {
		return version
	}
	return ""
}

// contextHandler decorates records with the request fields carried by the
// context, so handlers logging through InfoContext and friends never have
// to thread them by hand.
type contextHandler struct {
	inner slog.Handler
}

func (h *contextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *contextHandler) Handle(ctx context.Context, record slog.Record) error {
	if requestID := GetRequestID(ctx); requestID != "" {
		record.AddAttrs(slog.String(string(RequestIDKey), requestID))
	}
	if name := GetSpecName(ctx); name != "" {
		record.AddAttrs(slog.String(string(SpecNameKey), name))
	}
	if version := GetSchemaVersion(ctx); version != "" {
		record.AddAttrs(slog.String(string(SchemaVersionKey), version))
	}
	return h.inner.Handle(ctx, record)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{inner: h.inner.WithGroup(name)}
}
