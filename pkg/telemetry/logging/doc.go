// Package logging builds the structured loggers the service components
// share.
//
// New returns a plain *slog.Logger configured from a Config (level,
// format, destination), wrapped so that records logged with the *Context
// methods automatically carry the request ID, document name, and schema
// version stored in the context. Components identify themselves with
// logger.With("component", ...).
//
// The core validation packages do not log at all; only the facade and the
// front doors (HTTP server, CLI, watchers) attach loggers.
package logging
