// Package specerr defines the error taxonomy for spec loading and
// validation.
//
// Conditions a spec author can cause are returned as data so callers can
// present every problem in one round trip:
//
// SecurityViolation: the input tried something the loader forbids
// (oversized document, disallowed tag, parse timeout, pathological
// nesting). Always fatal to that load.
//
// ParseError: malformed YAML, with line/column when derivable. Fatal to
// that load.
//
// ValidationError: one schema failure on one field. Many accumulate in an
// ErrorList; validation never stops at the first.
//
// InternalSchemaError: the schema artifact itself is broken. This is an
// operator defect, not an input problem, and propagates as a hard error
// distinct from everything above.
package specerr
