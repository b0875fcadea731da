package specerr

import (
	"errors"
	"fmt"
	"strings"
)

// ViolationKind categorizes what a rejected input attempted.
type ViolationKind string

const (
	ViolationSize      ViolationKind = "document_too_large"
	ViolationTag       ViolationKind = "forbidden_tag"
	ViolationTimeout   ViolationKind = "parse_timeout"
	ViolationDepth     ViolationKind = "nesting_too_deep"
	ViolationExpansion ViolationKind = "alias_expansion"
)

// SecurityViolation reports input that exceeded a hard loader limit or
// used a forbidden construct. The load is abandoned; nothing is recovered.
type SecurityViolation struct {
	Kind   ViolationKind
	Detail string
}

// Error implements the error interface.
func (e *SecurityViolation) Error() string {
	return fmt.Sprintf("security violation (%s): %s", e.Kind, e.Detail)
}

// ParseError reports malformed YAML. Line and Column are 1-based and zero
// when the position could not be derived.
type ParseError struct {
	Message string
	Line    int
	Column  int
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("parse error at line %d, column %d: %s", e.Line, e.Column, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("parse error at line %d: %s", e.Line, e.Message)
	default:
		return fmt.Sprintf("parse error: %s", e.Message)
	}
}

// Kind is the raw validator vocabulary. It exists for internal tracing
// only; callers are given the formatted Message, never the kind.
type Kind string

const (
	KindRequired       Kind = "required"
	KindEnum           Kind = "enum"
	KindType           Kind = "type"
	KindUnknownKey     Kind = "unknown_key"
	KindMinimum        Kind = "minimum"
	KindMaximum        Kind = "maximum"
	KindPattern        Kind = "pattern"
	KindUnknownVersion Kind = "unknown_version"
	KindConditional    Kind = "conditional"
)

// ValidationError is one schema failure on one field.
type ValidationError struct {
	Path     string // dot-notation field path
	Kind     Kind   // raw validator vocabulary, internal tracing only
	Message  string // the one human sentence delivered to callers
	Expected string // allowed values or bounds, when applicable
	Actual   string // offending value, when applicable
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// ErrorList accumulates validation errors so a caller sees every problem
// in one response instead of iterating error by error.
type ErrorList struct {
	Errors []*ValidationError
}

// NewErrorList creates a new empty error list.
func NewErrorList() *ErrorList {
	return &ErrorList{Errors: make([]*ValidationError, 0)}
}

// Add appends an error to the list.
func (el *ErrorList) Add(err *ValidationError) {
	el.Errors = append(el.Errors, err)
}

// HasErrors returns true if the list contains any errors.
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// Count returns the number of errors in the list.
func (el *ErrorList) Count() int {
	return len(el.Errors)
}

// Messages returns every formatted sentence in list order.
func (el *ErrorList) Messages() []string {
	msgs := make([]string, 0, len(el.Errors))
	for _, err := range el.Errors {
		msgs = append(msgs, err.Message)
	}
	return msgs
}

// HasKind returns true if the list contains at least one error of the
// given kind.
func (el *ErrorList) HasKind(kind Kind) bool {
	for _, err := range el.Errors {
		if err.Kind == kind {
			return true
		}
	}
	return false
}

// Error implements the error interface, joining every message.
func (el *ErrorList) Error() string {
	if !el.HasErrors() {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("found %d validation error(s):\n", el.Count()))
	for _, err := range el.Errors {
		sb.WriteString("  - ")
		sb.WriteString(err.Message)
		sb.WriteString("\n")
	}
	return sb.String()
}

// ToError returns nil if the list is empty, otherwise the list itself.
func (el *ErrorList) ToError() error {
	if !el.HasErrors() {
		return nil
	}
	return el
}

// InternalSchemaError reports a malformed schema artifact. It signals an
// operator or configuration defect and must surface as a hard failure,
// never be folded into a validation error list.
type InternalSchemaError struct {
	Version string // schema version the artifact claimed, when known
	Detail  string
	Err     error
}

// Error implements the error interface.
func (e *InternalSchemaError) Error() string {
	msg := "internal schema error"
	if e.Version != "" {
		msg += fmt.Sprintf(" (version %q)", e.Version)
	}
	msg += ": " + e.Detail
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap supports errors.Is and errors.As chains.
func (e *InternalSchemaError) Unwrap() error {
	return e.Err
}

// IsSecurityViolation reports whether err is or wraps a SecurityViolation.
func IsSecurityViolation(err error) bool {
	var v *SecurityViolation
	return errors.As(err, &v)
}

// IsParseError reports whether err is or wraps a ParseError.
func IsParseError(err error) bool {
	var p *ParseError
	return errors.As(err, &p)
}

// IsInternalSchemaError reports whether err is or wraps an
// InternalSchemaError.
func IsInternalSchemaError(err error) bool {
	var i *InternalSchemaError
	return errors.As(err, &i)
}
