// Package schema defines the versioned validation artifacts for spec
// documents and the thread-safe registry that serves them.
//
// A Definition is immutable once compiled: a tree of Field rules (types,
// enums, bounds, patterns, required sets) plus an ordered list of
// Conditional rules that encode cross-field requirements such as
// "StaticSite forbids compute". Conditionals are declarative data, not
// code, so the business coupling stays auditable and testable on its own.
//
// The Registry maps declared document versions to Definitions. It loads
// lazily on first use, serves concurrent readers without contention, and
// never mutates implicitly: long-lived services pick up new schema
// versions only through an explicit Reload, which swaps the whole
// definition set atomically and keeps the previous set when the new one
// fails to compile.
//
// # Basic Usage
//
//	reg := schema.NewRegistry(schema.BuiltinSource())
//	def, err := reg.Resolve("actionspec/v1")
//	if errors.Is(err, schema.ErrVersionUnknown) {
//	    // the document declared a version nobody supports
//	}
package schema
