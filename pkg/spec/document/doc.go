// Package document defines the in-memory representation of a parsed
// ActionSpec and the traversal helpers shared by the validator and the
// change analyzer.
//
// A Document is a plain tree of maps, sequences, and scalars as produced
// by the safe loader. It carries no schema knowledge: field meaning is
// applied by the validator, risk meaning by the analyzer.
//
// # Core Types
//
// Document: the root mapping of one parsed spec
//
// Value kinds: map[string]any, []any, string, int64, float64, bool, nil
//
// # Basic Usage
//
// Navigate a document with dot paths:
//
//	size, ok := doc.Lookup("spec.compute.size")
//	if ok {
//	    fmt.Println("compute size:", size)
//	}
//
// Walk every leaf in deterministic order:
//
//	doc.Walk(func(path string, value any) {
//	    fmt.Printf("%s = %v\n", path, value)
//	})
package document
