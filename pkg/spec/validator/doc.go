// Package validator checks parsed documents against the registry's schema
// definitions.
//
// Validation runs two passes. The base pass walks the definition tree:
// types, enum membership, numeric bounds, string patterns, required sets,
// and unknown-key rejection with the vendor-extension carve-out. The
// conditional pass then evaluates the definition's ordered cross-field
// rules. The two are never interleaved, and nothing short-circuits: every
// failure the document earns is returned in one list.
//
// Every failure is formatted as exactly one human sentence carrying the
// dot-notation path, the actual value, and the allowed values or bounds.
// The raw rule vocabulary stays internal.
package validator
