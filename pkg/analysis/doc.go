// Package analysis diffs two versions of a validated document and
// classifies the risk of every difference.
//
// The walk is schema-free and deterministic: map keys in lexical order,
// subtrees recursed, leaves compared by value with explicit-null and
// key-absent kept distinct. Arrays of scalars carry set semantics, so
// reordering elements is never a change while membership differences are.
//
// Every detected difference passes through a first-match-wins severity
// table of (field path, old/new shape) rules carrying the business policy:
// destroying data is an ERROR, weakening security is an ERROR, shrinking
// capacity is a WARNING, spending more is a WARNING, everything else an
// INFO. A change no rule claims still surfaces as a generic INFO; nothing
// is dropped silently. The table lives in its own file and is tested on
// its own, apart from the traversal.
//
// Reports bucket changes by severity in discovery order and carry a
// one-line summary plus a blocking flag for callers that gate on errors.
package analysis
