package document

import (
	"sort"
	"strings"
)

// Document is the parsed representation of one ActionSpec version.
// Values are restricted to the kinds the safe loader produces:
// map[string]any, []any, string, int64, float64, bool, and nil.
type Document map[string]any

// Well-known top-level and metadata fields.
const (
	FieldAPIVersion = "apiVersion"
	FieldKind       = "kind"
	FieldMetadata   = "metadata"
	FieldSpec       = "spec"
)

// APIVersion returns the declared schema version tag, or "" when absent
// or not a string.
func (d Document) APIVersion() string {
	s, _ := d[FieldAPIVersion].(string)
	return s
}

// Kind returns the discriminator value, or "" when absent or not a string.
func (d Document) Kind() string {
	s, _ := d[FieldKind].(string)
	return s
}

// Name returns metadata.name, or "" when absent.
func (d Document) Name() string {
	meta, _ := d[FieldMetadata].(map[string]any)
	s, _ := meta["name"].(string)
	return s
}

// Spec returns the domain subtree, or nil when absent.
func (d Document) Spec() map[string]any {
	m, _ := d[FieldSpec].(map[string]any)
	return m
}

// Lookup navigates a dot-notation path ("spec.compute.size") and reports
// whether every segment was present. A present key holding an explicit
// null returns (nil, true); a missing key returns (nil, false).
// Sequences are leaves for navigation purposes.
func (d Document) Lookup(path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	var current any = map[string]any(d)
	for _, segment := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Has reports whether the dot-notation path resolves to a present key,
// including keys holding explicit nulls.
func (d Document) Has(path string) bool {
	_, ok := d.Lookup(path)
	return ok
}

// Walk visits every leaf of the document in deterministic order: map keys
// in lexical order, nothing else. Sequences and scalars are leaves; empty
// maps are leaves too so that no populated key is ever skipped.
func (d Document) Walk(fn func(path string, value any)) {
	walkValue("", map[string]any(d), fn)
}

func walkValue(path string, value any, fn func(path string, value any)) {
	m, ok := value.(map[string]any)
	if !ok || len(m) == 0 {
		if path != "" {
			fn(path, value)
		}
		return
	}
	for _, key := range SortedKeys(m) {
		child := key
		if path != "" {
			child = path + "." + key
		}
		walkValue(child, m[key], fn)
	}
}

// SortedKeys returns the keys of a mapping in lexical order. Both the
// validator and the analyzer traverse with it so that error lists and
// change reports come out in a stable order.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of the document. The copy shares nothing with
// the original, so callers may mutate it freely.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return Document(cloneMap(map[string]any(d)))
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		return cloneMap(tv)
	case []any:
		out := make([]any, len(tv))
		for i, item := range tv {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return tv
	}
}

// Equal reports whether two documents have identical structure and values.
func (d Document) Equal(other Document) bool {
	return ValueEqual(map[string]any(d), map[string]any(other))
}

// ValueEqual compares two document values structurally. Numeric values
// compare across int64 and float64 so that 10 and 10.0 are the same
// value, matching YAML semantics. Booleans never equal numbers.
func ValueEqual(a, b any) bool {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bValue, ok := bv[k]
			if !ok || !ValueEqual(v, bValue) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !ValueEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case nil:
		return b == nil
	default:
		if na, aOK := NumericValue(a); aOK {
			nb, bOK := NumericValue(b)
			return bOK && na == nb
		}
		return a == b
	}
}

// NumericValue converts int, int64, and float64 values to float64.
// Booleans and strings are not numeric.
func NumericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
