package analysis

import (
	"fmt"
	"sort"
	"strings"
)

// Severity is the classified risk of one change.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"
)

// Category names the concern a change touches.
type Category string

const (
	CategorySecurity     Category = "security"
	CategoryCost         Category = "cost"
	CategoryAvailability Category = "availability"
	CategoryFeature      Category = "feature"
	CategoryGeneric      Category = "generic"
)

// Change is one classified field-level difference between two documents.
// Message is always a complete sentence safe for direct inclusion in
// generated text.
type Change struct {
	Path     string   `json:"path"`
	Old      any      `json:"old"`
	New      any      `json:"new"`
	Severity Severity `json:"severity"`
	Category Category `json:"category"`
	Message  string   `json:"message"`
}

// Report buckets classified changes by severity. Each bucket preserves
// discovery order, the order the tree walk found the differences in, not
// severity or alphabetical order.
type Report struct {
	Errors            []Change `json:"errors"`
	Warnings          []Change `json:"warnings"`
	Info              []Change `json:"info"`
	HasBlockingErrors bool     `json:"has_blocking_errors"`
	Summary           string   `json:"summary"`
}

// Total returns the number of classified changes across all buckets.
func (r *Report) Total() int {
	return len(r.Errors) + len(r.Warnings) + len(r.Info)
}

// Empty reports whether the diff found no changes at all.
func (r *Report) Empty() bool {
	return r.Total() == 0
}

func (r *Report) add(c Change) {
	switch c.Severity {
	case SeverityError:
		r.Errors = append(r.Errors, c)
	case SeverityWarning:
		r.Warnings = append(r.Warnings, c)
	default:
		r.Info = append(r.Info, c)
	}
}

func (r *Report) finish() *Report {
	r.HasBlockingErrors = len(r.Errors) > 0
	r.Summary = fmt.Sprintf("%d error(s), %d warning(s), %d change(s)",
		len(r.Errors), len(r.Warnings), r.Total())
	return r
}

// formatValue renders a document value for human-facing messages. Maps
// render with sorted keys so messages stay deterministic.
func formatValue(v any) string {
	switch tv := v.(type) {
	case nil:
		return "null"
	case string:
		return "'" + tv + "'"
	case []any:
		parts := make([]string, len(tv))
		for i, item := range tv {
			parts[i] = formatValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(tv))
		for k := range tv {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + formatValue(tv[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprintf("%v", tv)
	}
}
