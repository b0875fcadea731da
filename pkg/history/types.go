package history

import "time"

// Kind identifies the engine operation a record describes.
type Kind string

const (
	// KindValidate marks a record produced by a validation run.
	KindValidate Kind = "validate"

	// KindDiff marks a record produced by a change-analysis run.
	KindDiff Kind = "diff"
)

// Record is the stored summary of a single engine run. It carries counts
// and a one-line summary only, never the document bodies that were
// validated or compared.
type Record struct {
	// ID is a UUID assigned when the record is enqueued.
	ID string `json:"id"`

	// Kind is the operation that produced the record.
	Kind Kind `json:"kind"`

	// SpecName is the metadata.name of the document, or "unnamed".
	SpecName string `json:"spec_name"`

	// SpecKind is the document kind, or "unknown".
	SpecKind string `json:"spec_kind"`

	// Valid reports whether the run succeeded without structural errors.
	// For diff runs it is false when the report has blocking errors.
	Valid bool `json:"valid"`

	// ErrorCount, WarningCount and InfoCount are the finding totals.
	ErrorCount   int `json:"error_count"`
	WarningCount int `json:"warning_count"`
	InfoCount    int `json:"info_count"`

	// Summary is the human-readable one-liner for the run.
	Summary string `json:"summary"`

	// CreatedAt is when the run finished.
	CreatedAt time.Time `json:"created_at"`
}
