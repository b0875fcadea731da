package api

// ValidateRequest is the body of POST /v1/validate.
type ValidateRequest struct {
	// Spec is the raw YAML document to validate.
	Spec string `json:"spec"`
}

// DiffRequest is the body of POST /v1/diff. OldSpec may be empty for a
// first deployment.
type DiffRequest struct {
	OldSpec string `json:"old_spec,omitempty"`
	NewSpec string `json:"new_spec"`
}

// ErrorResponse is the body of every non-200 response.
type ErrorResponse struct {
	Error string `json:"error"`

	// Errors carries per-field validation messages when a spec was
	// rejected with 422.
	Errors []string `json:"errors,omitempty"`
}
