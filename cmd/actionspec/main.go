// Sentinel is a validation and change-analysis engine for ActionSpec
// documents.
//
// It validates infrastructure spec YAML against versioned schema
// definitions and explains what changed between two revisions, providing:
//   - Hardened YAML loading with size, depth, and alias-expansion limits
//   - Schema validation with per-field machine-checkable rules
//   - Change analysis classified as errors, warnings, and info
//   - PR-ready Markdown descriptions of spec changes
//   - An HTTP API with run history, retention, and Prometheus metrics
//
// Usage:
//
//	# Validate spec files
//	actionspec validate deploy/app.yaml deploy/db.yaml
//
//	# Validate every spec under a directory
//	actionspec validate --dir deploy/
//
//	# Compare two revisions of a spec
//	actionspec diff old.yaml new.yaml
//
//	# Compare the working tree against the last committed revision
//	actionspec diff --git . --ref HEAD~1 deploy/app.yaml
//
//	# Render the comparison as a PR description
//	actionspec diff old.yaml new.yaml --format markdown
//
//	# Start the HTTP API
//	actionspec serve --config config.yaml
//
//	# Show version information
//	actionspec version
//
// For complete documentation, see: https://github.com/actionspec-hq/sentinel
package main

func main() {
	Execute()
}
