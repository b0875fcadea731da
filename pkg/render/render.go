// Package render produces human-facing text from change-analysis
// reports. Its single product is a pull-request description in Markdown;
// every classified change appears verbatim, prefixed with a severity
// marker, so review tooling can quote the engine without rewording it.
package render

import (
	"fmt"
	"strings"

	"actionspec-hq/sentinel/pkg/analysis"
	"actionspec-hq/sentinel/pkg/spec/document"
)

// Severity markers for rendered change lines.
const (
	markerError   = "❌"
	markerWarning = "⚠️"
	markerInfo    = "ℹ️"
)

// safeLine is printed when the analysis found nothing to flag.
const safeLine = "No warnings - changes appear safe ✅"

// PRDescription renders a deterministic pull-request description for a
// spec change. The old document may be nil for first deployments. Change
// lines appear bucketed by severity (errors, then warnings, then info),
// preserving discovery order inside each bucket.
func PRDescription(old, new document.Document, report *analysis.Report) string {
	var sb strings.Builder

	name := specName(old, new)
	kind := specKind(old, new)

	sb.WriteString(fmt.Sprintf("# ActionSpec Update: `%s`\n\n", name))
	sb.WriteString(fmt.Sprintf("This pull request updates the `%s` spec `%s`.\n\n", kind, name))

	sb.WriteString("## Changes Requiring Review\n\n")
	if report == nil || report.Empty() {
		sb.WriteString(safeLine + "\n\n")
	} else {
		sb.WriteString(report.Summary + "\n\n")
		writeChanges(&sb, markerError, report.Errors)
		writeChanges(&sb, markerWarning, report.Warnings)
		writeChanges(&sb, markerInfo, report.Info)
		sb.WriteString("\n")
	}

	sb.WriteString("## Review Checklist\n\n")
	sb.WriteString("- [ ] The changes above match the intent of this update\n")
	sb.WriteString("- [ ] Blocking errors are resolved or explicitly acknowledged\n")
	sb.WriteString("- [ ] Cost-impacting changes have an owner sign-off\n")
	sb.WriteString("- [ ] Security-impacting changes are reviewed\n")

	return sb.String()
}

func writeChanges(sb *strings.Builder, marker string, changes []analysis.Change) {
	for _, c := range changes {
		sb.WriteString(fmt.Sprintf("- %s %s: %s (`%s`)\n", marker, c.Severity, c.Message, c.Path))
	}
}

// specName prefers the new document's metadata, so renames show the
// incoming name.
func specName(old, new document.Document) string {
	if name := new.Name(); name != "" {
		return name
	}
	if old != nil {
		if name := old.Name(); name != "" {
			return name
		}
	}
	return "unnamed"
}

func specKind(old, new document.Document) string {
	if kind := new.Kind(); kind != "" {
		return kind
	}
	if old != nil {
		if kind := old.Kind(); kind != "" {
			return kind
		}
	}
	return "unknown"
}
