package cli

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"
)

// OutputFormat represents the output format for command results.
type OutputFormat string

const (
	// FormatText is plain text output (default).
	FormatText OutputFormat = "text"
	// FormatJSON is JSON output.
	FormatJSON OutputFormat = "json"
	// FormatMarkdown is Markdown output (for PR descriptions).
	FormatMarkdown OutputFormat = "markdown"
)

// ParseFormat converts a --format flag value into an OutputFormat.
func ParseFormat(name string) (OutputFormat, error) {
	switch OutputFormat(name) {
	case FormatText, FormatJSON, FormatMarkdown:
		return OutputFormat(name), nil
	default:
		return "", fmt.Errorf("unsupported output format: %q", name)
	}
}

// Markdowner is implemented by command results that can render themselves
// as Markdown.
type Markdowner interface {
	Markdown() string
}

// Formatter formats command output.
type Formatter interface {
	Format(data interface{}) ([]byte, error)
	FormatTo(w io.Writer, data interface{}) error
}

// TextFormatter formats output as plain text.
type TextFormatter struct{}

// Format converts data to text format.
func (f *TextFormatter) Format(data interface{}) ([]byte, error) {
	return []byte(fmt.Sprintf("%v\n", data)), nil
}

// FormatTo writes data to writer in text format.
func (f *TextFormatter) FormatTo(w io.Writer, data interface{}) error {
	_, err := fmt.Fprintf(w, "%v\n", data)
	return err
}

// JSONFormatter formats output as JSON.
type JSONFormatter struct {
	Indent bool
}

// Format converts data to JSON format.
func (f *JSONFormatter) Format(data interface{}) ([]byte, error) {
	if f.Indent {
		return json.MarshalIndent(data, "", "  ")
	}
	return json.Marshal(data)
}

// FormatTo writes data to writer in JSON format.
func (f *JSONFormatter) FormatTo(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	if f.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}

// MarkdownFormatter formats output as Markdown. The data must implement
// Markdowner.
type MarkdownFormatter struct{}

// Format converts data to Markdown format.
func (f *MarkdownFormatter) Format(data interface{}) ([]byte, error) {
	m, ok := data.(Markdowner)
	if !ok {
		return nil, fmt.Errorf("markdown formatting not supported for %T", data)
	}
	return []byte(m.Markdown()), nil
}

// FormatTo writes data to writer in Markdown format.
func (f *MarkdownFormatter) FormatTo(w io.Writer, data interface{}) error {
	out, err := f.Format(data)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// NewFormatter creates a new formatter for the specified format.
func NewFormatter(format OutputFormat) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	default:
		return &TextFormatter{}
	}
}
