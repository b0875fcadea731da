package loader

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"actionspec-hq/sentinel/pkg/spec/document"
	"actionspec-hq/sentinel/pkg/spec/specerr"
)

// Default limits. Size and duration follow the original service contract;
// depth and node budget exist to stop pathological nesting and alias
// expansion that stay under the byte limit.
const (
	DefaultMaxSize     = 1 * 1024 * 1024 // 1 MiB
	DefaultMaxDuration = 5 * time.Second
	DefaultMaxDepth    = 64
	DefaultMaxNodes    = 500_000
)

// Loader parses spec YAML under hard limits. The zero value is not usable;
// construct with New.
type Loader struct {
	maxSize     int
	maxDuration time.Duration
	maxDepth    int
	maxNodes    int
}

// New creates a loader with default limits.
func New() *Loader {
	return &Loader{
		maxSize:     DefaultMaxSize,
		maxDuration: DefaultMaxDuration,
		maxDepth:    DefaultMaxDepth,
		maxNodes:    DefaultMaxNodes,
	}
}

// WithMaxSize sets the maximum document size in bytes.
func (l *Loader) WithMaxSize(n int) *Loader {
	l.maxSize = n
	return l
}

// WithMaxDuration sets the time budget for one load.
func (l *Loader) WithMaxDuration(d time.Duration) *Loader {
	l.maxDuration = d
	return l
}

// WithMaxDepth sets the maximum nesting depth.
func (l *Loader) WithMaxDepth(n int) *Loader {
	l.maxDepth = n
	return l
}

// WithMaxNodes sets the node budget, counted across alias expansion.
func (l *Loader) WithMaxNodes(n int) *Loader {
	l.maxNodes = n
	return l
}

// Load parses raw YAML into a Document. It returns a SecurityViolation
// when the input exceeds a hard limit or uses a forbidden construct, and
// a ParseError when the input is malformed YAML or not a mapping at the
// top level.
func (l *Loader) Load(raw []byte) (document.Document, error) {
	// Size gate before any parsing work.
	if len(raw) > l.maxSize {
		return nil, &specerr.SecurityViolation{
			Kind:   specerr.ViolationSize,
			Detail: fmt.Sprintf("document too large (%d bytes, max %d)", len(raw), l.maxSize),
		}
	}

	deadline := time.Now().Add(l.maxDuration)

	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, yamlToParseError(err)
	}

	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, &specerr.ParseError{Message: "empty document"}
	}

	top := root.Content[0]
	if top.Kind == yaml.ScalarNode && top.ShortTag() == "!!null" {
		return nil, &specerr.ParseError{Message: "empty document"}
	}
	if top.Kind != yaml.MappingNode {
		return nil, &specerr.ParseError{
			Message: fmt.Sprintf("root must be a mapping, got %s", nodeKindName(top)),
			Line:    top.Line,
			Column:  top.Column,
		}
	}

	w := &walker{
		deadline:  deadline,
		maxDepth:  l.maxDepth,
		nodesLeft: l.maxNodes,
	}
	value, err := w.decode(top, 0)
	if err != nil {
		return nil, err
	}
	return document.Document(value.(map[string]any)), nil
}

// walker carries the per-load budgets through the recursive descent. The
// deadline is checked at every node so adversarial input is cut off
// mid-parse rather than after the fact.
type walker struct {
	deadline  time.Time
	maxDepth  int
	nodesLeft int
}

// Scalar tags the loader will resolve. Everything else is treated as an
// attempt to construct objects or invoke behavior and is rejected.
var allowedScalarTags = map[string]bool{
	"!!str":       true,
	"!!int":       true,
	"!!float":     true,
	"!!bool":      true,
	"!!null":      true,
	"!!timestamp": true,
}

func (w *walker) decode(n *yaml.Node, depth int) (any, error) {
	w.nodesLeft--
	if w.nodesLeft < 0 {
		return nil, &specerr.SecurityViolation{
			Kind:   specerr.ViolationExpansion,
			Detail: "node budget exhausted, aliases expand the document beyond its size",
		}
	}
	if time.Now().After(w.deadline) {
		return nil, &specerr.SecurityViolation{
			Kind:   specerr.ViolationTimeout,
			Detail: "time budget exceeded during parsing",
		}
	}
	if depth > w.maxDepth {
		return nil, &specerr.SecurityViolation{
			Kind:   specerr.ViolationDepth,
			Detail: fmt.Sprintf("nesting exceeds %d levels", w.maxDepth),
		}
	}

	switch n.Kind {
	case yaml.AliasNode:
		// Dereferencing counts against depth and the node budget, so
		// self-referential or exponential alias graphs terminate.
		return w.decode(n.Alias, depth+1)

	case yaml.ScalarNode:
		return w.decodeScalar(n)

	case yaml.MappingNode:
		if tag := n.ShortTag(); tag != "!!map" {
			return nil, forbiddenTag(tag, n)
		}
		out := make(map[string]any, len(n.Content)/2)
		seen := make(map[string]int, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			keyNode, valueNode := n.Content[i], n.Content[i+1]
			if keyNode.Kind != yaml.ScalarNode || keyNode.ShortTag() != "!!str" {
				if keyNode.ShortTag() == "!!merge" {
					return nil, forbiddenTag("!!merge", keyNode)
				}
				return nil, &specerr.ParseError{
					Message: "mapping keys must be strings",
					Line:    keyNode.Line,
					Column:  keyNode.Column,
				}
			}
			key := keyNode.Value
			if firstLine, dup := seen[key]; dup {
				return nil, &specerr.ParseError{
					Message: fmt.Sprintf("duplicate key %q (first defined at line %d)", key, firstLine),
					Line:    keyNode.Line,
					Column:  keyNode.Column,
				}
			}
			seen[key] = keyNode.Line

			value, err := w.decode(valueNode, depth+1)
			if err != nil {
				return nil, err
			}
			out[key] = value
		}
		return out, nil

	case yaml.SequenceNode:
		if tag := n.ShortTag(); tag != "!!seq" {
			return nil, forbiddenTag(tag, n)
		}
		out := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			value, err := w.decode(item, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, value)
		}
		return out, nil

	default:
		return nil, &specerr.ParseError{
			Message: "unsupported YAML structure",
			Line:    n.Line,
			Column:  n.Column,
		}
	}
}

func (w *walker) decodeScalar(n *yaml.Node) (any, error) {
	tag := n.ShortTag()
	if !allowedScalarTags[tag] {
		return nil, forbiddenTag(tag, n)
	}

	switch tag {
	case "!!null":
		return nil, nil
	case "!!str", "!!timestamp":
		// Timestamps stay strings; the schema validates them by pattern,
		// never as native time values.
		return n.Value, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, scalarParseError(n, "boolean", err)
		}
		return b, nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, scalarParseError(n, "integer", err)
		}
		return i, nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, scalarParseError(n, "number", err)
		}
		return f, nil
	default:
		return nil, forbiddenTag(tag, n)
	}
}

func forbiddenTag(tag string, n *yaml.Node) error {
	detail := fmt.Sprintf("tag %s is not allowed", tag)
	if tag == "!!merge" {
		detail = "merge keys (<<) are not allowed"
	}
	return &specerr.SecurityViolation{
		Kind:   specerr.ViolationTag,
		Detail: fmt.Sprintf("%s (line %d)", detail, n.Line),
	}
}

func scalarParseError(n *yaml.Node, want string, err error) error {
	return &specerr.ParseError{
		Message: fmt.Sprintf("cannot read %q as %s: %v", n.Value, want, err),
		Line:    n.Line,
		Column:  n.Column,
	}
}

func nodeKindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}

var yamlLineRe = regexp.MustCompile(`line (\d+):`)

// yamlToParseError converts a yaml.v3 error into a ParseError, pulling the
// line number out of the message text when present.
func yamlToParseError(err error) error {
	msg := strings.TrimPrefix(err.Error(), "yaml: ")
	line := 0
	if m := yamlLineRe.FindStringSubmatch(msg); m != nil {
		line, _ = strconv.Atoi(m[1])
		msg = strings.TrimSpace(strings.Replace(msg, m[0], "", 1))
	}
	return &specerr.ParseError{Message: msg, Line: line}
}
