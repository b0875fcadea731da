package schema

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"actionspec-hq/sentinel/pkg/spec/document"
	"actionspec-hq/sentinel/pkg/spec/specerr"
)

// FieldType names the value kinds a Field accepts.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInteger FieldType = "integer"
	TypeNumber  FieldType = "number"
	TypeBoolean FieldType = "boolean"
	TypeObject  FieldType = "object"
	TypeArray   FieldType = "array"
)

// Field is one structural rule in a definition tree. Which members apply
// depends on Type: Properties/Required/Open/VendorPrefix for objects,
// Items/Unordered for arrays, Enum/Pattern/MaxLength for strings,
// Minimum/Maximum for numeric types.
type Field struct {
	Type FieldType `yaml:"type"`

	// Object rules.
	Required     []string          `yaml:"required,omitempty"`
	Properties   map[string]*Field `yaml:"properties,omitempty"`
	Open         bool              `yaml:"open,omitempty"`         // unknown keys accepted wholesale
	VendorPrefix string            `yaml:"vendorPrefix,omitempty"` // unknown keys with this prefix accepted

	// Scalar rules.
	Enum      []string `yaml:"enum,omitempty"`
	Pattern   string   `yaml:"pattern,omitempty"`
	MaxLength *int     `yaml:"maxLength,omitempty"`
	Minimum   *float64 `yaml:"minimum,omitempty"`
	Maximum   *float64 `yaml:"maximum,omitempty"`

	// Array rules.
	Items     *Field `yaml:"items,omitempty"`
	Unordered bool   `yaml:"unordered,omitempty"` // element order carries no meaning

	pattern *regexp.Regexp
}

// MatchesPattern reports whether s satisfies the field's pattern. Fields
// without a pattern match everything. Only meaningful after Compile.
func (f *Field) MatchesPattern(s string) bool {
	if f.pattern == nil {
		return true
	}
	return f.pattern.MatchString(s)
}

// Condition is the predicate half of a conditional rule. Exactly one of
// Equals or In is set. A missing field never matches, and neither does a
// value of the wrong type, so structurally broken documents do not
// produce conditional noise on top of their base errors.
type Condition struct {
	Field  string   `yaml:"field"`
	Equals any      `yaml:"equals,omitempty"`
	In     []string `yaml:"in,omitempty"`
}

// Holds evaluates the condition against a document and returns the value
// that matched, for use in error messages.
func (c Condition) Holds(doc document.Document) (bool, any) {
	value, ok := doc.Lookup(c.Field)
	if !ok {
		return false, nil
	}
	if len(c.In) > 0 {
		s, isString := value.(string)
		if !isString {
			return false, nil
		}
		for _, candidate := range c.In {
			if s == candidate {
				return true, s
			}
		}
		return false, nil
	}
	if document.ValueEqual(value, c.Equals) {
		return true, value
	}
	return false, nil
}

// Describe renders the condition for error messages, e.g.
// "kind is 'StaticSite'" or "spec.security.waf.enabled is true".
func (c Condition) Describe(matched any) string {
	return fmt.Sprintf("%s is %s", c.Field, formatConditionValue(matched))
}

func formatConditionValue(v any) string {
	if s, ok := v.(string); ok {
		return "'" + s + "'"
	}
	return fmt.Sprintf("%v", v)
}

// ValueBan forbids one specific value of a field.
type ValueBan struct {
	Field string `yaml:"field"`
	Value string `yaml:"value"`
}

// MinimumRaise raises the legal minimum of a numeric field.
type MinimumRaise struct {
	Field   string  `yaml:"field"`
	Minimum float64 `yaml:"minimum"`
}

// Requirement is the consequence half of a conditional rule. Exactly one
// member is set.
type Requirement struct {
	RequireField string        `yaml:"requireField,omitempty"`
	ForbidField  string        `yaml:"forbidField,omitempty"`
	ForbidValue  *ValueBan     `yaml:"forbidValue,omitempty"`
	RaiseMinimum *MinimumRaise `yaml:"raiseMinimum,omitempty"`
}

// Conditional couples a predicate to an extra requirement. The validator
// evaluates conditionals in definition order, strictly after the base
// pass; rules that couple subtrees (RaiseMinimum across compute and
// governance) belong at the end of the list so every single-subtree rule
// has already been applied.
type Conditional struct {
	Name string      `yaml:"name"`
	When Condition   `yaml:"when"`
	Then Requirement `yaml:"then"`
}

// Definition is one immutable, versioned schema artifact.
type Definition struct {
	Version      string        `yaml:"version"`
	Root         *Field        `yaml:"root"`
	Conditionals []Conditional `yaml:"conditionals,omitempty"`
}

// Compile validates the artifact itself and prepares patterns for
// matching. A failure here is an operator defect, reported as an
// InternalSchemaError; it must never be shown to spec authors as if
// their document were at fault.
func (d *Definition) Compile() error {
	if d.Version == "" {
		return &specerr.InternalSchemaError{Detail: "definition has no version"}
	}
	if d.Root == nil {
		return &specerr.InternalSchemaError{Version: d.Version, Detail: "definition has no root field"}
	}
	if err := compileField(d.Root, "$"); err != nil {
		return &specerr.InternalSchemaError{Version: d.Version, Detail: err.Error()}
	}
	for i, cond := range d.Conditionals {
		if err := checkConditional(cond); err != nil {
			return &specerr.InternalSchemaError{
				Version: d.Version,
				Detail:  fmt.Sprintf("conditional %d (%s): %v", i, cond.Name, err),
			}
		}
	}
	return nil
}

var validTypes = map[FieldType]bool{
	TypeString:  true,
	TypeInteger: true,
	TypeNumber:  true,
	TypeBoolean: true,
	TypeObject:  true,
	TypeArray:   true,
}

func compileField(f *Field, at string) error {
	if f == nil {
		return fmt.Errorf("%s: field is nil", at)
	}
	if !validTypes[f.Type] {
		return fmt.Errorf("%s: unknown type %q", at, f.Type)
	}
	if f.Pattern != "" {
		re, err := regexp.Compile(f.Pattern)
		if err != nil {
			return fmt.Errorf("%s: invalid pattern %q: %v", at, f.Pattern, err)
		}
		f.pattern = re
	}
	if len(f.Enum) > 0 && f.Type != TypeString {
		return fmt.Errorf("%s: enum requires type string, got %s", at, f.Type)
	}
	if f.Items != nil && f.Type != TypeArray {
		return fmt.Errorf("%s: items requires type array, got %s", at, f.Type)
	}
	if f.Type == TypeArray && f.Items == nil {
		return fmt.Errorf("%s: array field has no items rule", at)
	}
	for _, name := range f.Required {
		if f.Properties[name] == nil {
			return fmt.Errorf("%s: required field %q has no property rule", at, name)
		}
	}
	for name, child := range f.Properties {
		if err := compileField(child, at+"."+name); err != nil {
			return err
		}
	}
	if f.Items != nil {
		if err := compileField(f.Items, at+"[]"); err != nil {
			return err
		}
	}
	return nil
}

func checkConditional(c Conditional) error {
	if c.When.Field == "" {
		return fmt.Errorf("condition has no field")
	}
	if c.When.Equals == nil && len(c.When.In) == 0 {
		return fmt.Errorf("condition has neither equals nor in")
	}
	if c.When.Equals != nil && len(c.When.In) > 0 {
		return fmt.Errorf("condition sets both equals and in")
	}
	set := 0
	if c.Then.RequireField != "" {
		set++
	}
	if c.Then.ForbidField != "" {
		set++
	}
	if c.Then.ForbidValue != nil {
		set++
		if c.Then.ForbidValue.Field == "" || c.Then.ForbidValue.Value == "" {
			return fmt.Errorf("forbidValue needs both field and value")
		}
	}
	if c.Then.RaiseMinimum != nil {
		set++
		if c.Then.RaiseMinimum.Field == "" {
			return fmt.Errorf("raiseMinimum needs a field")
		}
	}
	if set != 1 {
		return fmt.Errorf("requirement must set exactly one action, got %d", set)
	}
	return nil
}

// EnumList renders the allowed values for error messages:
// "demo, small, medium, large".
func (f *Field) EnumList() string {
	return strings.Join(f.Enum, ", ")
}

// SortedVersions returns the version keys of a definition map in lexical
// order.
func SortedVersions(defs map[string]*Definition) []string {
	versions := make([]string, 0, len(defs))
	for v := range defs {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	return versions
}
