package validator

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"actionspec-hq/sentinel/pkg/spec/document"
	"actionspec-hq/sentinel/pkg/spec/schema"
	"actionspec-hq/sentinel/pkg/spec/specerr"
)

// Validator checks documents against the definitions a registry serves.
// It is stateless per call; one Validator may be shared by any number of
// goroutines.
type Validator struct {
	registry *schema.Registry
}

// New creates a validator over the given registry.
func New(registry *schema.Registry) *Validator {
	return &Validator{registry: registry}
}

// Validate checks the document against the definition its apiVersion
// declares. The returned list carries every failure; the error is non-nil
// only for an internal schema fault.
func (v *Validator) Validate(doc document.Document) (*specerr.ErrorList, error) {
	return v.validate(doc, doc.APIVersion())
}

// ValidateAs behaves like Validate but falls back to versionHint when the
// document carries no version tag of its own. A document's own tag always
// wins over the hint.
func (v *Validator) ValidateAs(doc document.Document, versionHint string) (*specerr.ErrorList, error) {
	version := doc.APIVersion()
	if version == "" {
		version = versionHint
	}
	return v.validate(doc, version)
}

func (v *Validator) validate(doc document.Document, version string) (*specerr.ErrorList, error) {
	errs := specerr.NewErrorList()

	def, err := v.resolveDefinition(version, errs)
	if err != nil {
		return nil, err
	}

	// A hinted version satisfies the apiVersion requirement for this call
	// without mutating the caller's document.
	work := doc
	if version != "" && !doc.Has(document.FieldAPIVersion) {
		work = doc.Clone()
		work[document.FieldAPIVersion] = version
	}

	v.validateField(def.Root, map[string]any(work), "", errs)

	// Conditional rules run strictly after the base pass. Their predicates
	// are type-exact, so fields the base pass already flagged simply never
	// match and produce no cascading noise.
	for _, cond := range def.Conditionals {
		v.applyConditional(cond, work, errs)
	}

	return errs, nil
}

// resolveDefinition maps a declared version to a definition. An unknown
// version becomes validation data, and the document is still held against
// the default definition so the author sees every other problem in the
// same round trip.
func (v *Validator) resolveDefinition(version string, errs *specerr.ErrorList) (*schema.Definition, error) {
	if version != "" {
		def, err := v.registry.Resolve(version)
		if err == nil {
			return def, nil
		}
		if !errors.Is(err, schema.ErrVersionUnknown) {
			return nil, err
		}
		supported, verr := v.registry.Versions()
		if verr != nil {
			return nil, verr
		}
		errs.Add(&specerr.ValidationError{
			Path:     document.FieldAPIVersion,
			Kind:     specerr.KindUnknownVersion,
			Message:  fmt.Sprintf("Invalid value for 'apiVersion': got '%s', expected one of: %s", version, strings.Join(supported, ", ")),
			Expected: strings.Join(supported, ", "),
			Actual:   version,
		})
	}
	return v.registry.Default()
}

func (v *Validator) validateField(f *schema.Field, value any, path string, errs *specerr.ErrorList) {
	switch f.Type {
	case schema.TypeObject:
		m, ok := value.(map[string]any)
		if !ok {
			errs.Add(typeError(path, value, "object"))
			return
		}
		for _, name := range f.Required {
			if _, present := m[name]; !present {
				errs.Add(&specerr.ValidationError{
					Path:    childPath(path, name),
					Kind:    specerr.KindRequired,
					Message: fmt.Sprintf("Missing required field '%s'", childPath(path, name)),
				})
			}
		}
		for _, key := range document.SortedKeys(m) {
			child, known := f.Properties[key]
			if !known {
				if f.Open || (f.VendorPrefix != "" && strings.HasPrefix(key, f.VendorPrefix)) {
					continue
				}
				errs.Add(&specerr.ValidationError{
					Path:    childPath(path, key),
					Kind:    specerr.KindUnknownKey,
					Message: fmt.Sprintf("Unknown field '%s' (not allowed by schema)", childPath(path, key)),
					Actual:  key,
				})
				continue
			}
			v.validateField(child, m[key], childPath(path, key), errs)
		}

	case schema.TypeArray:
		items, ok := value.([]any)
		if !ok {
			errs.Add(typeError(path, value, "array"))
			return
		}
		for i, item := range items {
			v.validateField(f.Items, item, fmt.Sprintf("%s.%d", path, i), errs)
		}

	case schema.TypeString:
		s, ok := value.(string)
		if !ok {
			errs.Add(typeError(path, value, "string"))
			return
		}
		if len(f.Enum) > 0 && !contains(f.Enum, s) {
			errs.Add(&specerr.ValidationError{
				Path:     path,
				Kind:     specerr.KindEnum,
				Message:  fmt.Sprintf("Invalid value for '%s': got '%s', expected one of: %s", path, s, f.EnumList()),
				Expected: f.EnumList(),
				Actual:   s,
			})
			return
		}
		if f.MaxLength != nil && len(s) > *f.MaxLength {
			errs.Add(&specerr.ValidationError{
				Path:     path,
				Kind:     specerr.KindMaximum,
				Message:  fmt.Sprintf("Value out of range for '%s': got %d characters, maximum is %d", path, len(s), *f.MaxLength),
				Expected: fmt.Sprintf("at most %d characters", *f.MaxLength),
				Actual:   s,
			})
		}
		if !f.MatchesPattern(s) {
			errs.Add(&specerr.ValidationError{
				Path:     path,
				Kind:     specerr.KindPattern,
				Message:  fmt.Sprintf("Invalid format for '%s': got '%s', must match pattern %s", path, s, f.Pattern),
				Expected: f.Pattern,
				Actual:   s,
			})
		}

	case schema.TypeInteger:
		n, ok := integerValue(value)
		if !ok {
			errs.Add(typeError(path, value, "integer"))
			return
		}
		v.checkBounds(f, n, path, errs)

	case schema.TypeNumber:
		n, ok := document.NumericValue(value)
		if !ok {
			errs.Add(typeError(path, value, "number"))
			return
		}
		v.checkBounds(f, n, path, errs)

	case schema.TypeBoolean:
		if _, ok := value.(bool); !ok {
			errs.Add(typeError(path, value, "boolean"))
		}
	}
}

func (v *Validator) checkBounds(f *schema.Field, n float64, path string, errs *specerr.ErrorList) {
	if f.Minimum != nil && n < *f.Minimum {
		errs.Add(&specerr.ValidationError{
			Path:     path,
			Kind:     specerr.KindMinimum,
			Message:  fmt.Sprintf("Value out of range for '%s': got %s, minimum is %s", path, formatNumber(n), formatNumber(*f.Minimum)),
			Expected: "minimum " + formatNumber(*f.Minimum),
			Actual:   formatNumber(n),
		})
	}
	if f.Maximum != nil && n > *f.Maximum {
		errs.Add(&specerr.ValidationError{
			Path:     path,
			Kind:     specerr.KindMaximum,
			Message:  fmt.Sprintf("Value out of range for '%s': got %s, maximum is %s", path, formatNumber(n), formatNumber(*f.Maximum)),
			Expected: "maximum " + formatNumber(*f.Maximum),
			Actual:   formatNumber(n),
		})
	}
}

func (v *Validator) applyConditional(cond schema.Conditional, doc document.Document, errs *specerr.ErrorList) {
	holds, matched := cond.When.Holds(doc)
	if !holds {
		return
	}
	when := cond.When.Describe(matched)

	switch {
	case cond.Then.RequireField != "":
		if !doc.Has(cond.Then.RequireField) {
			errs.Add(&specerr.ValidationError{
				Path:    cond.Then.RequireField,
				Kind:    specerr.KindConditional,
				Message: fmt.Sprintf("Missing required field '%s' (required when %s)", cond.Then.RequireField, when),
			})
		}

	case cond.Then.ForbidField != "":
		if doc.Has(cond.Then.ForbidField) {
			errs.Add(&specerr.ValidationError{
				Path:    cond.Then.ForbidField,
				Kind:    specerr.KindConditional,
				Message: fmt.Sprintf("Field '%s' is not allowed when %s", cond.Then.ForbidField, when),
			})
		}

	case cond.Then.ForbidValue != nil:
		ban := cond.Then.ForbidValue
		if value, ok := doc.Lookup(ban.Field); ok {
			if s, isString := value.(string); isString && s == ban.Value {
				errs.Add(&specerr.ValidationError{
					Path:    ban.Field,
					Kind:    specerr.KindConditional,
					Message: fmt.Sprintf("Invalid value for '%s': '%s' is not allowed when %s", ban.Field, ban.Value, when),
					Actual:  ban.Value,
				})
			}
		}

	case cond.Then.RaiseMinimum != nil:
		raise := cond.Then.RaiseMinimum
		value, ok := doc.Lookup(raise.Field)
		if !ok {
			// Absence is the base pass's problem, not this rule's.
			return
		}
		n, numeric := document.NumericValue(value)
		if numeric && n < raise.Minimum {
			errs.Add(&specerr.ValidationError{
				Path:     raise.Field,
				Kind:     specerr.KindConditional,
				Message:  fmt.Sprintf("Value out of range for '%s': got %s, minimum is %s when %s", raise.Field, formatNumber(n), formatNumber(raise.Minimum), when),
				Expected: "minimum " + formatNumber(raise.Minimum),
				Actual:   formatNumber(n),
			})
		}
	}
}

func childPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

func typeError(path string, value any, want string) *specerr.ValidationError {
	got := typeName(value)
	return &specerr.ValidationError{
		Path:     path,
		Kind:     specerr.KindType,
		Message:  fmt.Sprintf("Wrong type for '%s': got %s, expected %s", path, got, want),
		Expected: want,
		Actual:   got,
	}
}

// typeName maps a document value to the schema vocabulary used in
// messages.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int64:
		return "integer"
	case float64:
		return "number"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// integerValue accepts integer-typed values and whole-number floats,
// mirroring how YAML and JSON blur 5 and 5.0.
func integerValue(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		if math.Trunc(n) == n && !math.IsInf(n, 0) {
			return n, true
		}
		return 0, false
	default:
		return 0, false
	}
}

// formatNumber renders numbers without a trailing ".0" for whole values.
func formatNumber(n float64) string {
	if math.Trunc(n) == n && math.Abs(n) < 1e15 {
		return fmt.Sprintf("%d", int64(n))
	}
	return fmt.Sprintf("%v", n)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
