package schema

// BuiltinVersion is the schema version compiled into the binary.
const BuiltinVersion = "actionspec/v1"

// VendorKeyPrefix is the reserved prefix for vendor-extension keys inside
// the spec subtree. Keys carrying it are never schema-validated.
const VendorKeyPrefix = "x-"

// Tier ordering shared by compute and data sizes.
var SizeTiers = []string{"demo", "small", "medium", "large"}

// builtinDefinition constructs the actionspec/v1 definition. Kept as a
// function so every caller gets an independent tree; compiled definitions
// are shared read-only through the registry.
func builtinDefinition() *Definition {
	spec := &Field{
		Type:     TypeObject,
		Required: []string{"security", "governance"},
		Properties: map[string]*Field{
			"compute": {
				Type: TypeObject,
				Properties: map[string]*Field{
					"tier": {Type: TypeString, Enum: []string{"web", "worker"}},
					"size": {Type: TypeString, Enum: SizeTiers},
					"scaling": {
						Type: TypeObject,
						Properties: map[string]*Field{
							"min": {Type: TypeInteger, Minimum: num(1), Maximum: num(10)},
							"max": {Type: TypeInteger, Minimum: num(1), Maximum: num(20)},
						},
					},
				},
			},
			"network": {
				Type: TypeObject,
				Properties: map[string]*Field{
					"vpc": {Type: TypeString, Pattern: `^vpc-[0-9a-f]{4,17}$`},
					"subnets": {
						Type:      TypeArray,
						Unordered: true,
						Items:     &Field{Type: TypeString, Pattern: `^subnet-[0-9a-f]{4,17}$`},
					},
					"securityGroups": {
						Type:      TypeArray,
						Unordered: true,
						Items:     &Field{Type: TypeString, Pattern: `^sg-[0-9a-f]{4,17}$`},
					},
					"publicAccess": {Type: TypeBoolean},
				},
			},
			"data": {
				Type: TypeObject,
				Properties: map[string]*Field{
					"engine":           {Type: TypeString, Enum: []string{"postgres", "mysql", "none"}},
					"size":             {Type: TypeString, Enum: SizeTiers},
					"highAvailability": {Type: TypeBoolean},
					"backupRetention":  {Type: TypeInteger, Minimum: num(0), Maximum: num(35)},
				},
			},
			"security": {
				Type: TypeObject,
				Properties: map[string]*Field{
					"waf": {
						Type: TypeObject,
						Properties: map[string]*Field{
							"enabled": {Type: TypeBoolean},
							"mode":    {Type: TypeString, Enum: []string{"monitor", "block"}},
							"rulesets": {
								Type:      TypeArray,
								Unordered: true,
								Items:     &Field{Type: TypeString},
							},
						},
					},
					"encryption": {
						Type: TypeObject,
						Properties: map[string]*Field{
							"atRest":    {Type: TypeBoolean},
							"inTransit": {Type: TypeBoolean},
						},
					},
				},
			},
			"governance": {
				Type:     TypeObject,
				Required: []string{"maxMonthlySpend"},
				Properties: map[string]*Field{
					"maxMonthlySpend": {Type: TypeInteger, Minimum: num(1)},
					"autoShutdown": {
						Type: TypeObject,
						Properties: map[string]*Field{
							"enabled":    {Type: TypeBoolean},
							"afterHours": {Type: TypeInteger, Minimum: num(1), Maximum: num(168)},
						},
					},
				},
			},
		},
	}
	allowVendorKeys(spec)

	root := &Field{
		Type:     TypeObject,
		Required: []string{"apiVersion", "kind", "metadata", "spec"},
		Properties: map[string]*Field{
			// apiVersion content is checked by the registry during version
			// resolution, not by an enum here.
			"apiVersion": {Type: TypeString},
			"kind":       {Type: TypeString, Enum: []string{"StaticSite", "WebApplication", "ApiService"}},
			"metadata": {
				Type:     TypeObject,
				Required: []string{"name"},
				Properties: map[string]*Field{
					"name": {
						Type:      TypeString,
						Pattern:   `^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`,
						MaxLength: length(63),
					},
					"labels": {Type: TypeObject, Open: true},
				},
			},
			"spec": spec,
		},
	}

	return &Definition{
		Version: BuiltinVersion,
		Root:    root,
		Conditionals: []Conditional{
			{
				Name: "static-site-forbids-compute",
				When: Condition{Field: "kind", Equals: "StaticSite"},
				Then: Requirement{ForbidField: "spec.compute"},
			},
			{
				Name: "waf-on-requires-mode",
				When: Condition{Field: "spec.security.waf.enabled", Equals: true},
				Then: Requirement{RequireField: "spec.security.waf.mode"},
			},
			{
				Name: "api-service-needs-real-engine",
				When: Condition{Field: "kind", Equals: "ApiService"},
				Then: Requirement{ForbidValue: &ValueBan{Field: "spec.data.engine", Value: "none"}},
			},
			// Couples compute and governance; stays last so it always sees
			// the outcome of the single-subtree rules above.
			{
				Name: "larger-compute-raises-budget-floor",
				When: Condition{Field: "spec.compute.size", In: []string{"medium", "large"}},
				Then: Requirement{RaiseMinimum: &MinimumRaise{Field: "spec.governance.maxMonthlySpend", Minimum: 100}},
			},
		},
	}
}

// allowVendorKeys marks every object in the spec subtree as accepting
// vendor-extension keys.
func allowVendorKeys(f *Field) {
	if f == nil {
		return
	}
	if f.Type == TypeObject {
		f.VendorPrefix = VendorKeyPrefix
		for _, child := range f.Properties {
			allowVendorKeys(child)
		}
	}
	if f.Items != nil {
		allowVendorKeys(f.Items)
	}
}

func num(v float64) *float64 { return &v }

func length(n int) *int { return &n }

// builtinSource serves the compiled-in definitions.
type builtinSource struct{}

// BuiltinSource returns a Source serving the definitions compiled into
// the binary. It is the default when no schema directory is configured.
func BuiltinSource() Source {
	return builtinSource{}
}

// Load implements Source.
func (builtinSource) Load() (map[string]*Definition, error) {
	def := builtinDefinition()
	return map[string]*Definition{def.Version: def}, nil
}
