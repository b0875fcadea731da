package document

import (
	"reflect"
	"testing"
)

func sampleDoc() Document {
	return Document{
		"apiVersion": "actionspec/v1",
		"kind":       "WebApplication",
		"metadata": map[string]any{
			"name": "storefront",
			"labels": map[string]any{
				"team": "payments",
			},
		},
		"spec": map[string]any{
			"compute": map[string]any{
				"tier": "web",
				"size": "small",
				"scaling": map[string]any{
					"min": int64(1),
					"max": int64(4),
				},
			},
			"security": map[string]any{
				"waf": map[string]any{
					"enabled":  true,
					"mode":     "block",
					"rulesets": []any{"core", "sqli"},
				},
			},
			"governance": map[string]any{
				"maxMonthlySpend": int64(50),
			},
		},
	}
}

func TestAccessors(t *testing.T) {
	doc := sampleDoc()

	if got := doc.APIVersion(); got != "actionspec/v1" {
		t.Errorf("APIVersion() = %q, want %q", got, "actionspec/v1")
	}
	if got := doc.Kind(); got != "WebApplication" {
		t.Errorf("Kind() = %q, want %q", got, "WebApplication")
	}
	if got := doc.Name(); got != "storefront" {
		t.Errorf("Name() = %q, want %q", got, "storefront")
	}
	if doc.Spec() == nil {
		t.Error("Spec() = nil, want domain subtree")
	}

	empty := Document{}
	if got := empty.Kind(); got != "" {
		t.Errorf("Kind() on empty document = %q, want empty", got)
	}
}

func TestLookup(t *testing.T) {
	doc := sampleDoc()
	doc["spec"].(map[string]any)["data"] = map[string]any{
		"engine": nil,
	}

	tests := []struct {
		name      string
		path      string
		wantValue any
		wantOK    bool
	}{
		{"top level scalar", "kind", "WebApplication", true},
		{"nested scalar", "spec.compute.size", "small", true},
		{"nested integer", "spec.compute.scaling.max", int64(4), true},
		{"subtree", "spec.compute.scaling", map[string]any{"min": int64(1), "max": int64(4)}, true},
		{"explicit null is present", "spec.data.engine", nil, true},
		{"missing key", "spec.compute.colour", nil, false},
		{"missing subtree", "spec.network.vpc", nil, false},
		{"path through scalar", "kind.size", nil, false},
		{"empty path", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := doc.Lookup(tt.path)
			if ok != tt.wantOK {
				t.Fatalf("Lookup(%q) ok = %v, want %v", tt.path, ok, tt.wantOK)
			}
			if !reflect.DeepEqual(got, tt.wantValue) {
				t.Errorf("Lookup(%q) = %v, want %v", tt.path, got, tt.wantValue)
			}
		})
	}
}

func TestWalkOrderAndLeaves(t *testing.T) {
	doc := Document{
		"b": map[string]any{
			"z": int64(1),
			"a": "x",
		},
		"a": "first",
		"c": []any{"one", "two"},
		"d": map[string]any{},
	}

	var paths []string
	doc.Walk(func(path string, value any) {
		paths = append(paths, path)
	})

	want := []string{"a", "b.a", "b.z", "c", "d"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("Walk order = %v, want %v", paths, want)
	}
}

func TestCloneIsDeep(t *testing.T) {
	doc := sampleDoc()
	clone := doc.Clone()

	if !doc.Equal(clone) {
		t.Fatal("clone is not equal to original")
	}

	clone["spec"].(map[string]any)["compute"].(map[string]any)["size"] = "large"
	if got, _ := doc.Lookup("spec.compute.size"); got != "small" {
		t.Errorf("mutating clone changed original: spec.compute.size = %v", got)
	}

	rulesets := clone["spec"].(map[string]any)["security"].(map[string]any)["waf"].(map[string]any)["rulesets"].([]any)
	rulesets[0] = "mutated"
	original, _ := doc.Lookup("spec.security.waf.rulesets")
	if original.([]any)[0] != "core" {
		t.Error("mutating cloned sequence changed original")
	}
}

func TestValueEqual(t *testing.T) {
	tests := []struct {
		name string
		a    any
		b    any
		want bool
	}{
		{"equal strings", "a", "a", true},
		{"different strings", "a", "b", false},
		{"int64 vs float64 same value", int64(10), float64(10), true},
		{"int vs int64 same value", 10, int64(10), true},
		{"different numbers", int64(10), int64(11), false},
		{"bool is not a number", true, int64(1), false},
		{"nil equals nil", nil, nil, true},
		{"nil vs value", nil, "x", false},
		{"nested maps", map[string]any{"a": int64(1)}, map[string]any{"a": float64(1)}, true},
		{"sequences are ordered", []any{"a", "b"}, []any{"b", "a"}, false},
		{"sequence length differs", []any{"a"}, []any{"a", "a"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValueEqual(tt.a, tt.b); got != tt.want {
				t.Errorf("ValueEqual(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
