package analysis

import (
	"strings"
	"testing"

	"actionspec-hq/sentinel/pkg/spec/document"
)

func baseDoc() document.Document {
	return document.Document{
		"apiVersion": "actionspec/v1",
		"kind":       "WebApplication",
		"metadata": map[string]any{
			"name":   "orders-api",
			"labels": map[string]any{"env": "dev"},
		},
		"spec": map[string]any{
			"compute": map[string]any{
				"size":    "medium",
				"scaling": map[string]any{"min": int64(2), "max": int64(6)},
			},
			"network": map[string]any{
				"vpc":          "vpc-0a1b2c3d",
				"subnets":      []any{"subnet-aaaa1111", "subnet-bbbb2222"},
				"publicAccess": true,
			},
			"data": map[string]any{
				"engine":           "postgres",
				"size":             "small",
				"highAvailability": true,
				"backupRetention":  int64(14),
			},
			"security": map[string]any{
				"waf": map[string]any{
					"enabled":  true,
					"mode":     "block",
					"rulesets": []any{"core", "sqli", "xss"},
				},
				"encryption": map[string]any{"atRest": true, "inTransit": true},
			},
			"governance": map[string]any{
				"maxMonthlySpend": int64(500),
				"autoShutdown":    map[string]any{"enabled": false, "afterHours": int64(24)},
			},
		},
	}
}

// set walks a dot path, creating intermediate maps, and stores the value.
func set(d document.Document, path string, value any) {
	parts := strings.Split(path, ".")
	current := map[string]any(d)
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}

func del(d document.Document, path string) {
	parts := strings.Split(path, ".")
	current := map[string]any(d)
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			return
		}
		current = next
	}
	delete(current, parts[len(parts)-1])
}

func allChanges(r *Report) []Change {
	out := make([]Change, 0, r.Total())
	out = append(out, r.Errors...)
	out = append(out, r.Warnings...)
	out = append(out, r.Info...)
	return out
}

func findChange(t *testing.T, changes []Change, path string) Change {
	t.Helper()
	for _, c := range changes {
		if c.Path == path {
			return c
		}
	}
	t.Fatalf("no change reported for path %q", path)
	return Change{}
}

func TestDiffIdenticalDocumentsIsEmpty(t *testing.T) {
	report := Diff(baseDoc(), baseDoc())
	if !report.Empty() {
		t.Fatalf("expected empty report, got %d changes", report.Total())
	}
	if report.HasBlockingErrors {
		t.Error("identical documents must not block")
	}
	if report.Summary != "0 error(s), 0 warning(s), 0 change(s)" {
		t.Errorf("unexpected summary: %q", report.Summary)
	}
}

func TestFirstDeploymentIsAllInfo(t *testing.T) {
	report := Diff(nil, baseDoc())
	if len(report.Errors) != 0 || len(report.Warnings) != 0 {
		t.Fatalf("first deployment must not produce errors or warnings, got %d/%d",
			len(report.Errors), len(report.Warnings))
	}
	if len(report.Info) != 22 {
		t.Fatalf("expected one INFO per populated leaf (22), got %d", len(report.Info))
	}
	kind := findChange(t, report.Info, "kind")
	if kind.Message != "Field 'kind' set to 'WebApplication'" {
		t.Errorf("unexpected message: %q", kind.Message)
	}
	if report.HasBlockingErrors {
		t.Error("first deployment must not block")
	}
}

func TestUnorderedArrayReorderProducesNoChange(t *testing.T) {
	old := baseDoc()
	updated := baseDoc()
	set(updated, "spec.network.subnets", []any{"subnet-bbbb2222", "subnet-aaaa1111"})
	set(updated, "spec.security.waf.rulesets", []any{"xss", "core", "sqli"})

	report := Diff(old, updated)
	if !report.Empty() {
		t.Fatalf("reordering unordered arrays must produce no changes, got %d", report.Total())
	}
}

func TestDisablingWAFIsBlockingSecurityError(t *testing.T) {
	old := baseDoc()
	updated := baseDoc()
	set(updated, "spec.security.waf.enabled", false)

	report := Diff(old, updated)
	if len(report.Errors) != 1 {
		t.Fatalf("expected exactly one error, got %d", len(report.Errors))
	}
	change := report.Errors[0]
	if !strings.Contains(change.Message, "WAF") {
		t.Errorf("message should mention WAF: %q", change.Message)
	}
	if !strings.HasSuffix(change.Path, "security.waf.enabled") {
		t.Errorf("unexpected path: %q", change.Path)
	}
	if change.Category != CategorySecurity {
		t.Errorf("expected security category, got %q", change.Category)
	}
	if !report.HasBlockingErrors {
		t.Error("report should block")
	}
}

func TestEngineRules(t *testing.T) {
	t.Run("engine to none deletes data", func(t *testing.T) {
		old := baseDoc()
		updated := baseDoc()
		set(updated, "spec.data.engine", "none")

		report := Diff(old, updated)
		change := findChange(t, report.Errors, "spec.data.engine")
		if change.Message != "Setting data.engine to 'none' will DELETE all data (irreversible!)" {
			t.Errorf("unexpected message: %q", change.Message)
		}
		if change.Category != CategoryAvailability {
			t.Errorf("expected availability category, got %q", change.Category)
		}
	})

	t.Run("engine swap requires migration", func(t *testing.T) {
		old := baseDoc()
		updated := baseDoc()
		set(updated, "spec.data.engine", "mysql")

		report := Diff(old, updated)
		change := findChange(t, report.Errors, "spec.data.engine")
		if change.Message != "Changing data.engine from 'postgres' to 'mysql' requires manual data migration" {
			t.Errorf("unexpected message: %q", change.Message)
		}
	})

	t.Run("adding an engine is informational", func(t *testing.T) {
		old := baseDoc()
		del(old, "spec.data.engine")
		updated := baseDoc()

		report := Diff(old, updated)
		if len(report.Errors) != 0 {
			t.Fatalf("adding an engine must not be an error, got %d", len(report.Errors))
		}
		change := findChange(t, report.Info, "spec.data.engine")
		if change.Message != "Field 'spec.data.engine' added with value 'postgres'" {
			t.Errorf("unexpected message: %q", change.Message)
		}
	})
}

func TestDataSizeShrinkIsError(t *testing.T) {
	old := baseDoc()
	set(old, "spec.data.size", "large")
	updated := baseDoc()
	set(updated, "spec.data.size", "small")

	report := Diff(old, updated)
	change := findChange(t, report.Errors, "spec.data.size")
	if change.Message != "Database size reduction from 'large' to 'small' may require data cleanup" {
		t.Errorf("unexpected message: %q", change.Message)
	}
	if change.Category != CategoryAvailability {
		t.Errorf("expected availability category, got %q", change.Category)
	}
}

func TestComputeSizeChanges(t *testing.T) {
	t.Run("increase warns about cost", func(t *testing.T) {
		old := baseDoc()
		updated := baseDoc()
		set(updated, "spec.compute.size", "large")

		report := Diff(old, updated)
		change := findChange(t, report.Warnings, "spec.compute.size")
		if change.Category != CategoryCost {
			t.Errorf("expected cost category, got %q", change.Category)
		}
		if change.Message != "Compute size increase from 'medium' to 'large' will increase costs" {
			t.Errorf("unexpected message: %q", change.Message)
		}
	})

	t.Run("decrease is informational", func(t *testing.T) {
		old := baseDoc()
		updated := baseDoc()
		set(updated, "spec.compute.size", "demo")

		report := Diff(old, updated)
		if len(report.Errors) != 0 || len(report.Warnings) != 0 {
			t.Fatalf("compute downsizing must stay informational")
		}
		change := findChange(t, report.Info, "spec.compute.size")
		if change.Message != "Compute size reduction from 'medium' to 'demo' may cause downtime" {
			t.Errorf("unexpected message: %q", change.Message)
		}
	})
}

func TestUnrankedSizeTierStaysInformational(t *testing.T) {
	old := baseDoc()
	updated := baseDoc()
	set(updated, "spec.compute.size", "xxl")
	set(updated, "spec.data.size", "enormous")

	report := Diff(old, updated)
	if len(report.Errors) != 0 || len(report.Warnings) != 0 {
		t.Fatalf("unranked tiers must not be classified, got %d error(s) and %d warning(s)",
			len(report.Errors), len(report.Warnings))
	}
	compute := findChange(t, report.Info, "spec.compute.size")
	if compute.Category != CategoryGeneric {
		t.Errorf("expected generic category, got %q", compute.Category)
	}
	if compute.Message != "Field 'spec.compute.size' changed from 'medium' to 'xxl'" {
		t.Errorf("unexpected message: %q", compute.Message)
	}
	data := findChange(t, report.Info, "spec.data.size")
	if data.Message != "Field 'spec.data.size' changed from 'small' to 'enormous'" {
		t.Errorf("unexpected message: %q", data.Message)
	}
}

func TestCapacityReductions(t *testing.T) {
	old := baseDoc()
	updated := baseDoc()
	set(updated, "spec.compute.scaling.max", int64(3))
	set(updated, "spec.compute.scaling.min", int64(1))
	set(updated, "spec.data.backupRetention", int64(7))

	report := Diff(old, updated)
	if len(report.Warnings) != 3 {
		t.Fatalf("expected 3 warnings, got %d", len(report.Warnings))
	}

	wantMessages := map[string]string{
		"spec.compute.scaling.max":  "Maximum instance count reduced from 6 to 3",
		"spec.compute.scaling.min":  "Minimum instance count reduced from 2 to 1",
		"spec.data.backupRetention": "Backup retention reduced from 14 to 7 days",
	}
	for path, want := range wantMessages {
		change := findChange(t, report.Warnings, path)
		if change.Message != want {
			t.Errorf("%s: got %q, want %q", path, change.Message, want)
		}
		if change.Category != CategoryAvailability {
			t.Errorf("%s: expected availability category, got %q", path, change.Category)
		}
	}
}

func TestEncryptionAbsenceDefaultsToEnabled(t *testing.T) {
	t.Run("explicit disable is an error", func(t *testing.T) {
		old := baseDoc()
		updated := baseDoc()
		set(updated, "spec.security.encryption.atRest", false)

		report := Diff(old, updated)
		change := findChange(t, report.Errors, "spec.security.encryption.atRest")
		if change.Message != "Disabling encryption at rest" {
			t.Errorf("unexpected message: %q", change.Message)
		}
	})

	t.Run("absent to false is a disable", func(t *testing.T) {
		old := baseDoc()
		del(old, "spec.security.encryption.inTransit")
		updated := baseDoc()
		set(updated, "spec.security.encryption.inTransit", false)

		report := Diff(old, updated)
		change := findChange(t, report.Errors, "spec.security.encryption.inTransit")
		if change.Message != "Disabling encryption in transit" {
			t.Errorf("unexpected message: %q", change.Message)
		}
	})

	t.Run("true to absent keeps the default and is not a disable", func(t *testing.T) {
		old := baseDoc()
		updated := baseDoc()
		del(updated, "spec.security.encryption.atRest")

		report := Diff(old, updated)
		if len(report.Errors) != 0 {
			t.Fatalf("removing an absent-defaults-true flag must not be an error")
		}
		change := findChange(t, report.Info, "spec.security.encryption.atRest")
		if change.Message != "Field 'spec.security.encryption.atRest' removed (was true)" {
			t.Errorf("unexpected message: %q", change.Message)
		}
	})

	t.Run("false to true is an informational enable", func(t *testing.T) {
		old := baseDoc()
		set(old, "spec.security.encryption.atRest", false)
		updated := baseDoc()

		report := Diff(old, updated)
		change := findChange(t, report.Info, "spec.security.encryption.atRest")
		if change.Message != "Enabling encryption at rest" {
			t.Errorf("unexpected message: %q", change.Message)
		}
		if change.Category != CategorySecurity {
			t.Errorf("expected security category, got %q", change.Category)
		}
	})
}

func TestWAFModeTransitions(t *testing.T) {
	t.Run("block to monitor is a downgrade warning", func(t *testing.T) {
		old := baseDoc()
		updated := baseDoc()
		set(updated, "spec.security.waf.mode", "monitor")

		report := Diff(old, updated)
		change := findChange(t, report.Warnings, "spec.security.waf.mode")
		if change.Message != "WAF mode downgrade from 'block' to 'monitor' - attacks will be logged but not blocked" {
			t.Errorf("unexpected message: %q", change.Message)
		}
	})

	t.Run("monitor to block is informational", func(t *testing.T) {
		old := baseDoc()
		set(old, "spec.security.waf.mode", "monitor")
		updated := baseDoc()

		report := Diff(old, updated)
		change := findChange(t, report.Info, "spec.security.waf.mode")
		if change.Message != "WAF mode upgrade from 'monitor' to 'block' - attacks will now be blocked" {
			t.Errorf("unexpected message: %q", change.Message)
		}
	})
}

func TestSetMembershipChanges(t *testing.T) {
	t.Run("removing rulesets warns sorted", func(t *testing.T) {
		old := baseDoc()
		updated := baseDoc()
		set(updated, "spec.security.waf.rulesets", []any{"core"})

		report := Diff(old, updated)
		change := findChange(t, report.Warnings, "spec.security.waf.rulesets")
		if change.Message != "Removing WAF rulesets: sqli, xss" {
			t.Errorf("unexpected message: %q", change.Message)
		}
		if change.Category != CategorySecurity {
			t.Errorf("expected security category, got %q", change.Category)
		}
	})

	t.Run("removing subnets warns", func(t *testing.T) {
		old := baseDoc()
		updated := baseDoc()
		set(updated, "spec.network.subnets", []any{"subnet-aaaa1111"})

		report := Diff(old, updated)
		change := findChange(t, report.Warnings, "spec.network.subnets")
		if change.Message != "Removing subnets: subnet-bbbb2222" {
			t.Errorf("unexpected message: %q", change.Message)
		}
	})

	t.Run("removing security groups warns", func(t *testing.T) {
		old := baseDoc()
		set(old, "spec.network.securityGroups", []any{"sg-11112222", "sg-33334444"})
		updated := baseDoc()
		set(updated, "spec.network.securityGroups", []any{"sg-33334444"})

		report := Diff(old, updated)
		change := findChange(t, report.Warnings, "spec.network.securityGroups")
		if change.Message != "Removing security groups: sg-11112222" {
			t.Errorf("unexpected message: %q", change.Message)
		}
		if change.Category != CategorySecurity {
			t.Errorf("expected security category, got %q", change.Category)
		}
	})

	t.Run("additions stay informational", func(t *testing.T) {
		old := baseDoc()
		updated := baseDoc()
		set(updated, "spec.network.subnets", []any{"subnet-aaaa1111", "subnet-bbbb2222", "subnet-cccc3333"})

		report := Diff(old, updated)
		change := findChange(t, report.Info, "spec.network.subnets")
		if change.Message != "Values added to 'spec.network.subnets': subnet-cccc3333" {
			t.Errorf("unexpected message: %q", change.Message)
		}
	})

	t.Run("swap reports removal before addition", func(t *testing.T) {
		old := baseDoc()
		updated := baseDoc()
		set(updated, "spec.security.waf.rulesets", []any{"core", "sqli", "bots"})

		report := Diff(old, updated)
		if len(report.Warnings) != 1 || len(report.Info) != 1 {
			t.Fatalf("expected one warning and one info, got %d/%d",
				len(report.Warnings), len(report.Info))
		}
		if report.Warnings[0].Message != "Removing WAF rulesets: xss" {
			t.Errorf("unexpected removal message: %q", report.Warnings[0].Message)
		}
		if report.Info[0].Message != "Values added to 'spec.security.waf.rulesets': bots" {
			t.Errorf("unexpected addition message: %q", report.Info[0].Message)
		}
	})
}

func TestNetworkChanges(t *testing.T) {
	old := baseDoc()
	updated := baseDoc()
	set(updated, "spec.network.vpc", "vpc-9f8e7d6c")
	set(updated, "spec.network.publicAccess", false)

	report := Diff(old, updated)
	vpc := findChange(t, report.Warnings, "spec.network.vpc")
	if vpc.Message != "VPC change requires complete network reconfiguration" {
		t.Errorf("unexpected message: %q", vpc.Message)
	}
	public := findChange(t, report.Warnings, "spec.network.publicAccess")
	if public.Message != "Disabling public access - external connectivity will be lost" {
		t.Errorf("unexpected message: %q", public.Message)
	}
}

func TestHighAvailabilityDisable(t *testing.T) {
	old := baseDoc()
	updated := baseDoc()
	set(updated, "spec.data.highAvailability", false)

	report := Diff(old, updated)
	change := findChange(t, report.Warnings, "spec.data.highAvailability")
	if change.Message != "Disabling high availability - single point of failure introduced" {
		t.Errorf("unexpected message: %q", change.Message)
	}
}

func TestGovernanceChanges(t *testing.T) {
	t.Run("budget reduction is informational", func(t *testing.T) {
		old := baseDoc()
		updated := baseDoc()
		set(updated, "spec.governance.maxMonthlySpend", int64(200))

		report := Diff(old, updated)
		change := findChange(t, report.Info, "spec.governance.maxMonthlySpend")
		if change.Message != "Monthly budget reduced from $500 to $200" {
			t.Errorf("unexpected message: %q", change.Message)
		}
		if change.Category != CategoryCost {
			t.Errorf("expected cost category, got %q", change.Category)
		}
	})

	t.Run("auto shutdown enable reads hours from the new document", func(t *testing.T) {
		old := baseDoc()
		updated := baseDoc()
		set(updated, "spec.governance.autoShutdown.enabled", true)
		set(updated, "spec.governance.autoShutdown.afterHours", int64(12))

		report := Diff(old, updated)
		change := findChange(t, report.Info, "spec.governance.autoShutdown.enabled")
		if change.Message != "Auto-shutdown enabled: infrastructure will stop after 12 hours of inactivity" {
			t.Errorf("unexpected message: %q", change.Message)
		}
	})

	t.Run("auto shutdown hours default to 24", func(t *testing.T) {
		old := baseDoc()
		del(old, "spec.governance.autoShutdown.afterHours")
		updated := baseDoc()
		del(updated, "spec.governance.autoShutdown.afterHours")
		set(updated, "spec.governance.autoShutdown.enabled", true)

		report := Diff(old, updated)
		change := findChange(t, report.Info, "spec.governance.autoShutdown.enabled")
		if change.Message != "Auto-shutdown enabled: infrastructure will stop after 24 hours of inactivity" {
			t.Errorf("unexpected message: %q", change.Message)
		}
	})
}

func TestKindChangeWarns(t *testing.T) {
	old := baseDoc()
	updated := baseDoc()
	set(updated, "kind", "StaticSite")

	report := Diff(old, updated)
	change := findChange(t, report.Warnings, "kind")
	if change.Category != CategoryFeature {
		t.Errorf("expected feature category, got %q", change.Category)
	}
	if change.Message != "Changing kind from 'WebApplication' to 'StaticSite' replaces the provisioned architecture" {
		t.Errorf("unexpected message: %q", change.Message)
	}
}

func TestGenericFallbackNeverDropsChanges(t *testing.T) {
	old := baseDoc()
	updated := baseDoc()
	set(updated, "metadata.labels.env", "prod")
	set(updated, "metadata.labels.team", "platform")
	del(updated, "metadata.name")

	report := Diff(old, updated)
	if len(report.Errors) != 0 || len(report.Warnings) != 0 {
		t.Fatalf("metadata edits must stay informational")
	}

	wantMessages := map[string]string{
		"metadata.labels.env":  "Field 'metadata.labels.env' changed from 'dev' to 'prod'",
		"metadata.labels.team": "Field 'metadata.labels.team' added with value 'platform'",
		"metadata.name":        "Field 'metadata.name' removed (was 'orders-api')",
	}
	for path, want := range wantMessages {
		change := findChange(t, report.Info, path)
		if change.Message != want {
			t.Errorf("%s: got %q, want %q", path, change.Message, want)
		}
		if change.Category != CategoryGeneric {
			t.Errorf("%s: expected generic category, got %q", path, change.Category)
		}
	}
}

func TestVendorKeysDiffAsInfo(t *testing.T) {
	old := baseDoc()
	set(old, "spec.x-deploy-window", "weekdays")
	updated := baseDoc()
	set(updated, "spec.x-deploy-window", "weekends")
	set(updated, "spec.x-canary", true)

	report := Diff(old, updated)
	if len(report.Errors) != 0 || len(report.Warnings) != 0 {
		t.Fatalf("vendor key edits must stay informational, got %d error(s) and %d warning(s)",
			len(report.Errors), len(report.Warnings))
	}

	window := findChange(t, report.Info, "spec.x-deploy-window")
	if window.Message != "Field 'spec.x-deploy-window' changed from 'weekdays' to 'weekends'" {
		t.Errorf("unexpected message: %q", window.Message)
	}
	if window.Category != CategoryGeneric {
		t.Errorf("expected generic category, got %q", window.Category)
	}
	canary := findChange(t, report.Info, "spec.x-canary")
	if canary.Message != "Field 'spec.x-canary' added with value true" {
		t.Errorf("unexpected message: %q", canary.Message)
	}
}

func TestRemovedSubtreeReportsEveryLeaf(t *testing.T) {
	old := baseDoc()
	updated := baseDoc()
	del(updated, "spec.data")

	report := Diff(old, updated)
	paths := make(map[string]bool)
	for _, c := range allChanges(report) {
		paths[c.Path] = true
	}
	for _, want := range []string{
		"spec.data.engine",
		"spec.data.size",
		"spec.data.highAvailability",
		"spec.data.backupRetention",
	} {
		if !paths[want] {
			t.Errorf("missing change for removed leaf %q", want)
		}
	}

	// Dropping the flag while it was on still counts as disabling.
	ha := findChange(t, report.Warnings, "spec.data.highAvailability")
	if ha.Message != "Disabling high availability - single point of failure introduced" {
		t.Errorf("unexpected message: %q", ha.Message)
	}
}

func TestSummaryCountsEveryChange(t *testing.T) {
	old := baseDoc()
	updated := baseDoc()
	set(updated, "spec.security.waf.enabled", false)
	set(updated, "spec.compute.scaling.max", int64(3))
	set(updated, "metadata.labels.env", "prod")

	report := Diff(old, updated)
	if report.Summary != "1 error(s), 1 warning(s), 3 change(s)" {
		t.Errorf("unexpected summary: %q", report.Summary)
	}
	if !report.HasBlockingErrors {
		t.Error("report should block")
	}
}

func TestDiscoveryOrderIsDeterministic(t *testing.T) {
	old := baseDoc()
	updated := baseDoc()
	set(updated, "spec.data.engine", "none")
	set(updated, "spec.security.waf.enabled", false)

	for i := 0; i < 10; i++ {
		report := Diff(old, updated)
		if len(report.Errors) != 2 {
			t.Fatalf("expected 2 errors, got %d", len(report.Errors))
		}
		if report.Errors[0].Path != "spec.data.engine" {
			t.Fatalf("expected data.engine first (lexical walk), got %q", report.Errors[0].Path)
		}
		if report.Errors[1].Path != "spec.security.waf.enabled" {
			t.Fatalf("expected waf.enabled second, got %q", report.Errors[1].Path)
		}
	}
}
