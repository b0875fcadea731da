package analysis

import (
	"fmt"
	"strconv"
	"strings"

	"actionspec-hq/sentinel/pkg/spec/document"
)

// tierRank orders size tiers for shrink/grow comparison. Unknown tiers
// are not ranked, so a typo never reads as a reduction.
var tierRank = map[string]int{
	"demo":   0,
	"small":  1,
	"medium": 2,
	"large":  3,
}

// rule binds one field path to a predicate over the raw change and the
// classification it produces. Rules are evaluated in order, first match
// wins; anything unmatched falls through to a generic INFO entry.
type rule struct {
	path    string
	applies func(c rawChange) bool
	build   func(c rawChange, oldDoc, newDoc document.Document) (Severity, Category, string)
}

var rules = []rule{
	{
		path:    "spec.data.engine",
		applies: func(c rawChange) bool { return engineActive(c.old) && c.newPresent && c.new == "none" },
		build: func(c rawChange, _, _ document.Document) (Severity, Category, string) {
			return SeverityError, CategoryAvailability,
				"Setting data.engine to 'none' will DELETE all data (irreversible!)"
		},
	},
	{
		path: "spec.data.engine",
		applies: func(c rawChange) bool {
			return engineActive(c.old) && engineActive(c.new) && !document.ValueEqual(c.old, c.new)
		},
		build: func(c rawChange, _, _ document.Document) (Severity, Category, string) {
			return SeverityError, CategoryAvailability,
				fmt.Sprintf("Changing data.engine from '%v' to '%v' requires manual data migration", c.old, c.new)
		},
	},
	{
		path:    "spec.data.size",
		applies: tierShrank,
		build: func(c rawChange, _, _ document.Document) (Severity, Category, string) {
			return SeverityError, CategoryAvailability,
				fmt.Sprintf("Database size reduction from '%v' to '%v' may require data cleanup", c.old, c.new)
		},
	},
	{
		path:    "spec.security.waf.enabled",
		applies: func(c rawChange) bool { return isTrue(c.old, c.oldPresent) && !isTrue(c.new, c.newPresent) },
		build: func(c rawChange, _, _ document.Document) (Severity, Category, string) {
			return SeverityError, CategorySecurity, "Disabling WAF will remove security protection"
		},
	},
	{
		path:    "spec.security.encryption.atRest",
		applies: encryptionDisabled,
		build: func(c rawChange, _, _ document.Document) (Severity, Category, string) {
			return SeverityError, CategorySecurity, "Disabling encryption at rest"
		},
	},
	{
		path:    "spec.security.encryption.inTransit",
		applies: encryptionDisabled,
		build: func(c rawChange, _, _ document.Document) (Severity, Category, string) {
			return SeverityError, CategorySecurity, "Disabling encryption in transit"
		},
	},
	{
		path:    "spec.security.waf.mode",
		applies: func(c rawChange) bool { return c.old == "block" && c.new == "monitor" },
		build: func(c rawChange, _, _ document.Document) (Severity, Category, string) {
			return SeverityWarning, CategorySecurity,
				"WAF mode downgrade from 'block' to 'monitor' - attacks will be logged but not blocked"
		},
	},
	{
		path:    "spec.security.waf.rulesets",
		applies: func(c rawChange) bool { return c.kind == kindSetRemoved },
		build: func(c rawChange, _, _ document.Document) (Severity, Category, string) {
			return SeverityWarning, CategorySecurity,
				"Removing WAF rulesets: " + strings.Join(c.elements, ", ")
		},
	},
	{
		path:    "spec.network.securityGroups",
		applies: func(c rawChange) bool { return c.kind == kindSetRemoved },
		build: func(c rawChange, _, _ document.Document) (Severity, Category, string) {
			return SeverityWarning, CategorySecurity,
				"Removing security groups: " + strings.Join(c.elements, ", ")
		},
	},
	{
		path:    "spec.data.highAvailability",
		applies: func(c rawChange) bool { return isTrue(c.old, c.oldPresent) && !isTrue(c.new, c.newPresent) },
		build: func(c rawChange, _, _ document.Document) (Severity, Category, string) {
			return SeverityWarning, CategoryAvailability,
				"Disabling high availability - single point of failure introduced"
		},
	},
	{
		path:    "spec.compute.size",
		applies: tierGrew,
		build: func(c rawChange, _, _ document.Document) (Severity, Category, string) {
			return SeverityWarning, CategoryCost,
				fmt.Sprintf("Compute size increase from '%v' to '%v' will increase costs", c.old, c.new)
		},
	},
	{
		path:    "spec.compute.scaling.max",
		applies: numberDecreased,
		build: func(c rawChange, _, _ document.Document) (Severity, Category, string) {
			return SeverityWarning, CategoryAvailability,
				fmt.Sprintf("Maximum instance count reduced from %s to %s", plainNumber(c.old), plainNumber(c.new))
		},
	},
	{
		path:    "spec.compute.scaling.min",
		applies: numberDecreased,
		build: func(c rawChange, _, _ document.Document) (Severity, Category, string) {
			return SeverityWarning, CategoryAvailability,
				fmt.Sprintf("Minimum instance count reduced from %s to %s", plainNumber(c.old), plainNumber(c.new))
		},
	},
	{
		path:    "spec.data.backupRetention",
		applies: numberDecreased,
		build: func(c rawChange, _, _ document.Document) (Severity, Category, string) {
			return SeverityWarning, CategoryAvailability,
				fmt.Sprintf("Backup retention reduced from %s to %s days", plainNumber(c.old), plainNumber(c.new))
		},
	},
	{
		path: "spec.network.vpc",
		applies: func(c rawChange) bool {
			return c.kind == kindModified && nonEmptyString(c.old) && nonEmptyString(c.new)
		},
		build: func(c rawChange, _, _ document.Document) (Severity, Category, string) {
			return SeverityWarning, CategoryAvailability,
				"VPC change requires complete network reconfiguration"
		},
	},
	{
		path:    "spec.network.publicAccess",
		applies: func(c rawChange) bool { return isTrue(c.old, c.oldPresent) && !isTrue(c.new, c.newPresent) },
		build: func(c rawChange, _, _ document.Document) (Severity, Category, string) {
			return SeverityWarning, CategoryAvailability,
				"Disabling public access - external connectivity will be lost"
		},
	},
	{
		path:    "spec.network.subnets",
		applies: func(c rawChange) bool { return c.kind == kindSetRemoved },
		build: func(c rawChange, _, _ document.Document) (Severity, Category, string) {
			return SeverityWarning, CategoryAvailability,
				"Removing subnets: " + strings.Join(c.elements, ", ")
		},
	},
	{
		path: "kind",
		applies: func(c rawChange) bool {
			return c.kind == kindModified && nonEmptyString(c.old) && nonEmptyString(c.new)
		},
		build: func(c rawChange, _, _ document.Document) (Severity, Category, string) {
			return SeverityWarning, CategoryFeature,
				fmt.Sprintf("Changing kind from '%v' to '%v' replaces the provisioned architecture", c.old, c.new)
		},
	},
	{
		path:    "spec.compute.size",
		applies: tierShrank,
		build: func(c rawChange, _, _ document.Document) (Severity, Category, string) {
			return SeverityInfo, CategoryCost,
				fmt.Sprintf("Compute size reduction from '%v' to '%v' may cause downtime", c.old, c.new)
		},
	},
	{
		path:    "spec.security.waf.enabled",
		applies: func(c rawChange) bool { return isTrue(c.new, c.newPresent) && !isTrue(c.old, c.oldPresent) },
		build: func(c rawChange, _, _ document.Document) (Severity, Category, string) {
			return SeverityInfo, CategorySecurity, "Enabling WAF will add security protection"
		},
	},
	{
		path:    "spec.security.encryption.atRest",
		applies: encryptionEnabled,
		build: func(c rawChange, _, _ document.Document) (Severity, Category, string) {
			return SeverityInfo, CategorySecurity, "Enabling encryption at rest"
		},
	},
	{
		path:    "spec.security.encryption.inTransit",
		applies: encryptionEnabled,
		build: func(c rawChange, _, _ document.Document) (Severity, Category, string) {
			return SeverityInfo, CategorySecurity, "Enabling encryption in transit"
		},
	},
	{
		path:    "spec.security.waf.mode",
		applies: func(c rawChange) bool { return c.old == "monitor" && c.new == "block" },
		build: func(c rawChange, _, _ document.Document) (Severity, Category, string) {
			return SeverityInfo, CategorySecurity,
				"WAF mode upgrade from 'monitor' to 'block' - attacks will now be blocked"
		},
	},
	{
		path:    "spec.governance.maxMonthlySpend",
		applies: numberDecreased,
		build: func(c rawChange, _, _ document.Document) (Severity, Category, string) {
			return SeverityInfo, CategoryCost,
				fmt.Sprintf("Monthly budget reduced from $%s to $%s", plainNumber(c.old), plainNumber(c.new))
		},
	},
	{
		path:    "spec.governance.autoShutdown.enabled",
		applies: func(c rawChange) bool { return isTrue(c.new, c.newPresent) && !isTrue(c.old, c.oldPresent) },
		build: func(c rawChange, _, newDoc document.Document) (Severity, Category, string) {
			hours := "24"
			if v, ok := newDoc.Lookup("spec.governance.autoShutdown.afterHours"); ok {
				if _, numeric := document.NumericValue(v); numeric {
					hours = plainNumber(v)
				}
			}
			return SeverityInfo, CategoryCost,
				fmt.Sprintf("Auto-shutdown enabled: infrastructure will stop after %s hours of inactivity", hours)
		},
	},
}

// classify runs the raw change through the rule table. Every change
// produces exactly one entry; nothing is dropped.
func classify(c rawChange, oldDoc, newDoc document.Document) Change {
	for _, r := range rules {
		if r.path != c.path || !r.applies(c) {
			continue
		}
		severity, category, message := r.build(c, oldDoc, newDoc)
		return Change{
			Path:     c.path,
			Old:      c.old,
			New:      c.new,
			Severity: severity,
			Category: category,
			Message:  message,
		}
	}
	return genericChange(c)
}

func genericChange(c rawChange) Change {
	var message string
	switch c.kind {
	case kindAdded:
		message = fmt.Sprintf("Field '%s' added with value %s", c.path, formatValue(c.new))
	case kindRemoved:
		message = fmt.Sprintf("Field '%s' removed (was %s)", c.path, formatValue(c.old))
	case kindSetAdded:
		message = fmt.Sprintf("Values added to '%s': %s", c.path, strings.Join(c.elements, ", "))
	case kindSetRemoved:
		message = fmt.Sprintf("Values removed from '%s': %s", c.path, strings.Join(c.elements, ", "))
	default:
		message = fmt.Sprintf("Field '%s' changed from %s to %s", c.path, formatValue(c.old), formatValue(c.new))
	}
	return Change{
		Path:     c.path,
		Old:      c.old,
		New:      c.new,
		Severity: SeverityInfo,
		Category: CategoryGeneric,
		Message:  message,
	}
}

func isTrue(v any, present bool) bool {
	return present && v == true
}

// encryptionDisabled treats an absent flag as enabled on both sides, so
// only an explicit false on the new side counts as a downgrade.
func encryptionDisabled(c rawChange) bool {
	oldOff := c.oldPresent && c.old == false
	newOff := c.newPresent && c.new == false
	return !oldOff && newOff
}

func encryptionEnabled(c rawChange) bool {
	return c.oldPresent && c.old == false && c.newPresent && c.new == true
}

// engineActive reports whether an engine value names a real engine.
func engineActive(v any) bool {
	s, ok := v.(string)
	return ok && s != "" && s != "none"
}

func tierShrank(c rawChange) bool {
	oldRank, okOld := rankOf(c.old)
	newRank, okNew := rankOf(c.new)
	return okOld && okNew && newRank < oldRank
}

func tierGrew(c rawChange) bool {
	oldRank, okOld := rankOf(c.old)
	newRank, okNew := rankOf(c.new)
	return okOld && okNew && newRank > oldRank
}

func rankOf(v any) (int, bool) {
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	rank, known := tierRank[s]
	return rank, known
}

func numberDecreased(c rawChange) bool {
	oldNum, okOld := document.NumericValue(c.old)
	newNum, okNew := document.NumericValue(c.new)
	return okOld && okNew && newNum < oldNum
}

func nonEmptyString(v any) bool {
	s, ok := v.(string)
	return ok && s != ""
}

func plainNumber(v any) string {
	switch n := v.(type) {
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return fmt.Sprintf("%v", v)
}
