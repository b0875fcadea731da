package analysis

import (
	"fmt"
	"sort"

	"actionspec-hq/sentinel/pkg/spec/document"
)

// changeKind distinguishes how a difference manifested, before the
// severity table assigns meaning.
type changeKind int

const (
	kindModified changeKind = iota
	kindAdded
	kindRemoved
	kindSetAdded
	kindSetRemoved
)

// rawChange is one detected difference, pre-classification.
type rawChange struct {
	path       string
	kind       changeKind
	old, new   any
	oldPresent bool
	newPresent bool
	elements   []string // sorted member list for set kinds
}

// Diff compares two documents and classifies every difference. old may be
// nil for a first deployment: every populated leaf of new is then a
// plain INFO entry, since nothing exists yet that a change could destroy.
func Diff(old, new document.Document) *Report {
	report := &Report{
		Errors:   []Change{},
		Warnings: []Change{},
		Info:     []Change{},
	}

	if old == nil {
		new.Walk(func(path string, value any) {
			report.add(Change{
				Path:     path,
				Old:      nil,
				New:      value,
				Severity: SeverityInfo,
				Category: CategoryGeneric,
				Message:  fmt.Sprintf("Field '%s' set to %s", path, formatValue(value)),
			})
		})
		return report.finish()
	}

	var raws []rawChange
	diffMaps("", map[string]any(old), map[string]any(new), &raws)
	for _, raw := range raws {
		report.add(classify(raw, old, new))
	}
	return report.finish()
}

func diffMaps(path string, old, new map[string]any, out *[]rawChange) {
	keys := unionKeys(old, new)
	for _, key := range keys {
		childPath := key
		if path != "" {
			childPath = path + "." + key
		}
		oldValue, inOld := old[key]
		newValue, inNew := new[key]

		switch {
		case inOld && inNew:
			diffValues(childPath, oldValue, newValue, out)
		case inOld:
			emitRemoved(childPath, oldValue, out)
		default:
			emitAdded(childPath, newValue, out)
		}
	}
}

func diffValues(path string, old, new any, out *[]rawChange) {
	oldMap, oldIsMap := old.(map[string]any)
	newMap, newIsMap := new.(map[string]any)
	if oldIsMap && newIsMap {
		diffMaps(path, oldMap, newMap, out)
		return
	}

	oldArr, oldIsArr := old.([]any)
	newArr, newIsArr := new.([]any)
	if oldIsArr && newIsArr && isScalarArray(oldArr) && isScalarArray(newArr) {
		diffSets(path, oldArr, newArr, out)
		return
	}

	if !document.ValueEqual(old, new) {
		*out = append(*out, rawChange{
			path: path, kind: kindModified,
			old: old, new: new,
			oldPresent: true, newPresent: true,
		})
	}
}

// diffSets compares scalar arrays as sets: reordering produces nothing,
// membership deltas produce one removal and/or one addition change
// carrying the affected members.
func diffSets(path string, old, new []any, out *[]rawChange) {
	oldSet := toSet(old)
	newSet := toSet(new)

	removed := sortedDifference(oldSet, newSet)
	if len(removed) > 0 {
		*out = append(*out, rawChange{
			path: path, kind: kindSetRemoved,
			old: old, new: new,
			oldPresent: true, newPresent: true,
			elements: removed,
		})
	}
	added := sortedDifference(newSet, oldSet)
	if len(added) > 0 {
		*out = append(*out, rawChange{
			path: path, kind: kindSetAdded,
			old: old, new: new,
			oldPresent: true, newPresent: true,
			elements: added,
		})
	}
}

// emitRemoved descends into a removed subtree so every vanished leaf is
// reported individually; removed scalar arrays surface as full-set
// removals so membership rules still see them.
func emitRemoved(path string, value any, out *[]rawChange) {
	if m, ok := value.(map[string]any); ok {
		for _, key := range document.SortedKeys(m) {
			emitRemoved(path+"."+key, m[key], out)
		}
		return
	}
	if arr, ok := value.([]any); ok && isScalarArray(arr) && len(arr) > 0 {
		*out = append(*out, rawChange{
			path: path, kind: kindSetRemoved,
			old: arr, oldPresent: true,
			elements: sortedMembers(arr),
		})
		return
	}
	*out = append(*out, rawChange{
		path: path, kind: kindRemoved,
		old: value, oldPresent: true,
	})
}

func emitAdded(path string, value any, out *[]rawChange) {
	if m, ok := value.(map[string]any); ok {
		for _, key := range document.SortedKeys(m) {
			emitAdded(path+"."+key, m[key], out)
		}
		return
	}
	if arr, ok := value.([]any); ok && isScalarArray(arr) && len(arr) > 0 {
		*out = append(*out, rawChange{
			path: path, kind: kindSetAdded,
			new: arr, newPresent: true,
			elements: sortedMembers(arr),
		})
		return
	}
	*out = append(*out, rawChange{
		path: path, kind: kindAdded,
		new: value, newPresent: true,
	})
}

func unionKeys(a, b map[string]any) []string {
	seen := make(map[string]bool, len(a)+len(b))
	keys := make([]string, 0, len(a)+len(b))
	for k := range a {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for k := range b {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func isScalarArray(arr []any) bool {
	for _, item := range arr {
		switch item.(type) {
		case map[string]any, []any:
			return false
		}
	}
	return true
}

// toSet keys scalars by their rendered form, which is unique per value
// for the scalar kinds the loader produces.
func toSet(arr []any) map[string]bool {
	set := make(map[string]bool, len(arr))
	for _, item := range arr {
		set[memberKey(item)] = true
	}
	return set
}

func sortedDifference(a, b map[string]bool) []string {
	var out []string
	for member := range a {
		if !b[member] {
			out = append(out, member)
		}
	}
	sort.Strings(out)
	return out
}

func sortedMembers(arr []any) []string {
	out := make([]string, 0, len(arr))
	seen := make(map[string]bool, len(arr))
	for _, item := range arr {
		key := memberKey(item)
		if !seen[key] {
			seen[key] = true
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

func memberKey(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
