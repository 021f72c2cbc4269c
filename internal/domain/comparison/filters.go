package comparison

import (
	"sort"
	"strings"

	"github.com/turtacn/competiscope/pkg/types/analytics"
)

// NormalizeFilters trims, dedups, and sorts the filter value lists so that
// equal filter intents compare equal regardless of input order.  An empty
// list stays empty, meaning "no constraint".
func NormalizeFilters(f analytics.FilterState) analytics.FilterState {
	return analytics.FilterState{
		SourceTypes: normalizeValues(f.SourceTypes),
		Topics:      normalizeValues(f.Topics),
		Sentiments:  normalizeValues(f.Sentiments),
		MinPriority: f.MinPriority,
	}
}

// FiltersEqual reports whether two normalized filter states describe the
// same constraint.
func FiltersEqual(a, b analytics.FilterState) bool {
	if !stringSlicesEqual(a.SourceTypes, b.SourceTypes) {
		return false
	}
	if !stringSlicesEqual(a.Topics, b.Topics) {
		return false
	}
	if !stringSlicesEqual(a.Sentiments, b.Sentiments) {
		return false
	}
	if (a.MinPriority == nil) != (b.MinPriority == nil) {
		return false
	}
	if a.MinPriority != nil && *a.MinPriority != *b.MinPriority {
		return false
	}
	return true
}

// FiltersEmpty reports whether the state constrains nothing.
func FiltersEmpty(f analytics.FilterState) bool {
	return len(f.SourceTypes) == 0 && len(f.Topics) == 0 && len(f.Sentiments) == 0 && f.MinPriority == nil
}

func normalizeValues(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
