package planstore

import "sort"

// dedupePreserveOrder returns in with duplicates removed, keeping the first
// occurrence's position.
func dedupePreserveOrder(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// appendDedupe appends items from add to base, skipping any already present,
// preserving base's existing order.
func appendDedupe(base []string, add []string) []string {
	seen := make(map[string]bool, len(base))
	for _, v := range base {
		seen[v] = true
	}
	out := append([]string(nil), base...)
	for _, v := range add {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// subtract removes every element of remove from base, preserving order.
func subtract(base []string, remove []string) []string {
	drop := make(map[string]bool, len(remove))
	for _, v := range remove {
		drop[v] = true
	}
	out := make([]string, 0, len(base))
	for _, v := range base {
		if drop[v] {
			continue
		}
		out = append(out, v)
	}
	return out
}

// unionSorted returns the deduplicated, lexicographically sorted union of
// all given slices. Used by merge for dependencies/tags/artifacts/links.
func unionSorted(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range lists {
		for _, v := range list {
			if seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func containsString(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
