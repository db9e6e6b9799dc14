package utils

import "strings"

// SplitList splits a comma separated list into trimmed items, dropping empty
// ones ("a, ,b" yields ["a" "b"]).
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// DedupeInOrder removes duplicates while keeping the first occurrence of each
// item. Order-preserving dedupe keeps serialization and equality checks stable
// across runs, unlike a hash-set round trip.
func DedupeInOrder(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
