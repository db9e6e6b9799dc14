package clusteracl

import "sort"

// MatchesAll reports whether a host's label map satisfies every selector in
// the set (AND semantics; an empty set matches everything). Labels missing
// from the map evaluate against the empty string.
func MatchesAll(selectors []*HostSelector, labels map[string]string) bool {
	for _, s := range selectors {
		if !s.Matches(labels[s.Label]) {
			return false
		}
	}
	return true
}

// MatchHosts returns the names of hosts whose labels satisfy every selector,
// sorted so the output is deterministic regardless of map iteration order.
func MatchHosts(hosts map[string]map[string]string, selectors []*HostSelector) []string {
	out := make([]string, 0, len(hosts))
	for host, labels := range hosts {
		if MatchesAll(selectors, labels) {
			out = append(out, host)
		}
	}
	sort.Strings(out)
	return out
}
