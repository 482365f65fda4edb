package utils

import "strings"

// ContainsFold reports whether q is a case-insensitive substring of s.
// An empty q matches everything.
func ContainsFold(s, q string) bool {
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(q))
}

// AnyContainsFold reports whether q is a case-insensitive substring of any of ss.
func AnyContainsFold(ss []string, q string) bool {
	for _, s := range ss {
		if ContainsFold(s, q) {
			return true
		}
	}
	return false
}
