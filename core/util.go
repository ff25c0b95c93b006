package core

import "strings"

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// ContainsString reports whether s is in slice.
func ContainsString(slice []string, s string) bool {
	for _, item := range slice {
		if item == s {
			return true
		}
	}
	return false
}

// RemoveString returns slice without any occurrence of s.
func RemoveString(slice []string, s string) []string {
	res := make([]string, 0, len(slice))
	for _, item := range slice {
		if item != s {
			res = append(res, item)
		}
	}
	return res
}
