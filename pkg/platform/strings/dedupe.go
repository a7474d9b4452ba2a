// Package strings holds small helpers for string lists read from
// configuration and fixtures.
package strings

import (
	"strings"
)

// DedupeAndTrim trims each value and drops blanks and repeats, keeping the
// first occurrence in order.
func DedupeAndTrim(values []string) []string {
	return DedupeBy(values, strings.TrimSpace)
}

// DedupeBy keeps the first value for each key, in order, storing the key in
// place of the value. Values whose key is empty are dropped. A nil or empty
// input is returned unchanged.
func DedupeBy(values []string, key func(string) string) []string {
	if len(values) == 0 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		k := key(v)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
