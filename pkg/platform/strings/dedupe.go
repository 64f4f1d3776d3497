// Package strings holds small helpers for cleaning user-supplied string lists.
package strings

import (
	"strings"
)

// DedupeAndTrim trims each value, drops blanks and keeps the first
// occurrence of every remaining value. Order is preserved. A nil or empty
// input is returned as is, so callers can tell "not sent" from "cleared".
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
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
	return out
}
