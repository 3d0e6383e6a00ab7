// Package utils provides small helpers with no domain or transport coupling.
package utils

import "strconv"

// AtoiDefault parses s as an int, returning def when s is empty or not a
// number. Used for the page/page_size query parameters, where a garbage value
// should silently fall back to the default rather than fail the listing.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
