// Copyright 2025 Author(s) of MCP Any
// SPDX-License-Identifier: Apache-2.0

package render

import "unicode/utf8"

// Truncate cuts s to at most limit runes. It reports whether anything was
// removed. A limit of zero or less disables truncation.
func Truncate(s string, limit int) (string, bool) {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s, false
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i], true
		}
		n++
	}
	return s, false
}

// RuneLen returns the length of s in runes.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}
