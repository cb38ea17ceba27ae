// Package utils provides shared utilities for text, math, and logging.
package utils

import "unicode/utf8"

// Truncate returns s truncated to at most maxLen bytes, with "..." appended
// if truncated. The cut never splits a multi-byte rune. If maxLen is 0 or
// negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:PrevRuneStart(s, maxLen)] + "..."
}

// PrevRuneStart backs i up to the nearest rune boundary in s, so that
// s[:i] is valid UTF-8 whenever s is.
func PrevRuneStart(s string, i int) int {
	for i > 0 && i < len(s) && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}
