package utils

import "strings"

const ellipsis = "…"

// Truncate shortens s to at most maxRunes runes, ending in an ellipsis when
// anything was cut.
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if maxRunes == 1 {
		return string(runes[:1])
	}
	return string(runes[:maxRunes-1]) + ellipsis
}

// Excerpt flattens whitespace runs in a model response to single spaces and
// truncates the result, for quoting raw output in one-line error messages.
func Excerpt(s string, maxRunes int) string {
	return Truncate(strings.Join(strings.Fields(s), " "), maxRunes)
}
