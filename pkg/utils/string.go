package utils

import "strings"

// Truncate is a simple string truncate
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// maskVisible is the number of trailing characters Mask leaves readable.
const maskVisible = 4

// Mask hides all but the last few characters of a secret. Short secrets are
// hidden entirely.
func Mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= maskVisible*2 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-maskVisible) + s[len(s)-maskVisible:]
}
