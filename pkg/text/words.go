package text

import (
	"strings"
	"unicode"
)

// SplitWords splits text on whitespace runs.
func SplitWords(s string) []string {
	return strings.Fields(s)
}

// HasLeadingSpace reports whether s starts with whitespace.
func HasLeadingSpace(s string) bool {
	for _, r := range s {
		return unicode.IsSpace(r)
	}
	return false
}

// HasTrailingSpace reports whether s ends with whitespace.
func HasTrailingSpace(s string) bool {
	trimmed := strings.TrimRightFunc(s, unicode.IsSpace)
	return len(trimmed) < len(s)
}

// GetFirstWord returns the first word of the text (skipping leading whitespace)
func GetFirstWord(s string) string {
	words := SplitWords(s)
	if len(words) > 0 {
		return words[0]
	}
	return ""
}

// Collapse joins the words of s with single spaces.
func Collapse(s string) string {
	return strings.Join(SplitWords(s), " ")
}
