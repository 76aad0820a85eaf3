package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize canonicalizes text for comparison: full Unicode lower-casing,
// then every rune other than a-z, 0-9 and whitespace is dropped and the
// result is trimmed. Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	// Casers are stateful and must not be shared across goroutines.
	lowered := cases.Lower(language.Und).String(text)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if isKept(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimFunc(b.String(), unicode.IsSpace)
}

func isKept(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	default:
		return unicode.IsSpace(r)
	}
}

// Words splits normalized text on whitespace.
func Words(normalized string) []string {
	return strings.Fields(normalized)
}

// TitleCase turns a category key like "leave_policy" into "Leave Policy".
func TitleCase(key string) string {
	return cases.Title(language.Und).String(strings.ReplaceAll(key, "_", " "))
}
