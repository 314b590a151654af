// Package matcher implements the independent category signals: the generic
// keyword and amount heuristic, the user-history merchant matchers and the
// description keyword matcher.
package matcher

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize trims and lowercases s. A new Caser is created per call since
// Casers are not safe for concurrent use.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return cases.Lower(language.Und).String(s)
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
