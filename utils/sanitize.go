package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var stripper = bluemonday.StrictPolicy()

// stripPasses bounds how many layers of entity encoding are peeled.
const stripPasses = 8

// StripMarkup removes every HTML tag from free text such as track titles and
// guesses, including tags smuggled in as entities. Plain entities are decoded
// so "Simon & Garfunkel" is stored as typed.
func StripMarkup(input string) string {
	out := input
	for i := 0; i < stripPasses; i++ {
		next := html.UnescapeString(stripper.Sanitize(out))
		if next == out {
			return strings.TrimSpace(out)
		}
		out = next
	}
	// Still changing: keep the escaped form rather than risk a live tag.
	return strings.TrimSpace(stripper.Sanitize(out))
}
