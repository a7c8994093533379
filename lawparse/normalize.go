// Package lawparse recovers the 장 -> 조 hierarchy of Korean statutory
// text extracted from PDFs and derives citation locators for spans of it.
package lawparse

import (
	"regexp"
	"strings"
)

var hspaceRe = regexp.MustCompile(`[ \t]+`)

// Normalize canonicalizes raw extracted text: non-breaking spaces become
// ordinary spaces, runs of horizontal whitespace collapse to one space,
// and the result is trimmed. Idempotent.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, " ", " ")
	text = hspaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
