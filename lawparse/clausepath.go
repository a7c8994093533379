package lawparse

import (
	"fmt"
	"regexp"
	"strings"
)

// Sub-clause markers below a 조: circled numerals (①항), then "1." items (호).
var (
	circleRe = regexp.MustCompile(`[①-⑳]`)
	itemRe   = regexp.MustCompile(`\n\s*(\d+)\.\s`)
)

// ClausePath derives the citation locator for a span of article text:
// the article designator, then the first circled numeral and the first
// itemized "N." marker found in the span, slash-joined. First means
// earliest by text position, not lowest number — later chunks of a long
// article may start mid-clause.
func ClausePath(span string, mainArticleNo, subArticleNo int) string {
	designator := fmt.Sprintf("제%d조", mainArticleNo)
	if subArticleNo != 0 {
		designator = fmt.Sprintf("제%d조의%d", mainArticleNo, subArticleNo)
	}
	path := []string{designator}

	if m := circleRe.FindString(span); m != "" {
		path = append(path, m)
	}
	if m := itemRe.FindStringSubmatch(span); m != nil {
		path = append(path, m[1]+".")
	}
	return strings.Join(path, "/")
}
