package lawparse

import (
	"regexp"
	"strconv"
	"strings"
)

// Chapter headers: "제N장" at line start, optional title on the same line.
var chapterRe = regexp.MustCompile(`(?m)^[ \t]*제(\d+)장[ \t]*([^\n]*)`)

// Article headers: "제N조" at line start, optional "의M" sub-number,
// optional "(title)". The reject for a following 제 marker is a separate
// check in scanArticles, Go regexp has no lookahead.
var articleRe = regexp.MustCompile(`(?m)^(제(\d+)조(?:의(\d+))?)(\([^)]+\))?`)

// chapterMark is a located chapter header. Start/End are byte offsets of
// the header match; the chapter's body runs from End to the next Start.
type chapterMark struct {
	Start int
	End   int
	No    *int
	Title *string
}

// articleMark is a located article header within a chapter segment.
type articleMark struct {
	Start  int
	MainNo int
	SubNo  int
	Title  *string
}

func scanChapters(text string) []chapterMark {
	var marks []chapterMark
	for _, m := range chapterRe.FindAllStringSubmatchIndex(text, -1) {
		no, _ := strconv.Atoi(text[m[2]:m[3]])
		mark := chapterMark{Start: m[0], End: m[1], No: &no}
		if m[4] >= 0 {
			if title := strings.TrimSpace(text[m[4]:m[5]]); title != "" {
				mark.Title = &title
			}
		}
		marks = append(marks, mark)
	}
	return marks
}

func scanArticles(seg string) []articleMark {
	var marks []articleMark
	for _, m := range articleRe.FindAllStringSubmatchIndex(seg, -1) {
		// A 장 header read as "제N조..." leaves a second 제 marker right
		// after the designator; such matches are not article headers.
		if rest := strings.TrimLeft(seg[m[3]:], " \t\r\n"); strings.HasPrefix(rest, "제") {
			continue
		}
		mainNo, _ := strconv.Atoi(seg[m[4]:m[5]])
		mark := articleMark{Start: m[0], MainNo: mainNo}
		if m[6] >= 0 {
			mark.SubNo, _ = strconv.Atoi(seg[m[6]:m[7]])
		}
		if m[8] >= 0 {
			title := strings.Trim(seg[m[8]:m[9]], "()")
			if title = strings.TrimSpace(title); title != "" {
				mark.Title = &title
			}
		}
		marks = append(marks, mark)
	}
	return marks
}
