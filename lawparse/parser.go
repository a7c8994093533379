package lawparse

import "strings"

// ArticleRecord is one parsed 조 with the 장 it falls under. Pointer
// fields are absent (not empty) when the source text carries no value.
type ArticleRecord struct {
	ChapterNo     *int
	ChapterTitle  *string
	MainArticleNo int
	SubArticleNo  int
	ArticleTitle  *string
	Text          string // full article block, header line included
}

// SplitToArticles partitions normalized statute text into article records.
// A document without 장 headers is treated as a single implicit chapter.
// Malformed regions yield no records; the function never fails.
func SplitToArticles(fullText string) []ArticleRecord {
	fullText = Normalize(fullText)

	chapters := scanChapters(fullText)
	if len(chapters) == 0 {
		chapters = []chapterMark{{Start: 0, End: 0}}
	}

	var results []ArticleRecord
	for i, ch := range chapters {
		segEnd := len(fullText)
		if i+1 < len(chapters) {
			segEnd = chapters[i+1].Start
		}
		seg := strings.TrimSpace(fullText[ch.End:segEnd])
		if seg == "" {
			continue
		}

		marks := scanArticles(seg)
		for j, am := range marks {
			blockEnd := len(seg)
			if j+1 < len(marks) {
				blockEnd = marks[j+1].Start
			}
			block := strings.TrimSpace(seg[am.Start:blockEnd])
			if block == "" {
				continue
			}
			results = append(results, ArticleRecord{
				ChapterNo:     ch.No,
				ChapterTitle:  ch.Title,
				MainArticleNo: am.MainNo,
				SubArticleNo:  am.SubNo,
				ArticleTitle:  am.Title,
				Text:          block,
			})
		}
	}
	return results
}
