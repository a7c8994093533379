package lawparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLaw = `제1장 총칙
제1조(목적) 이 법은 산업 안전 및 보건에 관한 기준을 확립함을 목적으로 한다.
제2조(정의) 이 법에서 사용하는 용어의 뜻은 다음과 같다.
1. "산업재해"란 노무를 제공하는 사람이 업무에 관계되는 건설물ㆍ설비 등에 의하여 사망 또는 부상하는 것을 말한다.
제2조의2(적용 범위) 이 법은 모든 사업 또는 사업장에 적용한다.
제2장 안전보건관리체제
제5조 안전보건관리책임자는 사업장의 다음 각 호의 업무를 총괄하여 관리한다.
① 사업장의 산업재해 예방계획의 수립에 관한 사항
② 안전보건관리규정의 작성 및 변경에 관한 사항`

func TestSplitToArticles(t *testing.T) {
	records := SplitToArticles(sampleLaw)
	require.Len(t, records, 4)

	first := records[0]
	require.NotNil(t, first.ChapterNo)
	assert.Equal(t, 1, *first.ChapterNo)
	require.NotNil(t, first.ChapterTitle)
	assert.Equal(t, "총칙", *first.ChapterTitle)
	assert.Equal(t, 1, first.MainArticleNo)
	assert.Equal(t, 0, first.SubArticleNo)
	require.NotNil(t, first.ArticleTitle)
	assert.Equal(t, "목적", *first.ArticleTitle)
	assert.Contains(t, first.Text, "제1조(목적)")
	assert.NotContains(t, first.Text, "제2조")

	second := records[1]
	assert.Equal(t, 2, second.MainArticleNo)
	assert.Equal(t, 0, second.SubArticleNo)
	assert.Contains(t, second.Text, `"산업재해"란`)

	// 제2조의2: the 의N suffix becomes the sub number.
	sub := records[2]
	assert.Equal(t, 2, sub.MainArticleNo)
	assert.Equal(t, 2, sub.SubArticleNo)
	require.NotNil(t, sub.ArticleTitle)
	assert.Equal(t, "적용 범위", *sub.ArticleTitle)

	// 제5조 sits under the second chapter and has no parenthesized
	// title: the title is absent, not empty.
	fifth := records[3]
	require.NotNil(t, fifth.ChapterNo)
	assert.Equal(t, 2, *fifth.ChapterNo)
	require.NotNil(t, fifth.ChapterTitle)
	assert.Equal(t, "안전보건관리체제", *fifth.ChapterTitle)
	assert.Equal(t, 5, fifth.MainArticleNo)
	assert.Nil(t, fifth.ArticleTitle)
	assert.Contains(t, fifth.Text, "①")
}

func TestSplitToArticlesNoChapters(t *testing.T) {
	text := "제1조(목적) 이 법은 안전을 목적으로 한다.\n제2조(정의) 용어의 뜻은 다음과 같다."
	records := SplitToArticles(text)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Nil(t, r.ChapterNo)
		assert.Nil(t, r.ChapterTitle)
	}
	assert.Equal(t, 1, records[0].MainArticleNo)
	assert.Equal(t, 2, records[1].MainArticleNo)
}

func TestSplitToArticlesChapterWithoutTitle(t *testing.T) {
	text := "제3장\n제7조(협조 요청) 고용노동부장관은 필요하다고 인정할 때에는 협조를 요청할 수 있다."
	records := SplitToArticles(text)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].ChapterNo)
	assert.Equal(t, 3, *records[0].ChapterNo)
	assert.Nil(t, records[0].ChapterTitle)
}

func TestSplitToArticlesRejectsFollowingJeMarker(t *testing.T) {
	// "제9조 제8조를 준용한다" at line start reads like an article
	// header, but the trailing 제 marker disqualifies it. The line folds
	// into the preceding article's block.
	text := "제8조(준용) 안전관리에 관한 사항은 다음과 같다.\n제9조 제8조를 준용한다."
	records := SplitToArticles(text)
	require.Len(t, records, 1)
	assert.Equal(t, 8, records[0].MainArticleNo)
	assert.Contains(t, records[0].Text, "제9조 제8조를 준용한다.")
}

func TestSplitToArticlesMalformedInput(t *testing.T) {
	assert.Empty(t, SplitToArticles(""))
	assert.Empty(t, SplitToArticles("조문이 전혀 없는 텍스트입니다."))
	// A chapter with no articles under it yields no records.
	assert.Empty(t, SplitToArticles("제1장 총칙\n이 장에는 조문이 없다."))
}

func TestSplitToArticlesEmptyChapterSegmentDropped(t *testing.T) {
	text := "제1장 총칙\n제2장 관리체제\n제3조(책무) 정부는 책무를 진다."
	records := SplitToArticles(text)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].ChapterNo)
	assert.Equal(t, 2, *records[0].ChapterNo)
}
