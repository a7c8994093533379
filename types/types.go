package types

import (
	"time"

	"github.com/google/uuid"
)

// Document is one ingested statute. It owns its articles exclusively:
// deleting a document cascades to its articles and their chunks.
type Document struct {
	ID         uuid.UUID
	Title      string
	SourcePDF  string // originating filename
	EmbedModel string // embedding model that produced the chunk vectors
	Articles   []Article
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Article is one numbered provision (조) within a document, optionally
// under a chapter (장). (DocID, MainArticleNo, SubArticleNo) is unique
// within a document.
type Article struct {
	ID            uuid.UUID
	DocID         uuid.UUID
	ChapterNo     *int
	ChapterTitle  *string
	MainArticleNo int
	SubArticleNo  int // 0 when the article has no 의N suffix
	ArticleTitle  *string
	Text          string
	Chunks        []Chunk
}

// Chunk is a token-bounded slice of an article's text, the unit that is
// embedded and retrieved. (ArticleID, Index) is unique within an article.
type Chunk struct {
	ID         uuid.UUID
	ArticleID  uuid.UUID
	Index      int
	ClausePath string // citation locator, e.g. "제10조/①/2."
	Content    string
	TokenCount int
	Embedding  []float32 // nil until embedding succeeds
}
