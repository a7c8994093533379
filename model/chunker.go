package model

import (
	"strings"

	"lawrag/lawparse"
	"lawrag/types"
)

// Chunker splits article text into token-bounded, overlapping chunks and
// tags each with its clause path.
type Chunker struct {
	tokenizer Tokenizer
	maxTokens int
	overlap   int
}

func NewChunker(tokenizer Tokenizer, cfg types.Config) *Chunker {
	maxTokens := cfg.ChunkTokens
	if maxTokens <= 0 {
		maxTokens = types.DefaultChunkTokens
	}
	ratio := cfg.OverlapRatio
	if ratio <= 0 {
		ratio = types.DefaultOverlapRatio
	}
	overlap := int(float64(maxTokens) * ratio)
	if overlap < 1 {
		overlap = 1
	}
	return &Chunker{
		tokenizer: tokenizer,
		maxTokens: maxTokens,
		overlap:   overlap,
	}
}

// ChunkArticle returns the ordered chunks of one article's text. Chunk
// Index is the 0-based output position; empty windows are dropped.
func (c *Chunker) ChunkArticle(articleText string, mainArticleNo, subArticleNo int) []types.Chunk {
	var chunks []types.Chunk
	for _, w := range c.tokenizer.Split(articleText, c.maxTokens, c.overlap) {
		content := strings.TrimSpace(w)
		if content == "" {
			continue
		}
		chunks = append(chunks, types.Chunk{
			Index:      len(chunks),
			ClausePath: lawparse.ClausePath(content, mainArticleNo, subArticleNo),
			Content:    content,
			TokenCount: c.tokenizer.CountTokens(content),
		})
	}
	return chunks
}
