package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"lawrag/model"
	"lawrag/store"
	"lawrag/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	saved   *types.Document
	saveErr error
}

func (s *stubStore) SaveDocumentTree(_ context.Context, doc *types.Document) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = doc
	return nil
}

func (s *stubStore) GetDocumentByID(context.Context, uuid.UUID) (*types.Document, error) {
	return nil, sql.ErrNoRows
}

func (s *stubStore) DeleteDocument(context.Context, uuid.UUID) error { return nil }

func (s *stubStore) Search(context.Context, []float32, store.SearchFilter) ([]types.SearchResult, error) {
	return nil, nil
}

type stubEmbedder struct {
	fail  bool
	calls int
}

func (e *stubEmbedder) Model() string { return "stub-embed-model" }

func (e *stubEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (e *stubEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.fail {
		return nil, errors.New("embedding oracle unavailable")
	}
	vecs := make([][]float32, len(texts))
	for i := range texts {
		vecs[i] = []float32{1, 0, 0}
	}
	return vecs, nil
}

// wordTokenizer splits into fixed word windows, standing in for the
// tiktoken-backed tokenizer.
type wordTokenizer struct{}

func (wordTokenizer) CountTokens(s string) int { return len(strings.Fields(s)) }

func (wordTokenizer) Split(text string, maxTokens, overlapTokens int) []string {
	words := strings.Fields(text)
	step := maxTokens - overlapTokens
	if step < 1 {
		step = 1
	}
	var out []string
	for i := 0; i < len(words); i += step {
		end := i + maxTokens
		if end > len(words) {
			end = len(words)
		}
		out = append(out, strings.Join(words[i:end], " "))
		if end == len(words) {
			break
		}
	}
	return out
}

func newTestService(st store.DBStorer, emb model.EmbedderInterface, t *testing.T) *Service {
	cfg := types.Config{
		SourceDir:    t.TempDir(),
		ArchiveDir:   t.TempDir(),
		BadDir:       t.TempDir(),
		ChunkTokens:  50,
		OverlapRatio: 0.2,
	}
	return New(st, model.NewChunker(wordTokenizer{}, cfg), emb, cfg)
}

const sampleLaw = `제1장 총칙
제1조(목적) 이 법은 산업 안전 및 보건에 관한 기준을 확립함을 목적으로 한다.
제2조(정의) 이 법에서 사용하는 용어의 뜻은 다음과 같다. ① 첫째 용어 ② 둘째 용어
제2조의2(적용 범위) 이 법은 모든 사업 또는 사업장에 적용한다.`

func TestIngestText(t *testing.T) {
	st := &stubStore{}
	emb := &stubEmbedder{}
	svc := newTestService(st, emb, t)

	err := svc.IngestText(context.Background(), sampleLaw, "산업안전보건법", "산업안전보건법.pdf")
	require.NoError(t, err)
	require.NotNil(t, st.saved)

	doc := st.saved
	assert.Equal(t, "산업안전보건법", doc.Title)
	assert.Equal(t, "산업안전보건법.pdf", doc.SourcePDF)
	assert.Equal(t, "stub-embed-model", doc.EmbedModel)
	require.Len(t, doc.Articles, 3)

	// One batched embedding call per article.
	assert.Equal(t, 3, emb.calls)

	for _, art := range doc.Articles {
		assert.Equal(t, doc.ID, art.DocID)
		require.NotEmpty(t, art.Chunks)
		for i, ch := range art.Chunks {
			assert.Equal(t, i, ch.Index)
			assert.Equal(t, art.ID, ch.ArticleID)
			assert.NotNil(t, ch.Embedding)
			assert.NotEmpty(t, ch.ClausePath)
		}
	}

	sub := doc.Articles[2]
	assert.Equal(t, 2, sub.MainArticleNo)
	assert.Equal(t, 2, sub.SubArticleNo)
	assert.True(t, strings.HasPrefix(sub.Chunks[0].ClausePath, "제2조의2"))
}

func TestIngestTextNoArticles(t *testing.T) {
	st := &stubStore{}
	svc := newTestService(st, &stubEmbedder{}, t)

	err := svc.IngestText(context.Background(), "조문이 없는 텍스트", "제목", "empty.pdf")
	assert.Error(t, err)
	assert.Nil(t, st.saved)
}

func TestIngestTextEmbeddingFailureAborts(t *testing.T) {
	st := &stubStore{}
	svc := newTestService(st, &stubEmbedder{fail: true}, t)

	err := svc.IngestText(context.Background(), sampleLaw, "제목", "law.pdf")
	assert.Error(t, err)
	assert.Nil(t, st.saved)
}

func TestIngestTextStoreFailureSurfaces(t *testing.T) {
	st := &stubStore{saveErr: errors.New("unique constraint violated")}
	svc := newTestService(st, &stubEmbedder{}, t)

	err := svc.IngestText(context.Background(), sampleLaw, "제목", "law.pdf")
	assert.ErrorContains(t, err, "unique constraint")
}

func TestDocumentIDStable(t *testing.T) {
	assert.Equal(t, documentID("법령.pdf"), documentID("법령.pdf"))
	assert.NotEqual(t, documentID("법령.pdf"), documentID("다른법령.pdf"))
}

func TestTitleFromPath(t *testing.T) {
	assert.Equal(t, "산업안전보건법 시행령", titleFromPath("/data/source/산업안전보건법_시행령.PDF"))
}
