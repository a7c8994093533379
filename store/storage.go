package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"lawrag/types"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

type DBStorer interface {
	SaveDocumentTree(context.Context, *types.Document) error
	GetDocumentByID(context.Context, uuid.UUID) (*types.Document, error)
	DeleteDocument(context.Context, uuid.UUID) error
	Search(context.Context, []float32, SearchFilter) ([]types.SearchResult, error)
}

// SearchFilter restricts a nearest-neighbor query. EmbedModel must match
// the model that produced the stored vectors; documents ingested with a
// different model are excluded rather than mis-ranked.
type SearchFilter struct {
	Limit      int
	DocID      *uuid.UUID
	EmbedModel string
}

type PostgresStore struct {
	pool     *pgxpool.Pool
	embedDim int
}

func NewPostgresStore(ctx context.Context, connStr string, embedDim int) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{
		pool:     pool,
		embedDim: embedDim,
	}, nil
}

// SaveDocumentTree persists a fully assembled document with its articles
// and embedded chunks in one transaction. A previous tree under the same
// document id is replaced in the same transaction, so re-ingesting a
// source never leaves a duplicated or partial hierarchy.
func (p *PostgresStore) SaveDocumentTree(ctx context.Context, doc *types.Document) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Cascade wipes old articles and chunks.
	if _, err := tx.Exec(ctx, "DELETE FROM law_documents WHERE id = $1", doc.ID); err != nil {
		return fmt.Errorf("delete previous document: %w", err)
	}

	query := `INSERT INTO law_documents (id, title, source_pdf, embed_model, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := tx.Exec(ctx, query,
		doc.ID, doc.Title, doc.SourcePDF, doc.EmbedModel, doc.CreatedAt, doc.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	for i := range doc.Articles {
		art := &doc.Articles[i]
		query := `INSERT INTO law_articles
			(id, doc_id, chapter_no, chapter_title, main_article_no, sub_article_no, article_title, body)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
		if _, err := tx.Exec(ctx, query,
			art.ID, doc.ID, art.ChapterNo, art.ChapterTitle,
			art.MainArticleNo, art.SubArticleNo, art.ArticleTitle, art.Text,
		); err != nil {
			return fmt.Errorf("insert article 제%d조 sub %d: %w", art.MainArticleNo, art.SubArticleNo, err)
		}

		for j := range art.Chunks {
			ch := &art.Chunks[j]
			query := `INSERT INTO law_chunks
				(id, article_id, chunk_index, clause_path, content, token_count, embedding)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`
			var embedding any
			if ch.Embedding != nil {
				embedding = toPgVector(ch.Embedding)
			}
			if _, err := tx.Exec(ctx, query,
				ch.ID, art.ID, ch.Index, ch.ClausePath, ch.Content, ch.TokenCount, embedding,
			); err != nil {
				return fmt.Errorf("insert chunk %d of article 제%d조: %w", ch.Index, art.MainArticleNo, err)
			}
		}
	}

	return tx.Commit(ctx)
}

func (p *PostgresStore) GetDocumentByID(ctx context.Context, docID uuid.UUID) (*types.Document, error) {
	rows, err := p.pool.Query(ctx,
		"SELECT id, title, source_pdf, embed_model, created_at, updated_at FROM law_documents WHERE id = $1", docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, sql.ErrNoRows
	}

	doc := &types.Document{}
	if err := rows.Scan(
		&doc.ID,
		&doc.Title,
		&doc.SourcePDF,
		&doc.EmbedModel,
		&doc.CreatedAt,
		&doc.UpdatedAt); err != nil {
		return nil, err
	}
	return doc, nil
}

func (p *PostgresStore) DeleteDocument(ctx context.Context, docID uuid.UUID) error {
	_, err := p.pool.Exec(ctx, "DELETE FROM law_documents WHERE id = $1", docID)
	return err
}

// Search ranks stored chunks by cosine distance to the query vector and
// joins back article and document metadata. Chunks without embeddings
// are excluded; an empty corpus yields an empty result, not an error.
func (p *PostgresStore) Search(ctx context.Context, queryVec []float32, filter SearchFilter) ([]types.SearchResult, error) {
	if len(queryVec) == 0 {
		return nil, fmt.Errorf("empty query vector")
	}

	vector := pgvector.NewVector(queryVec)

	query := `
		SELECT d.id, d.title, a.chapter_no, a.chapter_title,
		       c.clause_path, c.content, c.token_count,
		       c.embedding <=> $1 AS distance
		FROM law_chunks c
		JOIN law_articles a ON c.article_id = a.id
		JOIN law_documents d ON a.doc_id = d.id
		WHERE c.embedding IS NOT NULL AND d.embed_model = $2`
	args := []any{vector, filter.EmbedModel}
	if filter.DocID != nil {
		args = append(args, *filter.DocID)
		query += fmt.Sprintf(" AND d.id = $%d", len(args))
	}
	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY c.embedding <=> $1 LIMIT $%d", len(args))

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []types.SearchResult
	for rows.Next() {
		var r types.SearchResult
		var distance float64
		if err := rows.Scan(
			&r.DocID,
			&r.DocTitle,
			&r.ChapterNo,
			&r.ChapterTitle,
			&r.ClausePath,
			&r.Content,
			&r.TokenCount,
			&distance); err != nil {
			return nil, err
		}
		// Cosine distance in [0,2] -> similarity.
		r.Score = 1 - distance

		log.Printf("[SEARCH] hit: %s %s (distance: %.4f)", r.DocTitle, r.ClausePath, distance)
		results = append(results, r)
	}
	return results, rows.Err()
}

func toPgVector(v []float32) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%f", x)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (p *PostgresStore) createLawTables(ctx context.Context) error {

	query := fmt.Sprintf(`
	CREATE EXTENSION IF NOT EXISTS vector;

	CREATE TABLE IF NOT EXISTS law_documents (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		source_pdf TEXT NOT NULL,
		embed_model TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE,
		updated_at TIMESTAMP WITH TIME ZONE
	);

	CREATE TABLE IF NOT EXISTS law_articles (
		id UUID PRIMARY KEY,
		doc_id UUID NOT NULL REFERENCES law_documents(id) ON DELETE CASCADE,
		chapter_no INT,
		chapter_title TEXT,
		main_article_no INT NOT NULL,
		sub_article_no INT NOT NULL DEFAULT 0,
		article_title TEXT,
		body TEXT NOT NULL,
		CONSTRAINT uq_doc_article UNIQUE (doc_id, main_article_no, sub_article_no)
	);

	CREATE TABLE IF NOT EXISTS law_chunks (
		id UUID PRIMARY KEY,
		article_id UUID NOT NULL REFERENCES law_articles(id) ON DELETE CASCADE,
		chunk_index INT NOT NULL,
		clause_path TEXT NOT NULL,
		content TEXT NOT NULL,
		token_count INT NOT NULL,
		embedding vector(%d),
		CONSTRAINT uq_article_chunk UNIQUE (article_id, chunk_index)
	);

	CREATE INDEX IF NOT EXISTS idx_law_chunks_embedding ON law_chunks
	USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100);

	CREATE INDEX IF NOT EXISTS idx_law_articles_doc_id ON law_articles(doc_id);
	CREATE INDEX IF NOT EXISTS idx_law_chunks_article_id ON law_chunks(article_id);
    `, p.embedDim)
	_, err := p.pool.Exec(ctx, query)
	return err
}

func (p *PostgresStore) Init(ctx context.Context) error {
	return p.createLawTables(ctx)
}

func (p *PostgresStore) Close() error {
	if p.pool != nil {
		p.pool.Close()
		log.Println("Postgres connection pool is closed")
	}
	return nil
}
