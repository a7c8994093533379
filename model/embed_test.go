package model

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"lawrag/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedDocumentsBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		// Answer out of order: the index field must restore it.
		resp := map[string]any{"data": []map[string]any{
			{"index": 1, "embedding": []float64{0, 1, 0}},
			{"index": 0, "embedding": []float64{1, 0, 0}},
		}}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	e := NewOpenAIEmbedder(types.EmbedConfig{URL: srv.URL, APIKey: "secret", Model: "test-model", Dim: 3})
	vecs, err := e.EmbedDocuments(context.Background(), []string{"첫 번째", "두 번째"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Equal(t, []float32{1, 0, 0}, vecs[0])
	assert.Equal(t, []float32{0, 1, 0}, vecs[1])
}

func TestEmbedDocumentsEmptyInput(t *testing.T) {
	e := NewOpenAIEmbedder(types.EmbedConfig{URL: "http://unused", Model: "m"})
	vecs, err := e.EmbedDocuments(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vecs)
}

func TestEmbedDocumentsCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{}})
	}))
	defer srv.Close()

	e := NewOpenAIEmbedder(types.EmbedConfig{URL: srv.URL, Model: "m"})
	_, err := e.EmbedDocuments(context.Background(), []string{"텍스트"})
	assert.Error(t, err)
}

func TestEmbedDocumentsDimMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{
			{"index": 0, "embedding": []float64{1, 2}},
		}})
	}))
	defer srv.Close()

	e := NewOpenAIEmbedder(types.EmbedConfig{URL: srv.URL, Model: "m", Dim: 3})
	_, err := e.EmbedDocuments(context.Background(), []string{"텍스트"})
	assert.ErrorContains(t, err, "dim")
}

func TestEmbedDocumentsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	e := NewOpenAIEmbedder(types.EmbedConfig{URL: srv.URL, Model: "m"})
	_, err := e.EmbedDocuments(context.Background(), []string{"텍스트"})
	assert.ErrorContains(t, err, "429")
}

func TestEmbedQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req embeddingRequest
		json.NewDecoder(r.Body).Decode(&req)
		require.Len(t, req.Input, 1)
		json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{
			{"index": 0, "embedding": []float64{0.5, 0.5}},
		}})
	}))
	defer srv.Close()

	e := NewOpenAIEmbedder(types.EmbedConfig{URL: srv.URL, Model: "m", Dim: 2})
	vec, err := e.EmbedQuery(context.Background(), "질의")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5}, vec)
}
