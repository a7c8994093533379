package api

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"lawrag/app/agent"
	"lawrag/model"
	"lawrag/store"
	"lawrag/types"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const defaultTopK = 5

type RequestHandler struct {
	contextStore store.DBStorer
	embedder     model.EmbedderInterface
	llmCfg       types.LLMConfig
	uploadDir    string
}

func NewRequestHandler(contextStore store.DBStorer, embedder model.EmbedderInterface, llmCfg types.LLMConfig, uploadDir string) *RequestHandler {
	return &RequestHandler{
		contextStore: contextStore,
		embedder:     embedder,
		llmCfg:       llmCfg,
		uploadDir:    uploadDir,
	}
}

// HandleSearch ranks the top-k chunks for a query with document and
// article metadata attached. An empty corpus yields an empty result.
func (h *RequestHandler) HandleSearch(c *fiber.Ctx) error {
	var params types.SearchParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}

	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}
	if params.K == 0 {
		params.K = defaultTopK
	}

	results, err := h.search(c.Context(), params.Query, params.K, params.DocID)
	if err != nil {
		return err
	}

	return c.JSON(types.SearchResponse{
		Query:   params.Query,
		Count:   len(results),
		Results: results,
	})
}

// HandleAnswer retrieves evidence for the question and composes a
// grounded answer with citations. Without evidence the fixed no-evidence
// answer is returned and the LLM is not called.
func (h *RequestHandler) HandleAnswer(c *fiber.Ctx) error {
	var params types.AnswerParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}

	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}
	if params.TopK == 0 {
		params.TopK = defaultTopK
	}

	results, err := h.search(c.Context(), params.Query, params.TopK, params.DocID)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		return c.JSON(types.AnswerResponse{
			Query:     params.Query,
			Answer:    agent.NoEvidenceAnswer,
			Citations: []types.Citation{},
		})
	}

	evidence := agent.BuildContext(results)
	answer, err := agent.GenerateAnswer(h.llmCfg, evidence, params.Query)
	if err != nil {
		return err
	}

	return c.JSON(types.AnswerResponse{
		Query:     params.Query,
		Answer:    answer,
		Citations: agent.Citations(results),
	})
}

// HandleUpload drops a PDF into the loader's source directory; the
// loader service picks it up for ingestion.
func (h *RequestHandler) HandleUpload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return ErrBadRequest()
	}

	if err := os.MkdirAll(h.uploadDir, 0755); err != nil {
		return err
	}
	path := filepath.Join(h.uploadDir, filepath.Base(file.Filename))
	if err := c.SaveFile(file, path); err != nil {
		fmt.Println(err)
		return err
	}
	fmt.Printf("[UPLOAD] File successfuly saved to: %s\n", path)

	return c.JSON(fiber.Map{"result": "ok", "file": filepath.Base(path)})
}

func (h *RequestHandler) search(ctx context.Context, query string, k int, docID *uuid.UUID) ([]types.SearchResult, error) {
	queryVec, err := h.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := h.contextStore.Search(ctx, queryVec, store.SearchFilter{
		Limit:      k,
		DocID:      docID,
		EmbedModel: h.embedder.Model(),
	})
	if err != nil {
		return nil, fmt.Errorf("error to get context from DB: %w", err)
	}
	if results == nil {
		results = []types.SearchResult{}
	}
	return results, nil
}
