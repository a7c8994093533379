package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Validater interface {
	Validate() map[string]string
}

type SearchParams struct {
	Query string     `json:"query" validate:"required"`
	K     int        `json:"k" validate:"omitempty,min=1,max=20"`
	DocID *uuid.UUID `json:"doc_id,omitempty"`
}

type AnswerParams struct {
	Query string     `json:"query" validate:"required"`
	TopK  int        `json:"top_k" validate:"omitempty,min=1,max=20"`
	DocID *uuid.UUID `json:"doc_id,omitempty"`
}

// SearchResult is one ranked chunk joined with its article's and
// document's metadata. Score is 1 - cosine distance.
type SearchResult struct {
	DocID        uuid.UUID `json:"doc_id"`
	DocTitle     string    `json:"doc_title"`
	ChapterNo    *int      `json:"chapter_no"`
	ChapterTitle *string   `json:"chapter_title"`
	ClausePath   string    `json:"clause_path"`
	Content      string    `json:"content"`
	TokenCount   int       `json:"token_count"`
	Score        float64   `json:"score"`
}

type SearchResponse struct {
	Query   string         `json:"query"`
	Count   int            `json:"count"`
	Results []SearchResult `json:"results"`
}

type Citation struct {
	CID          string    `json:"cid"`
	DocID        uuid.UUID `json:"doc_id"`
	DocTitle     string    `json:"doc_title"`
	ChapterNo    *int      `json:"chapter_no"`
	ChapterTitle *string   `json:"chapter_title"`
	ClausePath   string    `json:"clause_path"`
	Score        float64   `json:"score"`
	TokenCount   int       `json:"token_count"`
}

type AnswerResponse struct {
	Query     string     `json:"query"`
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
}

func Validate(v Validater) map[string]string {
	return v.Validate()
}

func (params *SearchParams) Validate() map[string]string {
	return validateStruct(params)
}

func (params *AnswerParams) Validate() map[string]string {
	return validateStruct(params)
}

func validateStruct(s any) map[string]string {
	validate := validator.New()
	if err := validate.Struct(s); err != nil {
		errs := err.(validator.ValidationErrors)
		errors := make(map[string]string)
		for _, e := range errs {
			errors[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
		}
		return errors
	}
	return nil
}
