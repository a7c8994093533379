package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lawrag/types"
)

// NoEvidenceAnswer is returned without calling the LLM when retrieval
// produced no grounded chunks.
const NoEvidenceAnswer = "제공된 법령 DB에서 관련 근거를 찾지 못했습니다. 다른 키워드로 다시 질문해 주세요."

const systemPrompt = `너는 산업안전보건/중대재해 관련 법령 준수 지원 AI다.
아래 '근거(Context)'에 포함된 내용만 사용해서 답하라.
근거에 없는 내용은 추측하지 말고 '근거 부족'이라고 말하라.
답변에는 반드시 근거 조항을 [C1], [C2]처럼 인용 표시하라.`

type GenerateRequest struct {
	Model  string `json:"model"`
	System string `json:"system"`
	Prompt string `json:"prompt"`
}

type GenerateResponse struct {
	Response string `json:"response"`
}

// BuildContext formats retrieved chunks into the evidence block fed to
// the LLM. Citation ids [C1]..[Ck] follow result order.
func BuildContext(results []types.SearchResult) string {
	blocks := make([]string, len(results))
	for i, r := range results {
		chapter := ""
		if r.ChapterTitle != nil {
			chapter = *r.ChapterTitle
		}
		header := fmt.Sprintf("[C%d] %s / %s / %s (score=%.3f)", i+1, r.DocTitle, chapter, r.ClausePath, r.Score)
		blocks[i] = header + "\n" + strings.TrimSpace(r.Content)
	}
	return strings.Join(blocks, "\n\n---\n\n")
}

// Citations pairs each result with its [C?] id for the response body.
func Citations(results []types.SearchResult) []types.Citation {
	citations := make([]types.Citation, len(results))
	for i, r := range results {
		citations[i] = types.Citation{
			CID:          fmt.Sprintf("C%d", i+1),
			DocID:        r.DocID,
			DocTitle:     r.DocTitle,
			ChapterNo:    r.ChapterNo,
			ChapterTitle: r.ChapterTitle,
			ClausePath:   r.ClausePath,
			Score:        r.Score,
			TokenCount:   r.TokenCount,
		}
	}
	return citations
}

// GenerateAnswer composes a grounded answer from the evidence block.
func GenerateAnswer(cfg types.LLMConfig, context string, question string) (string, error) {
	start := time.Now()
	defer func() {
		fmt.Printf("LLM answer tooks %v\n", time.Since(start))
	}()

	prompt := fmt.Sprintf(`질문: %s

Context(근거):
%s

위 근거만으로 답변 작성.`, question, context)

	reqBody, _ := json.Marshal(GenerateRequest{
		Model:  cfg.Model,
		System: systemPrompt,
		Prompt: prompt,
	})

	resp, err := http.Post(cfg.URL, "application/json", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var genResp GenerateResponse
	if err := json.Unmarshal(body, &genResp); err == nil && genResp.Response != "" {
		return genResp.Response, nil
	}

	// Streamed response: collect the chunks into one string.
	var output strings.Builder
	decoder := json.NewDecoder(bytes.NewReader(body))
	for decoder.More() {
		var chunk GenerateResponse
		if err := decoder.Decode(&chunk); err != nil {
			break
		}
		output.WriteString(chunk.Response)
	}
	return output.String(), nil
}
