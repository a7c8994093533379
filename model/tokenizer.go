package model

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Tokenizer counts tokens and splits text into token-bounded windows
// with a fixed token overlap between consecutive windows.
type Tokenizer interface {
	CountTokens(text string) int
	Split(text string, maxTokens, overlapTokens int) []string
}

// TiktokenTokenizer implements Tokenizer over a named tiktoken encoding.
type TiktokenTokenizer struct {
	enc *tiktoken.Tiktoken
}

var splitSeparators = []string{"\n\n", "\n", " ", ""}

func NewTiktokenTokenizer(encoding string) (*TiktokenTokenizer, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load encoding %q: %w", encoding, err)
	}
	return &TiktokenTokenizer{enc: enc}, nil
}

func (t *TiktokenTokenizer) CountTokens(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

func (t *TiktokenTokenizer) Split(text string, maxTokens, overlapTokens int) []string {
	return splitRecursive(t.CountTokens, text, maxTokens, overlapTokens, splitSeparators)
}

// splitRecursive breaks text at the coarsest boundary that occurs in it
// (paragraph, then line, then space, then rune), recursing on pieces
// still over budget, and packs the pieces into overlapping windows.
func splitRecursive(count func(string) int, text string, maxTokens, overlap int, separators []string) []string {
	if maxTokens <= 0 {
		return []string{text}
	}

	sep := separators[len(separators)-1]
	rest := separators
	for i, s := range separators {
		if s == "" || strings.Contains(text, s) {
			sep = s
			rest = separators[i+1:]
			break
		}
	}

	var pieces []string
	for _, p := range splitKeepSep(text, sep) {
		if p == "" {
			continue
		}
		if count(p) <= maxTokens || len(rest) == 0 {
			pieces = append(pieces, p)
			continue
		}
		pieces = append(pieces, splitRecursive(count, p, maxTokens, overlap, rest)...)
	}
	return mergePieces(count, pieces, maxTokens, overlap)
}

// mergePieces packs boundary pieces into windows of at most maxTokens,
// carrying up to overlap tokens of trailing pieces into the next window.
func mergePieces(count func(string) int, pieces []string, maxTokens, overlap int) []string {
	var (
		out     []string
		window  []string
		lengths []int
		total   int
	)

	// Windows keep their separators so that recursion levels above can
	// rejoin them losslessly; consumers trim.
	flush := func() {
		if len(window) == 0 {
			return
		}
		if joined := strings.Join(window, ""); strings.TrimSpace(joined) != "" {
			out = append(out, joined)
		}
	}

	for _, p := range pieces {
		n := count(p)
		if total+n > maxTokens && total > 0 {
			flush()
			// Drop leading pieces until what remains fits the overlap
			// budget and leaves room for the incoming piece.
			for total > overlap || (total+n > maxTokens && total > 0) {
				total -= lengths[0]
				window = window[1:]
				lengths = lengths[1:]
			}
		}
		window = append(window, p)
		lengths = append(lengths, n)
		total += n
	}
	flush()
	return out
}

// splitKeepSep splits text on sep, keeping the separator attached to the
// preceding part so the concatenation of parts reproduces the input.
// An empty sep splits into runes.
func splitKeepSep(text, sep string) []string {
	if sep == "" {
		return strings.Split(text, "")
	}
	parts := strings.Split(text, sep)
	for i := 0; i < len(parts)-1; i++ {
		parts[i] += sep
	}
	return parts
}
