package internal

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractText pulls plain text from a PDF file, pages concatenated in
// reading order. Unreadable pages are skipped rather than failing the
// whole document.
func ExtractText(filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", filePath, err)
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			fmt.Printf("[EXTRACT] skip unreadable page %d of %s: %v\n", i, filePath, err)
			continue
		}
		pageText = strings.TrimSpace(pageText)
		if pageText == "" {
			continue
		}

		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(pageText)
	}

	text := b.String()
	if text == "" {
		info, statErr := os.Stat(filePath)
		if statErr == nil && info.Size() == 0 {
			return "", fmt.Errorf("empty pdf file: %s", filePath)
		}
	}
	return text, nil
}
