// Package pdftext extracts the native text layer of a PDF.
package pdftext

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractText returns the concatenated plain text of every page, with a
// page separator line between pages, plus the page count. Pages whose text
// layer cannot be decoded are skipped rather than failing the whole file.
// The underlying parser panics on some malformed files; that surfaces as an
// ordinary error here.
func ExtractText(path string) (text string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, pages = "", 0
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	pages = reader.NumPage()
	var b strings.Builder
	for n := 1; n <= pages; n++ {
		page := reader.Page(n)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if n > 1 {
			b.WriteString(fmt.Sprintf("\n\n--- Page %d ---\n\n", n))
		}
		b.WriteString(content)
	}
	return b.String(), pages, nil
}

// TextRatio reports the share of non-whitespace characters in the text
// layer. A scanned PDF has a near-zero ratio even when a few stray glyphs
// survive in the layer.
func TextRatio(text string) float64 {
	total := len(text)
	if total == 0 {
		return 0
	}
	stripped := len(strings.TrimSpace(text))
	return float64(stripped) / float64(total)
}
