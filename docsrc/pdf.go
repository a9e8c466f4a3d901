// Package docsrc turns a Vietnamese clinical PDF into page-tagged text
// chunks ready for the LLM Extractor. It replaces the teacher's
// format-dispatching parser/chunker registry (docx/pptx/xlsx/vision/
// LlamaParse) with a single PDF-only path, since SPEC_FULL.md's input
// domain is exclusively clinical PDFs (§6). The page text extraction is
// adapted from the teacher's parser/pdf.go; the token-budget splitting
// algorithm is adapted from the teacher's chunker/chunker.go.
package docsrc

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Page is the raw extracted text of a single PDF page (1-indexed).
type Page struct {
	Number int
	Text   string
}

// ExtractPages opens the PDF at path and returns one Page per non-empty
// page, in page order. Adapted from the teacher's parser.PDFParser.Parse
// and extractPageTextOrdered, stripped of the section/heading/image
// machinery this domain doesn't need.
func ExtractPages(path string) ([]Page, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("docsrc: opening PDF: %w", err)
	}
	defer f.Close()

	total := reader.NumPage()
	pages := make([]Page, 0, total)

	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := extractPageTextOrdered(page)
		if err != nil {
			continue
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		pages = append(pages, Page{Number: i, Text: text})
	}

	return pages, nil
}

// extractPageTextOrdered reconstructs reading order from a PDF content
// stream's text-positioning operators by grouping runs into visual lines
// (by Y proximity) and ordering lines top-to-bottom, falling back to the
// library's own GetPlainText when the content stream is empty or the
// reconstruction yields nothing. Ported verbatim from the teacher's
// parser/pdf.go.
func extractPageTextOrdered(page pdf.Page) (string, error) {
	content := page.Content()
	if len(content.Text) == 0 {
		return page.GetPlainText(nil)
	}

	const lineTolerance = 3.0

	type visualLine struct {
		y   float64
		buf strings.Builder
	}

	var lines []*visualLine
	var cur *visualLine

	for _, t := range content.Text {
		if cur == nil || math.Abs(t.Y-cur.y) > lineTolerance {
			lines = append(lines, &visualLine{y: t.Y})
			cur = lines[len(lines)-1]
		}
		cur.buf.WriteString(t.S)
	}

	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].y > lines[j].y
	})

	var parts []string
	for _, l := range lines {
		text := strings.TrimSpace(l.buf.String())
		if text != "" {
			parts = append(parts, text)
		}
	}

	result := strings.Join(parts, "\n")
	if strings.TrimSpace(result) == "" {
		return page.GetPlainText(nil)
	}

	return result, nil
}
