// Package pdftext extracts plain text from PDF documents.
package pdftext

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Result holds the extracted text and page count of one document.
type Result struct {
	Text  string
	Pages int
}

// Extract parses the PDF in data and returns its concatenated page text.
// Pages whose text cannot be decoded are skipped rather than failing the
// whole document; scanned/image-only PDFs yield an empty Text with a
// non-zero page count.
func Extract(data []byte) (*Result, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("pdftext: open: %w", err)
	}

	pages := reader.NumPage()
	var sb strings.Builder
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	return &Result{Text: sb.String(), Pages: pages}, nil
}
