package extraction

import (
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// PDFConverter renders a PDF payload into plain per-page text. It is the
// only place the pipeline touches binary PDF structure; extractors see
// Unicode text with non-breaking spaces already folded to regular spaces.
type PDFConverter struct{}

// Pages implements receipt.Converter.
func (PDFConverter) Pages(data []byte) ([]string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	pages := make([]string, 0, doc.NumPage())
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err != nil {
			return nil, fmt.Errorf("extracting text from page %d: %w", i+1, err)
		}
		pages = append(pages, strings.ReplaceAll(text, "\u00a0", " "))
	}

	return pages, nil
}
