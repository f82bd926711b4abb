package receipt

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

const archiveTimestampLayout = "2006-01-02 15:04:05"

// Converter turns a raw PDF payload into plain per-page text.
type Converter interface {
	Pages(data []byte) ([]string, error)
}

// Extractor turns per-page text into a record, or reports no match.
type Extractor interface {
	TryExtract(pages []string) (Record, bool)
}

// TagResolver derives categorization tags from a record.
type TagResolver interface {
	Resolve(record Record) []string
}

// Parser is the pipeline front door: it gates on the file extension,
// converts the document to text, runs the extractor registry and attaches
// tags. It owns no state between calls.
type Parser struct {
	converter Converter
	extractor Extractor
	tags      TagResolver
}

// NewParser creates a Parser.
func NewParser(converter Converter, extractor Extractor, tags TagResolver) *Parser {
	return &Parser{
		converter: converter,
		extractor: extractor,
		tags:      tags,
	}
}

// Parse runs one document through extraction and tagging. It never panics:
// a fault anywhere below is logged with the offending filename and
// downgraded to StatusUnknownError.
func (p *Parser) Parse(ctx context.Context, content Content) (response Response) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("document processing failed", "name", content.Name(), "panic", r)
			response = UnknownError()
		}
	}()

	ext := strings.ToLower(filepath.Ext(content.Name()))
	if ext != ".pdf" {
		return UnrecognizedFormat()
	}

	pages, err := p.converter.Pages(content.Data())
	if err != nil {
		slog.Error("converting document to text", "name", content.Name(), "error", err)
		return UnknownError()
	}

	record, ok := p.extractor.TryExtract(pages)
	if !ok {
		return UnrecognizedFormat()
	}

	record.Tags = p.tags.Resolve(record)

	fileName := fmt.Sprintf("%s %s%s", record.Title, record.Timestamp.Format(archiveTimestampLayout), ext)
	return Ok(fileName, record)
}
