package cvparser

import (
	"bytes"
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
)

// PageExtractor returns the native text layer of a PDF, one string per page
type PageExtractor interface {
	ExtractPages(ctx context.Context, uri string, data []byte) ([]string, error)
}

// EinoPageExtractor reads PDF text layers with the eino PDF parser
type EinoPageExtractor struct {
	parser *pdf.PDFParser
}

// NewEinoPageExtractor creates a parser that splits documents per page
func NewEinoPageExtractor(ctx context.Context) (*EinoPageExtractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{ToPages: true})
	if err != nil {
		return nil, fmt.Errorf("failed to create eino PDF parser: %w", err)
	}
	return &EinoPageExtractor{parser: p}, nil
}

// ExtractPages implements PageExtractor
func (e *EinoPageExtractor) ExtractPages(ctx context.Context, uri string, data []byte) ([]string, error) {
	docs, err := e.parser.Parse(ctx, bytes.NewReader(data), einoParser.WithURI(uri))
	if err != nil {
		return nil, fmt.Errorf("eino PDF parser failed for %s: %w", uri, err)
	}
	pages := make([]string, 0, len(docs))
	for _, doc := range docs {
		pages = append(pages, doc.Content)
	}
	return pages, nil
}
