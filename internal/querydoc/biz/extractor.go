package biz

import (
	"context"
	"fmt"
	"strings"

	"github.com/kart-io/querydoc/internal/pkg/qa/pdfutil"
)

// DocumentParser extracts plain text from a downloaded document.
type DocumentParser interface {
	// Extract returns the full document text in reading order.
	Extract(ctx context.Context, path string) (string, error)
}

type pdfParser struct{}

// NewPDFParser creates a parser for PDF documents.
func NewPDFParser() DocumentParser {
	return &pdfParser{}
}

func (p *pdfParser) Extract(_ context.Context, path string) (string, error) {
	text, err := pdfutil.ExtractText(path)
	if err != nil {
		return "", &ExtractionError{Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", &ExtractionError{Err: fmt.Errorf("document produced no extractable text")}
	}
	return text, nil
}
