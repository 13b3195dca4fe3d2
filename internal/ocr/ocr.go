// Package ocr extracts text from PDF documents. The benchmark treats
// extraction as an opaque collaborator; both implementations here expose the
// same narrow contract.
package ocr

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/pairbench/pairbench/internal/logging"
)

// Extractor extracts text content from one PDF file.
type Extractor interface {
	ExtractText(ctx context.Context, pdfPath string) (string, error)
}

// NewExtractor selects an extractor implementation by name.
func NewExtractor(provider string) (Extractor, error) {
	switch provider {
	case "pdftotext", "":
		return NewPdfToText(""), nil
	case "tesseract":
		return NewTesseract(nil), nil
	default:
		return nil, fmt.Errorf("unknown ocr provider %q", provider)
	}
}

// ExtractAll runs the extractor over every document and returns text keyed by
// path. A document that fails extraction is logged and mapped to the empty
// string; the benchmark scores it wrong rather than aborting the corpus.
func ExtractAll(ctx context.Context, extractor Extractor, pdfPaths []string) (map[string]string, error) {
	texts := make(map[string]string, len(pdfPaths))
	for _, path := range pdfPaths {
		if err := ctx.Err(); err != nil {
			return texts, err
		}
		text, err := extractor.ExtractText(ctx, path)
		if err != nil {
			logging.LogEvent("OCR failed for %s: %v", filepath.Base(path), err)
			texts[path] = ""
			continue
		}
		texts[path] = text
	}
	return texts, nil
}
