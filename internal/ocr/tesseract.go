package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/pairbench/pairbench/internal/pdfimage"
)

// Tesseract extracts text from scanned PDFs by rendering the first page and
// running it through the tesseract engine. Slower than pdftotext but it also
// handles documents without a text layer.
type Tesseract struct {
	render        pdfimage.RenderFunc
	clientFactory func() *gosseract.Client
	languages     []string
}

// NewTesseract creates a Tesseract extractor. A nil render falls back to the
// pdftoppm-based renderer.
func NewTesseract(render pdfimage.RenderFunc) *Tesseract {
	if render == nil {
		render = pdfimage.NewRenderer("").RenderFirstPage
	}
	return &Tesseract{
		render:        render,
		clientFactory: gosseract.NewClient,
		languages:     []string{"deu", "eng"},
	}
}

// ExtractText renders the first page and recognizes its text. A fresh client
// is created per document; gosseract clients are not safe for reuse across
// image sizes.
func (t *Tesseract) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	image, err := t.render(ctx, pdfPath)
	if err != nil {
		return "", fmt.Errorf("render %s for ocr: %w", pdfPath, err)
	}

	client := t.clientFactory()
	defer client.Close()

	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("set ocr image: %w", err)
	}
	if err := client.SetLanguage(t.languages...); err != nil {
		return "", fmt.Errorf("set ocr languages: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text in %s: %w", pdfPath, err)
	}
	return strings.TrimSpace(text), nil
}
