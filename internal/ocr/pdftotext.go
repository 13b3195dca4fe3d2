package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// PdfToText extracts embedded text with the pdftotext CLI tool. It is fast
// but only works for PDFs that carry a text layer.
type PdfToText struct {
	binPath string
}

// NewPdfToText creates a PdfToText extractor. An empty binPath falls back to
// "pdftotext" on PATH.
func NewPdfToText(binPath string) *PdfToText {
	if binPath == "" {
		binPath = "pdftotext"
	}
	return &PdfToText{binPath: binPath}
}

// ExtractText runs pdftotext -layout on the given PDF and returns stdout.
func (p *PdfToText) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	cmd := exec.CommandContext(ctx, p.binPath, "-layout", pdfPath, "-")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftotext failed for %s: %s: %w", pdfPath, stderr.String(), err)
	}
	return stdout.String(), nil
}
