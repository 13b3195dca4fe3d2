// Package pdfimage renders PDF pages to PNG images for the visual models.
package pdfimage

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// RenderFunc renders the first page of the document at path to PNG bytes.
type RenderFunc func(ctx context.Context, pdfPath string) ([]byte, error)

// Renderer shells out to the pdftoppm CLI tool.
type Renderer struct {
	binPath string
	dpi     int
}

// NewRenderer creates a Renderer. An empty binPath falls back to "pdftoppm"
// on PATH.
func NewRenderer(binPath string) *Renderer {
	if binPath == "" {
		binPath = "pdftoppm"
	}
	return &Renderer{binPath: binPath, dpi: 150}
}

// RenderFirstPage renders page one at the renderer's resolution and returns
// the PNG bytes from stdout.
func (r *Renderer) RenderFirstPage(ctx context.Context, pdfPath string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, r.binPath,
		"-png", "-f", "1", "-l", "1", "-r", fmt.Sprint(r.dpi), pdfPath)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed for %s: %s: %w", pdfPath, stderr.String(), err)
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("pdftoppm produced no output for %s", pdfPath)
	}
	return stdout.Bytes(), nil
}
