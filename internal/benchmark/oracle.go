// internal/benchmark/oracle.go
package benchmark

import (
	"context"
	"fmt"
	"time"

	"github.com/pairbench/pairbench/internal/groundtruth"
	"github.com/pairbench/pairbench/internal/match"
	"github.com/pairbench/pairbench/internal/providers"
)

// OracleOptions configures the trusted model pair used to bootstrap ground truth.
type OracleOptions struct {
	VisualFactory providers.VisualFactory
	TextFactory   providers.TextFactory
	VisualModel   string
	TextModel     string
	DocumentType  string
	Timeout       time.Duration
	Render        RenderFunc
}

// Oracle detects ground truth with a presumed-trustworthy pair. Unlike a
// benchmarked candidate, an oracle failure is surfaced as an error rather than
// absorbed into a score.
type Oracle struct {
	opts OracleOptions
}

// NewOracle builds the ground truth detector over the configured pair.
func NewOracle(opts OracleOptions) *Oracle {
	return &Oracle{opts: opts}
}

// Preload loads both oracle models.
func (o *Oracle) Preload(ctx context.Context) error {
	if err := o.opts.VisualFactory.Preload(ctx, o.opts.VisualModel); err != nil {
		return fmt.Errorf("%w: %v", ErrModelLoad, err)
	}
	if err := o.opts.TextFactory.Preload(ctx, o.opts.TextModel); err != nil {
		return fmt.Errorf("%w: %v", ErrModelLoad, err)
	}
	return nil
}

// Release unloads both oracle models.
func (o *Oracle) Release() {
	o.opts.VisualFactory.Release()
	o.opts.TextFactory.Release()
}

// Detect categorizes the document visually and, for positives, extracts the
// structured fields from its OCR text.
func (o *Oracle) Detect(ctx context.Context, documentPath, extractedText string) (groundtruth.Detection, error) {
	visual, ok := o.opts.VisualFactory.Provider()
	if !ok {
		return groundtruth.Detection{}, fmt.Errorf("%w: oracle visual model not loaded", ErrModelLoad)
	}

	callCtx, cancel := context.WithTimeout(ctx, o.opts.Timeout)
	defer cancel()

	image, err := o.opts.Render(callCtx, documentPath)
	if err != nil {
		return groundtruth.Detection{}, fmt.Errorf("%w: render %s: %v", ErrInference, documentPath, err)
	}
	prompt := fmt.Sprintf(visualPromptTemplate, o.opts.DocumentType)
	response, err := visual.GenerateFromImage(callCtx, image, prompt, o.opts.VisualModel)
	if err != nil {
		return groundtruth.Detection{}, fmt.Errorf("%w: %v", ErrInference, err)
	}

	detection := groundtruth.Detection{IsMatch: match.ParseYesNoResponse(response)}
	if !detection.IsMatch {
		return detection, nil
	}

	text, ok := o.opts.TextFactory.Provider()
	if !ok {
		return groundtruth.Detection{}, fmt.Errorf("%w: oracle text model not loaded", ErrModelLoad)
	}
	fields, err := text.ExtractData(callCtx, o.opts.DocumentType, extractedText)
	if err != nil {
		return groundtruth.Detection{}, fmt.Errorf("%w: %v", ErrInference, err)
	}
	detection.Date = fields.Date
	detection.SecondaryField = fields.SecondaryField
	detection.PatientName = fields.PatientName
	return detection, nil
}
