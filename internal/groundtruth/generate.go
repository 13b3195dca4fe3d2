// internal/groundtruth/generate.go
package groundtruth

import (
	"context"
	"fmt"
	"time"

	"github.com/pairbench/pairbench/internal/logging"
)

// Detection is the oracle's verdict for a single document.
type Detection struct {
	IsMatch        bool
	Date           *string
	SecondaryField *string
	PatientName    *string
}

// Detector produces a Detection for an undecided document. The currently
// configured, presumed-trustworthy model pair implements this to bootstrap
// ground truth.
type Detector interface {
	Detect(ctx context.Context, documentPath, extractedText string) (Detection, error)
}

// GenerateOptions controls a ground truth generation pass over the corpus.
type GenerateOptions struct {
	PositivePDFs   []string
	NegativePDFs   []string
	DocumentType   string
	SkipExisting   bool
	ExtractedTexts map[string]string
	VLMModel       string
	TextModel      string
}

// GenerateSummary reports what the generation pass did.
type GenerateSummary struct {
	Generated int
	Skipped   int
	Preserved int
	Failed    int
}

// Generate runs the oracle over every document that needs a sidecar.
// With SkipExisting, documents that already have a sidecar are left untouched
// regardless of their verified flag: skip semantics are path-based. Without it,
// fresh records replace old ones except where the old record is verified, since
// expert-verified ground truth is never silently overwritten by generation.
func Generate(ctx context.Context, detector Detector, opts GenerateOptions) (GenerateSummary, error) {
	if detector == nil {
		return GenerateSummary{}, fmt.Errorf("ground truth generation requires a detector")
	}

	var summary GenerateSummary
	documents := append(append([]string{}, opts.PositivePDFs...), opts.NegativePDFs...)
	for _, doc := range documents {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if Exists(doc) {
			if opts.SkipExisting {
				summary.Skipped++
				continue
			}
			if existing, err := Load(doc); err == nil && existing.Metadata.Verified {
				logging.LogEvent("Preserving verified ground truth for %s", doc)
				summary.Preserved++
				continue
			}
		}

		detection, err := detector.Detect(ctx, doc, opts.ExtractedTexts[doc])
		if err != nil {
			logging.LogEvent("Oracle detection failed for %s: %v", doc, err)
			summary.Failed++
			continue
		}

		gt := GroundTruth{
			Date:           detection.Date,
			DocumentType:   opts.DocumentType,
			IsMatch:        detection.IsMatch,
			PatientName:    detection.PatientName,
			SecondaryField: detection.SecondaryField,
			Metadata: Metadata{
				GeneratedAt: time.Now().UTC().Format(time.RFC3339),
				TextModel:   opts.TextModel,
				Verified:    false,
				VLMModel:    opts.VLMModel,
			},
		}
		if err := Save(doc, gt); err != nil {
			return summary, err
		}
		summary.Generated++
	}

	return summary, nil
}
