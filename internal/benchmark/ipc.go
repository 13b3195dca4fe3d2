// internal/benchmark/ipc.go
// The worker IPC contract: plain serializable structures exchanged with the
// isolated worker process over its standard channels.
package benchmark

import (
	"errors"
	"fmt"

	"github.com/pairbench/pairbench/internal/appconfig"
	"github.com/pairbench/pairbench/internal/groundtruth"
)

// Phase selects which single-model-type benchmark a worker runs.
type Phase string

const (
	PhaseVisual Phase = "visual"
	PhaseText   Phase = "text"
)

// WorkerInput is everything a worker needs to run one phase. The text phase
// additionally receives pre-extracted OCR text and applicable ground truth
// keyed by document path.
type WorkerInput struct {
	Phase          Phase                              `json:"phase"`
	Model          string                             `json:"model"`
	PositivePDFs   []string                           `json:"positivePdfs"`
	NegativePDFs   []string                           `json:"negativePdfs"`
	TimeoutSeconds float64                            `json:"timeoutSeconds"`
	DocumentType   string                             `json:"documentType"`
	Config         appconfig.Config                   `json:"config"`
	ExtractedTexts map[string]string                  `json:"extractedTexts,omitempty"`
	GroundTruth    map[string]groundtruth.GroundTruth `json:"groundTruth,omitempty"`
}

// DocumentCount returns the total number of documents in the input.
func (in WorkerInput) DocumentCount() int {
	return len(in.PositivePDFs) + len(in.NegativePDFs)
}

// WorkerOutput is the discriminated result crossing the process boundary:
// exactly one of the two phase results is populated.
type WorkerOutput struct {
	Visual *VisualBenchmarkResult `json:"visual,omitempty"`
	Text   *TextBenchmarkResult   `json:"text,omitempty"`
}

// NewVisualOutput wraps a visual-phase result.
func NewVisualOutput(result VisualBenchmarkResult) WorkerOutput {
	return WorkerOutput{Visual: &result}
}

// NewTextOutput wraps a text-phase result.
func NewTextOutput(result TextBenchmarkResult) WorkerOutput {
	return WorkerOutput{Text: &result}
}

// Validate enforces the one-of-two invariant.
func (o WorkerOutput) Validate() error {
	if o.Visual != nil && o.Text != nil {
		return errors.New("worker output carries both phase results")
	}
	if o.Visual == nil && o.Text == nil {
		return errors.New("worker output carries no phase result")
	}
	return nil
}

// OutputPhase reports which phase the output belongs to.
func (o WorkerOutput) OutputPhase() (Phase, error) {
	if err := o.Validate(); err != nil {
		return "", err
	}
	if o.Visual != nil {
		return PhaseVisual, nil
	}
	return PhaseText, nil
}

// Matches reports whether the output carries a result for the phase the input requested.
func (o WorkerOutput) Matches(in WorkerInput) bool {
	phase, err := o.OutputPhase()
	return err == nil && phase == in.Phase
}

// MakeDisqualifiedOutput synthesizes a disqualified result for the phase the
// input requested, without running any model. The subprocess runner uses this
// to record crashes and timeouts without re-deriving the request shape.
func MakeDisqualifiedOutput(in WorkerInput, reason string) WorkerOutput {
	switch in.Phase {
	case PhaseText:
		return NewTextOutput(TextBenchmarkResult{
			Model:                  in.Model,
			IsDisqualified:         true,
			DisqualificationReason: reason,
		})
	default:
		return NewVisualOutput(VisualBenchmarkResult{
			Model:                  in.Model,
			IsDisqualified:         true,
			DisqualificationReason: reason,
		})
	}
}

// ValidatePhase rejects inputs for phases this build does not know.
func (in WorkerInput) ValidatePhase() error {
	switch in.Phase {
	case PhaseVisual, PhaseText:
		return nil
	default:
		return fmt.Errorf("unknown worker phase %q", in.Phase)
	}
}
