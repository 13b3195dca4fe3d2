// internal/benchmark/worker.go
package benchmark

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pairbench/pairbench/internal/appconfig"
	"github.com/pairbench/pairbench/internal/providers"
)

// WorkerDeps supplies the collaborators a worker wires around the engine.
// Factories are built from the per-run config so the worker process needs no
// environment of its own beyond what crossed the pipe.
type WorkerDeps struct {
	NewVisualFactory func(cfg appconfig.Config) providers.VisualFactory
	NewTextFactory   func(cfg appconfig.Config) providers.TextFactory
	Render           RenderFunc
}

// RunWorker executes one benchmark phase: decode the input from r, run the
// phase, encode the result to w. Every error before the result is written is
// returned so the process exits non-zero and the runner records a crash.
func RunWorker(ctx context.Context, r io.Reader, w io.Writer, deps WorkerDeps) error {
	var in WorkerInput
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return fmt.Errorf("%w: worker input: %v", ErrDecoding, err)
	}
	if err := in.ValidatePhase(); err != nil {
		return err
	}

	timeout := time.Duration(in.TimeoutSeconds * float64(time.Second))
	if timeout <= 0 {
		timeout = in.Config.DocumentTimeout()
	}

	var out WorkerOutput
	switch in.Phase {
	case PhaseVisual:
		result := BenchmarkVisual(ctx, VisualPhaseOptions{
			Factory:      deps.NewVisualFactory(in.Config),
			Model:        in.Model,
			PositivePDFs: in.PositivePDFs,
			NegativePDFs: in.NegativePDFs,
			DocumentType: in.DocumentType,
			Timeout:      timeout,
			Render:       deps.Render,
		})
		out = NewVisualOutput(result)
	case PhaseText:
		result := BenchmarkText(ctx, TextPhaseOptions{
			Factory:        deps.NewTextFactory(in.Config),
			Model:          in.Model,
			PositivePDFs:   in.PositivePDFs,
			NegativePDFs:   in.NegativePDFs,
			DocumentType:   in.DocumentType,
			Timeout:        timeout,
			ExtractedTexts: in.ExtractedTexts,
			GroundTruth:    in.GroundTruth,
		})
		out = NewTextOutput(result)
	}

	encoder := json.NewEncoder(w)
	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("failed to encode worker output: %w", err)
	}
	return nil
}
