// internal/benchmark/sweep.go
package benchmark

import (
	"context"
	"fmt"
	"time"

	"github.com/pairbench/pairbench/internal/appconfig"
	"github.com/pairbench/pairbench/internal/groundtruth"
	"github.com/pairbench/pairbench/internal/logging"
	"github.com/pairbench/pairbench/internal/memory"
)

// WorkerRunner is the seam between the sweep and the subprocess runner.
type WorkerRunner interface {
	Run(ctx context.Context, in WorkerInput) Outcome
}

// SweepEvent notifies observers (the progress view) about sweep advancement.
type SweepEvent struct {
	PairIndex int
	PairCount int
	Pair      ModelPair
	Phase     Phase
	Result    *ModelPairResult
}

// SweepOptions parameterizes a full benchmark sweep over candidate pairs.
type SweepOptions struct {
	Pairs          []ModelPair
	PositivePDFs   []string
	NegativePDFs   []string
	DocumentType   string
	TimeoutSeconds float64
	Config         appconfig.Config
	ExtractedTexts map[string]string
	GroundTruth    map[string]groundtruth.GroundTruth
	Estimator      *memory.Estimator
	Runner         WorkerRunner
	Notify         func(SweepEvent)
}

// RunSweep benchmarks every candidate pair sequentially, one worker process
// per pair per phase. A misbehaving pair is recorded as disqualified and the
// sweep continues; only context cancellation aborts it.
func RunSweep(ctx context.Context, opts SweepOptions) ([]ModelPairResult, error) {
	if opts.Runner == nil {
		return nil, fmt.Errorf("%w: sweep requires a worker runner", ErrBenchmark)
	}
	estimator := opts.Estimator
	if estimator == nil {
		estimator = memory.NewEstimator()
	}

	positive := withGroundTruth(opts.PositivePDFs, opts.GroundTruth)
	negative := withGroundTruth(opts.NegativePDFs, opts.GroundTruth)

	results := make([]ModelPairResult, 0, len(opts.Pairs))
	for i, pair := range opts.Pairs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		notify(opts, SweepEvent{PairIndex: i, PairCount: len(opts.Pairs), Pair: pair})

		result := runPair(ctx, opts, estimator, pair, positive, negative)
		results = append(results, result)

		if result.IsDisqualified {
			logging.LogEvent("Pair %s disqualified: %s", pair, result.DisqualificationReason)
		} else {
			logging.LogEvent("Pair %s scored %.2f over %d documents in %s",
				pair, result.Metrics.Score, result.Metrics.DocumentCount, result.Elapsed.Round(time.Millisecond))
		}
		notify(opts, SweepEvent{PairIndex: i, PairCount: len(opts.Pairs), Pair: pair, Result: &results[len(results)-1]})
	}
	return results, nil
}

func notify(opts SweepOptions, event SweepEvent) {
	if opts.Notify != nil {
		opts.Notify(event)
	}
}

// runPair gates, runs both phase workers, and merges their results.
func runPair(ctx context.Context, opts SweepOptions, estimator *memory.Estimator, pair ModelPair, positive, negative []string) ModelPairResult {
	required := estimator.EstimateMemoryMB(pair.VisualModel, pair.TextModel)
	available := estimator.AvailableMemoryMB()
	if required > available {
		return DisqualifiedPairResult(pair,
			fmt.Sprintf("Insufficient memory: requires ~%d MB, %d MB available", required, available))
	}

	visualIn := WorkerInput{
		Phase:          PhaseVisual,
		Model:          pair.VisualModel,
		PositivePDFs:   positive,
		NegativePDFs:   negative,
		TimeoutSeconds: opts.TimeoutSeconds,
		DocumentType:   opts.DocumentType,
		Config:         opts.Config,
	}
	visualOut, reason := runPhase(ctx, opts.Runner, visualIn)
	if reason != "" {
		return DisqualifiedPairResult(pair, reason)
	}
	if visualOut.Visual.IsDisqualified {
		return DisqualifiedPairResult(pair, visualOut.Visual.DisqualificationReason)
	}

	textIn := WorkerInput{
		Phase:          PhaseText,
		Model:          pair.TextModel,
		PositivePDFs:   positive,
		NegativePDFs:   negative,
		TimeoutSeconds: opts.TimeoutSeconds,
		DocumentType:   opts.DocumentType,
		Config:         opts.Config,
		ExtractedTexts: opts.ExtractedTexts,
		GroundTruth:    opts.GroundTruth,
	}
	textOut, reason := runPhase(ctx, opts.Runner, textIn)
	if reason != "" {
		return DisqualifiedPairResult(pair, reason)
	}
	if textOut.Text.IsDisqualified {
		return DisqualifiedPairResult(pair, textOut.Text.DisqualificationReason)
	}

	return mergePhaseResults(pair, *visualOut.Visual, *textOut.Text)
}

// runPhase executes one worker and reduces the outcome to either a usable
// output or a disqualification reason. Exhaustive over Outcome states.
func runPhase(ctx context.Context, runner WorkerRunner, in WorkerInput) (WorkerOutput, string) {
	outcome := runner.Run(ctx, in)
	switch outcome.State {
	case OutcomeCompleted:
		return outcome.Output, ""
	case OutcomeCrashed, OutcomeTimedOut, OutcomeDecodingFailed:
		return WorkerOutput{}, outcome.Reason()
	default:
		return WorkerOutput{}, "unknown worker outcome"
	}
}

// mergePhaseResults assembles the pair-level result: the visual phase decides
// categorization per document, the text phase decides whether extraction was
// fully correct for correctly categorized positive samples.
func mergePhaseResults(pair ModelPair, visual VisualBenchmarkResult, text TextBenchmarkResult) ModelPairResult {
	predictions := make(map[string]bool, len(visual.Predictions))
	for _, p := range visual.Predictions {
		predictions[p.Filename] = p.PredictedIsMatch
	}

	documents := make([]DocumentResult, 0, len(text.DocumentResults))
	for _, textDoc := range text.DocumentResults {
		doc := DocumentResult{
			Filename:         textDoc.Filename,
			IsPositiveSample: textDoc.IsPositiveSample,
			PredictedIsMatch: predictions[textDoc.Filename],
		}
		switch {
		case !doc.CategorizationCorrect():
			doc.DocumentScore = 0
		case !doc.IsPositiveSample:
			doc.DocumentScore = 2
		case textDoc.DocumentScore == 2:
			doc.DocumentScore = 2
		default:
			doc.DocumentScore = 1
		}
		documents = append(documents, doc)
	}

	elapsed := time.Duration((visual.ElapsedSeconds + text.ElapsedSeconds) * float64(time.Second))
	return ModelPairResult{
		Pair:            pair,
		Metrics:         ComputeMetrics(documents),
		DocumentResults: documents,
		Elapsed:         elapsed,
	}
}
