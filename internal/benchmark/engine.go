// internal/benchmark/engine.go
// The benchmark engine: single-model-type phases run inside a worker, and the
// full in-process pair benchmark used for oracle-backed sweeps.
package benchmark

import (
	"context"
	"fmt"
	"time"

	"github.com/pairbench/pairbench/internal/groundtruth"
	"github.com/pairbench/pairbench/internal/logging"
	"github.com/pairbench/pairbench/internal/match"
	"github.com/pairbench/pairbench/internal/memory"
	"github.com/pairbench/pairbench/internal/providers"
)

// visualPromptTemplate is the fixed categorization prompt for the visual phase.
const visualPromptTemplate = "Is this document a %s? Answer with yes or no."

// categorizeSystemPrompt steers text models toward a bare yes/no answer.
const categorizeSystemPrompt = "You categorize documents. Answer with yes or no only."

// RenderFunc renders the first page of a document to an image. The PDF
// renderer is an external collaborator; the engine only needs this shape.
type RenderFunc func(ctx context.Context, documentPath string) ([]byte, error)

// VisualPhaseOptions parameterizes a visual-only benchmark run.
type VisualPhaseOptions struct {
	Factory      providers.VisualFactory
	Model        string
	PositivePDFs []string
	NegativePDFs []string
	DocumentType string
	Timeout      time.Duration
	Render       RenderFunc
}

// BenchmarkVisual benchmarks one visual model's categorization over the corpus.
// A preload failure disqualifies the run without touching any document. Per
// document: a missing provider yields a negative prediction, and a failed call
// forces the wrong answer for that sample. The model is released before return
// on every path.
func BenchmarkVisual(ctx context.Context, opts VisualPhaseOptions) VisualBenchmarkResult {
	start := time.Now()
	result := VisualBenchmarkResult{Model: opts.Model}

	if err := opts.Factory.Preload(ctx, opts.Model); err != nil {
		result.IsDisqualified = true
		result.DisqualificationReason = fmt.Sprintf("Failed to load models: %v", err)
		opts.Factory.Release()
		return result
	}
	defer opts.Factory.Release()

	prompt := fmt.Sprintf(visualPromptTemplate, opts.DocumentType)
	process := func(path string, isPositive bool) {
		predicted := categorizeDocumentVisual(ctx, opts, prompt, path, isPositive)
		result.Predictions = append(result.Predictions, DocumentPrediction{
			Filename:         path,
			IsPositiveSample: isPositive,
			PredictedIsMatch: predicted,
		})
		switch {
		case predicted && isPositive:
			result.TruePositives++
		case predicted && !isPositive:
			result.FalsePositives++
		case !predicted && isPositive:
			result.FalseNegatives++
		default:
			result.TrueNegatives++
		}
	}

	for _, path := range opts.PositivePDFs {
		process(path, true)
	}
	for _, path := range opts.NegativePDFs {
		process(path, false)
	}

	result.ElapsedSeconds = time.Since(start).Seconds()
	return result
}

// categorizeDocumentVisual produces the visual prediction for one document.
func categorizeDocumentVisual(ctx context.Context, opts VisualPhaseOptions, prompt, path string, isPositive bool) bool {
	provider, ok := opts.Factory.Provider()
	if !ok {
		// No provider means no evidence; predict negative.
		return false
	}

	callCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	image, err := opts.Render(callCtx, path)
	if err == nil {
		var response string
		response, err = provider.GenerateFromImage(callCtx, image, prompt, opts.Model)
		if err == nil {
			return match.ParseYesNoResponse(response)
		}
	}

	logging.LogPhase(string(PhaseVisual), opts.Model, path, fmt.Sprintf("error=%v", err))
	// A failed call is never given the benefit of the doubt: force the wrong answer.
	return !isPositive
}

// TextPhaseOptions parameterizes a text-only benchmark run.
type TextPhaseOptions struct {
	Factory        providers.TextFactory
	Model          string
	PositivePDFs   []string
	NegativePDFs   []string
	DocumentType   string
	Timeout        time.Duration
	ExtractedTexts map[string]string
	GroundTruth    map[string]groundtruth.GroundTruth
}

// BenchmarkText benchmarks one text model's categorization and extraction over
// pre-extracted OCR text. Documents with empty or missing text are scored
// wrong without invoking the model. Extraction runs only for correctly
// categorized positive samples. The model is released before return on every path.
func BenchmarkText(ctx context.Context, opts TextPhaseOptions) TextBenchmarkResult {
	start := time.Now()
	result := TextBenchmarkResult{Model: opts.Model}

	if err := opts.Factory.Preload(ctx, opts.Model); err != nil {
		result.IsDisqualified = true
		result.DisqualificationReason = fmt.Sprintf("Failed to load models: %v", err)
		opts.Factory.Release()
		return result
	}
	defer opts.Factory.Release()

	process := func(path string, isPositive bool) {
		result.DocumentResults = append(result.DocumentResults, scoreDocumentText(ctx, opts, path, isPositive))
	}
	for _, path := range opts.PositivePDFs {
		process(path, true)
	}
	for _, path := range opts.NegativePDFs {
		process(path, false)
	}

	for _, doc := range result.DocumentResults {
		result.TotalScore += doc.DocumentScore
		switch doc.DocumentScore {
		case 2:
			result.FullyCorrectCount++
		case 1:
			result.PartiallyCorrectCount++
		default:
			result.FullyWrongCount++
		}
	}
	result.MaxScore = 2 * len(result.DocumentResults)
	result.ElapsedSeconds = time.Since(start).Seconds()
	return result
}

// scoreDocumentText categorizes and, when applicable, extracts one document.
func scoreDocumentText(ctx context.Context, opts TextPhaseOptions, path string, isPositive bool) DocumentResult {
	doc := DocumentResult{Filename: path, IsPositiveSample: isPositive}

	text := opts.ExtractedTexts[path]
	if text == "" {
		// Nothing to categorize: both steps count as wrong, no model call.
		doc.PredictedIsMatch = !isPositive
		doc.DocumentScore = 0
		return doc
	}

	provider, ok := opts.Factory.Provider()
	if !ok {
		doc.PredictedIsMatch = !isPositive
		doc.DocumentScore = 0
		return doc
	}

	callCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	userPrompt := fmt.Sprintf("Is the following text from a %s? Answer with yes or no.\n\n%s", opts.DocumentType, text)
	response, err := provider.Generate(callCtx, categorizeSystemPrompt, userPrompt, 0)
	if err != nil {
		logging.LogPhase(string(PhaseText), opts.Model, path, fmt.Sprintf("categorize error=%v", err))
		doc.PredictedIsMatch = !isPositive
		doc.DocumentScore = 0
		return doc
	}

	doc.PredictedIsMatch = match.ParseYesNoResponse(response)
	expected := expectedForDocument(opts.GroundTruth, path, isPositive)

	if !doc.CategorizationCorrect() {
		doc.DocumentScore = 0
		return doc
	}
	if !isPositive {
		doc.DocumentScore = 2
		return doc
	}

	fields, err := provider.ExtractData(callCtx, opts.DocumentType, text)
	if err != nil {
		logging.LogPhase(string(PhaseText), opts.Model, path, fmt.Sprintf("extract error=%v", err))
		// Correct categorization with failed extraction is still partial credit.
		doc.DocumentScore = 1
		return doc
	}

	score := match.ScoreDocument(expected, doc.PredictedIsMatch, fields.Date, fields.SecondaryField, fields.PatientName)
	doc.DocumentScore = score.Points
	return doc
}

// expectedForDocument builds the scorer's expectation from the sidecar when
// present, falling back to the sample-implied label.
func expectedForDocument(truths map[string]groundtruth.GroundTruth, path string, isPositive bool) match.Expected {
	if gt, ok := truths[path]; ok {
		return match.Expected{
			IsMatch:        gt.IsMatch,
			Date:           gt.Date,
			SecondaryField: gt.SecondaryField,
			PatientName:    gt.PatientName,
		}
	}
	return match.Expected{IsMatch: isPositive}
}

// PairOptions parameterizes the in-process full pair benchmark.
type PairOptions struct {
	Pair             ModelPair
	NewVisualFactory func() providers.VisualFactory
	NewTextFactory   func() providers.TextFactory
	Estimator        *memory.Estimator
	PositivePDFs     []string
	NegativePDFs     []string
	DocumentType     string
	Timeout          time.Duration
	Render           RenderFunc
	ExtractedTexts   map[string]string
	GroundTruth      map[string]groundtruth.GroundTruth
}

// BenchmarkModelPair benchmarks one pair in-process. Order of operations:
// memory gate before any factory construction, restriction to documents with
// ground truth, preload of both models, then per-document categorization and
// extraction. A timeout on any single document disqualifies the whole pair and
// discards partial results; any other per-document error scores that document
// zero. Both models are released exactly once on every path.
func BenchmarkModelPair(ctx context.Context, opts PairOptions) ModelPairResult {
	estimator := opts.Estimator
	if estimator == nil {
		estimator = memory.NewEstimator()
	}
	required := estimator.EstimateMemoryMB(opts.Pair.VisualModel, opts.Pair.TextModel)
	available := estimator.AvailableMemoryMB()
	if required > available {
		return DisqualifiedPairResult(opts.Pair,
			fmt.Sprintf("Insufficient memory: requires ~%d MB, %d MB available", required, available))
	}

	positive := withGroundTruth(opts.PositivePDFs, opts.GroundTruth)
	negative := withGroundTruth(opts.NegativePDFs, opts.GroundTruth)

	start := time.Now()
	visualFactory := opts.NewVisualFactory()
	textFactory := opts.NewTextFactory()
	defer visualFactory.Release()
	defer textFactory.Release()

	if err := visualFactory.Preload(ctx, opts.Pair.VisualModel); err != nil {
		return DisqualifiedPairResult(opts.Pair, fmt.Sprintf("Failed to load models: %v", err))
	}
	if err := textFactory.Preload(ctx, opts.Pair.TextModel); err != nil {
		return DisqualifiedPairResult(opts.Pair, fmt.Sprintf("Failed to load models: %v", err))
	}

	var documents []DocumentResult
	process := func(path string, isPositive bool) (DocumentResult, error) {
		return scorePairDocument(ctx, opts, visualFactory, textFactory, path, isPositive)
	}

	for _, set := range []struct {
		paths    []string
		positive bool
	}{{positive, true}, {negative, false}} {
		for _, path := range set.paths {
			doc, err := process(path, set.positive)
			if err != nil {
				// A hung model is assumed systemically broken; drop the partials.
				return DisqualifiedPairResult(opts.Pair,
					fmt.Sprintf("Processing timeout for %s: %v", path, err))
			}
			documents = append(documents, doc)
		}
	}

	return ModelPairResult{
		Pair:            opts.Pair,
		Metrics:         ComputeMetrics(documents),
		DocumentResults: documents,
		Elapsed:         time.Since(start),
	}
}

// scorePairDocument runs categorization then extraction for one document.
// A timeout is returned as an error; any other failure degrades the score.
func scorePairDocument(ctx context.Context, opts PairOptions, visualFactory providers.VisualFactory, textFactory providers.TextFactory, path string, isPositive bool) (DocumentResult, error) {
	doc := DocumentResult{Filename: path, IsPositiveSample: isPositive}

	callCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	predicted := false
	provider, ok := visualFactory.Provider()
	if ok {
		image, err := opts.Render(callCtx, path)
		if err == nil {
			var response string
			response, err = provider.GenerateFromImage(callCtx, image, fmt.Sprintf(visualPromptTemplate, opts.DocumentType), opts.Pair.VisualModel)
			if err == nil {
				predicted = match.ParseYesNoResponse(response)
			}
		}
		if err != nil {
			if isDeadlineExceeded(err) {
				return DocumentResult{}, fmt.Errorf("%w: %v", ErrTimeout, err)
			}
			predicted = !isPositive
		}
	}
	doc.PredictedIsMatch = predicted

	expected := expectedForDocument(opts.GroundTruth, path, isPositive)
	if !doc.CategorizationCorrect() {
		doc.DocumentScore = 0
		return doc, nil
	}
	if !isPositive {
		doc.DocumentScore = 2
		return doc, nil
	}

	textProvider, ok := textFactory.Provider()
	if !ok {
		doc.DocumentScore = 0
		return doc, nil
	}
	fields, err := textProvider.ExtractData(callCtx, opts.DocumentType, opts.ExtractedTexts[path])
	if err != nil {
		if isDeadlineExceeded(err) {
			return DocumentResult{}, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		doc.DocumentScore = 0
		return doc, nil
	}

	score := match.ScoreDocument(expected, predicted, fields.Date, fields.SecondaryField, fields.PatientName)
	doc.DocumentScore = score.Points
	return doc, nil
}

// withGroundTruth filters documents down to those that have a ground truth
// entry; the rest are silently skipped.
func withGroundTruth(paths []string, truths map[string]groundtruth.GroundTruth) []string {
	var kept []string
	for _, path := range paths {
		if _, ok := truths[path]; ok {
			kept = append(kept, path)
		}
	}
	return kept
}
