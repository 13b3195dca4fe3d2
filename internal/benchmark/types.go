// internal/benchmark/types.go
package benchmark

import (
	"fmt"
	"time"
)

// ModelPair is the unit under evaluation: one visual categorizer plus one
// text extractor.
type ModelPair struct {
	VisualModel string `json:"visualModel"`
	TextModel   string `json:"textModel"`
}

func (p ModelPair) String() string {
	return fmt.Sprintf("%s + %s", p.VisualModel, p.TextModel)
}

// DocumentResult is the scored outcome for one document under one pair.
type DocumentResult struct {
	Filename         string `json:"filename"`
	IsPositiveSample bool   `json:"isPositiveSample"`
	PredictedIsMatch bool   `json:"predictedIsMatch"`
	DocumentScore    int    `json:"documentScore"`
}

// CategorizationCorrect reports whether the prediction matched the
// sample-implied expectation.
func (r DocumentResult) CategorizationCorrect() bool {
	return r.PredictedIsMatch == r.IsPositiveSample
}

// IsFullyCorrect reports whether the document earned the maximum score.
func (r DocumentResult) IsFullyCorrect() bool {
	return r.DocumentScore == 2
}

// BenchmarkMetrics aggregates a set of DocumentResults. It is a pure function
// of the result set with no independent lifecycle.
type BenchmarkMetrics struct {
	DocumentCount         int     `json:"documentCount"`
	TotalScore            int     `json:"totalScore"`
	MaxScore              int     `json:"maxScore"`
	Score                 float64 `json:"score"`
	HasNegativeSamples    bool    `json:"hasNegativeSamples"`
	FullyCorrectCount     int     `json:"fullyCorrectCount"`
	PartiallyCorrectCount int     `json:"partiallyCorrectCount"`
	FullyWrongCount       int     `json:"fullyWrongCount"`
}

// ComputeMetrics builds the aggregate metrics for a result set.
func ComputeMetrics(results []DocumentResult) BenchmarkMetrics {
	metrics := BenchmarkMetrics{
		DocumentCount: len(results),
		MaxScore:      2 * len(results),
	}
	for _, result := range results {
		metrics.TotalScore += result.DocumentScore
		if !result.IsPositiveSample {
			metrics.HasNegativeSamples = true
		}
		switch result.DocumentScore {
		case 2:
			metrics.FullyCorrectCount++
		case 1:
			metrics.PartiallyCorrectCount++
		default:
			metrics.FullyWrongCount++
		}
	}
	if metrics.MaxScore > 0 {
		metrics.Score = float64(metrics.TotalScore) / float64(metrics.MaxScore)
	}
	return metrics
}

// ModelPairResult is the outcome of benchmarking one pair. Disqualified pairs
// carry empty metrics and a human-readable reason; they are retained for
// reporting but excluded from ranking.
type ModelPairResult struct {
	Pair                   ModelPair        `json:"pair"`
	Metrics                BenchmarkMetrics `json:"metrics"`
	DocumentResults        []DocumentResult `json:"documentResults,omitempty"`
	Elapsed                time.Duration    `json:"elapsedNs"`
	IsDisqualified         bool             `json:"isDisqualified"`
	DisqualificationReason string           `json:"disqualificationReason,omitempty"`
}

// DisqualifiedPairResult builds the result recorded for a pair that was never scored.
func DisqualifiedPairResult(pair ModelPair, reason string) ModelPairResult {
	return ModelPairResult{
		Pair:                   pair,
		IsDisqualified:         true,
		DisqualificationReason: reason,
	}
}

// DocumentPrediction is one visual-phase categorization verdict, carried
// per-document so pair results can be assembled from phase results.
type DocumentPrediction struct {
	Filename         string `json:"filename"`
	IsPositiveSample bool   `json:"isPositiveSample"`
	PredictedIsMatch bool   `json:"predictedIsMatch"`
}

// VisualBenchmarkResult is the outcome of a visual-only phase for one model.
type VisualBenchmarkResult struct {
	Model                  string               `json:"model"`
	TruePositives          int                  `json:"truePositives"`
	FalsePositives         int                  `json:"falsePositives"`
	TrueNegatives          int                  `json:"trueNegatives"`
	FalseNegatives         int                  `json:"falseNegatives"`
	Predictions            []DocumentPrediction `json:"predictions,omitempty"`
	ElapsedSeconds         float64              `json:"elapsedSeconds"`
	IsDisqualified         bool                 `json:"isDisqualified"`
	DisqualificationReason string               `json:"disqualificationReason,omitempty"`
}

// TextBenchmarkResult is the outcome of a text-only phase for one model.
type TextBenchmarkResult struct {
	Model                  string           `json:"model"`
	DocumentResults        []DocumentResult `json:"documentResults,omitempty"`
	TotalScore             int              `json:"totalScore"`
	MaxScore               int              `json:"maxScore"`
	FullyCorrectCount      int              `json:"fullyCorrectCount"`
	PartiallyCorrectCount  int              `json:"partiallyCorrectCount"`
	FullyWrongCount        int              `json:"fullyWrongCount"`
	ElapsedSeconds         float64          `json:"elapsedSeconds"`
	IsDisqualified         bool             `json:"isDisqualified"`
	DisqualificationReason string           `json:"disqualificationReason,omitempty"`
}
