package benchmark

import (
	"testing"
	"time"
)

func rankedInput() []ModelPairResult {
	return []ModelPairResult{
		{
			Pair:    ModelPair{VisualModel: "a", TextModel: "x"},
			Metrics: BenchmarkMetrics{Score: 0.5},
			Elapsed: 10 * time.Second,
		},
		DisqualifiedPairResult(ModelPair{VisualModel: "b", TextModel: "y"}, "Worker crashed (exit 1)"),
		{
			Pair:    ModelPair{VisualModel: "c", TextModel: "z"},
			Metrics: BenchmarkMetrics{Score: 0.9},
			Elapsed: 30 * time.Second,
		},
		{
			Pair:    ModelPair{VisualModel: "d", TextModel: "w"},
			Metrics: BenchmarkMetrics{Score: 0.9},
			Elapsed: 20 * time.Second,
		},
	}
}

func TestRankResults(t *testing.T) {
	ranked := RankResults(rankedInput())
	if len(ranked) != 3 {
		t.Fatalf("disqualified entries must be excluded, got %d results", len(ranked))
	}
	// Equal scores break the tie on elapsed time, ascending.
	if ranked[0].Pair.VisualModel != "d" || ranked[1].Pair.VisualModel != "c" || ranked[2].Pair.VisualModel != "a" {
		t.Fatalf("unexpected order: %s, %s, %s", ranked[0].Pair, ranked[1].Pair, ranked[2].Pair)
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Metrics.Score > ranked[i-1].Metrics.Score {
			t.Fatalf("scores must be non-increasing at index %d", i)
		}
	}
}

func TestBestPair(t *testing.T) {
	best, ok := BestPair(rankedInput())
	if !ok {
		t.Fatal("expected a winner")
	}
	if best.Pair.VisualModel != "d" {
		t.Fatalf("unexpected winner: %s", best.Pair)
	}

	onlyDisqualified := []ModelPairResult{
		DisqualifiedPairResult(ModelPair{VisualModel: "b", TextModel: "y"}, "Worker timeout: exceeded 310s"),
	}
	if _, ok := BestPair(onlyDisqualified); ok {
		t.Fatal("no winner expected when every pair is disqualified")
	}
}

func TestDisqualified(t *testing.T) {
	disqualified := Disqualified(rankedInput())
	if len(disqualified) != 1 || disqualified[0].Pair.VisualModel != "b" {
		t.Fatalf("unexpected disqualified set: %+v", disqualified)
	}
}
