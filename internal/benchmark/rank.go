// internal/benchmark/rank.go
package benchmark

import "sort"

// RankResults orders qualified results best-first: higher score wins, and on
// equal scores the faster pair wins. Disqualified results are excluded.
func RankResults(results []ModelPairResult) []ModelPairResult {
	ranked := make([]ModelPairResult, 0, len(results))
	for _, result := range results {
		if !result.IsDisqualified {
			ranked = append(ranked, result)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Metrics.Score != ranked[j].Metrics.Score {
			return ranked[i].Metrics.Score > ranked[j].Metrics.Score
		}
		return ranked[i].Elapsed < ranked[j].Elapsed
	})
	return ranked
}

// Disqualified returns the results excluded from ranking, in sweep order.
func Disqualified(results []ModelPairResult) []ModelPairResult {
	var out []ModelPairResult
	for _, result := range results {
		if result.IsDisqualified {
			out = append(out, result)
		}
	}
	return out
}

// BestPair returns the winner of a ranked sweep, if any pair qualified.
func BestPair(results []ModelPairResult) (ModelPairResult, bool) {
	ranked := RankResults(results)
	if len(ranked) == 0 {
		return ModelPairResult{}, false
	}
	return ranked[0], true
}
