// internal/commands/benchmark_pairs.go
package pairbench

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pairbench/pairbench/internal/benchmark"
	"github.com/pairbench/pairbench/internal/groundtruth"
	"github.com/pairbench/pairbench/internal/ocr"
	"github.com/pairbench/pairbench/internal/registry"
	"github.com/pairbench/pairbench/internal/report"
	"github.com/pairbench/pairbench/internal/tui"
)

var (
	benchmarkPairsOCR     string
	benchmarkPairsCleanup bool
)

var benchmarkPairsCmd = &cobra.Command{
	Use:   "pairs",
	Short: "Benchmark every configured visual+text model pair and rank the results",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg == nil {
			return errors.New("configuration is not initialized")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if len(cfg.VisualModels) == 0 || len(cfg.TextModels) == 0 {
			return errors.New("config must list visualModels and textModels to benchmark")
		}
		ctx := cmd.Context()

		positive, negative, err := loadCorpus(cfg)
		if err != nil {
			return err
		}
		documents := append(append([]string{}, positive...), negative...)

		truths, err := groundtruth.LoadAll(documents)
		if err != nil {
			return err
		}
		if len(truths) == 0 {
			return errors.New("no ground truth sidecars found; run 'pairbench groundtruth generate' first")
		}

		extractor, err := ocr.NewExtractor(benchmarkPairsOCR)
		if err != nil {
			return err
		}
		texts, err := ocr.ExtractAll(ctx, extractor, documents)
		if err != nil {
			return err
		}

		var pairs []benchmark.ModelPair
		for _, visual := range cfg.VisualModels {
			for _, text := range cfg.TextModels {
				pairs = append(pairs, benchmark.ModelPair{VisualModel: visual, TextModel: text})
			}
		}

		opts := benchmark.SweepOptions{
			Pairs:          pairs,
			PositivePDFs:   positive,
			NegativePDFs:   negative,
			DocumentType:   cfg.DocumentType,
			TimeoutSeconds: cfg.DocumentTimeoutSeconds(),
			Config:         *cfg,
			ExtractedTexts: texts,
			GroundTruth:    truths,
			Estimator:      newEstimator(cfg),
			Runner:         benchmark.NewRunner(),
		}

		var results []benchmark.ModelPairResult
		if ProgressEnabled() {
			err = tui.RunSweep(func(notify func(benchmark.SweepEvent)) error {
				opts.Notify = notify
				var sweepErr error
				results, sweepErr = benchmark.RunSweep(ctx, opts)
				return sweepErr
			})
		} else {
			results, err = benchmark.RunSweep(ctx, opts)
		}
		if err != nil {
			return err
		}

		report.PrintLeaderboard(os.Stdout, results)
		if _, err := report.WriteResults(results); err != nil {
			return err
		}
		if DebugEnabled() {
			report.DumpResults(results)
		}

		if benchmarkPairsCleanup {
			return cleanupAfterSweep(cfg.ModelCacheDir, pairs, results)
		}
		return nil
	},
}

// cleanupAfterSweep deletes the cached weights of every losing model.
func cleanupAfterSweep(cacheDir string, pairs []benchmark.ModelPair, results []benchmark.ModelPairResult) error {
	best, ok := benchmark.BestPair(results)
	if !ok {
		fmt.Println("No qualifying pair; skipping model cache cleanup")
		return nil
	}
	if cacheDir == "" {
		var err error
		cacheDir, err = registry.ResolveCacheRoot(nil)
		if err != nil {
			return err
		}
	}
	reclaimed, err := benchmark.CleanupBenchmarkedModels(cacheDir, pairs, best.Pair.VisualModel, best.Pair.TextModel)
	if err != nil {
		return err
	}
	fmt.Printf("Reclaimed %d bytes from the model cache under %s\n", reclaimed, cacheDir)
	return nil
}

func init() {
	benchmarkCmd.AddCommand(benchmarkPairsCmd)
	benchmarkPairsCmd.Flags().StringVar(&benchmarkPairsOCR, "ocr", "", "OCR provider for text extraction (pdftotext or tesseract)")
	benchmarkPairsCmd.Flags().BoolVar(&benchmarkPairsCleanup, "cleanup", false, "delete cached weights of losing models after the sweep")
}
