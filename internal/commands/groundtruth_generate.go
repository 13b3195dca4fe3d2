// internal/commands/groundtruth_generate.go
package pairbench

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pairbench/pairbench/internal/benchmark"
	"github.com/pairbench/pairbench/internal/groundtruth"
	"github.com/pairbench/pairbench/internal/ocr"
	"github.com/pairbench/pairbench/internal/pdfimage"
	"github.com/pairbench/pairbench/internal/providerfactory"
)

// groundtruthCmd groups sidecar management commands.
var groundtruthCmd = &cobra.Command{
	Use:   "groundtruth",
	Short: "Group commands for managing ground truth sidecars",
}

var groundtruthGenerateOCR string

var groundtruthGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate ground truth sidecars with the configured oracle model pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg == nil {
			return errors.New("configuration is not initialized")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if cfg.OracleVisualModel == "" || cfg.OracleTextModel == "" {
			return errors.New("config must set oracleVisualModel and oracleTextModel")
		}
		ctx := cmd.Context()

		positive, negative, err := loadCorpus(cfg)
		if err != nil {
			return err
		}
		documents := append(append([]string{}, positive...), negative...)

		extractor, err := ocr.NewExtractor(groundtruthGenerateOCR)
		if err != nil {
			return err
		}
		texts, err := ocr.ExtractAll(ctx, extractor, documents)
		if err != nil {
			return err
		}

		oracle := benchmark.NewOracle(benchmark.OracleOptions{
			VisualFactory: providerfactory.NewVisualFactory(*cfg),
			TextFactory:   providerfactory.NewTextFactory(*cfg),
			VisualModel:   cfg.OracleVisualModel,
			TextModel:     cfg.OracleTextModel,
			DocumentType:  cfg.DocumentType,
			Timeout:       cfg.DocumentTimeout(),
			Render:        pdfimage.NewRenderer("").RenderFirstPage,
		})
		if err := oracle.Preload(ctx); err != nil {
			return err
		}
		defer oracle.Release()

		summary, err := groundtruth.Generate(ctx, oracle, groundtruth.GenerateOptions{
			PositivePDFs:   positive,
			NegativePDFs:   negative,
			DocumentType:   cfg.DocumentType,
			SkipExisting:   cfg.SkipExisting,
			ExtractedTexts: texts,
			VLMModel:       cfg.OracleVisualModel,
			TextModel:      cfg.OracleTextModel,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Ground truth: %d generated, %d skipped, %d preserved, %d failed\n",
			summary.Generated, summary.Skipped, summary.Preserved, summary.Failed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(groundtruthCmd)
	groundtruthCmd.AddCommand(groundtruthGenerateCmd)
	groundtruthGenerateCmd.Flags().StringVar(&groundtruthGenerateOCR, "ocr", "", "OCR provider for text extraction (pdftotext or tesseract)")
}
