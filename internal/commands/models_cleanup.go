// internal/commands/models_cleanup.go
package pairbench

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pairbench/pairbench/internal/benchmark"
	"github.com/pairbench/pairbench/internal/registry"
)

var (
	modelsCleanupKeepVisual string
	modelsCleanupKeepText   string
)

var modelsCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete cached weights of every configured model except the retained winners",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg == nil {
			return errors.New("configuration is not initialized")
		}
		if modelsCleanupKeepVisual == "" || modelsCleanupKeepText == "" {
			return errors.New("--keep-visual and --keep-text are required")
		}

		cacheRoot := cfg.ModelCacheDir
		if cacheRoot == "" {
			var err error
			cacheRoot, err = registry.ResolveCacheRoot(nil)
			if err != nil {
				return err
			}
		}

		var pairs []benchmark.ModelPair
		for _, visual := range cfg.VisualModels {
			for _, text := range cfg.TextModels {
				pairs = append(pairs, benchmark.ModelPair{VisualModel: visual, TextModel: text})
			}
		}

		reclaimed, err := benchmark.CleanupBenchmarkedModels(cacheRoot, pairs, modelsCleanupKeepVisual, modelsCleanupKeepText)
		if err != nil {
			return err
		}
		fmt.Printf("Reclaimed %d bytes from the model cache under %s\n", reclaimed, cacheRoot)
		return nil
	},
}

func init() {
	modelsCmd.AddCommand(modelsCleanupCmd)
	modelsCleanupCmd.Flags().StringVar(&modelsCleanupKeepVisual, "keep-visual", "", "visual model whose cache is retained")
	modelsCleanupCmd.Flags().StringVar(&modelsCleanupKeepText, "keep-text", "", "text model whose cache is retained")
}
