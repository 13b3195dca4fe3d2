// internal/commands/corpus.go
package pairbench

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pairbench/pairbench/internal/appconfig"
	"github.com/pairbench/pairbench/internal/memory"
)

// listPDFs returns the PDF documents in dir, sorted by name. An empty dir is
// an empty corpus half, not an error.
func listPDFs(dir string) ([]string, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, nil
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*.pdf"))
	if err != nil {
		return nil, fmt.Errorf("list documents in %s: %w", dir, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// loadCorpus resolves both corpus halves from the config.
func loadCorpus(cfg *appconfig.Config) (positive, negative []string, err error) {
	positive, err = listPDFs(cfg.PositiveDir)
	if err != nil {
		return nil, nil, err
	}
	negative, err = listPDFs(cfg.NegativeDir)
	if err != nil {
		return nil, nil, err
	}
	if len(positive)+len(negative) == 0 {
		return nil, nil, fmt.Errorf("no documents found under %q or %q", cfg.PositiveDir, cfg.NegativeDir)
	}
	return positive, negative, nil
}

// newEstimator builds the memory estimator from the config.
func newEstimator(cfg *appconfig.Config) *memory.Estimator {
	if cfg.MemoryHeadroom > 0 {
		return memory.NewEstimator(memory.WithHeadroom(cfg.MemoryHeadroom))
	}
	return memory.NewEstimator()
}
