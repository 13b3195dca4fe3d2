// internal/benchmark/cleanup.go
package benchmark

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pairbench/pairbench/internal/logging"
	"github.com/pairbench/pairbench/internal/registry"
)

// CleanupBenchmarkedModels deletes the cache directory of every model that
// took part in the sweep except the retained winners. Missing directories are
// ignored. Returns the total bytes reclaimed.
func CleanupBenchmarkedModels(cacheRoot string, pairs []ModelPair, keepVisual, keepText string) (int64, error) {
	keep := map[string]bool{keepVisual: true, keepText: true}
	seen := map[string]bool{}

	var reclaimed int64
	for _, pair := range pairs {
		for _, model := range []string{pair.VisualModel, pair.TextModel} {
			if keep[model] || seen[model] {
				continue
			}
			seen[model] = true

			dir := filepath.Join(cacheRoot, registry.CacheDirName(model))
			size := DirectorySize(dir)
			if size == 0 {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					continue
				}
			}
			if err := os.RemoveAll(dir); err != nil {
				return reclaimed, err
			}
			reclaimed += size
			logging.LogEvent("Removed cached model %s (%d bytes)", model, size)
		}
	}
	return reclaimed, nil
}

// DirectorySize sums file sizes under path recursively. A non-existent path
// counts as zero.
func DirectorySize(path string) int64 {
	var total int64
	_ = filepath.WalkDir(path, func(_ string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if entry.Type().IsRegular() {
			if info, err := entry.Info(); err == nil {
				total += info.Size()
			}
		}
		return nil
	})
	return total
}
