// internal/commands/models_list.go
package pairbench

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/pairbench/pairbench/internal/benchmark"
	"github.com/pairbench/pairbench/internal/registry"
)

// modelsCmd groups model discovery and cache commands.
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Group commands for model discovery and the local cache",
}

var (
	modelsListQuery string
	modelsListLimit int
)

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Search the model registry and show which results are cached locally",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := registry.NewClient("")
		models, err := client.ListModels(cmd.Context(), modelsListQuery, modelsListLimit)
		if err != nil {
			return err
		}

		cacheRoot, err := registry.ResolveCacheRoot(nil)
		if err != nil {
			return err
		}

		headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
		fmt.Println(headerStyle.Render(fmt.Sprintf("Registry results for %q:", modelsListQuery)))
		for _, model := range models {
			dir := filepath.Join(cacheRoot, registry.CacheDirName(model.ID))
			size := benchmark.DirectorySize(dir)
			cached := "not cached"
			if size > 0 {
				cached = fmt.Sprintf("cached, %.1f MB", float64(size)/(1000*1000))
			}
			fmt.Printf("  >>> %-60s %8d downloads  %s\n", model.ID, model.Downloads, cached)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.AddCommand(modelsListCmd)
	modelsListCmd.Flags().StringVar(&modelsListQuery, "query", "", "registry search query")
	modelsListCmd.Flags().IntVar(&modelsListLimit, "limit", 20, "maximum number of results")
}
