// internal/commands/worker.go
package pairbench

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pairbench/pairbench/internal/benchmark"
	"github.com/pairbench/pairbench/internal/pdfimage"
	"github.com/pairbench/pairbench/internal/providerfactory"
)

// workerCmd is the hidden entry point the subprocess runner re-executes this
// binary with. It reads one WorkerInput from stdin and writes one WorkerOutput
// to stdout; anything human-readable goes to stderr.
var workerCmd = &cobra.Command{
	Use:    "worker",
	Hidden: true,
	// The worker receives its full configuration over stdin.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		return benchmark.RunWorker(cmd.Context(), os.Stdin, os.Stdout, benchmark.WorkerDeps{
			NewVisualFactory: providerfactory.NewVisualFactory,
			NewTextFactory:   providerfactory.NewTextFactory,
			Render:           pdfimage.NewRenderer("").RenderFirstPage,
		})
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
