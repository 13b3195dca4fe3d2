// Package report renders sweep results for the terminal and persists them to
// disk.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/k0kubun/pp"

	"github.com/pairbench/pairbench/internal/benchmark"
	"github.com/pairbench/pairbench/internal/logging"
	"github.com/pairbench/pairbench/internal/util"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Bold(true)
	winnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)

	qualified    = color.New(color.FgGreen).SprintFunc()
	disqualified = color.New(color.FgRed).SprintFunc()
)

// PrintLeaderboard writes the ranked leaderboard followed by the disqualified
// pairs with their reasons.
func PrintLeaderboard(w io.Writer, results []benchmark.ModelPairResult) {
	ranked := benchmark.RankResults(results)
	dropped := benchmark.Disqualified(results)

	fmt.Fprintln(w, headerStyle.Render("Leaderboard:"))
	if len(ranked) == 0 {
		fmt.Fprintln(w, "  no pair qualified")
	}
	for i, result := range ranked {
		line := fmt.Sprintf("  %d. %-50s %s  %d/%d correct, %d partial, %d wrong  %s",
			i+1,
			result.Pair,
			qualified(fmt.Sprintf("%5.1f%%", result.Metrics.Score*100)),
			result.Metrics.FullyCorrectCount,
			result.Metrics.DocumentCount,
			result.Metrics.PartiallyCorrectCount,
			result.Metrics.FullyWrongCount,
			result.Elapsed.Round(time.Millisecond),
		)
		if i == 0 {
			line = winnerStyle.Render(line)
		}
		fmt.Fprintln(w, line)
	}

	if len(dropped) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, headerStyle.Render("Disqualified:"))
		for _, result := range dropped {
			reason := util.TruncateRunes(result.DisqualificationReason, 120)
			fmt.Fprintf(w, "  %-50s %s\n", result.Pair, disqualified(reason))
		}
	}
}

// WriteResults writes the full result set as pretty JSON under
// pairbenchData/pairBenchmarks and returns the file name.
func WriteResults(results []benchmark.ModelPairResult) (string, error) {
	var names []string
	for _, result := range results {
		names = append(names, result.Pair.VisualModel, result.Pair.TextModel)
	}

	dir := filepath.Join("pairbenchData", "pairBenchmarks")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating results directory: %w", err)
	}
	fileName := filepath.Join(dir, fmt.Sprintf("%s-%d.json", Slugify(strings.Join(names, "-")), len(results)))

	file, err := os.Create(fileName)
	if err != nil {
		return "", fmt.Errorf("error creating result file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(results); err != nil {
		return "", fmt.Errorf("error writing results to file: %w", err)
	}

	logging.LogEvent("Benchmark results written to %s", fileName)
	return fileName, nil
}

// DumpResults pretty-prints the raw result structures for debugging.
func DumpResults(results []benchmark.ModelPairResult) {
	pp.Println(results)
}

// Slugify converts a string into a "slug" format,
// including replacing colons (:) with underscores (_).
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, ":", "_")
	re := regexp.MustCompile(`[^a-z0-9_]+`)
	s = re.ReplaceAllString(s, "-")
	s = regexp.MustCompile(`-+`).ReplaceAllString(s, "-")
	s = strings.Trim(s, "-_")

	return s
}
