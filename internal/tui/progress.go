// internal/tui/progress.go
// Package tui renders the optional live progress view for a benchmark sweep.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pairbench/pairbench/internal/benchmark"
	"github.com/pairbench/pairbench/internal/util"
)

var (
	pairStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	badStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// EventMsg carries one sweep event into the program.
type EventMsg benchmark.SweepEvent

// DoneMsg ends the program once the sweep returns.
type DoneMsg struct{}

type model struct {
	spinner   spinner.Model
	progress  progress.Model
	pairCount int
	completed int
	current   string
	lines     []string
	done      bool
}

func newModel() *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return &model{
		spinner:  s,
		progress: progress.New(progress.WithDefaultGradient()),
	}
}

// Init starts the spinner animation.
func (m *model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EventMsg:
		m.pairCount = msg.PairCount
		if msg.Result == nil {
			m.current = msg.Pair.String()
			return m, nil
		}
		m.completed++
		m.lines = append(m.lines, resultLine(*msg.Result))
		return m, nil
	case DoneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

func (m *model) View() string {
	var builder strings.Builder
	for _, line := range m.lines {
		builder.WriteString(line + "\n")
	}
	if m.done {
		return builder.String()
	}

	percent := 0.0
	if m.pairCount > 0 {
		percent = float64(m.completed) / float64(m.pairCount)
	}
	builder.WriteString(fmt.Sprintf("\n  %s Benchmarking %s\n  %s %d/%d pairs\n",
		m.spinner.View(),
		pairStyle.Render(m.current),
		m.progress.ViewAs(percent),
		m.completed, m.pairCount))
	return builder.String()
}

func resultLine(result benchmark.ModelPairResult) string {
	if result.IsDisqualified {
		reason := util.TruncateRunes(result.DisqualificationReason, 80)
		return fmt.Sprintf("  %-50s %s", result.Pair, badStyle.Render(reason))
	}
	return fmt.Sprintf("  %-50s %s in %s",
		result.Pair,
		okStyle.Render(fmt.Sprintf("%5.1f%%", result.Metrics.Score*100)),
		result.Elapsed.Round(time.Millisecond))
}

// RunSweep drives the sweep under a live progress view. The sweep runs on its
// own goroutine and feeds events through the program; its error is returned
// after the view shuts down.
func RunSweep(sweep func(notify func(benchmark.SweepEvent)) error) error {
	m := newModel()
	program := tea.NewProgram(m)

	errCh := make(chan error, 1)
	go func() {
		err := sweep(func(event benchmark.SweepEvent) {
			program.Send(EventMsg(event))
		})
		program.Send(DoneMsg{})
		errCh <- err
	}()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("progress view failed: %w", err)
	}
	return <-errCh
}
