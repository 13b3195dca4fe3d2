// internal/benchmark/runner.go
// The subprocess runner spawns one isolated worker per invocation, enforces an
// overall timeout scaled by workload size, and classifies the outcome. The
// underlying model runtime can abort the whole process on out-of-memory or
// unsupported hardware; isolation guarantees one bad pair cannot take down the
// sweep.
package benchmark

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/pairbench/pairbench/internal/logging"
)

// modelLoadingBufferSeconds is added to every worker deadline: with zero
// documents the timeout is exactly this buffer, since loading cost dominates.
const modelLoadingBufferSeconds = 300

// OutcomeState classifies how a worker invocation ended.
type OutcomeState int

const (
	OutcomeCompleted OutcomeState = iota
	OutcomeCrashed
	OutcomeTimedOut
	OutcomeDecodingFailed
)

// Outcome is the classified result of one worker invocation.
type Outcome struct {
	State    OutcomeState
	Output   WorkerOutput // populated only for OutcomeCompleted
	ExitCode int
	Signal   string
	Message  string
}

// Reason renders the human-readable disqualification reason for a
// non-completed outcome.
func (o Outcome) Reason() string {
	switch o.State {
	case OutcomeCrashed:
		if o.Signal != "" {
			return fmt.Sprintf("Worker crashed (exit %d, signal %s)", o.ExitCode, o.Signal)
		}
		return fmt.Sprintf("Worker crashed (exit %d)", o.ExitCode)
	case OutcomeTimedOut:
		return fmt.Sprintf("Worker timeout: %s", o.Message)
	case OutcomeDecodingFailed:
		return fmt.Sprintf("Failed to decode worker output: %s", o.Message)
	default:
		return ""
	}
}

// OverallTimeout scales the worker deadline with workload size:
// documents × per-document timeout plus the fixed loading buffer.
func OverallTimeout(in WorkerInput) time.Duration {
	seconds := float64(in.DocumentCount())*in.TimeoutSeconds + modelLoadingBufferSeconds
	return time.Duration(seconds * float64(time.Second))
}

// Runner owns the lifetime of exactly one worker process per invocation and
// guarantees it is reaped before returning.
type Runner struct {
	// Command builds the worker process. The default re-executes this binary
	// with the hidden worker subcommand.
	Command func(ctx context.Context) *exec.Cmd
}

// NewRunner returns a Runner spawning this binary's worker subcommand.
func NewRunner() *Runner {
	return &Runner{Command: defaultWorkerCommand}
}

func defaultWorkerCommand(ctx context.Context) *exec.Cmd {
	executable, err := os.Executable()
	if err != nil {
		executable = os.Args[0]
	}
	cmd := exec.CommandContext(ctx, executable, "worker")
	cmd.Env = os.Environ()
	return cmd
}

// Run serializes the input to a worker, waits up to OverallTimeout, and
// classifies the result. Non-completed outcomes are never fatal; callers
// convert them into pair-level disqualifications.
func (r *Runner) Run(ctx context.Context, in WorkerInput) Outcome {
	payload, err := json.Marshal(in)
	if err != nil {
		return Outcome{State: OutcomeDecodingFailed, Message: fmt.Sprintf("encode worker input: %v", err)}
	}

	timeout := OverallTimeout(in)
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := r.Command(runCtx)
	cmd.Stdin = bytes.NewReader(payload)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	logging.LogEvent("Starting %s worker for %s (deadline %s)", in.Phase, in.Model, timeout)
	runErr := cmd.Run()

	if runCtx.Err() == context.DeadlineExceeded {
		return Outcome{State: OutcomeTimedOut, Message: fmt.Sprintf("exceeded %s", timeout)}
	}

	if runErr != nil {
		outcome := Outcome{State: OutcomeCrashed, ExitCode: -1, Message: runErr.Error()}
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			outcome.ExitCode = exitErr.ExitCode()
			if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
				outcome.Signal = status.Signal().String()
			}
		}
		return outcome
	}

	var out WorkerOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return Outcome{State: OutcomeDecodingFailed, Message: err.Error()}
	}
	if !out.Matches(in) {
		return Outcome{State: OutcomeDecodingFailed, Message: fmt.Sprintf("output does not carry a %s result", in.Phase)}
	}
	return Outcome{State: OutcomeCompleted, Output: out}
}
