// internal/benchmark/errors.go
package benchmark

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrModelLoad marks a model preload failure; surfaced as a pair-level disqualification.
	ErrModelLoad = errors.New("model load failed")
	// ErrInference marks a per-document inference failure; absorbed into a zero score.
	ErrInference = errors.New("inference error")
	// ErrTimeout marks a per-document or worker-level timeout.
	ErrTimeout = errors.New("timeout")
	// ErrDecoding marks an unparsable worker payload.
	ErrDecoding = errors.New("decoding failed")
	// ErrInsufficientMemory marks a pair rejected by the memory gate.
	ErrInsufficientMemory = errors.New("insufficient memory")
	// ErrBenchmark marks corpus-level failures that abort the sweep.
	ErrBenchmark = errors.New("benchmark error")
)

func isDeadlineExceeded(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrTimeout) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "context deadline exceeded")
}
