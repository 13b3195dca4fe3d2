// internal/memory/memory.go
// Package memory predicts the resident footprint of candidate models from
// their names and gates pairs against the machine's physical memory.
package memory

import (
	"bufio"
	"os"
	"regexp"
	"strconv"
	"strings"
)

const (
	// DefaultHeadroom is the fraction of physical memory considered usable.
	DefaultHeadroom = 0.8
	// runtimeOverhead accounts for KV cache and runtime buffers on top of weights.
	runtimeOverhead = 1.2
	// fallbackPhysicalMB is used when the physical memory probe fails.
	fallbackPhysicalMB = 16384
)

var (
	paramTokenRe = regexp.MustCompile(`(\d+)B`)
	quantTokenRe = regexp.MustCompile(`(\d+)bit`)
)

// Estimator estimates model memory requirements and host availability.
// The zero value is not usable; construct with NewEstimator.
type Estimator struct {
	headroom   float64
	physicalMB func() int
}

// Option adjusts an Estimator.
type Option func(*Estimator)

// WithHeadroom overrides the usable fraction of physical memory.
func WithHeadroom(headroom float64) Option {
	return func(e *Estimator) {
		if headroom > 0 {
			e.headroom = headroom
		}
	}
}

// WithPhysicalMemoryMB overrides the physical memory probe, in MB.
func WithPhysicalMemoryMB(probe func() int) Option {
	return func(e *Estimator) {
		if probe != nil {
			e.physicalMB = probe
		}
	}
}

// NewEstimator returns an Estimator with the default headroom and a
// /proc/meminfo-backed physical memory probe.
func NewEstimator(opts ...Option) *Estimator {
	e := &Estimator{
		headroom:   DefaultHeadroom,
		physicalMB: physicalMemoryMB,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EstimateModelMB estimates the resident footprint of a single model from its
// name. Names without a parseable parameter-count token contribute 0: unknown
// models are assumed free, the gate only fails closed on known-large models.
func (e *Estimator) EstimateModelMB(modelName string) int {
	name := strings.TrimSpace(modelName)
	if name == "" {
		return 0
	}

	matches := paramTokenRe.FindAllStringSubmatch(name, -1)
	if len(matches) == 0 {
		return 0
	}
	// The parameter count is conventionally the last sized token in the name
	// (e.g. "Qwen2-VL-7B-Instruct-4bit").
	params, err := strconv.Atoi(matches[len(matches)-1][1])
	if err != nil || params <= 0 {
		return 0
	}

	bytesPerParam := 2.0 // fp16 unless a quantization token says otherwise
	if quant := quantTokenRe.FindStringSubmatch(strings.ToLower(name)); quant != nil {
		if bits, err := strconv.Atoi(quant[1]); err == nil && bits > 0 && bits < 16 {
			bytesPerParam = float64(bits) / 8.0
		}
	}

	return int(float64(params) * bytesPerParam * 1000 * runtimeOverhead)
}

// EstimateMemoryMB estimates the combined footprint of a model pair.
func (e *Estimator) EstimateMemoryMB(visualModelName, textModelName string) int {
	return e.EstimateModelMB(visualModelName) + e.EstimateModelMB(textModelName)
}

// AvailableMemoryMB reports how much memory the benchmark may claim:
// physical memory scaled by the headroom factor.
func (e *Estimator) AvailableMemoryMB() int {
	return int(float64(e.physicalMB()) * e.headroom)
}

// FitsInMemory reports whether the pair's estimated footprint fits under the
// availability ceiling.
func (e *Estimator) FitsInMemory(visualModelName, textModelName string) bool {
	return e.EstimateMemoryMB(visualModelName, textModelName) <= e.AvailableMemoryMB()
}

// physicalMemoryMB reads total physical memory from /proc/meminfo, falling
// back to a conservative constant on platforms or failures where it is absent.
func physicalMemoryMB() int {
	file, err := os.Open("/proc/meminfo")
	if err != nil {
		return fallbackPhysicalMB
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "MemTotal:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			break
		}
		kb, err := strconv.Atoi(fields[1])
		if err != nil {
			break
		}
		return kb / 1024
	}
	return fallbackPhysicalMB
}
