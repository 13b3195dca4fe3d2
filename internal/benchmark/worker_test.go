package benchmark

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/pairbench/pairbench/internal/appconfig"
	"github.com/pairbench/pairbench/internal/providers"
)

func workerDeps(visual *mockVisualFactory, text *mockTextFactory) WorkerDeps {
	return WorkerDeps{
		NewVisualFactory: func(cfg appconfig.Config) providers.VisualFactory { return visual },
		NewTextFactory:   func(cfg appconfig.Config) providers.TextFactory { return text },
		Render:           stubRender,
	}
}

func encodeInput(t *testing.T, in WorkerInput) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(in); err != nil {
		t.Fatalf("encode input: %v", err)
	}
	return &buf
}

func TestRunWorkerVisualPhase(t *testing.T) {
	visual := &mockVisualFactory{provider: &mockVisualProvider{response: "yes"}}
	in := WorkerInput{
		Phase:          PhaseVisual,
		Model:          "vlm",
		PositivePDFs:   []string{"pos1.pdf"},
		NegativePDFs:   []string{"neg1.pdf"},
		TimeoutSeconds: 5,
		DocumentType:   "invoice",
	}

	var out bytes.Buffer
	if err := RunWorker(context.Background(), encodeInput(t, in), &out, workerDeps(visual, &mockTextFactory{})); err != nil {
		t.Fatalf("RunWorker returned error: %v", err)
	}

	var decoded WorkerOutput
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if !decoded.Matches(in) {
		t.Fatal("output must carry a visual result")
	}
	if decoded.Visual.TruePositives != 1 || decoded.Visual.FalsePositives != 1 {
		t.Fatalf("unexpected result: %+v", decoded.Visual)
	}
}

func TestRunWorkerTextPhase(t *testing.T) {
	text := &mockTextFactory{provider: &mockTextProvider{response: "ja"}}
	in := WorkerInput{
		Phase:          PhaseText,
		Model:          "llm",
		PositivePDFs:   []string{"pos1.pdf"},
		TimeoutSeconds: 5,
		DocumentType:   "invoice",
		ExtractedTexts: map[string]string{"pos1.pdf": "Rechnung"},
		GroundTruth:    truthFor("pos1.pdf"),
	}

	var out bytes.Buffer
	if err := RunWorker(context.Background(), encodeInput(t, in), &out, workerDeps(&mockVisualFactory{}, text)); err != nil {
		t.Fatalf("RunWorker returned error: %v", err)
	}

	var decoded WorkerOutput
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if decoded.Text == nil || len(decoded.Text.DocumentResults) != 1 {
		t.Fatalf("unexpected output: %+v", decoded)
	}
}

func TestRunWorkerRejectsBadInput(t *testing.T) {
	deps := workerDeps(&mockVisualFactory{}, &mockTextFactory{})

	var out bytes.Buffer
	if err := RunWorker(context.Background(), strings.NewReader("not json"), &out, deps); err == nil {
		t.Fatal("expected error for malformed input")
	}

	in := WorkerInput{Phase: "audio", Model: "m"}
	if err := RunWorker(context.Background(), encodeInput(t, in), &out, deps); err == nil {
		t.Fatal("expected error for unknown phase")
	}
}
