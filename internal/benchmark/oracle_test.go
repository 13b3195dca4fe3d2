package benchmark

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pairbench/pairbench/internal/providers"
)

func testOracle(visual *mockVisualFactory, text *mockTextFactory) *Oracle {
	return NewOracle(OracleOptions{
		VisualFactory: visual,
		TextFactory:   text,
		VisualModel:   "vlm",
		TextModel:     "llm",
		DocumentType:  "prescription",
		Timeout:       time.Second,
		Render:        stubRender,
	})
}

func TestOracleDetectPositive(t *testing.T) {
	visual := &mockVisualFactory{provider: &mockVisualProvider{response: "yes"}}
	text := &mockTextFactory{provider: &mockTextProvider{fields: providers.ExtractedFields{
		Date:        strPtr("2025-06-27"),
		PatientName: strPtr("Max Mustermann"),
	}}}
	oracle := testOracle(visual, text)

	if err := oracle.Preload(context.Background()); err != nil {
		t.Fatalf("preload failed: %v", err)
	}
	defer oracle.Release()

	detection, err := oracle.Detect(context.Background(), "doc.pdf", "Rezept")
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if !detection.IsMatch {
		t.Fatal("expected a positive detection")
	}
	if detection.Date == nil || *detection.Date != "2025-06-27" {
		t.Fatalf("unexpected date: %v", detection.Date)
	}
	if detection.PatientName == nil || *detection.PatientName != "Max Mustermann" {
		t.Fatalf("unexpected patient name: %v", detection.PatientName)
	}
}

func TestOracleDetectNegativeSkipsExtraction(t *testing.T) {
	visual := &mockVisualFactory{provider: &mockVisualProvider{response: "no"}}
	text := &mockTextFactory{provider: &mockTextProvider{extractErr: errors.New("must not be called")}}
	oracle := testOracle(visual, text)

	if err := oracle.Preload(context.Background()); err != nil {
		t.Fatalf("preload failed: %v", err)
	}
	defer oracle.Release()

	detection, err := oracle.Detect(context.Background(), "doc.pdf", "Fahrplan")
	if err != nil {
		t.Fatalf("negative detection must not extract: %v", err)
	}
	if detection.IsMatch || detection.Date != nil {
		t.Fatalf("unexpected detection: %+v", detection)
	}
}

func TestOracleSurfacesErrors(t *testing.T) {
	visual := &mockVisualFactory{provider: &mockVisualProvider{err: errors.New("inference failed")}}
	oracle := testOracle(visual, &mockTextFactory{})

	if err := oracle.Preload(context.Background()); err != nil {
		t.Fatalf("preload failed: %v", err)
	}
	defer oracle.Release()

	if _, err := oracle.Detect(context.Background(), "doc.pdf", "text"); !errors.Is(err, ErrInference) {
		t.Fatalf("expected ErrInference, got %v", err)
	}
}

func TestOraclePreloadFailure(t *testing.T) {
	visual := &mockVisualFactory{preloadErr: errors.New("model missing")}
	oracle := testOracle(visual, &mockTextFactory{})

	if err := oracle.Preload(context.Background()); !errors.Is(err, ErrModelLoad) {
		t.Fatalf("expected ErrModelLoad, got %v", err)
	}
}
