package groundtruth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }

func tempDocument(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scan-001.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("write document: %v", err)
	}
	return path
}

func TestSidecarPath(t *testing.T) {
	if got := SidecarPath("corpus/positive/scan.pdf"); got != "corpus/positive/scan.pdf.json" {
		t.Fatalf("SidecarPath: %s", got)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	doc := tempDocument(t)
	gt := GroundTruth{
		Date:           strPtr("2025-06-27"),
		DocumentType:   "invoice",
		IsMatch:        true,
		SecondaryField: strPtr("DB Fernverkehr AG"),
		Metadata:       Metadata{VLMModel: "org/VL-7B-4bit", Verified: false},
	}
	if err := Save(doc, gt); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(doc)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.DocumentType != "invoice" || !loaded.IsMatch {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}
	if loaded.Date == nil || *loaded.Date != "2025-06-27" {
		t.Fatalf("date mismatch: %+v", loaded.Date)
	}
}

func TestSaveWritesSortedPrettyKeys(t *testing.T) {
	doc := tempDocument(t)
	gt := GroundTruth{
		Date:           strPtr("2025-06-27"),
		DocumentType:   "prescription",
		IsMatch:        true,
		PatientName:    strPtr("Max Mustermann"),
		SecondaryField: strPtr("Dr. Meier"),
	}
	if err := Save(doc, gt); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(SidecarPath(doc))
	if err != nil {
		t.Fatalf("read sidecar: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "\n  \"date\"") {
		t.Fatalf("expected pretty-printed output: %s", content)
	}
	keys := []string{"\"date\"", "\"documentType\"", "\"isMatch\"", "\"metadata\"", "\"patientName\"", "\"secondaryField\""}
	last := -1
	for _, key := range keys {
		idx := strings.Index(content, key)
		if idx < 0 {
			t.Fatalf("missing key %s in %s", key, content)
		}
		if idx < last {
			t.Fatalf("keys out of lexicographic order: %s", content)
		}
		last = idx
	}
}

func TestLoadMissingSidecar(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "absent.pdf")
	_, err := Load(doc)
	if !errors.Is(err, ErrSidecarNotFound) {
		t.Fatalf("expected ErrSidecarNotFound, got %v", err)
	}
}

func TestLoadRejectsMalformedSidecar(t *testing.T) {
	doc := tempDocument(t)
	if err := os.WriteFile(SidecarPath(doc), []byte(`{"documentType": "contract", "isMatch": "yes"}`), 0o644); err != nil {
		t.Fatalf("write sidecar: %v", err)
	}
	if _, err := Load(doc); err == nil {
		t.Fatalf("expected validation error for malformed sidecar")
	}
}

type stubDetector struct {
	detection Detection
	err       error
	calls     []string
}

func (d *stubDetector) Detect(_ context.Context, documentPath, _ string) (Detection, error) {
	d.calls = append(d.calls, documentPath)
	if d.err != nil {
		return Detection{}, d.err
	}
	return d.detection, nil
}

func TestGenerateCreatesSidecars(t *testing.T) {
	pos := tempDocument(t)
	neg := tempDocument(t)
	detector := &stubDetector{detection: Detection{IsMatch: true, Date: strPtr("2025-06-27")}}

	summary, err := Generate(context.Background(), detector, GenerateOptions{
		PositivePDFs: []string{pos},
		NegativePDFs: []string{neg},
		DocumentType: "invoice",
		VLMModel:     "org/VL-7B-4bit",
		TextModel:    "org/LM-2B-4bit",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if summary.Generated != 2 {
		t.Fatalf("expected 2 generated, got %+v", summary)
	}

	gt, err := Load(pos)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if gt.Metadata.Verified {
		t.Fatalf("generated records must default to unverified")
	}
	if gt.Metadata.VLMModel != "org/VL-7B-4bit" || gt.Metadata.GeneratedAt == "" {
		t.Fatalf("metadata not stamped: %+v", gt.Metadata)
	}
}

func TestGenerateSkipExistingIsPathBased(t *testing.T) {
	doc := tempDocument(t)
	// Existing but unverified sidecar: skipExisting must still preserve it.
	if err := Save(doc, GroundTruth{DocumentType: "invoice", IsMatch: false}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	detector := &stubDetector{detection: Detection{IsMatch: true}}
	summary, err := Generate(context.Background(), detector, GenerateOptions{
		PositivePDFs: []string{doc},
		DocumentType: "invoice",
		SkipExisting: true,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if summary.Skipped != 1 || len(detector.calls) != 0 {
		t.Fatalf("expected untouched skip without detector call: %+v calls=%d", summary, len(detector.calls))
	}

	gt, _ := Load(doc)
	if gt.IsMatch {
		t.Fatalf("existing sidecar was overwritten despite skipExisting")
	}
}

func TestGenerateNeverOverwritesVerified(t *testing.T) {
	doc := tempDocument(t)
	if err := Save(doc, GroundTruth{DocumentType: "invoice", IsMatch: false, Metadata: Metadata{Verified: true}}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	detector := &stubDetector{detection: Detection{IsMatch: true}}
	summary, err := Generate(context.Background(), detector, GenerateOptions{
		PositivePDFs: []string{doc},
		DocumentType: "invoice",
		SkipExisting: false,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if summary.Preserved != 1 {
		t.Fatalf("expected verified record preserved: %+v", summary)
	}

	gt, _ := Load(doc)
	if gt.IsMatch || !gt.Metadata.Verified {
		t.Fatalf("verified sidecar was overwritten: %+v", gt)
	}
}

func TestGenerateReplacesUnverified(t *testing.T) {
	doc := tempDocument(t)
	if err := Save(doc, GroundTruth{DocumentType: "invoice", IsMatch: false}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	detector := &stubDetector{detection: Detection{IsMatch: true}}
	if _, err := Generate(context.Background(), detector, GenerateOptions{
		PositivePDFs: []string{doc},
		DocumentType: "invoice",
	}); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	gt, _ := Load(doc)
	if !gt.IsMatch {
		t.Fatalf("unverified sidecar should have been regenerated: %+v", gt)
	}
}

func TestLoadAll(t *testing.T) {
	withSidecar := tempDocument(t)
	if err := Save(withSidecar, GroundTruth{IsMatch: true, DocumentType: "invoice"}); err != nil {
		t.Fatalf("save sidecar: %v", err)
	}
	withoutSidecar := tempDocument(t)

	truths, err := LoadAll([]string{withSidecar, withoutSidecar})
	if err != nil {
		t.Fatalf("LoadAll returned error: %v", err)
	}
	if len(truths) != 1 {
		t.Fatalf("expected one entry, got %d", len(truths))
	}
	if !truths[withSidecar].IsMatch {
		t.Fatalf("unexpected entry: %+v", truths[withSidecar])
	}

	malformed := tempDocument(t)
	if err := os.WriteFile(SidecarPath(malformed), []byte(`{"isMatch":true}`), 0o644); err != nil {
		t.Fatalf("write malformed sidecar: %v", err)
	}
	if _, err := LoadAll([]string{malformed}); err == nil {
		t.Fatal("expected error for malformed sidecar")
	}
}
