// internal/groundtruth/groundtruth.go
// Package groundtruth owns the sidecar records describing the expected label
// and extracted fields for each corpus document.
package groundtruth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrSidecarNotFound is returned by Load when a document has no sidecar.
var ErrSidecarNotFound = errors.New("ground truth sidecar not found")

// Metadata records how a ground truth entry was produced.
// Fields are declared in sorted JSON-key order so sidecars diff deterministically.
type Metadata struct {
	GeneratedAt string `json:"generatedAt,omitempty"`
	TextModel   string `json:"textModel,omitempty"`
	Verified    bool   `json:"verified"`
	VLMModel    string `json:"vlmModel,omitempty"`
}

// GroundTruth is the expected label and extraction fields for one document.
// Fields are declared in sorted JSON-key order so sidecars diff deterministically.
type GroundTruth struct {
	Date           *string  `json:"date,omitempty"`
	DocumentType   string   `json:"documentType"`
	IsMatch        bool     `json:"isMatch"`
	Metadata       Metadata `json:"metadata"`
	PatientName    *string  `json:"patientName,omitempty"`
	SecondaryField *string  `json:"secondaryField,omitempty"`
}

// sidecarSchema structurally validates decoded sidecars: the two label fields
// are required and the document type is one of the supported corpus types.
var sidecarSchema = map[string]any{
	"type":     "object",
	"required": []string{"isMatch", "documentType"},
	"properties": map[string]any{
		"isMatch": map[string]any{"type": "boolean"},
		"documentType": map[string]any{
			"type": "string",
			"enum": []string{"invoice", "prescription"},
		},
		"date":           map[string]any{"type": []string{"string", "null"}},
		"secondaryField": map[string]any{"type": []string{"string", "null"}},
		"patientName":    map[string]any{"type": []string{"string", "null"}},
		"metadata":       map[string]any{"type": "object"},
	},
}

// SidecarPath returns the sidecar location for a document: the document path plus ".json".
func SidecarPath(documentPath string) string {
	return documentPath + ".json"
}

// Load reads and validates the sidecar for the given document path.
func Load(documentPath string) (GroundTruth, error) {
	path := SidecarPath(documentPath)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return GroundTruth{}, fmt.Errorf("%w: %s", ErrSidecarNotFound, path)
		}
		return GroundTruth{}, fmt.Errorf("read sidecar %s: %w", path, err)
	}

	if err := validateSidecar(data); err != nil {
		return GroundTruth{}, fmt.Errorf("invalid sidecar %s: %w", path, err)
	}

	var gt GroundTruth
	if err := json.Unmarshal(data, &gt); err != nil {
		return GroundTruth{}, fmt.Errorf("parse sidecar %s: %w", path, err)
	}
	return gt, nil
}

// Save writes the sidecar for the given document path as pretty JSON.
func Save(documentPath string, gt GroundTruth) error {
	data, err := json.MarshalIndent(gt, "", "  ")
	if err != nil {
		return fmt.Errorf("encode sidecar: %w", err)
	}
	path := SidecarPath(documentPath)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write sidecar %s: %w", path, err)
	}
	return nil
}

// Exists reports whether a sidecar is present for the document.
func Exists(documentPath string) bool {
	_, err := os.Stat(SidecarPath(documentPath))
	return err == nil
}

// LoadAll loads every available sidecar for the given documents, keyed by
// document path. Documents without a sidecar are omitted; a malformed sidecar
// is an error.
func LoadAll(documentPaths []string) (map[string]GroundTruth, error) {
	truths := make(map[string]GroundTruth, len(documentPaths))
	for _, path := range documentPaths {
		gt, err := Load(path)
		if err != nil {
			if errors.Is(err, ErrSidecarNotFound) {
				continue
			}
			return nil, err
		}
		truths[path] = gt
	}
	return truths, nil
}

func validateSidecar(data []byte) error {
	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(sidecarSchema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}
	var details []string
	for _, desc := range result.Errors() {
		details = append(details, desc.String())
	}
	return fmt.Errorf("sidecar failed validation: %s", strings.Join(details, "; "))
}
