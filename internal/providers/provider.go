// internal/providers/provider.go

// Package providers defines the interfaces the benchmark engine uses to talk
// to model runtimes. The engine depends only on these interfaces; the real
// Ollama-backed implementations and the test doubles both satisfy them.
package providers

import "context"

// ExtractedFields is the structured output of a text model's extraction step.
// Absent fields are nil, never empty strings.
type ExtractedFields struct {
	Date           *string `json:"date,omitempty"`
	SecondaryField *string `json:"secondaryField,omitempty"`
	PatientName    *string `json:"patientName,omitempty"`
}

// VisualProvider categorizes a rendered document page. The model parameter may
// be empty, in which case the provider uses the model it was preloaded with.
// Calls may fail or hang; callers enforce their own timeouts.
type VisualProvider interface {
	GenerateFromImage(ctx context.Context, image []byte, prompt, model string) (string, error)
}

// TextProvider categorizes and extracts from OCR text.
type TextProvider interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error)
	ExtractData(ctx context.Context, documentType, text string) (ExtractedFields, error)
}

// VisualFactory manages the lifecycle of one visual model. Preload and Release
// are independent of any other factory; Release must be safe to call on every
// exit path, including after a failed preload.
type VisualFactory interface {
	Preload(ctx context.Context, model string) error
	Provider() (VisualProvider, bool)
	Release()
}

// TextFactory manages the lifecycle of one text model.
type TextFactory interface {
	Preload(ctx context.Context, model string) error
	Provider() (TextProvider, bool)
	Release()
}
