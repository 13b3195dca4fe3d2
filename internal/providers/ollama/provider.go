// internal/providers/ollama/provider.go
// Package ollama implements the provider and factory interfaces against an
// Ollama server's HTTP API.
package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pairbench/pairbench/internal/providers"
)

// defaultKeepAlive keeps a preloaded model resident between document calls.
const defaultKeepAlive = "10m"

// Client issues requests against one Ollama server.
type Client struct {
	baseURL        string
	client         *http.Client
	requestTimeout time.Duration
}

// NewClient creates a Client for the given base URL.
func NewClient(baseURL string, requestTimeout time.Duration) *Client {
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		client:         &http.Client{},
		requestTimeout: requestTimeout,
	}
}

type generateRequest struct {
	Model     string         `json:"model"`
	Prompt    string         `json:"prompt,omitempty"`
	System    string         `json:"system,omitempty"`
	Images    []string       `json:"images,omitempty"`
	Format    string         `json:"format,omitempty"`
	Stream    bool           `json:"stream"`
	KeepAlive any            `json:"keep_alive,omitempty"`
	Options   map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// generate posts a non-streaming request to /api/generate and returns the response text.
func (c *Client) generate(ctx context.Context, req generateRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	if c.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama request failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("parse ollama response: %w", err)
	}
	return decoded.Response, nil
}

// load asks the server to load a model into memory without generating.
func (c *Client) load(ctx context.Context, model string) error {
	_, err := c.generate(ctx, generateRequest{Model: model, KeepAlive: defaultKeepAlive})
	if err != nil {
		return fmt.Errorf("load model %s: %w", model, err)
	}
	return nil
}

// unload asks the server to evict a model immediately.
func (c *Client) unload(model string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_, _ = c.generate(ctx, generateRequest{Model: model, KeepAlive: 0})
}

// VisualProvider runs yes/no categorization prompts against a vision model.
type VisualProvider struct {
	client *Client
	model  string
}

// GenerateFromImage sends a rendered page and prompt to the vision model.
// An empty model argument uses the preloaded model.
func (p *VisualProvider) GenerateFromImage(ctx context.Context, image []byte, prompt, model string) (string, error) {
	if model == "" {
		model = p.model
	}
	return p.client.generate(ctx, generateRequest{
		Model:     model,
		Prompt:    prompt,
		Images:    []string{base64.StdEncoding.EncodeToString(image)},
		Stream:    false,
		KeepAlive: defaultKeepAlive,
	})
}

// TextProvider runs categorization and extraction against a text model.
type TextProvider struct {
	client    *Client
	model     string
	maxTokens int
}

// Generate sends a system/user prompt pair to the text model.
func (p *TextProvider) Generate(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = p.maxTokens
	}
	return p.client.generate(ctx, generateRequest{
		Model:     p.model,
		System:    systemPrompt,
		Prompt:    userPrompt,
		Stream:    false,
		KeepAlive: defaultKeepAlive,
		Options:   map[string]any{"num_predict": maxTokens},
	})
}

const extractionSystemPrompt = "You extract structured data from documents. Respond with a single JSON object and nothing else."

// ExtractData asks the model for the document's date, secondary field, and
// patient name as JSON and maps absent values to nil.
func (p *TextProvider) ExtractData(ctx context.Context, documentType, text string) (providers.ExtractedFields, error) {
	secondaryLabel := "the issuing company"
	if documentType == "prescription" {
		secondaryLabel = "the prescribing doctor"
	}

	userPrompt := fmt.Sprintf(
		"Extract from the following %s text:\n"+
			"- \"date\": the document date as yyyy-MM-dd\n"+
			"- \"secondaryField\": %s\n"+
			"- \"patientName\": the patient or customer name\n"+
			"Use null for anything not present.\n\n%s",
		documentType, secondaryLabel, text,
	)

	raw, err := p.client.generate(ctx, generateRequest{
		Model:     p.model,
		System:    extractionSystemPrompt,
		Prompt:    userPrompt,
		Format:    "json",
		Stream:    false,
		KeepAlive: defaultKeepAlive,
		Options:   map[string]any{"num_predict": p.maxTokens},
	})
	if err != nil {
		return providers.ExtractedFields{}, err
	}

	var decoded struct {
		Date           string `json:"date"`
		SecondaryField string `json:"secondaryField"`
		PatientName    string `json:"patientName"`
	}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return providers.ExtractedFields{}, fmt.Errorf("parse extraction response: %w", err)
	}

	return providers.ExtractedFields{
		Date:           optional(decoded.Date),
		SecondaryField: optional(decoded.SecondaryField),
		PatientName:    optional(decoded.PatientName),
	}, nil
}

func optional(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || strings.EqualFold(trimmed, "null") {
		return nil
	}
	return &trimmed
}

// VisualFactory manages the lifecycle of one vision model on an Ollama server.
type VisualFactory struct {
	client *Client

	mu     sync.Mutex
	model  string
	loaded bool
}

// NewVisualFactory creates a factory bound to the given client.
func NewVisualFactory(client *Client) *VisualFactory {
	return &VisualFactory{client: client}
}

// Preload loads the model into server memory.
func (f *VisualFactory) Preload(ctx context.Context, model string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.client.load(ctx, model); err != nil {
		return err
	}
	f.model = model
	f.loaded = true
	return nil
}

// Provider returns the preloaded provider, or false when no model is loaded.
func (f *VisualFactory) Provider() (providers.VisualProvider, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.loaded {
		return nil, false
	}
	return &VisualProvider{client: f.client, model: f.model}, true
}

// Release evicts the model. Safe to call repeatedly and after a failed preload.
func (f *VisualFactory) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.loaded {
		return
	}
	f.client.unload(f.model)
	f.loaded = false
}

// TextFactory manages the lifecycle of one text model on an Ollama server.
type TextFactory struct {
	client    *Client
	maxTokens int

	mu     sync.Mutex
	model  string
	loaded bool
}

// NewTextFactory creates a factory bound to the given client.
func NewTextFactory(client *Client, maxTokens int) *TextFactory {
	return &TextFactory{client: client, maxTokens: maxTokens}
}

// Preload loads the model into server memory.
func (f *TextFactory) Preload(ctx context.Context, model string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.client.load(ctx, model); err != nil {
		return err
	}
	f.model = model
	f.loaded = true
	return nil
}

// Provider returns the preloaded provider, or false when no model is loaded.
func (f *TextFactory) Provider() (providers.TextProvider, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.loaded {
		return nil, false
	}
	return &TextProvider{client: f.client, model: f.model, maxTokens: f.maxTokens}, true
}

// Release evicts the model. Safe to call repeatedly and after a failed preload.
func (f *TextFactory) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.loaded {
		return
	}
	f.client.unload(f.model)
	f.loaded = false
}
