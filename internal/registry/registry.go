// Package registry discovers candidate model names from a Hugging Face style
// model registry and resolves where their weights are cached locally.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultBaseURL = "https://huggingface.co"

// Model is one registry entry.
type Model struct {
	ID        string `json:"id"`
	Downloads int    `json:"downloads"`
	Likes     int    `json:"likes"`
}

// Client queries the model registry over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a registry client. An empty baseURL selects the public
// registry endpoint.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ListModels searches the registry for models matching the query, most
// downloaded first.
func (c *Client) ListModels(ctx context.Context, query string, limit int) ([]Model, error) {
	if limit <= 0 {
		limit = 20
	}
	endpoint := fmt.Sprintf("%s/api/models?search=%s&sort=downloads&direction=-1&limit=%d",
		c.baseURL, url.QueryEscape(query), limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create registry request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registry request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry returned status %d", resp.StatusCode)
	}

	var models []Model
	if err := json.NewDecoder(resp.Body).Decode(&models); err != nil {
		return nil, fmt.Errorf("failed to decode registry response: %w", err)
	}
	return models, nil
}

// CacheDirName maps a model name to its cache directory name, following the
// hub convention: "org/Model-7B" becomes "models--org--Model-7B".
func CacheDirName(model string) string {
	return "models--" + strings.ReplaceAll(model, "/", "--")
}

// ResolveCacheRoot resolves the local model cache root. Lookup order:
// the PAIRBENCH_MODEL_CACHE override, then HF_HOME with a hub suffix, then
// the hub's default under the user cache directory. The environment is read
// through getenv so callers can inject a fixed view.
func ResolveCacheRoot(getenv func(string) string) (string, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if override := getenv("PAIRBENCH_MODEL_CACHE"); override != "" {
		return override, nil
	}
	if hfHome := getenv("HF_HOME"); hfHome != "" {
		return filepath.Join(hfHome, "hub"), nil
	}
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user cache directory: %w", err)
	}
	return filepath.Join(cacheDir, "huggingface", "hub"), nil
}
