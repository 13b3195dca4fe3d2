// Package providerfactory builds the Ollama-backed provider factories from
// the application config. It is the only place the engine's provider
// interfaces meet a concrete runtime.
package providerfactory

import (
	"github.com/pairbench/pairbench/internal/appconfig"
	"github.com/pairbench/pairbench/internal/providers"
	"github.com/pairbench/pairbench/internal/providers/ollama"
)

// NewVisualFactory returns a factory for the configured model host.
func NewVisualFactory(cfg appconfig.Config) providers.VisualFactory {
	return ollama.NewVisualFactory(newClient(cfg))
}

// NewTextFactory returns a factory for the configured model host.
func NewTextFactory(cfg appconfig.Config) providers.TextFactory {
	return ollama.NewTextFactory(newClient(cfg), cfg.MaxCompletionTokens())
}

func newClient(cfg appconfig.Config) *ollama.Client {
	return ollama.NewClient(cfg.HostURL, cfg.RequestTimeout())
}
