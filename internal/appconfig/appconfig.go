// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// defaultDocumentTimeout is the per-document inference timeout in seconds.
	defaultDocumentTimeout = 30.0
	// defaultRequestTimeout is the default timeout for host HTTP requests.
	defaultRequestTimeout = 600 * time.Second
	// defaultMaxTokens bounds text-model completions during categorization and extraction.
	defaultMaxTokens = 512
)

const (
	// DocumentTypeInvoice and DocumentTypePrescription are the supported corpus types.
	DocumentTypeInvoice      = "invoice"
	DocumentTypePrescription = "prescription"
)

// Config represents the top-level application configuration.
type Config struct {
	HostURL           string   `json:"hostUrl"`
	DocumentType      string   `json:"documentType"`
	PositiveDir       string   `json:"positiveDir"`
	NegativeDir       string   `json:"negativeDir"`
	VisualModels      []string `json:"visualModels"`
	TextModels        []string `json:"textModels"`
	OracleVisualModel string   `json:"oracleVisualModel,omitempty"`
	OracleTextModel   string   `json:"oracleTextModel,omitempty"`
	TimeoutSeconds    float64  `json:"timeout,omitempty" mapstructure:"timeout"`
	MaxTokens         int      `json:"maxTokens,omitempty"`
	SkipExisting      bool     `json:"skipExisting"`
	MemoryHeadroom    float64  `json:"memoryHeadroom,omitempty"`
	ModelCacheDir     string   `json:"modelCacheDir,omitempty"`
	LogFile           string   `json:"logFile,omitempty"`
	Debug             bool     `json:"debug"`
	Progress          bool     `json:"progress"`
	ConfigPath        string   `json:"-"`
}

// DocumentTimeout returns the per-document inference timeout.
func (c Config) DocumentTimeout() time.Duration {
	return time.Duration(c.DocumentTimeoutSeconds() * float64(time.Second))
}

// DocumentTimeoutSeconds returns the per-document timeout in seconds, applying the default.
func (c Config) DocumentTimeoutSeconds() float64 {
	if c.TimeoutSeconds <= 0 {
		return defaultDocumentTimeout
	}
	return c.TimeoutSeconds
}

// RequestTimeout returns the timeout duration for host HTTP requests.
func (c Config) RequestTimeout() time.Duration {
	return defaultRequestTimeout
}

// MaxCompletionTokens returns the completion-token cap, applying the default.
func (c Config) MaxCompletionTokens() int {
	if c.MaxTokens <= 0 {
		return defaultMaxTokens
	}
	return c.MaxTokens
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return "pairbench.log"
}

// Validate checks the configuration for values the benchmark cannot proceed without.
func (c Config) Validate() error {
	switch c.DocumentType {
	case DocumentTypeInvoice, DocumentTypePrescription:
	case "":
		return errors.New("config must set documentType")
	default:
		return fmt.Errorf("unsupported documentType %q (expected %q or %q)", c.DocumentType, DocumentTypeInvoice, DocumentTypePrescription)
	}
	if strings.TrimSpace(c.PositiveDir) == "" && strings.TrimSpace(c.NegativeDir) == "" {
		return errors.New("config must set positiveDir or negativeDir")
	}
	if c.MemoryHeadroom < 0 || c.MemoryHeadroom > 1 {
		return fmt.Errorf("memoryHeadroom %v out of range (0,1]", c.MemoryHeadroom)
	}
	return nil
}

// Load reads the application configuration from the specified path.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	config, err := loadFromPath(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("no configuration file found at %q", path)
		}
		return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
	}

	config.ConfigPath = path
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// loadFromPath is a helper function that loads the configuration from a specific file path.
func loadFromPath(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	if err := json.NewDecoder(file).Decode(&config); err != nil {
		return Config{}, err
	}
	if config.TimeoutSeconds <= 0 {
		config.TimeoutSeconds = defaultDocumentTimeout
	}

	return config, nil
}
