// Package file provides file-based application configuration using TOML.
//
// Secrets are never stored here: API keys are read from the environment
// at process start. The config file only carries non-sensitive tuning
// (chunk sizes, provider URLs, model names, collection name).
package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Provider names accepted in the embedding and llm sections.
const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

// Config is the root application configuration.
type Config struct {
	Chunking  ChunkingConfig  `toml:"chunking"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Embedding ProviderConfig  `toml:"embedding"`
	LLM       ProviderConfig  `toml:"llm"`
	Chroma    ChromaConfig    `toml:"chroma"`
}

// ChunkingConfig controls how documents are split.
type ChunkingConfig struct {
	// Size is the target chunk size in characters.
	Size int `toml:"size"`

	// Overlap is the number of characters shared between consecutive
	// chunks.
	Overlap int `toml:"overlap"`
}

// RetrievalConfig controls nearest-neighbour retrieval.
type RetrievalConfig struct {
	// TopK is the number of chunks retrieved per question.
	TopK int `toml:"top_k"`
}

// ProviderConfig selects and configures a model provider.
type ProviderConfig struct {
	// Provider is "gemini" or "ollama".
	Provider string `toml:"provider"`

	// BaseURL overrides the provider's default endpoint.
	BaseURL string `toml:"base_url"`

	// Model overrides the provider's default model.
	Model string `toml:"model"`
}

// ChromaConfig contains connection details for the Chroma vector store.
type ChromaConfig struct {
	URL        string `toml:"url"`
	Collection string `toml:"collection"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Chunking:  ChunkingConfig{Size: 500, Overlap: 80},
		Retrieval: RetrievalConfig{TopK: 3},
		Embedding: ProviderConfig{Provider: ProviderGemini},
		LLM:       ProviderConfig{Provider: ProviderGemini},
		Chroma:    ChromaConfig{URL: "http://localhost:8000", Collection: "patent_chunks"},
	}
}

// DefaultPath returns the default config file location, ~/.patra/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".patra", "config.toml"), nil
}

// Load reads the config from path. A missing file yields the defaults;
// a present file is merged over them, so partial configs are fine.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Chunking.Size <= 0 {
		return errors.New("chunking.size must be positive")
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.Size {
		return errors.New("chunking.overlap must be non-negative and below chunking.size")
	}
	if c.Retrieval.TopK <= 0 {
		return errors.New("retrieval.top_k must be positive")
	}
	for _, p := range []string{c.Embedding.Provider, c.LLM.Provider} {
		if p != ProviderGemini && p != ProviderOllama {
			return fmt.Errorf("unknown provider %q", p)
		}
	}
	return nil
}
