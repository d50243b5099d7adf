// Package config loads the application configuration from YAML. Every
// field has a usable default, so the binary runs without a config file.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bull/docchat/internal/errs"
)

// ChunkingConfig controls the document splitter.
type ChunkingConfig struct {
	Size    int `yaml:"size"`    // target chunk length in runes
	Overlap int `yaml:"overlap"` // shared runes between consecutive chunks
}

// IndexConfig selects and configures the vector store backend.
type IndexConfig struct {
	Backend    string       `yaml:"backend"` // "chromem" (default) or "qdrant"
	Path       string       `yaml:"path"`    // chromem persistence directory
	Collection string       `yaml:"collection"`
	Qdrant     QdrantConfig `yaml:"qdrant"`
}

// QdrantConfig contains connection details for the qdrant backend.
// QDRANT_HOST and QDRANT_PORT environment variables override these.
type QdrantConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// RetrievalConfig controls the query-time context window.
type RetrievalConfig struct {
	TopK int `yaml:"top_k"`
}

// LLMConfig selects provider models and call behavior. The API key itself
// comes from the OPENAI_API_KEY environment variable, never from the file.
type LLMConfig struct {
	ChatModel      string  `yaml:"chat_model"`
	EmbeddingModel string  `yaml:"embedding_model"`
	Temperature    float64 `yaml:"temperature"`
	TimeoutSecs    int     `yaml:"timeout_secs"`
}

// Config is the root configuration.
type Config struct {
	Assistant string          `yaml:"assistant"` // branding used in prompts and the TUI
	DataPath  string          `yaml:"data_path"` // default ingestion input
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Index     IndexConfig     `yaml:"index"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	LLM       LLMConfig       `yaml:"llm"`
}

// Load reads the config from path. A missing file yields the defaults;
// a present but invalid file is an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			return cfg, nil
		}
		return nil, fmt.Errorf("%w: read config %s: %v", errs.ErrConfiguration, path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: parse config %s: %v", errs.ErrConfiguration, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration: character chunks of 1000
// with 200 overlap, a local chromem index, and a two-chunk retrieval
// window at temperature 0.
func Default() *Config {
	return &Config{
		Assistant: "TechCorp",
		DataPath:  "data/sample.txt",
		Chunking:  ChunkingConfig{Size: 1000, Overlap: 200},
		Index: IndexConfig{
			Backend:    "chromem",
			Path:       "./index",
			Collection: "documents",
			Qdrant:     QdrantConfig{Host: "localhost", Port: 6334},
		},
		Retrieval: RetrievalConfig{TopK: 2},
		LLM: LLMConfig{
			ChatModel:      "gpt-3.5-turbo",
			EmbeddingModel: "text-embedding-3-small",
			Temperature:    0,
			TimeoutSecs:    60,
		},
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Chunking.Size <= 0 {
		return fmt.Errorf("%w: chunking.size must be positive", errs.ErrConfiguration)
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.Size {
		return fmt.Errorf("%w: chunking.overlap %d must be in [0, %d)",
			errs.ErrConfiguration, c.Chunking.Overlap, c.Chunking.Size)
	}
	if c.Retrieval.TopK < 1 {
		return fmt.Errorf("%w: retrieval.top_k must be >= 1", errs.ErrConfiguration)
	}
	switch c.Index.Backend {
	case "chromem", "qdrant":
	default:
		return fmt.Errorf("%w: unknown index backend %q", errs.ErrConfiguration, c.Index.Backend)
	}
	return nil
}
