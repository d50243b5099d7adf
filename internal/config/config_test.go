package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bull/docchat/internal/errs"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
assistant: Acme
chunking:
  size: 500
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Acme", cfg.Assistant)
	assert.Equal(t, 500, cfg.Chunking.Size)
	// untouched fields keep their defaults
	assert.Equal(t, 200, cfg.Chunking.Overlap)
	assert.Equal(t, 2, cfg.Retrieval.TopK)
	assert.Equal(t, "chromem", cfg.Index.Backend)
	assert.Equal(t, "gpt-3.5-turbo", cfg.LLM.ChatModel)
}

func TestLoad_QdrantBackend(t *testing.T) {
	path := writeConfig(t, `
index:
  backend: qdrant
  qdrant:
    host: qdrant.internal
    port: 7000
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "qdrant", cfg.Index.Backend)
	assert.Equal(t, "qdrant.internal", cfg.Index.Qdrant.Host)
	assert.Equal(t, 7000, cfg.Index.Qdrant.Port)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "chunking: [not a mapping")
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrConfiguration))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero chunk size", func(c *Config) { c.Chunking.Size = 0 }},
		{"overlap equals size", func(c *Config) { c.Chunking.Overlap = c.Chunking.Size }},
		{"negative overlap", func(c *Config) { c.Chunking.Overlap = -1 }},
		{"zero top_k", func(c *Config) { c.Retrieval.TopK = 0 }},
		{"unknown backend", func(c *Config) { c.Index.Backend = "pinecone" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, errs.ErrConfiguration))
		})
	}

	assert.NoError(t, Default().Validate())
}
