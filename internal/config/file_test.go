package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stretchr/testify/assert"
)

// Given: no file at the given path
// When: LoadFileOverrides is called
// Then: it returns without error and leaves cfg untouched
func TestLoadFileOverrides_MissingFileIsNotAnError(t *testing.T) {
	cfg := Config{Embeddings: EmbeddingsConfig{Provider: "local"}}
	err := LoadFileOverrides(&cfg, filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "local", cfg.Embeddings.Provider)
}

// Given: a yaml file overriding the embedding provider and max results
// When: LoadFileOverrides is called with no competing env vars set
// Then: the file's values are applied
func TestLoadFileOverrides_AppliesFileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
embeddings:
  provider: openai
  model: text-embed-3
query:
  max_results: 42
`), 0o644))

	cfg := Config{Query: QueryConfig{MaxResults: 200}}
	require.NoError(t, LoadFileOverrides(&cfg, path))

	assert.Equal(t, "openai", cfg.Embeddings.Provider)
	assert.Equal(t, "text-embed-3", cfg.Embeddings.Model)
	assert.Equal(t, 42, cfg.Query.MaxResults)
}

// Given: a yaml override and a competing environment variable already set
// When: LoadFileOverrides is called
// Then: the environment variable wins and the file value is ignored
func TestLoadFileOverrides_EnvVarTakesPrecedence(t *testing.T) {
	t.Setenv("SAGA_EMBEDDING_PROVIDER", "openai")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("embeddings:\n  provider: local\n"), 0o644))

	cfg := Config{Embeddings: EmbeddingsConfig{Provider: "openai"}}
	require.NoError(t, LoadFileOverrides(&cfg, path))

	assert.Equal(t, "openai", cfg.Embeddings.Provider)
}
