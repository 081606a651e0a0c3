package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Given: a clean environment
// When: Load is called
// Then: every section gets its documented default
func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SAGA_HOME", t.TempDir())

	cfg := Load()

	assert.Equal(t, "local", cfg.Embeddings.Provider)
	assert.Equal(t, 256, cfg.Embeddings.Dimensions)
	assert.True(t, cfg.Store.UseHNSW)
	assert.Equal(t, 200, cfg.Query.MaxResults)
	assert.False(t, cfg.Query.UseReranking)
	assert.Empty(t, cfg.Language.AcceptedLanguages)
	assert.Equal(t, 0.2, cfg.Language.ConfidenceThreshold)
}

// Given: environment overrides for a scalar and a list-valued knob
// When: Load is called
// Then: the overrides win and the list is lowercased and trimmed
func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SAGA_HOME", t.TempDir())
	t.Setenv("SAGA_EMBEDDING_PROVIDER", "openai")
	t.Setenv("SAGA_MAX_SEARCH_RESULTS", "50")
	t.Setenv("SAGA_ACCEPTED_LANGUAGES", " EN, Fr ,de")

	cfg := Load()

	assert.Equal(t, "openai", cfg.Embeddings.Provider)
	assert.Equal(t, 50, cfg.Query.MaxResults)
	assert.Equal(t, []string{"en", "fr", "de"}, cfg.Language.AcceptedLanguages)
}

// Given: an invalid integer in an int-typed env var
// When: Load is called
// Then: the documented default is used instead of panicking
func TestLoad_InvalidIntFallsBackToDefault(t *testing.T) {
	t.Setenv("SAGA_HOME", t.TempDir())
	t.Setenv("SAGA_MAX_SEARCH_RESULTS", "not-a-number")

	cfg := Load()

	assert.Equal(t, 200, cfg.Query.MaxResults)
}
