package embed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagaeng/saga/internal/config"
)

// Given: the default "local" embeddings provider
// When: New builds the embedder
// Then: it returns a cached embedder wrapping a local embedder
func TestNew_DefaultsToCachedLocalEmbedder(t *testing.T) {
	e := New(config.EmbeddingsConfig{Provider: "local", Dimensions: 256, CacheSize: 10})
	cached, ok := e.(*CachedEmbedder)
	require.True(t, ok)
	_, ok = cached.Inner().(*LocalEmbedder)
	assert.True(t, ok)
}

// Given: an "openai" embeddings provider
// When: New builds the embedder
// Then: it returns a cached embedder wrapping an HTTP embedder
func TestNew_OpenAIProviderUsesHTTPEmbedder(t *testing.T) {
	e := New(config.EmbeddingsConfig{Provider: "openai", BaseURL: "http://localhost:11434", Model: "m", Dimensions: 256})
	cached, ok := e.(*CachedEmbedder)
	require.True(t, ok)
	_, ok = cached.Inner().(*HTTPEmbedder)
	assert.True(t, ok)
}
