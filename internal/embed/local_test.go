package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Given: a local embedder
// When: the same text is embedded twice
// Then: the resulting vectors are identical and unit-normalized
func TestLocalEmbedder_Deterministic(t *testing.T) {
	e := NewLocalEmbedder()
	ctx := context.Background()

	a, err := e.Embed(ctx, "semantic search over local documents")
	require.NoError(t, err)
	b, err := e.Embed(ctx, "semantic search over local documents")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, LocalDimensions)

	var sumSquares float64
	for _, f := range a {
		sumSquares += float64(f) * float64(f)
	}
	assert.InDelta(t, 1.0, sumSquares, 1e-4)
}

// Given: a local embedder
// When: two unrelated texts are embedded
// Then: the vectors differ
func TestLocalEmbedder_DistinctTextsDiffer(t *testing.T) {
	e := NewLocalEmbedder()
	ctx := context.Background()

	a, err := e.Embed(ctx, "apples and oranges")
	require.NoError(t, err)
	b, err := e.Embed(ctx, "quantum computing research")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

// Given: a local embedder
// When: empty text is embedded
// Then: a zero vector of the configured dimension is returned
func TestLocalEmbedder_EmptyTextReturnsZeroVector(t *testing.T) {
	e := NewLocalEmbedder()
	v, err := e.Embed(context.Background(), "   ")
	require.NoError(t, err)
	assert.Len(t, v, LocalDimensions)
	for _, f := range v {
		assert.Zero(t, f)
	}
}

// Given: a local embedder
// When: EmbedBatch is called with several texts
// Then: the order of the results matches the order of the input
func TestLocalEmbedder_EmbedBatchPreservesOrder(t *testing.T) {
	e := NewLocalEmbedder()
	ctx := context.Background()
	texts := []string{"first document", "second document", "third document"}

	batch, err := e.EmbedBatch(ctx, texts)
	require.NoError(t, err)
	require.Len(t, batch, len(texts))

	for i, text := range texts {
		single, err := e.Embed(ctx, text)
		require.NoError(t, err)
		assert.Equal(t, single, batch[i])
	}
}

// Given: a closed local embedder
// When: Embed is called
// Then: it returns a provider-unavailable error
func TestLocalEmbedder_ClosedRejectsEmbed(t *testing.T) {
	e := NewLocalEmbedder()
	require.NoError(t, e.Close())

	_, err := e.Embed(context.Background(), "anything")
	assert.Error(t, err)
	assert.False(t, e.IsAvailable(context.Background()))
}
