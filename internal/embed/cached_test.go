package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	calls int
	inner Embedder
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls++
	return c.inner.Embed(ctx, text)
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	c.calls++
	return c.inner.EmbedBatch(ctx, texts)
}

func (c *countingEmbedder) ModelName() string                  { return c.inner.ModelName() }
func (c *countingEmbedder) Dimensions() int                     { return c.inner.Dimensions() }
func (c *countingEmbedder) IsAvailable(ctx context.Context) bool { return c.inner.IsAvailable(ctx) }
func (c *countingEmbedder) Close() error                        { return c.inner.Close() }

// Given: a cached embedder wrapping a counting inner embedder
// When: the same text is embedded twice
// Then: the inner embedder is only invoked once
func TestCachedEmbedder_HitAvoidsInnerCall(t *testing.T) {
	inner := &countingEmbedder{inner: NewLocalEmbedder()}
	c := NewCachedEmbedder(inner, 10)
	ctx := context.Background()

	_, err := c.Embed(ctx, "repeated text")
	require.NoError(t, err)
	_, err = c.Embed(ctx, "repeated text")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
}

// Given: a cached embedder
// When: the returned vector is mutated by the caller
// Then: a subsequent cache hit is unaffected
func TestCachedEmbedder_ReturnsDefensiveCopy(t *testing.T) {
	c := NewCachedEmbedder(NewLocalEmbedder(), 10)
	ctx := context.Background()

	v, err := c.Embed(ctx, "mutate me")
	require.NoError(t, err)
	v[0] = 999

	v2, err := c.Embed(ctx, "mutate me")
	require.NoError(t, err)
	assert.NotEqual(t, float32(999), v2[0])
}

// Given: a cached embedder
// When: EmbedBatch is called with a mix of cached and uncached texts
// Then: only the uncached texts reach the inner embedder, and result order is preserved
func TestCachedEmbedder_EmbedBatchMixedHitsAndMisses(t *testing.T) {
	inner := &countingEmbedder{inner: NewLocalEmbedder()}
	c := NewCachedEmbedder(inner, 10)
	ctx := context.Background()

	_, err := c.Embed(ctx, "cached already")
	require.NoError(t, err)
	inner.calls = 0

	batch, err := c.EmbedBatch(ctx, []string{"cached already", "brand new text"})
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, 1, inner.calls)

	want, err := NewLocalEmbedder().Embed(ctx, "cached already")
	require.NoError(t, err)
	assert.Equal(t, want, batch[0])
}

// Given: a cached embedder
// When: ModelName, Dimensions, IsAvailable, and Inner are queried
// Then: they pass through to the wrapped embedder
func TestCachedEmbedder_PassThroughAccessors(t *testing.T) {
	local := NewLocalEmbedder()
	c := NewCachedEmbedder(local, 10)

	assert.Equal(t, local.ModelName(), c.ModelName())
	assert.Equal(t, local.Dimensions(), c.Dimensions())
	assert.Equal(t, local.IsAvailable(context.Background()), c.IsAvailable(context.Background()))
	assert.Same(t, local, c.Inner())
}
