package embed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedEmbedder wraps an Embedder with a process-wide LRU cache keyed on
// sha256(model_name || ':' || trim(lowercase(text))) truncated to 16 hex
// characters. A cache hit returns a copy so callers
// can never mutate the cached slice.
type CachedEmbedder struct {
	inner Embedder
	cache *lru.Cache[string, []float32]
}

// NewCachedEmbedder wraps inner with an LRU cache of the given capacity
// (0 or negative uses DefaultEmbeddingCacheSize).
func NewCachedEmbedder(inner Embedder, capacity int) *CachedEmbedder {
	if capacity <= 0 {
		capacity = DefaultEmbeddingCacheSize
	}
	cache, _ := lru.New[string, []float32](capacity)
	return &CachedEmbedder{inner: inner, cache: cache}
}

func (c *CachedEmbedder) cacheKey(text string) string {
	normalized := strings.ToLower(strings.TrimSpace(text))
	sum := sha256.Sum256([]byte(c.inner.ModelName() + ":" + normalized))
	return hex.EncodeToString(sum[:])[:16]
}

func cloneVector(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}

// Embed returns the cached vector if present, otherwise computes and
// caches it, evicting the least-recently-used entry if at capacity.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := c.cacheKey(text)
	if v, ok := c.cache.Get(key); ok {
		return cloneVector(v), nil
	}
	v, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, v)
	return cloneVector(v), nil
}

// EmbedBatch checks the cache per-text, batches only the misses through
// the inner provider, and populates the cache with the results.
func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	results := make([][]float32, len(texts))
	var missIdx []int
	var missTexts []string

	for i, t := range texts {
		key := c.cacheKey(t)
		if v, ok := c.cache.Get(key); ok {
			results[i] = cloneVector(v)
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, t)
	}

	if len(missTexts) == 0 {
		return results, nil
	}

	embedded, err := c.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for j, idx := range missIdx {
		results[idx] = cloneVector(embedded[j])
		c.cache.Add(c.cacheKey(texts[idx]), embedded[j])
	}
	return results, nil
}

// ModelName passes through to the inner provider.
func (c *CachedEmbedder) ModelName() string { return c.inner.ModelName() }

// Dimensions passes through to the inner provider.
func (c *CachedEmbedder) Dimensions() int { return c.inner.Dimensions() }

// IsAvailable passes through to the inner provider.
func (c *CachedEmbedder) IsAvailable(ctx context.Context) bool { return c.inner.IsAvailable(ctx) }

// Close closes the inner provider.
func (c *CachedEmbedder) Close() error { return c.inner.Close() }

// Inner returns the wrapped embedder.
func (c *CachedEmbedder) Inner() Embedder { return c.inner }

var _ Embedder = (*CachedEmbedder)(nil)
