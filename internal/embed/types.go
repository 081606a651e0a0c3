// Package embed implements the embedding provider abstraction: text -> fixed-dimension unit vector, with an LRU cache in
// front of a pluggable provider (local in-process model, or an
// OpenAI-compatible HTTP endpoint).
package embed

import (
	"context"
	"math"
)

// Embedder turns text into a fixed-dimension, unit-normalized vector.
// Embed is deterministic for identical text within one provider instance.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	ModelName() string
	Dimensions() int
	IsAvailable(ctx context.Context) bool
	Close() error
}

// DefaultEmbeddingCacheSize is the default LRU capacity.
const DefaultEmbeddingCacheSize = 1000

func normalizeVector(v []float32) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	magnitude := math.Sqrt(sumSquares)
	if magnitude == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i, val := range v {
		out[i] = float32(float64(val) / magnitude)
	}
	return out
}
