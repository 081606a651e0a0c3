package chunk

import (
	"context"
	"math"
)

// mergeSimilarityThreshold and mergeSizeMultiplier are the semantic
// merge thresholds: adjacent pieces whose cosine
// similarity is at least mergeSimilarityThreshold and whose combined
// length is at most mergeSizeMultiplier x maxSize are folded together.
const mergeSimilarityThreshold = 0.8
const mergeSizeMultiplier = 1.5

// semanticMerge folds adjacent pieces that clear both thresholds,
// re-embedding the merged text. pieces must already carry their
// individual embeddings.
func semanticMerge(ctx context.Context, pieces []Piece, maxSize int, embed embedFunc) ([]Piece, error) {
	if len(pieces) < 2 {
		return pieces, nil
	}

	merged := make([]Piece, 0, len(pieces))
	current := pieces[0]

	for i := 1; i < len(pieces); i++ {
		next := pieces[i]
		combinedLen := len(current.Content) + len(next.Content)
		sim := cosineSimilarity(current.Embedding, next.Embedding)

		if sim >= mergeSimilarityThreshold && float64(combinedLen) <= mergeSizeMultiplier*float64(maxSize) {
			mergedContent := current.Content + next.Content
			vec, err := embed(ctx, mergedContent)
			if err != nil {
				return nil, err
			}
			current = Piece{
				Content:       mergedContent,
				StartPosition: current.StartPosition,
				EndPosition:   next.EndPosition,
				Embedding:     vec,
			}
			continue
		}

		merged = append(merged, current)
		current = next
	}
	merged = append(merged, current)

	return merged, nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
