package chunk

import (
	"context"
	"fmt"
	"time"

	"github.com/sagaeng/saga/internal/model"
)

// Result is one finished chunk, ready for the caller to persist and
// index. ChunkIndex is dense and 0-based per document.
type Result struct {
	ChunkIndex         int
	StartPosition      int
	EndPosition        int
	Content            string
	Embedding          []float32
	SurroundingContext string
	SemanticTopic      string
}

// Embedder is the minimal collaborator the chunker needs from the
// embedding provider: one text in, one unit vector out.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Chunk splits content into Results per the hierarchical recursive
// splitter, with optional semantic merge and contextual enrichment.
// contentType, if empty, is detected by regex vote. Chunking is
// deterministic: identical content and options always produce
// identical positions and identical chunk indices, which is what lets
// model.ChunkID be stable across re-ingests.
func Chunk(ctx context.Context, documentID, content string, contentType string, opts Options, embedder Embedder) ([]Result, error) {
	ct := DetectContentType(content, contentType)
	opts = opts.WithDefaults(ct)

	var pieces []Piece
	if ct == ContentTypeMixed {
		pieces = chunkMixed(content, opts)
	} else {
		pieces = splitRecursive(content, 0, separatorsFor(ct, opts.Language), opts.MaxSize, opts.MinSize)
	}
	pieces = applyOverlap(pieces, opts.Overlap)

	refine := func(rctx context.Context, batch []Piece) ([]Piece, error) {
		return refineBatch(rctx, batch, opts, embedder)
	}
	pieces, err := refineBatches(ctx, len(content), pieces, opts.MaxWorkers, refine)
	if err != nil {
		return nil, fmt.Errorf("chunk document %s: %w", documentID, err)
	}

	if opts.AddContext {
		pieces = enrichContext(content, pieces)
	}

	results := make([]Result, len(pieces))
	for i, p := range pieces {
		results[i] = Result{
			ChunkIndex:         i,
			StartPosition:      p.StartPosition,
			EndPosition:        p.EndPosition,
			Content:            p.Content,
			Embedding:          p.Embedding,
			SurroundingContext: p.SurroundingContext,
			SemanticTopic:      p.SemanticTopic,
		}
	}
	return results, nil
}

// refineBatch embeds every piece in a batch, then applies the semantic
// merge pass when enabled. Embeddings already computed here are reused
// for similarity scoring so merge never re-embeds a surviving piece
// unnecessarily.
func refineBatch(ctx context.Context, pieces []Piece, opts Options, embedder Embedder) ([]Piece, error) {
	if len(pieces) == 0 {
		return nil, nil
	}
	for i := range pieces {
		vec, err := embedder.Embed(ctx, pieces[i].Content)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d: %w", i, err)
		}
		pieces[i].Embedding = vec
	}

	if !opts.AdaptiveSize {
		return pieces, nil
	}

	embedFn := func(ctx context.Context, text string) ([]float32, error) {
		return embedder.Embed(ctx, text)
	}
	return semanticMerge(ctx, pieces, opts.MaxSize, embedFn)
}

// BuildChunkModels converts chunker Results into persistable
// model.Chunk rows, computing the deterministic chunk id from the
// document id and dense index.
func BuildChunkModels(documentID string, results []Result, createdAt time.Time) []model.Chunk {
	out := make([]model.Chunk, len(results))
	for i, r := range results {
		out[i] = model.Chunk{
			ID:                 model.ChunkID(documentID, r.ChunkIndex),
			DocumentID:         documentID,
			ChunkIndex:         r.ChunkIndex,
			StartPosition:      r.StartPosition,
			EndPosition:        r.EndPosition,
			Content:            r.Content,
			ContentLength:      len(r.Content),
			Embedding:          r.Embedding,
			SurroundingContext: r.SurroundingContext,
			SemanticTopic:      r.SemanticTopic,
			CreatedAt:          createdAt,
		}
	}
	return out
}
