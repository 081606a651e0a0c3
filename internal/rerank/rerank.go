// Package rerank implements the reranker abstraction: (query, [docText]) -> reordered scores, over an HTTP cross-encoder
// endpoint. Failure is non-fatal — callers fall back to the pre-rerank
// ordering.
package rerank

import (
	"context"
	"sort"
)

// Result is one reranked candidate. Index references the position of the
// document in the input slice passed to Rerank.
type Result struct {
	Index int
	Score float64
}

// Options bound the reranking call.
type Options struct {
	TopK          int
	MaxCandidates int
}

// Reranker scores and reorders candidate documents by relevance to a
// query. IsReady reports whether the provider finished initializing.
type Reranker interface {
	Rerank(ctx context.Context, query string, docs []string, opts Options) ([]Result, error)
	IsReady(ctx context.Context) bool
}

// NoOp returns documents in their original order with decreasing scores.
// Used when reranking is disabled; query.New substitutes it for a nil
// reranker.
type NoOp struct{}

// Rerank implements Reranker by preserving input order.
func (NoOp) Rerank(_ context.Context, _ string, docs []string, opts Options) ([]Result, error) {
	out := make([]Result, len(docs))
	for i := range docs {
		out[i] = Result{Index: i, Score: 1.0 - float64(i)*0.001}
	}
	if opts.TopK > 0 && opts.TopK < len(out) {
		out = out[:opts.TopK]
	}
	return out, nil
}

// IsReady always returns true for NoOp.
func (NoOp) IsReady(_ context.Context) bool { return true }

var _ Reranker = NoOp{}

// sortByScoreDesc sorts results by score descending, stable on ties so
// pre-rerank order is preserved for equal scores.
func sortByScoreDesc(results []Result) {
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
}
