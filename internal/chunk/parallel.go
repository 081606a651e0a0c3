package chunk

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// parallelSizeThreshold is the document size above which refinement and
// enrichment run concurrently over batches.
const parallelSizeThreshold = 10_000

// refineBatches partitions pieces into maxWorkers batches and applies
// refine to each batch concurrently, preserving batch ordering on
// merge. Below parallelSizeThreshold, or when maxWorkers <= 1, refine
// runs sequentially over the whole slice instead.
func refineBatches(ctx context.Context, contentSize int, pieces []Piece, maxWorkers int, refine func(context.Context, []Piece) ([]Piece, error)) ([]Piece, error) {
	if contentSize <= parallelSizeThreshold || maxWorkers <= 1 || len(pieces) <= 1 {
		return refine(ctx, pieces)
	}

	batches := partitionPieces(pieces, maxWorkers)
	results := make([][]Piece, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	for i, batch := range batches {
		i, batch := i, batch
		g.Go(func() error {
			out, err := refine(gctx, batch)
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Piece
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}

// partitionPieces splits pieces into at most n contiguous, roughly
// equal batches, preserving order.
func partitionPieces(pieces []Piece, n int) [][]Piece {
	if n <= 0 {
		n = 1
	}
	if n > len(pieces) {
		n = len(pieces)
	}
	if n == 0 {
		return nil
	}
	batchSize := (len(pieces) + n - 1) / n
	var batches [][]Piece
	for i := 0; i < len(pieces); i += batchSize {
		end := i + batchSize
		if end > len(pieces) {
			end = len(pieces)
		}
		batches = append(batches, pieces[i:end])
	}
	return batches
}
