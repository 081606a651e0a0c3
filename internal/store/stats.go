package store

import (
	"context"
	"fmt"

	"github.com/sagaeng/saga/internal/model"
)

// Stats reports corpus size used both for diagnostics and for
// corpus-size-tiered vector index parameter selection.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats Stats
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE status = ?`, string(model.StatusActive))
	if err := row.Scan(&stats.DocumentCount); err != nil {
		return stats, fmt.Errorf("count documents: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&stats.ChunkCount); err != nil {
		return stats, fmt.Errorf("count chunks: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM code_blocks`).Scan(&stats.CodeBlockCount); err != nil {
		return stats, fmt.Errorf("count code blocks: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM keywords`).Scan(&stats.KeywordCount); err != nil {
		return stats, fmt.Errorf("count keywords: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT version FROM schema_version LIMIT 1`).Scan(&stats.SchemaVersion); err != nil {
		return stats, fmt.Errorf("read schema version: %w", err)
	}
	stats.VectorIndexSize = s.chunkVectors.Count() + s.codeBlockVectors.Count()
	return stats, nil
}

// RetuneVectorIndexes rebuilds the chunk and code block vector indexes
// with HNSW parameters sized for the current corpus. Call periodically as the
// corpus crosses a size tier; a fresh corpus starts at the smallest
// tier and this is a no-op until growth crosses a boundary.
func (s *Store) RetuneVectorIndexes(ctx context.Context) error {
	stats, err := s.Stats(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	params := ParamsForCorpusSize(stats.ChunkCount)
	newChunkIndex := NewVectorIndex(s.cfg.EmbeddingDimension, s.cfg.UseHNSW, params)
	newBlockIndex := NewVectorIndex(s.cfg.EmbeddingDimension, s.cfg.UseHNSW, ParamsForCorpusSize(stats.CodeBlockCount))
	s.mu.Unlock()

	if err := s.replayVectorsInto(ctx, newChunkIndex, newBlockIndex); err != nil {
		return err
	}

	s.mu.Lock()
	s.chunkVectors = newChunkIndex
	s.codeBlockVectors = newBlockIndex
	s.mu.Unlock()
	return nil
}

func (s *Store) replayVectorsInto(ctx context.Context, chunkIndex, blockIndex *VectorIndex) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id, embedding FROM chunks WHERE embedding IS NOT NULL`)
	if err != nil {
		return fmt.Errorf("replay chunk embeddings: %w", err)
	}
	var ids []string
	var vecs [][]float32
	for rows.Next() {
		var id string
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			rows.Close()
			return err
		}
		ids = append(ids, id)
		vecs = append(vecs, decodeEmbedding(blob))
	}
	rows.Close()
	if len(ids) > 0 {
		if err := chunkIndex.Add(ctx, ids, vecs); err != nil {
			return err
		}
	}

	blockRows, err := s.db.QueryContext(ctx, `SELECT id, embedding FROM code_blocks WHERE embedding IS NOT NULL`)
	if err != nil {
		return fmt.Errorf("replay code block embeddings: %w", err)
	}
	var blockIDs []string
	var blockVecs [][]float32
	for blockRows.Next() {
		var id string
		var blob []byte
		if err := blockRows.Scan(&id, &blob); err != nil {
			blockRows.Close()
			return err
		}
		blockIDs = append(blockIDs, id)
		blockVecs = append(blockVecs, decodeEmbedding(blob))
	}
	blockRows.Close()
	if len(blockIDs) > 0 {
		if err := blockIndex.Add(ctx, blockIDs, blockVecs); err != nil {
			return err
		}
	}
	return nil
}
