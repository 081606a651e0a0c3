package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sagaeng/saga/internal/model"
)

// PutChunks inserts or replaces chunk rows and their vectors in the
// chunk vector index.
func (s *Store) PutChunks(ctx context.Context, chunks []*model.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put chunks: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (
			id, document_id, chunk_index, start_position, end_position,
			content, content_length, embedding, surrounding_context,
			semantic_topic, created_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			chunk_index=excluded.chunk_index, start_position=excluded.start_position,
			end_position=excluded.end_position, content=excluded.content,
			content_length=excluded.content_length, embedding=excluded.embedding,
			surrounding_context=excluded.surrounding_context,
			semantic_topic=excluded.semantic_topic
	`)
	if err != nil {
		return fmt.Errorf("prepare put chunks: %w", err)
	}
	defer stmt.Close()

	ids := make([]string, 0, len(chunks))
	vectors := make([][]float32, 0, len(chunks))
	for _, c := range chunks {
		_, err := stmt.ExecContext(ctx,
			c.ID, c.DocumentID, c.ChunkIndex, c.StartPosition, c.EndPosition,
			c.Content, c.ContentLength, encodeEmbedding(c.Embedding),
			nullableString(c.SurroundingContext), nullableString(c.SemanticTopic),
			c.CreatedAt.Format(timeLayout),
		)
		if err != nil {
			return fmt.Errorf("put chunk %s: %w", c.ID, err)
		}
		if len(c.Embedding) > 0 {
			ids = append(ids, c.ID)
			vectors = append(vectors, c.Embedding)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit put chunks: %w", err)
	}
	if len(ids) > 0 {
		if err := s.chunkVectors.Add(ctx, ids, vectors); err != nil {
			return fmt.Errorf("index chunk vectors: %w", err)
		}
	}
	return nil
}

const chunkColumns = `id, document_id, chunk_index, start_position, end_position,
	content, content_length, embedding, surrounding_context, semantic_topic, created_at`

func scanChunk(rows *sql.Rows) (*model.Chunk, error) {
	var c model.Chunk
	var embeddingBlob []byte
	var surroundingContext, semanticTopic sql.NullString
	var createdAt string

	err := rows.Scan(
		&c.ID, &c.DocumentID, &c.ChunkIndex, &c.StartPosition, &c.EndPosition,
		&c.Content, &c.ContentLength, &embeddingBlob, &surroundingContext,
		&semanticTopic, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	c.Embedding = decodeEmbedding(embeddingBlob)
	c.SurroundingContext = surroundingContext.String
	c.SemanticTopic = semanticTopic.String
	c.CreatedAt = mustParseTime(createdAt)
	return &c, nil
}

// GetChunksByDocument returns a document's chunks ordered by position.
func (s *Store) GetChunksByDocument(ctx context.Context, docID string) ([]*model.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT `+chunkColumns+` FROM chunks WHERE document_id = ? ORDER BY chunk_index ASC`, docID)
	if err != nil {
		return nil, fmt.Errorf("get chunks for document %s: %w", docID, err)
	}
	defer rows.Close()

	var out []*model.Chunk
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteChunksByDocument removes a document's chunk rows and vectors.
func (s *Store) DeleteChunksByDocument(ctx context.Context, docID string) error {
	chunks, err := s.GetChunksByDocument(ctx, docID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ID
	}
	if err := s.chunkVectors.Delete(ctx, ids); err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `DELETE FROM chunks WHERE document_id = ?`, docID)
	if err != nil {
		return fmt.Errorf("delete chunks for document %s: %w", docID, err)
	}
	return nil
}

// SearchChunksByVector finds the k nearest chunk vectors to query,
// optionally narrowed by a pushed-down scalar filter.
func (s *Store) SearchChunksByVector(ctx context.Context, query []float32, k int, filter *ScalarFilter) ([]VectorHit, error) {
	allow, err := s.allowSetForFilter(ctx, filter)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chunkVectors.Search(ctx, query, k, allow)
}

// allowSetForFilter resolves a ScalarFilter into the set of chunk ids it
// admits, or nil if no filter narrows the search. When DocumentIDs is
// set, the result is those documents' chunks and the other filter
// fields are not applied.
func (s *Store) allowSetForFilter(ctx context.Context, filter *ScalarFilter) (map[string]bool, error) {
	if filter == nil {
		return nil, nil
	}
	if len(filter.DocumentIDs) > 0 {
		return s.chunkIDsForDocuments(ctx, filter.DocumentIDs)
	}
	if filter.CrawlID == "" && len(filter.Sources) == 0 && len(filter.Tags) == 0 && len(filter.Languages) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	clauses := []string{"1=1"}
	args := []any{}
	if filter.CrawlID != "" {
		clauses = append(clauses, "crawl_id = ?")
		args = append(args, filter.CrawlID)
	}
	if len(filter.Sources) > 0 {
		placeholders := ""
		for i, src := range filter.Sources {
			if i > 0 {
				placeholders += ","
			}
			placeholders += "?"
			args = append(args, string(src))
		}
		clauses = append(clauses, "source IN ("+placeholders+")")
	}
	if len(filter.Tags) > 0 {
		placeholders := ""
		for i, tag := range filter.Tags {
			if i > 0 {
				placeholders += ","
			}
			placeholders += "?"
			args = append(args, tag)
		}
		clauses = append(clauses, "id IN (SELECT document_id FROM document_tags WHERE tag IN ("+placeholders+"))")
	}
	if len(filter.Languages) > 0 {
		placeholders := ""
		for i, lang := range filter.Languages {
			if i > 0 {
				placeholders += ","
			}
			placeholders += "?"
			args = append(args, lang)
		}
		clauses = append(clauses, "id IN (SELECT document_id FROM document_languages WHERE language_code IN ("+placeholders+"))")
	}

	query := "SELECT id FROM chunks WHERE document_id IN (SELECT id FROM documents WHERE " + joinClauses(clauses) + ")"
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("resolve scalar filter: %w", err)
	}
	defer rows.Close()

	allow := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		allow[id] = true
	}
	return allow, rows.Err()
}

// chunkIDsForDocuments resolves a document id filter into the set of
// chunk vector ids it admits, since the vector index's Search allow set
// is keyed by chunk id, not document id.
func (s *Store) chunkIDsForDocuments(ctx context.Context, documentIDs []string) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	placeholders := ""
	args := make([]any, 0, len(documentIDs))
	for i, id := range documentIDs {
		if i > 0 {
			placeholders += ","
		}
		placeholders += "?"
		args = append(args, id)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM chunks WHERE document_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("resolve chunk ids for documents: %w", err)
	}
	defer rows.Close()

	allow := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		allow[id] = true
	}
	return allow, rows.Err()
}

func joinClauses(clauses []string) string {
	out := clauses[0]
	for _, c := range clauses[1:] {
		out += " AND " + c
	}
	return out
}
