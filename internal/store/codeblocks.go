package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sagaeng/saga/internal/model"
)

// PutCodeBlocks inserts or replaces code block rows and their vectors.
func (s *Store) PutCodeBlocks(ctx context.Context, blocks []*model.CodeBlock) error {
	if len(blocks) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put code blocks: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO code_blocks (
			id, document_id, block_id, block_index, language, content,
			content_length, embedding, source_url
		) VALUES (?,?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			block_id=excluded.block_id, block_index=excluded.block_index,
			language=excluded.language, content=excluded.content,
			content_length=excluded.content_length, embedding=excluded.embedding,
			source_url=excluded.source_url
	`)
	if err != nil {
		return fmt.Errorf("prepare put code blocks: %w", err)
	}
	defer stmt.Close()

	rowidStmt, err := tx.PrepareContext(ctx, `SELECT rowid FROM code_blocks WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("prepare code block rowid lookup: %w", err)
	}
	defer rowidStmt.Close()

	ids := make([]string, 0, len(blocks))
	vectors := make([][]float32, 0, len(blocks))
	for _, b := range blocks {
		if _, err := stmt.ExecContext(ctx,
			b.ID, b.DocumentID, b.BlockID, b.BlockIndex, b.Language, b.Content,
			b.ContentLength, encodeEmbedding(b.Embedding), nullableString(b.SourceURL),
		); err != nil {
			return fmt.Errorf("put code block %s: %w", b.ID, err)
		}

		var rowid int64
		if err := rowidStmt.QueryRowContext(ctx, b.ID).Scan(&rowid); err != nil {
			return fmt.Errorf("lookup rowid for code block %s: %w", b.ID, err)
		}
		s.languageBitmaps.add(b.Language, uint32(rowid))

		if len(b.Embedding) > 0 {
			ids = append(ids, b.ID)
			vectors = append(vectors, b.Embedding)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit put code blocks: %w", err)
	}
	if len(ids) > 0 {
		if err := s.codeBlockVectors.Add(ctx, ids, vectors); err != nil {
			return fmt.Errorf("index code block vectors: %w", err)
		}
	}
	return nil
}

const codeBlockColumns = `id, document_id, block_id, block_index, language, content,
	content_length, embedding, source_url`

func scanCodeBlock(rows *sql.Rows) (*model.CodeBlock, error) {
	var b model.CodeBlock
	var embeddingBlob []byte
	var sourceURL sql.NullString

	err := rows.Scan(
		&b.ID, &b.DocumentID, &b.BlockID, &b.BlockIndex, &b.Language,
		&b.Content, &b.ContentLength, &embeddingBlob, &sourceURL,
	)
	if err != nil {
		return nil, err
	}
	b.Embedding = decodeEmbedding(embeddingBlob)
	b.SourceURL = sourceURL.String
	return &b, nil
}

// GetCodeBlocksByDocument returns a document's code blocks ordered by
// position.
func (s *Store) GetCodeBlocksByDocument(ctx context.Context, docID string) ([]*model.CodeBlock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT `+codeBlockColumns+` FROM code_blocks WHERE document_id = ? ORDER BY block_index ASC`, docID)
	if err != nil {
		return nil, fmt.Errorf("get code blocks for document %s: %w", docID, err)
	}
	defer rows.Close()

	var out []*model.CodeBlock
	for rows.Next() {
		b, err := scanCodeBlock(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// DeleteCodeBlocksByDocument removes a document's code block rows and
// vectors.
func (s *Store) DeleteCodeBlocksByDocument(ctx context.Context, docID string) error {
	blocks, err := s.GetCodeBlocksByDocument(ctx, docID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, len(blocks))
	for i, b := range blocks {
		ids[i] = b.ID
		if rowid, err := s.rowidForCodeBlock(ctx, b.ID); err == nil {
			s.languageBitmaps.remove(b.Language, rowid)
		}
	}
	if err := s.codeBlockVectors.Delete(ctx, ids); err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `DELETE FROM code_blocks WHERE document_id = ?`, docID)
	if err != nil {
		return fmt.Errorf("delete code blocks for document %s: %w", docID, err)
	}
	return nil
}

func (s *Store) rowidForCodeBlock(ctx context.Context, id string) (uint32, error) {
	var rowid int64
	err := s.db.QueryRowContext(ctx, `SELECT rowid FROM code_blocks WHERE id = ?`, id).Scan(&rowid)
	if err != nil {
		return 0, err
	}
	return uint32(rowid), nil
}

// SearchCodeBlocksByVector finds the k nearest code block vectors to
// query, optionally restricted to one language via the roaring bitmap
// language index.
func (s *Store) SearchCodeBlocksByVector(ctx context.Context, query []float32, k int, language string) ([]VectorHit, error) {
	var allow map[string]bool
	if language != "" {
		s.mu.RLock()
		bm := s.languageBitmaps.rowids(language)
		s.mu.RUnlock()

		if bm.GetCardinality() == 0 {
			return []VectorHit{}, nil
		}
		rowids := make([]any, 0, bm.GetCardinality())
		it := bm.Iterator()
		for it.HasNext() {
			rowids = append(rowids, int64(it.Next()))
		}
		ids, err := s.codeBlockIDsForRowids(ctx, rowids)
		if err != nil {
			return nil, err
		}
		allow = ids
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.codeBlockVectors.Search(ctx, query, k, allow)
}

func (s *Store) codeBlockIDsForRowids(ctx context.Context, rowids []any) (map[string]bool, error) {
	placeholders := ""
	for i := range rowids {
		if i > 0 {
			placeholders += ","
		}
		placeholders += "?"
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM code_blocks WHERE rowid IN (`+placeholders+`)`, rowids...)
	if err != nil {
		return nil, fmt.Errorf("resolve code block rowids: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool, len(rowids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}
