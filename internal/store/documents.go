package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sagaeng/saga/internal/model"
)

// PutDocument inserts or replaces a document row and refreshes its
// scalar-index membership.
func (s *Store) PutDocument(ctx context.Context, doc *model.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	extraBlob, err := encodeExtra(doc.Extra)
	if err != nil {
		return fmt.Errorf("encode document extra: %w", err)
	}

	doc.Status = statusOrDefault(doc.Status)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (
			id, title, content, content_hash, content_length, source,
			original_filename, file_extension, crawl_id, crawl_url, author,
			description, content_type, created_at, updated_at, processed_at,
			chunks_count, code_blocks_count, status, extra_json
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, content=excluded.content,
			content_hash=excluded.content_hash, content_length=excluded.content_length,
			source=excluded.source, original_filename=excluded.original_filename,
			file_extension=excluded.file_extension, crawl_id=excluded.crawl_id,
			crawl_url=excluded.crawl_url, author=excluded.author,
			description=excluded.description, content_type=excluded.content_type,
			updated_at=excluded.updated_at, processed_at=excluded.processed_at,
			chunks_count=excluded.chunks_count, code_blocks_count=excluded.code_blocks_count,
			status=excluded.status, extra_json=excluded.extra_json
	`,
		doc.ID, doc.Title, doc.Content, doc.ContentHash, doc.ContentLength, string(doc.Source),
		nullableString(doc.OriginalFilename), nullableString(doc.FileExtension),
		nullableString(doc.CrawlID), nullableString(doc.CrawlURL), nullableString(doc.Author),
		nullableString(doc.Description), nullableString(doc.ContentType),
		doc.CreatedAt.Format(timeLayout), doc.UpdatedAt.Format(timeLayout), formatOptionalTime(doc.ProcessedAt),
		doc.ChunksCount, doc.CodeBlocksCount, string(doc.Status), extraBlob,
	)
	if err != nil {
		return fmt.Errorf("put document %s: %w", doc.ID, err)
	}

	rowid, err := s.rowidForDocument(ctx, doc.ID)
	if err != nil {
		return err
	}
	s.sourceBitmaps.add(string(doc.Source), rowid)
	s.statusBitmaps.add(string(doc.Status), rowid)
	return nil
}

const timeLayout = "2006-01-02T15:04:05.999999999Z07:00"

func formatOptionalTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(timeLayout)
}

func mustParseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (s *Store) rowidForDocument(ctx context.Context, id string) (uint32, error) {
	var rowid int64
	err := s.db.QueryRowContext(ctx, `SELECT rowid FROM documents WHERE id = ?`, id).Scan(&rowid)
	if err != nil {
		return 0, fmt.Errorf("lookup rowid for document %s: %w", id, err)
	}
	return uint32(rowid), nil
}

func scanDocument(row *sql.Rows) (*model.Document, error) {
	var d model.Document
	var originalFilename, fileExtension, crawlID, crawlURL, author, description, contentType sql.NullString
	var processedAt sql.NullString
	var extraBlob []byte
	var createdAt, updatedAt string

	err := row.Scan(
		&d.ID, &d.Title, &d.Content, &d.ContentHash, &d.ContentLength, &d.Source,
		&originalFilename, &fileExtension, &crawlID, &crawlURL, &author,
		&description, &contentType, &createdAt, &updatedAt, &processedAt,
		&d.ChunksCount, &d.CodeBlocksCount, &d.Status, &extraBlob,
	)
	if err != nil {
		return nil, err
	}

	d.OriginalFilename = originalFilename.String
	d.FileExtension = fileExtension.String
	d.CrawlID = crawlID.String
	d.CrawlURL = crawlURL.String
	d.Author = author.String
	d.Description = description.String
	d.ContentType = contentType.String

	d.CreatedAt = mustParseTime(createdAt)
	d.UpdatedAt = mustParseTime(updatedAt)
	if processedAt.Valid {
		d.ProcessedAt = mustParseTime(processedAt.String)
	}

	extra, err := decodeExtra(extraBlob)
	if err != nil {
		return nil, fmt.Errorf("decode extra for document %s: %w", d.ID, err)
	}
	d.Extra = extra

	return &d, nil
}

const documentColumns = `id, title, content, content_hash, content_length, source,
	original_filename, file_extension, crawl_id, crawl_url, author,
	description, content_type, created_at, updated_at, processed_at,
	chunks_count, code_blocks_count, status, extra_json`

// GetDocument fetches a document by id.
func (s *Store) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, nil
	}
	return scanDocument(rows)
}

// FindDocumentByContentHash implements addDocument's dedup lookup by hash.
func (s *Store) FindDocumentByContentHash(ctx context.Context, hash string) (*model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE content_hash = ? AND status = ? LIMIT 1`,
		hash, string(model.StatusActive))
	if err != nil {
		return nil, fmt.Errorf("find document by content hash: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, nil
	}
	return scanDocument(rows)
}

// ListDocuments returns active documents ordered by creation time,
// newest first, with offset/limit pagination.
func (s *Store) ListDocuments(ctx context.Context, offset, limit int) ([]*model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+documentColumns+` FROM documents
		WHERE status = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		string(model.StatusActive), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []*model.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DeleteDocumentCascade removes a document and every row that
// references it (chunks, code blocks, tags, languages, keywords) plus
// their vector/bitmap index entries.
func (s *Store) DeleteDocumentCascade(ctx context.Context, id string) error {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return err
	}
	if doc == nil {
		return nil
	}
	chunks, err := s.GetChunksByDocument(ctx, id)
	if err != nil {
		return err
	}
	blocks, err := s.GetCodeBlocksByDocument(ctx, id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rowid, rowidErr := s.rowidForDocument(ctx, id)

	chunkIDs := make([]string, len(chunks))
	for i, c := range chunks {
		chunkIDs[i] = c.ID
	}
	blockIDs := make([]string, len(blocks))
	for i, b := range blocks {
		blockIDs[i] = b.ID
	}
	if err := s.chunkVectors.Delete(ctx, chunkIDs); err != nil {
		return err
	}
	if err := s.codeBlockVectors.Delete(ctx, blockIDs); err != nil {
		return err
	}

	if rowidErr == nil {
		s.sourceBitmaps.remove(string(doc.Source), rowid)
		s.statusBitmaps.remove(string(doc.Status), rowid)
	}

	// document_tags, document_languages, chunks, code_blocks, keywords
	// all cascade via ON DELETE CASCADE foreign keys.
	_, err = s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}
