package store

import (
	"context"
	"fmt"
)

// DeleteByCrawlID removes every document ingested under crawlID, plus
// their chunks, code blocks, tags, languages, and keywords, returning
// the deleted document ids.
func (s *Store) DeleteByCrawlID(ctx context.Context, crawlID string) ([]string, error) {
	s.mu.RLock()
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM documents WHERE crawl_id = ?`, crawlID)
	if err != nil {
		s.mu.RUnlock()
		return nil, fmt.Errorf("list documents for crawl %s: %w", crawlID, err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			s.mu.RUnlock()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	s.mu.RUnlock()

	for _, id := range ids {
		if err := s.DeleteDocumentCascade(ctx, id); err != nil {
			return nil, fmt.Errorf("delete document %s from crawl %s: %w", id, crawlID, err)
		}
	}
	return ids, nil
}
