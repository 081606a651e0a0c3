package store

import (
	"context"
	"fmt"

	"github.com/sagaeng/saga/internal/model"
)

// PutTags inserts or replaces a document's tags.
func (s *Store) PutTags(ctx context.Context, tags []*model.DocumentTag) error {
	if len(tags) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put tags: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO document_tags (document_id, tag, is_generated)
		VALUES (?,?,?)
		ON CONFLICT(document_id, tag) DO UPDATE SET is_generated=excluded.is_generated
	`)
	if err != nil {
		return fmt.Errorf("prepare put tags: %w", err)
	}
	defer stmt.Close()

	for _, t := range tags {
		if _, err := stmt.ExecContext(ctx, t.DocumentID, t.Tag, boolToInt(t.IsGenerated)); err != nil {
			return fmt.Errorf("put tag %q for document %s: %w", t.Tag, t.DocumentID, err)
		}
	}
	return tx.Commit()
}

// GetTagsByDocument returns a document's tags.
func (s *Store) GetTagsByDocument(ctx context.Context, docID string) ([]*model.DocumentTag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT document_id, tag, is_generated FROM document_tags WHERE document_id = ?`, docID)
	if err != nil {
		return nil, fmt.Errorf("get tags for document %s: %w", docID, err)
	}
	defer rows.Close()

	var out []*model.DocumentTag
	for rows.Next() {
		var t model.DocumentTag
		var isGenerated int
		if err := rows.Scan(&t.DocumentID, &t.Tag, &isGenerated); err != nil {
			return nil, err
		}
		t.IsGenerated = isGenerated != 0
		out = append(out, &t)
	}
	return out, rows.Err()
}

// DeleteTagsByDocument removes a document's tags.
func (s *Store) DeleteTagsByDocument(ctx context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `DELETE FROM document_tags WHERE document_id = ?`, docID)
	if err != nil {
		return fmt.Errorf("delete tags for document %s: %w", docID, err)
	}
	return nil
}

// PutLanguages inserts or replaces a document's detected languages. The
// language bitmap index covers code_blocks.language only and is not
// touched here.
func (s *Store) PutLanguages(ctx context.Context, langs []*model.DocumentLanguage) error {
	if len(langs) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put languages: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO document_languages (document_id, language_code) VALUES (?,?)
	`)
	if err != nil {
		return fmt.Errorf("prepare put languages: %w", err)
	}
	defer stmt.Close()

	for _, l := range langs {
		if _, err := stmt.ExecContext(ctx, l.DocumentID, l.LanguageCode); err != nil {
			return fmt.Errorf("put language %q for document %s: %w", l.LanguageCode, l.DocumentID, err)
		}
	}
	return tx.Commit()
}

// GetLanguagesByDocument returns a document's detected languages.
func (s *Store) GetLanguagesByDocument(ctx context.Context, docID string) ([]*model.DocumentLanguage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT document_id, language_code FROM document_languages WHERE document_id = ?`, docID)
	if err != nil {
		return nil, fmt.Errorf("get languages for document %s: %w", docID, err)
	}
	defer rows.Close()

	var out []*model.DocumentLanguage
	for rows.Next() {
		var l model.DocumentLanguage
		if err := rows.Scan(&l.DocumentID, &l.LanguageCode); err != nil {
			return nil, err
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

// DeleteLanguagesByDocument removes a document's detected languages.
func (s *Store) DeleteLanguagesByDocument(ctx context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `DELETE FROM document_languages WHERE document_id = ?`, docID)
	if err != nil {
		return fmt.Errorf("delete languages for document %s: %w", docID, err)
	}
	return nil
}

// PutKeywords inserts or replaces keyword postings used for the
// keyword-fallback ranking pass.
func (s *Store) PutKeywords(ctx context.Context, keywords []*model.Keyword) error {
	if len(keywords) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put keywords: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO keywords (keyword, document_id, source, frequency)
		VALUES (?,?,?,?)
		ON CONFLICT(keyword, document_id, source) DO UPDATE SET frequency=excluded.frequency
	`)
	if err != nil {
		return fmt.Errorf("prepare put keywords: %w", err)
	}
	defer stmt.Close()

	for _, k := range keywords {
		if _, err := stmt.ExecContext(ctx, k.Keyword, k.DocumentID, string(k.Source), k.Frequency); err != nil {
			return fmt.Errorf("put keyword %q for document %s: %w", k.Keyword, k.DocumentID, err)
		}
	}
	return tx.Commit()
}

// DeleteKeywordsByDocument removes a document's keyword postings.
func (s *Store) DeleteKeywordsByDocument(ctx context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `DELETE FROM keywords WHERE document_id = ?`, docID)
	if err != nil {
		return fmt.Errorf("delete keywords for document %s: %w", docID, err)
	}
	return nil
}

// SearchKeywords returns, for each document matching any of words, the
// count of matching keyword postings — used to rank the keyword-fallback
// augmentation pass.
func (s *Store) SearchKeywords(ctx context.Context, words []string, limit int) (map[string]int, error) {
	if len(words) == 0 {
		return map[string]int{}, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	placeholders := ""
	args := make([]any, 0, len(words))
	for i, w := range words {
		if i > 0 {
			placeholders += ","
		}
		placeholders += "?"
		args = append(args, w)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT document_id, SUM(frequency) AS total
		FROM keywords
		WHERE keyword IN (`+placeholders+`)
		GROUP BY document_id
		ORDER BY total DESC
		LIMIT ?
	`, append(args, limit)...)
	if err != nil {
		return nil, fmt.Errorf("search keywords: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var docID string
		var total int
		if err := rows.Scan(&docID, &total); err != nil {
			return nil, err
		}
		out[docID] = total
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
