package store

import (
	"context"
	"fmt"
	"time"

	"github.com/sagaeng/saga/internal/model"
)

// CheckConsistency validates the store's internal referential integrity:
// orphaned chunk/code-block rows, chunk rows missing from the vector
// index, and schema version agreement.
func (s *Store) CheckConsistency(ctx context.Context) (ConsistencyReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report := ConsistencyReport{OK: true, CheckedAt: time.Now().UTC(), SchemaVersionOK: true}

	var integrityResult string
	if err := s.db.QueryRowContext(ctx, `PRAGMA integrity_check`).Scan(&integrityResult); err != nil {
		return report, fmt.Errorf("integrity check: %w", err)
	}
	if integrityResult != "ok" {
		report.OK = false
	}

	var version int
	if err := s.db.QueryRowContext(ctx, `SELECT version FROM schema_version LIMIT 1`).Scan(&version); err != nil {
		return report, fmt.Errorf("read schema version: %w", err)
	}
	if version != model.CurrentSchemaVersion {
		report.SchemaVersionOK = false
		report.OK = false
	}

	orphanChunks, err := s.collectIDs(ctx, `
		SELECT c.id FROM chunks c
		LEFT JOIN documents d ON d.id = c.document_id
		WHERE d.id IS NULL
	`)
	if err != nil {
		return report, err
	}
	report.OrphanedChunks = orphanChunks

	orphanBlocks, err := s.collectIDs(ctx, `
		SELECT b.id FROM code_blocks b
		LEFT JOIN documents d ON d.id = b.document_id
		WHERE d.id IS NULL
	`)
	if err != nil {
		return report, err
	}
	report.OrphanedCodeBlocks = orphanBlocks

	missing, err := s.collectIDs(ctx, `SELECT id FROM chunks WHERE embedding IS NOT NULL`)
	if err != nil {
		return report, err
	}
	for _, id := range missing {
		if !s.chunkVectors.Contains(id) {
			report.MissingVectorIDs = append(report.MissingVectorIDs, id)
		}
	}

	if len(report.OrphanedChunks) > 0 || len(report.OrphanedCodeBlocks) > 0 || len(report.MissingVectorIDs) > 0 {
		report.OK = false
	}
	return report, nil
}

func (s *Store) collectIDs(ctx context.Context, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("consistency query: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
