package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // pure Go driver, no CGO

	"github.com/sagaeng/saga/internal/model"
)

// Store is the Capability implementation: SQLite for row storage, one
// VectorIndex per embedded column (chunks, code_blocks), and a roaring
// bitmap scalar index per low-cardinality column.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	path   string
	cfg    Config
	closed bool

	chunkVectors     *VectorIndex
	codeBlockVectors *VectorIndex

	sourceBitmaps   *bitmapIndex
	statusBitmaps   *bitmapIndex
	languageBitmaps *bitmapIndex
}

// Open opens (or creates) the store at cfg.Path. An empty path opens an
// in-memory database, used by tests.
func Open(cfg Config) (*Store, error) {
	dsn := cfg.Path
	if dsn == "" {
		dsn = ":memory:"
	} else {
		dir := filepath.Dir(dsn)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory %s: %w", dir, err)
		}
		if err := validateIntegrity(dsn); err != nil {
			slog.Warn("store_corrupted", slog.String("path", dsn), slog.String("error", err.Error()))
			_ = os.Remove(dsn)
			_ = os.Remove(dsn + "-wal")
			_ = os.Remove(dsn + "-shm")
			slog.Info("store_cleared", slog.String("path", dsn), slog.String("reason", "corruption detected, reindex required"))
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	// Single writer connection: SQLite serializes writers anyway, and a
	// pool invites "database is locked" under WAL with modernc.org/sqlite.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -65536",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma %q: %w", p, err)
		}
	}

	s := &Store{
		db:               db,
		path:             dsn,
		cfg:              cfg,
		chunkVectors:     NewVectorIndex(cfg.EmbeddingDimension, cfg.UseHNSW, ParamsForCorpusSize(0)),
		codeBlockVectors: NewVectorIndex(cfg.EmbeddingDimension, cfg.UseHNSW, ParamsForCorpusSize(0)),
		sourceBitmaps:    newBitmapIndex(),
		statusBitmaps:    newBitmapIndex(),
		languageBitmaps:  newBitmapIndex(),
	}

	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	if err := s.checkSchemaVersion(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.rebuildIndexes(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("rebuild indexes: %w", err)
	}

	return s, nil
}

func validateIntegrity(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("open for validation: %w", err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("database corrupted: %s", result)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS documents (
	id                 TEXT PRIMARY KEY,
	title              TEXT NOT NULL,
	content            TEXT NOT NULL,
	content_hash       TEXT NOT NULL,
	content_length     INTEGER NOT NULL,
	source             TEXT NOT NULL,
	original_filename  TEXT,
	file_extension     TEXT,
	crawl_id           TEXT,
	crawl_url          TEXT,
	author             TEXT,
	description        TEXT,
	content_type       TEXT,
	created_at         TEXT NOT NULL,
	updated_at         TEXT NOT NULL,
	processed_at       TEXT,
	chunks_count       INTEGER NOT NULL DEFAULT 0,
	code_blocks_count  INTEGER NOT NULL DEFAULT 0,
	status             TEXT NOT NULL DEFAULT 'active',
	extra_json         TEXT
);
CREATE INDEX IF NOT EXISTS idx_documents_content_hash ON documents(content_hash);
CREATE INDEX IF NOT EXISTS idx_documents_crawl_id ON documents(crawl_id);
CREATE INDEX IF NOT EXISTS idx_documents_source ON documents(source);
CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);

CREATE TABLE IF NOT EXISTS document_tags (
	document_id  TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	tag          TEXT NOT NULL,
	is_generated INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (document_id, tag)
);
CREATE INDEX IF NOT EXISTS idx_document_tags_tag ON document_tags(tag);

CREATE TABLE IF NOT EXISTS document_languages (
	document_id   TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	language_code TEXT NOT NULL,
	PRIMARY KEY (document_id, language_code)
);
CREATE INDEX IF NOT EXISTS idx_document_languages_code ON document_languages(language_code);

CREATE TABLE IF NOT EXISTS chunks (
	id                  TEXT PRIMARY KEY,
	document_id         TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	chunk_index         INTEGER NOT NULL,
	start_position      INTEGER NOT NULL,
	end_position        INTEGER NOT NULL,
	content             TEXT NOT NULL,
	content_length      INTEGER NOT NULL,
	embedding           BLOB,
	surrounding_context TEXT,
	semantic_topic      TEXT,
	created_at          TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chunks_document_id ON chunks(document_id);

CREATE TABLE IF NOT EXISTS code_blocks (
	id             TEXT PRIMARY KEY,
	document_id    TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	block_id       TEXT NOT NULL,
	block_index    INTEGER NOT NULL,
	language       TEXT NOT NULL,
	content        TEXT NOT NULL,
	content_length INTEGER NOT NULL,
	embedding      BLOB,
	source_url     TEXT
);
CREATE INDEX IF NOT EXISTS idx_code_blocks_document_id ON code_blocks(document_id);
CREATE INDEX IF NOT EXISTS idx_code_blocks_language ON code_blocks(language);

CREATE TABLE IF NOT EXISTS keywords (
	keyword     TEXT NOT NULL,
	document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	source      TEXT NOT NULL,
	frequency   INTEGER NOT NULL DEFAULT 1,
	PRIMARY KEY (keyword, document_id, source)
);
CREATE INDEX IF NOT EXISTS idx_keywords_keyword ON keywords(keyword);
`

func (s *Store) initSchema() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT OR IGNORE INTO schema_version (version) VALUES (?)`, model.CurrentSchemaVersion)
	return err
}

func (s *Store) checkSchemaVersion() error {
	var v int
	err := s.db.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&v)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if v != model.CurrentSchemaVersion {
		return fmt.Errorf("schema version mismatch: store has %d, engine expects %d", v, model.CurrentSchemaVersion)
	}
	return nil
}

// rebuildIndexes replays persisted embedding BLOBs and scalar columns
// into the in-process vector and bitmap indexes on open, since the HNSW
// graph and roaring bitmaps themselves are not persisted.
func (s *Store) rebuildIndexes(ctx context.Context) error {
	chunkRows, err := s.db.QueryContext(ctx, `SELECT id, embedding FROM chunks WHERE embedding IS NOT NULL`)
	if err != nil {
		return fmt.Errorf("query chunk embeddings: %w", err)
	}
	var chunkIDs []string
	var chunkVecs [][]float32
	for chunkRows.Next() {
		var id string
		var blob []byte
		if err := chunkRows.Scan(&id, &blob); err != nil {
			chunkRows.Close()
			return err
		}
		chunkIDs = append(chunkIDs, id)
		chunkVecs = append(chunkVecs, decodeEmbedding(blob))
	}
	chunkRows.Close()
	if len(chunkIDs) > 0 {
		if err := s.chunkVectors.Add(ctx, chunkIDs, chunkVecs); err != nil {
			return fmt.Errorf("rebuild chunk vector index: %w", err)
		}
	}

	blockRows, err := s.db.QueryContext(ctx, `SELECT id, embedding FROM code_blocks WHERE embedding IS NOT NULL`)
	if err != nil {
		return fmt.Errorf("query code block embeddings: %w", err)
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
		if err := s.codeBlockVectors.Add(ctx, blockIDs, blockVecs); err != nil {
			return fmt.Errorf("rebuild code block vector index: %w", err)
		}
	}

	docRows, err := s.db.QueryContext(ctx, `SELECT rowid, source, status FROM documents`)
	if err != nil {
		return fmt.Errorf("query documents for bitmap rebuild: %w", err)
	}
	defer docRows.Close()
	for docRows.Next() {
		var rowid int64
		var source, status string
		if err := docRows.Scan(&rowid, &source, &status); err != nil {
			return err
		}
		s.sourceBitmaps.add(source, uint32(rowid))
		s.statusBitmaps.add(status, uint32(rowid))
	}

	langRows, err := s.db.QueryContext(ctx, `SELECT rowid, language FROM code_blocks`)
	if err != nil {
		return fmt.Errorf("query languages for bitmap rebuild: %w", err)
	}
	defer langRows.Close()
	for langRows.Next() {
		var rowid int64
		var code string
		if err := langRows.Scan(&rowid, &code); err != nil {
			return err
		}
		s.languageBitmaps.add(code, uint32(rowid))
	}
	return nil
}

func (s *Store) now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
