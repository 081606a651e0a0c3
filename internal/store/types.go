// Package store implements the vector and metadata store: a single non-optional capability interface over SQLite
// for row storage plus an in-process HNSW/brute-force vector index per
// embedded column.
package store

import (
	"context"
	"time"

	"github.com/sagaeng/saga/internal/model"
)

// ScalarFilter narrows a vector search to rows matching a scalar
// predicate, pushed down before the nearest-neighbor scan completes.
type ScalarFilter struct {
	DocumentIDs []string
	Sources     []model.Source
	Tags        []string
	CrawlID     string
	Languages   []string
}

// Config configures Store construction.
type Config struct {
	Path               string
	EmbeddingDimension int
	UseHNSW            bool
}

// Stats summarizes corpus size for IndexParams sizing and diagnostics.
type Stats struct {
	DocumentCount   int
	ChunkCount      int
	CodeBlockCount  int
	KeywordCount    int
	SchemaVersion   int
	VectorIndexSize int
}

// ConsistencyReport is produced by CheckConsistency.
type ConsistencyReport struct {
	OK                  bool
	OrphanedChunks      []string
	OrphanedCodeBlocks  []string
	MissingVectorIDs    []string
	SchemaVersionOK     bool
	CheckedAt           time.Time
}

// Capability is the single interface the query and ingest engines
// depend on: every implementation supports every method, with no
// optional capability probing.
type Capability interface {
	PutDocument(ctx context.Context, doc *model.Document) error
	GetDocument(ctx context.Context, id string) (*model.Document, error)
	FindDocumentByContentHash(ctx context.Context, hash string) (*model.Document, error)
	ListDocuments(ctx context.Context, offset, limit int) ([]*model.Document, error)
	DeleteDocumentCascade(ctx context.Context, id string) error

	PutChunks(ctx context.Context, chunks []*model.Chunk) error
	GetChunksByDocument(ctx context.Context, docID string) ([]*model.Chunk, error)
	DeleteChunksByDocument(ctx context.Context, docID string) error

	PutCodeBlocks(ctx context.Context, blocks []*model.CodeBlock) error
	GetCodeBlocksByDocument(ctx context.Context, docID string) ([]*model.CodeBlock, error)
	DeleteCodeBlocksByDocument(ctx context.Context, docID string) error

	PutTags(ctx context.Context, tags []*model.DocumentTag) error
	GetTagsByDocument(ctx context.Context, docID string) ([]*model.DocumentTag, error)
	DeleteTagsByDocument(ctx context.Context, docID string) error

	PutLanguages(ctx context.Context, langs []*model.DocumentLanguage) error
	GetLanguagesByDocument(ctx context.Context, docID string) ([]*model.DocumentLanguage, error)
	DeleteLanguagesByDocument(ctx context.Context, docID string) error

	PutKeywords(ctx context.Context, keywords []*model.Keyword) error
	DeleteKeywordsByDocument(ctx context.Context, docID string) error
	SearchKeywords(ctx context.Context, words []string, limit int) (map[string]int, error)

	SearchChunksByVector(ctx context.Context, query []float32, k int, filter *ScalarFilter) ([]VectorHit, error)
	SearchCodeBlocksByVector(ctx context.Context, query []float32, k int, language string) ([]VectorHit, error)

	DeleteByCrawlID(ctx context.Context, crawlID string) ([]string, error)

	Stats(ctx context.Context) (Stats, error)
	CheckConsistency(ctx context.Context) (ConsistencyReport, error)

	Close() error
}

var _ Capability = (*Store)(nil)
