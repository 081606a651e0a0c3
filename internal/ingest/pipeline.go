// Package ingest orchestrates document ingestion:
// detect -> extract -> language-gate -> dedup -> chunk -> embed ->
// persist -> defer-on-failure.
package ingest

import (
	"context"
	"time"

	"github.com/sagaeng/saga/internal/chunk"
	"github.com/sagaeng/saga/internal/docindex"
	"github.com/sagaeng/saga/internal/errors"
	"github.com/sagaeng/saga/internal/model"
	"github.com/sagaeng/saga/internal/scheduler"
	"github.com/sagaeng/saga/internal/store"
)

// Detector is the minimal collaborator needed from the language
// detector.
type Detector interface {
	Detect(text string) []string
}

// TagGenerator is the background tag-generation LLM collaborator.
// Generate receives the (already truncated) content and returns the
// raw model output for tolerant parsing.
type TagGenerator interface {
	Generate(ctx context.Context, content string) (string, error)
}

// Config holds the ingest pipeline's tunables, mirroring
// config.ChunkingConfig / config.IngestConfig / config.LanguageConfig
// without importing the config package directly (keeps ingest testable
// with literal values).
type Config struct {
	ChunkOptions      chunk.Options
	AcceptedLanguages []string
	TagGeneration     bool
	StreamChunkBytes  int
	StreamThreshold   int
	UploadsDir        string
	DataDir           string
}

// Pipeline wires the store, in-process index, embedder, chunker,
// language detector, code-block extractor, write scheduler, and
// (optional) tag generator and PDF extractor into the addDocument/
// upload/delete operations.
type Pipeline struct {
	Store        store.Capability
	Index        *docindex.Index
	Embedder     chunk.Embedder
	Detector     Detector
	Scheduler    *scheduler.Scheduler
	Tagger       TagGenerator
	PDFExtractor TextExtractor
	Config       Config

	now func() time.Time
}

// New constructs a Pipeline. now defaults to time.Now when nil; tests
// may override it for deterministic timestamps.
func New(st store.Capability, idx *docindex.Index, embedder chunk.Embedder, detector Detector, sched *scheduler.Scheduler, tagger TagGenerator, cfg Config) *Pipeline {
	return &Pipeline{
		Store:     st,
		Index:     idx,
		Embedder:  embedder,
		Detector:  detector,
		Scheduler: sched,
		Tagger:    tagger,
		Config:    cfg,
		now:       time.Now,
	}
}

// AddDocumentInput is the addDocument request shape.
type AddDocumentInput struct {
	Title       string
	Content     string
	ContentType string
	Metadata    model.Metadata
}

// AddDocumentResult is the outcome of addDocument: exactly one of
// Document or Rejected is set.
type AddDocumentResult struct {
	Document *model.Document
	Rejected *errors.Error
}

// FlushChunks implements scheduler.Flusher, draining one document's
// deferred chunk batch into the store once it becomes ready. A
// transient write failure is retried with backoff before the batch is
// put back on the scheduler's queue.
func (p *Pipeline) FlushChunks(ctx context.Context, documentID string, chunks []*model.Chunk) error {
	return errors.Retry(ctx, errors.StoreWriteRetryConfig(), func() error {
		return p.Store.PutChunks(ctx, chunks)
	})
}
