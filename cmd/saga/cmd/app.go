// Package cmd provides the CLI commands for saga.
package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sagaeng/saga/internal/config"
	"github.com/sagaeng/saga/internal/docindex"
	"github.com/sagaeng/saga/internal/embed"
	"github.com/sagaeng/saga/internal/ingest"
	"github.com/sagaeng/saga/internal/langdetect"
	"github.com/sagaeng/saga/internal/logging"
	"github.com/sagaeng/saga/internal/query"
	"github.com/sagaeng/saga/internal/rerank"
	"github.com/sagaeng/saga/internal/scheduler"
	"github.com/sagaeng/saga/internal/store"
)

// app wires every collaborator the CLI needs: store, in-process index,
// embedder, ingest pipeline, and query engine, all built from the same
// resolved configuration.
type app struct {
	cfg      config.Config
	store    *store.Store
	index    *docindex.Index
	pipeline *ingest.Pipeline
	engine   *query.Engine
	logger   *slog.Logger
	cleanup  func()
}

// newApp opens the store and assembles the pipeline and query engine
// against it. Callers must call close() when done.
func newApp(debug bool) (*app, error) {
	cfg := config.Load()
	if err := config.LoadFileOverrides(&cfg, filepath.Join(cfg.Paths.BaseDir, "config.yaml")); err != nil {
		return nil, err
	}

	logCfg := logging.DefaultConfig()
	if debug {
		logCfg.Level = "debug"
	}
	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	st, err := store.Open(store.Config{
		Path:               cfg.Paths.StorePath,
		EmbeddingDimension: cfg.Embeddings.Dimensions,
		UseHNSW:            cfg.Store.UseHNSW,
	})
	if err != nil {
		cleanup()
		return nil, err
	}

	if err := os.MkdirAll(cfg.Paths.DataDir, 0o755); err != nil {
		cleanup()
		return nil, err
	}
	snapshotPath := filepath.Join(cfg.Paths.DataDir, "index.json")
	idx, loaded, err := docindex.Load(snapshotPath)
	if err != nil {
		cleanup()
		return nil, err
	}
	if !loaded {
		idx = docindex.New(snapshotPath)
		if err := docindex.RebuildFromStore(rootContext(), idx, st); err != nil {
			logger.Warn("rebuilding in-process index from store failed", slog.String("error", err.Error()))
		}
	}

	embedder := embed.New(cfg.Embeddings)
	detector := langdetect.New(cfg.Language.ConfidenceThreshold)

	sched := scheduler.New()
	sched.MarkReady()

	pipeline := ingest.New(st, idx, embedder, detector, sched, nil, ingest.Config{
		AcceptedLanguages: cfg.Language.AcceptedLanguages,
		TagGeneration:     cfg.Ingest.TagGeneration,
		StreamChunkBytes:  cfg.Ingest.StreamChunkBytes,
		StreamThreshold:   cfg.Ingest.StreamThresholdBytes,
		UploadsDir:        cfg.Paths.UploadsDir,
		DataDir:           cfg.Paths.DataDir,
	})

	engine := query.New(st, idx, embedder, newReranker(cfg.Query), query.Config{
		DefaultQueryLanguages: cfg.Query.DefaultQueryLanguages,
		SimilarityThreshold:   cfg.Store.SimilarityThreshold,
		MaxResults:            cfg.Query.MaxResults,
	})

	return &app{
		cfg:      cfg,
		store:    st,
		index:    idx,
		pipeline: pipeline,
		engine:   engine,
		logger:   logger,
		cleanup:  cleanup,
	}, nil
}

func (a *app) close() {
	if a.index != nil {
		a.index.Flush()
	}
	if a.store != nil {
		_ = a.store.Close()
	}
	if a.cleanup != nil {
		a.cleanup()
	}
}

func rootContext() context.Context {
	return context.Background()
}

// newReranker builds an HTTP cross-encoder reranker when the query config
// names an endpoint, falling back to the identity reranker otherwise. A
// reranker call failure at query time still falls back to the pre-rerank
// ordering (see query.Engine.rerankCandidates); this only decides which
// provider is attempted first.
func newReranker(cfg config.QueryConfig) rerank.Reranker {
	if !cfg.UseReranking || cfg.RerankEndpoint == "" {
		return rerank.NoOp{}
	}
	return rerank.NewHTTPReranker(rerank.HTTPConfig{
		Endpoint: cfg.RerankEndpoint,
		Model:    cfg.RerankModel,
	})
}
