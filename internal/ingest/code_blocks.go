package ingest

import (
	"context"
	"log/slog"

	"github.com/sagaeng/saga/internal/codeblock"
	"github.com/sagaeng/saga/internal/model"
)

// addCodeBlocksInternal embeds and persists a document's extracted code
// blocks (addDocument step 6). Embedding or store failures are logged
// and do not fail the surrounding document ingest — code blocks are a
// supplementary index, not load-bearing for document retrieval.
func (p *Pipeline) addCodeBlocksInternal(ctx context.Context, documentID string, blocks []codeblock.Extracted) {
	models, err := codeblock.BuildCodeBlockModels(ctx, documentID, blocks, p.Embedder)
	if err != nil {
		slog.Warn("ingest_code_block_embed_failed", slog.String("document_id", documentID), slog.String("error", err.Error()))
		return
	}

	rows := make([]*model.CodeBlock, len(models))
	for i := range models {
		rows[i] = &models[i]
	}

	if err := p.Store.PutCodeBlocks(ctx, rows); err != nil {
		slog.Warn("ingest_code_block_store_failed", slog.String("document_id", documentID), slog.String("error", err.Error()))
	}
}
