package query

import (
	"context"
	"strings"

	"github.com/sagaeng/saga/internal/errors"
	"github.com/sagaeng/saga/internal/model"
)

// CodeBlockOptions configures a code-block search.
type CodeBlockOptions struct {
	Limit    int
	Language string
}

// CodeBlockHit is one matched code block with its similarity score.
type CodeBlockHit struct {
	Block *model.CodeBlock
	Score float64
}

// SearchCodeBlocks runs the same vector-search flow as Query, over the
// code_blocks table, optionally restricted to one language.
func (e *Engine) SearchCodeBlocks(ctx context.Context, text string, opts CodeBlockOptions) ([]CodeBlockHit, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	vec, err := e.Embedder.Embed(ctx, text)
	if err != nil {
		return nil, errors.Wrap(errors.ProviderUnavailable, err)
	}

	hits, err := e.Store.SearchCodeBlocksByVector(ctx, vec, limit, opts.Language)
	if err != nil {
		return nil, errors.Wrap(errors.IoError, err)
	}

	out := make([]CodeBlockHit, 0, len(hits))
	for _, h := range hits {
		docID, ok := documentIDFromCodeBlockID(h.ID)
		if !ok {
			continue
		}
		blocks, err := e.Store.GetCodeBlocksByDocument(ctx, docID)
		if err != nil {
			continue
		}
		for _, b := range blocks {
			if b.ID == h.ID {
				out = append(out, CodeBlockHit{Block: b, Score: similarityScore(h.Distance)})
				break
			}
		}
	}
	return out, nil
}

// documentIDFromCodeBlockID recovers the owning document id from a code
// block id of the form "<documentID>_code_<index>", the deterministic
// shape codeblock.BuildCodeBlockModels assigns.
func documentIDFromCodeBlockID(id string) (string, bool) {
	idx := strings.LastIndex(id, "_code_")
	if idx < 0 {
		return "", false
	}
	return id[:idx], true
}
