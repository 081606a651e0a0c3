package codeblock

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sagaeng/saga/internal/model"
)

// Embedder is the minimal collaborator needed from the embedding
// provider.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Extract pulls code blocks from a document's content.
func Extract(content string, looksLikeHTML bool) ([]Extracted, error) {
	blocks := ExtractMarkdown(content)
	if looksLikeHTML || strings.Contains(content, "<pre") || strings.Contains(content, "<code") {
		htmlBlocks, err := ExtractHTML(content)
		if err != nil {
			return nil, fmt.Errorf("extract html code blocks: %w", err)
		}
		blocks = append(blocks, htmlBlocks...)
	}
	return Deduplicate(blocks), nil
}

// Deduplicate drops blocks sharing (content, language) with an earlier
// block, and lets a known-language variant supersede an unknown-language
// variant with the same content hash.
func Deduplicate(blocks []Extracted) []Extracted {
	type key struct {
		hash string
		lang string
	}
	seen := make(map[key]int) // key -> index in out
	var out []Extracted

	for _, b := range blocks {
		hash := model.ContentHash16(b.Content)
		k := key{hash: hash, lang: b.Language}
		if _, ok := seen[k]; ok {
			continue
		}

		if b.Language != "unknown" {
			unkKey := key{hash: hash, lang: "unknown"}
			if idx, ok := seen[unkKey]; ok {
				out[idx] = b
				seen[k] = idx
				delete(seen, unkKey)
				continue
			}
		}

		seen[k] = len(out)
		out = append(out, b)
	}
	return out
}

// BuildCodeBlockModels embeds each extracted block and assigns a dense
// block_index per document, deriving the persisted id from document id
// and index.
func BuildCodeBlockModels(ctx context.Context, documentID string, blocks []Extracted, embedder Embedder) ([]model.CodeBlock, error) {
	out := make([]model.CodeBlock, len(blocks))
	for i, b := range blocks {
		vec, err := embedder.Embed(ctx, b.Content)
		if err != nil {
			return nil, fmt.Errorf("embed code block %d: %w", i, err)
		}
		out[i] = model.CodeBlock{
			ID:            documentID + "_code_" + strconv.Itoa(i),
			DocumentID:    documentID,
			BlockID:       b.BlockID,
			BlockIndex:    i,
			Language:      b.Language,
			Content:       b.Content,
			ContentLength: len(b.Content),
			Embedding:     vec,
			SourceURL:     b.SourceURL,
		}
	}
	return out, nil
}
