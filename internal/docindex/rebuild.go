package docindex

import (
	"context"
	"fmt"

	"github.com/sagaeng/saga/internal/model"
	"github.com/sagaeng/saga/internal/store"
)

// rebuildPageSize bounds how many documents are fetched per store round
// trip while rebuilding.
const rebuildPageSize = 500

// RebuildFromStore replays every active document (and its chunks, tags,
// and keywords) from s into idx, with auto-save suppressed until the
// pass completes.
func RebuildFromStore(ctx context.Context, idx *Index, s store.Capability) error {
	idx.SuppressAutoSave()
	defer idx.ResumeAutoSave()

	offset := 0
	for {
		docs, err := s.ListDocuments(ctx, offset, rebuildPageSize)
		if err != nil {
			return fmt.Errorf("rebuild document index: %w", err)
		}
		if len(docs) == 0 {
			break
		}

		for _, doc := range docs {
			if err := rebuildOneDocument(ctx, idx, s, doc); err != nil {
				return err
			}
		}

		if len(docs) < rebuildPageSize {
			break
		}
		offset += rebuildPageSize
	}
	return nil
}

func rebuildOneDocument(ctx context.Context, idx *Index, s store.Capability, doc *model.Document) error {
	tags, err := s.GetTagsByDocument(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("rebuild tags for document %s: %w", doc.ID, err)
	}
	tagNames := make([]string, len(tags))
	for i, t := range tags {
		tagNames[i] = t.Tag
	}

	keywordTokens := tokenize(doc.Content)

	idx.Put(doc.ID, documentPath(doc.ID), SearchFields{
		Title:    doc.Title,
		Tags:     tagNames,
		Source:   string(doc.Source),
		Keywords: keywordTokens,
	}, doc.Content)

	if doc.CrawlID != "" {
		idx.PutCrawlID(doc.ID, doc.CrawlID)
	}

	chunks, err := s.GetChunksByDocument(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("rebuild chunks for document %s: %w", doc.ID, err)
	}
	for _, c := range chunks {
		idx.PutChunkLocation(c.ID, ChunkLocation{DocumentID: doc.ID, Index: c.ChunkIndex})
	}
	return nil
}

// documentPath is the on-disk mirror path for a document's markdown
// file.
func documentPath(id string) string {
	return "data/" + id + ".md"
}
