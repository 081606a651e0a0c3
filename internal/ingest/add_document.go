package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sagaeng/saga/internal/chunk"
	"github.com/sagaeng/saga/internal/codeblock"
	"github.com/sagaeng/saga/internal/docindex"
	"github.com/sagaeng/saga/internal/errors"
	"github.com/sagaeng/saga/internal/langdetect"
	"github.com/sagaeng/saga/internal/model"
	"github.com/sagaeng/saga/internal/scheduler"
)

// AddDocument implements the addDocument algorithm: content-id, language gate, re-ingest merge, duplicate check,
// chunk+embed+persist, code-block extraction, background tag
// generation.
func (p *Pipeline) AddDocument(ctx context.Context, in AddDocumentInput) AddDocumentResult {
	id := model.DocumentID(in.Content)

	// Step 2: language gate.
	detected := p.Detector.Detect(in.Content)
	if !langdetect.Allowlisted(detected, p.Config.AcceptedLanguages) {
		return AddDocumentResult{Rejected: errors.New(errors.LanguageRejected,
			fmt.Sprintf("detected languages %v not in accepted list", detected), nil)}
	}

	// Step 3: re-ingest of identical content merges metadata in place.
	if existing, err := p.Store.GetDocument(ctx, id); err == nil && existing != nil {
		return p.mergeExisting(ctx, existing, in)
	}

	// Step 4: duplicate-by-content-hash check against the in-process
	// index. The id collision above normally subsumes this; this path
	// only fires if the index and store have drifted.
	if dupID, ok := p.Index.FindDuplicateContent(in.Content); ok && dupID != id {
		slog.Warn("ingest_duplicate_content_hash_mismatch",
			slog.String("new_id", id), slog.String("existing_id", dupID))
	}

	now := p.now()
	doc := &model.Document{
		ID:               id,
		Title:            in.Title,
		Content:          in.Content,
		ContentHash:      id,
		ContentLength:    len(in.Content),
		Source:           in.Metadata.Source,
		CrawlID:          in.Metadata.CrawlID,
		CrawlURL:         in.Metadata.CrawlURL,
		Author:           in.Metadata.Author,
		Description:      in.Metadata.Description,
		ContentType:      in.Metadata.ContentType,
		OriginalFilename: in.Metadata.OriginalFilename,
		FileExtension:    in.Metadata.FileExtension,
		CreatedAt:        now,
		UpdatedAt:        now,
		ProcessedAt:      now,
		Status:           model.StatusActive,
		Extra:            in.Metadata.Extra,
	}
	if doc.Source == "" {
		doc.Source = model.SourceAPI
	}

	// Step 5: chunk, persist document, write chunks (deferred if the
	// store is not ready).
	results, err := chunk.Chunk(ctx, id, in.Content, in.ContentType, p.Config.ChunkOptions, p.Embedder)
	if err != nil {
		return AddDocumentResult{Rejected: errors.Wrap(errors.ProviderUnavailable, err)}
	}
	chunkModels := chunk.BuildChunkModels(id, results, now)
	chunks := make([]*model.Chunk, len(chunkModels))
	for i := range chunkModels {
		chunks[i] = &chunkModels[i]
		p.Index.PutChunkLocation(chunkModels[i].ID, docindex.ChunkLocation{DocumentID: id, Index: chunkModels[i].ChunkIndex})
	}
	doc.ChunksCount = len(chunks)

	if err := p.Store.PutDocument(ctx, doc); err != nil {
		return AddDocumentResult{Rejected: errors.Wrap(errors.IoError, err)}
	}

	if p.Scheduler != nil && p.Scheduler.State() != scheduler.StateReady {
		p.Scheduler.Enqueue(id, chunks)
	} else if err := p.Store.PutChunks(ctx, chunks); err != nil {
		if p.Scheduler != nil {
			p.Scheduler.Enqueue(id, chunks)
		} else {
			return AddDocumentResult{Rejected: errors.Wrap(errors.IoError, err)}
		}
	}

	if err := p.persistTagsAndLanguages(ctx, doc, in.Metadata, detected); err != nil {
		slog.Warn("ingest_tags_languages_failed", slog.String("document_id", id), slog.String("error", err.Error()))
	}

	p.indexDocument(doc, in.Metadata)

	// Step 6: code-block extraction.
	looksLikeHTML := in.ContentType == "html"
	if blocks, err := codeblock.Extract(in.Content, looksLikeHTML); err == nil && len(blocks) > 0 {
		p.addCodeBlocksInternal(ctx, id, blocks)
	} else if err != nil {
		slog.Warn("ingest_code_block_extraction_failed", slog.String("document_id", id), slog.String("error", err.Error()))
	}

	// Step 7: background tag generation, detached and never fatal.
	if p.Config.TagGeneration && p.Tagger != nil {
		go p.generateTagsDetached(id, in.Content)
	}

	return AddDocumentResult{Document: doc}
}

// mergeExisting implements addDocument step 3: shallow-merge metadata
// onto the existing document, touch updated_at, refresh the in-process
// index, and return it without creating new chunk rows — re-ingesting
// identical content never duplicates chunks.
func (p *Pipeline) mergeExisting(ctx context.Context, existing *model.Document, in AddDocumentInput) AddDocumentResult {
	merged := in.Metadata
	existingMeta := model.Metadata{
		Source: existing.Source, CrawlID: existing.CrawlID, CrawlURL: existing.CrawlURL,
		Author: existing.Author, Description: existing.Description, ContentType: existing.ContentType,
		OriginalFilename: existing.OriginalFilename, FileExtension: existing.FileExtension,
		Extra: existing.Extra,
	}
	merged = existingMeta.Merge(merged)

	existing.Source = merged.Source
	existing.CrawlID = merged.CrawlID
	existing.CrawlURL = merged.CrawlURL
	existing.Author = merged.Author
	existing.Description = merged.Description
	existing.ContentType = merged.ContentType
	existing.OriginalFilename = merged.OriginalFilename
	existing.FileExtension = merged.FileExtension
	existing.Extra = merged.Extra
	existing.UpdatedAt = p.now()

	if err := p.Store.PutDocument(ctx, existing); err != nil {
		return AddDocumentResult{Rejected: errors.Wrap(errors.IoError, err)}
	}
	p.indexDocument(existing, merged)
	return AddDocumentResult{Document: existing}
}

func (p *Pipeline) indexDocument(doc *model.Document, meta model.Metadata) {
	fields := docindex.SearchFields{
		Title:    doc.Title,
		Tags:     meta.Tags,
		Source:   string(doc.Source),
		Keywords: nil,
	}
	p.Index.Put(doc.ID, documentMirrorPath(p.Config.DataDir, doc.ID), fields, doc.Content)
	if doc.CrawlID != "" {
		p.Index.PutCrawlID(doc.ID, doc.CrawlID)
	}
}

func documentMirrorPath(dataDir, id string) string {
	if dataDir == "" {
		dataDir = "data"
	}
	return dataDir + "/" + id + ".md"
}
