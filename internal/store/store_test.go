package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagaeng/saga/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{EmbeddingDimension: 4, UseHNSW: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleDocument(id string) *model.Document {
	now := time.Now().UTC()
	return &model.Document{
		ID:            id,
		Title:         "Example",
		Content:       "hello world",
		ContentHash:   "abc123",
		ContentLength: 11,
		Source:        model.SourceUpload,
		CreatedAt:     now,
		UpdatedAt:     now,
		Status:        model.StatusActive,
	}
}

// Given: an empty store
// When: a document is put and fetched by id
// Then: the fetched document matches what was stored
func TestStore_PutAndGetDocument(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	doc := sampleDocument("doc-1")
	require.NoError(t, s.PutDocument(ctx, doc))

	got, err := s.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, doc.Title, got.Title)
	assert.Equal(t, doc.ContentHash, got.ContentHash)
}

// Given: a stored document
// When: FindDocumentByContentHash is called with its content hash
// Then: the same document is returned
func TestStore_FindDocumentByContentHash(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	doc := sampleDocument("doc-2")
	doc.ContentHash = "deadbeef"
	require.NoError(t, s.PutDocument(ctx, doc))

	found, err := s.FindDocumentByContentHash(ctx, "deadbeef")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "doc-2", found.ID)
}

// Given: a document with chunks and code blocks
// When: DeleteDocumentCascade is called
// Then: chunks, code blocks, and the document itself are gone
func TestStore_DeleteDocumentCascade(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	doc := sampleDocument("doc-3")
	require.NoError(t, s.PutDocument(ctx, doc))

	chunk := &model.Chunk{
		ID: "doc-3_chunk_0", DocumentID: "doc-3", ChunkIndex: 0,
		Content: "hello", ContentLength: 5, Embedding: []float32{1, 0, 0, 0},
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.PutChunks(ctx, []*model.Chunk{chunk}))

	block := &model.CodeBlock{
		ID: "doc-3_block_0", DocumentID: "doc-3", BlockID: "b0", BlockIndex: 0,
		Language: "go", Content: "package main", ContentLength: 12,
		Embedding: []float32{0, 1, 0, 0},
	}
	require.NoError(t, s.PutCodeBlocks(ctx, []*model.CodeBlock{block}))

	require.NoError(t, s.DeleteDocumentCascade(ctx, "doc-3"))

	got, err := s.GetDocument(ctx, "doc-3")
	require.NoError(t, err)
	assert.Nil(t, got)

	chunks, err := s.GetChunksByDocument(ctx, "doc-3")
	require.NoError(t, err)
	assert.Empty(t, chunks)

	blocks, err := s.GetCodeBlocksByDocument(ctx, "doc-3")
	require.NoError(t, err)
	assert.Empty(t, blocks)

	assert.False(t, s.chunkVectors.Contains("doc-3_chunk_0"))
	assert.False(t, s.codeBlockVectors.Contains("doc-3_block_0"))
}

// Given: chunks from two documents with distinct embeddings
// When: SearchChunksByVector is called with a document filter
// Then: only the matching document's chunk is returned
func TestStore_SearchChunksByVector_WithFilter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutDocument(ctx, sampleDocument("doc-a")))
	require.NoError(t, s.PutDocument(ctx, sampleDocument("doc-b")))

	chunks := []*model.Chunk{
		{ID: "a_chunk_0", DocumentID: "doc-a", Content: "x", ContentLength: 1, Embedding: []float32{1, 0, 0, 0}, CreatedAt: time.Now().UTC()},
		{ID: "b_chunk_0", DocumentID: "doc-b", Content: "y", ContentLength: 1, Embedding: []float32{1, 0, 0, 0}, CreatedAt: time.Now().UTC()},
	}
	require.NoError(t, s.PutChunks(ctx, chunks))

	hits, err := s.SearchChunksByVector(ctx, []float32{1, 0, 0, 0}, 5, &ScalarFilter{DocumentIDs: []string{"doc-a"}})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a_chunk_0", hits[0].ID)
}

// Given: keyword postings for two documents
// When: SearchKeywords is called
// Then: documents are ranked by total matching frequency
func TestStore_SearchKeywords(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutDocument(ctx, sampleDocument("doc-k1")))
	require.NoError(t, s.PutDocument(ctx, sampleDocument("doc-k2")))

	keywords := []*model.Keyword{
		{Keyword: "search", DocumentID: "doc-k1", Source: model.KeywordSourceContent, Frequency: 5},
		{Keyword: "search", DocumentID: "doc-k2", Source: model.KeywordSourceContent, Frequency: 1},
	}
	require.NoError(t, s.PutKeywords(ctx, keywords))

	scores, err := s.SearchKeywords(ctx, []string{"search"}, 10)
	require.NoError(t, err)
	assert.Equal(t, 5, scores["doc-k1"])
	assert.Equal(t, 1, scores["doc-k2"])
}

// Given: a freshly initialized store
// When: CheckConsistency is called
// Then: the report is OK with no orphans
func TestStore_CheckConsistency_Clean(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutDocument(ctx, sampleDocument("doc-c1")))
	report, err := s.CheckConsistency(ctx)
	require.NoError(t, err)
	assert.True(t, report.OK)
	assert.Empty(t, report.OrphanedChunks)
	assert.Empty(t, report.OrphanedCodeBlocks)
}

// Given: documents ingested under the same crawl id
// When: DeleteByCrawlID is called
// Then: all matching documents are removed and their ids returned
func TestStore_DeleteByCrawlID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	d1 := sampleDocument("doc-crawl-1")
	d1.CrawlID = "crawl-xyz"
	d2 := sampleDocument("doc-crawl-2")
	d2.CrawlID = "crawl-xyz"
	require.NoError(t, s.PutDocument(ctx, d1))
	require.NoError(t, s.PutDocument(ctx, d2))

	deleted, err := s.DeleteByCrawlID(ctx, "crawl-xyz")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"doc-crawl-1", "doc-crawl-2"}, deleted)

	got, err := s.GetDocument(ctx, "doc-crawl-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
