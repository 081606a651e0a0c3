package query

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagaeng/saga/internal/docindex"
	"github.com/sagaeng/saga/internal/errors"
	"github.com/sagaeng/saga/internal/model"
	"github.com/sagaeng/saga/internal/rerank"
	"github.com/sagaeng/saga/internal/store"
)

const testDimensions = 8

// stubEmbedder derives a deterministic vector from the text's runes,
// adding each rune's value mod 31 into slot (position mod 8), so
// identical content always yields identical vectors.
type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, testDimensions)
	for i, r := range text {
		vec[i%testDimensions] += float32(r % 31)
	}
	return vec, nil
}

func newTestEngine(t *testing.T, cfg Config) (*Engine, *store.Store, *docindex.Index) {
	t.Helper()
	st, err := store.Open(store.Config{EmbeddingDimension: testDimensions, UseHNSW: false})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	idx := docindex.New("")
	e := New(st, idx, stubEmbedder{}, rerank.NoOp{}, cfg)
	return e, st, idx
}

// seedDocument persists a document with one chunk whose embedding is
// derived from content, and registers it in the in-process index the
// same way the ingest pipeline does.
func seedDocument(t *testing.T, st *store.Store, idx *docindex.Index, id, title, content string, tags []string, crawlID string, langCode string) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	doc := &model.Document{
		ID: id, Title: title, Content: content, ContentHash: id, ContentLength: len(content),
		Source: model.SourceAPI, CrawlID: crawlID, CreatedAt: now, UpdatedAt: now, ProcessedAt: now,
		ChunksCount: 1, Status: model.StatusActive,
	}
	require.NoError(t, st.PutDocument(ctx, doc))

	vec, err := stubEmbedder{}.Embed(ctx, content)
	require.NoError(t, err)
	chunkID := id + "_chunk_0"
	require.NoError(t, st.PutChunks(ctx, []*model.Chunk{{
		ID: chunkID, DocumentID: id, ChunkIndex: 0, StartPosition: 0, EndPosition: len(content),
		Content: content, ContentLength: len(content), Embedding: vec, CreatedAt: now,
	}}))
	idx.PutChunkLocation(chunkID, docindex.ChunkLocation{DocumentID: id, Index: 0})
	idx.Put(id, "data/"+id+".md", docindex.SearchFields{Title: title, Tags: tags, Source: string(model.SourceAPI)}, content)
	if crawlID != "" {
		idx.PutCrawlID(id, crawlID)
	}

	if len(tags) > 0 {
		tagRows := make([]*model.DocumentTag, len(tags))
		for i, tag := range tags {
			tagRows[i] = &model.DocumentTag{DocumentID: id, Tag: tag}
		}
		require.NoError(t, st.PutTags(ctx, tagRows))
	}
	if langCode != "" {
		require.NoError(t, st.PutLanguages(ctx, []*model.DocumentLanguage{{DocumentID: id, LanguageCode: langCode}}))
	}
}

// Given: 15 documents ingested with the same thematic content
// When: querying with limit=5 at increasing offsets
// Then: pagination follows the offset+limit/has_more/next_offset contract
func TestQuery_Pagination(t *testing.T) {
	e, st, idx := newTestEngine(t, Config{})
	for i := 0; i < 15; i++ {
		seedDocument(t, st, idx, fmt.Sprintf("doc-%d", i), fmt.Sprintf("Document %d", i),
			"testing pagination across many documents with shared thematic content", nil, "", "")
	}

	result, err := e.Query(context.Background(), "testing pagination", Options{Limit: 5, Offset: 0})
	require.NoError(t, err)
	assert.Len(t, result.Items, 5)
	assert.True(t, result.Pagination.HasMore)
	require.NotNil(t, result.Pagination.NextOffset)
	assert.Equal(t, 5, *result.Pagination.NextOffset)

	result, err = e.Query(context.Background(), "testing pagination", Options{Limit: 5, Offset: 10})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(result.Items), 5)

	result, err = e.Query(context.Background(), "testing pagination", Options{Limit: 5, Offset: 100})
	require.NoError(t, err)
	assert.Len(t, result.Items, 0)
	assert.False(t, result.Pagination.HasMore)
	assert.Nil(t, result.Pagination.NextOffset)
}

// Given: scope=document without a document_id
// When: Query is called
// Then: it returns ValidationFailed
func TestQuery_ScopeDocumentRequiresID(t *testing.T) {
	e, _, _ := newTestEngine(t, Config{})
	_, err := e.Query(context.Background(), "anything", Options{Scope: ScopeDocument})
	require.Error(t, err)
	sagaErr, ok := err.(*errors.Error)
	require.True(t, ok)
	assert.Equal(t, errors.ValidationFailed, sagaErr.Kind)
}

// Given: two documents, one matching scope's document_id
// When: Query is called with scope=document
// Then: only the scoped document's chunks are searched
func TestQuery_ScopeDocumentRestrictsSearch(t *testing.T) {
	e, st, idx := newTestEngine(t, Config{})
	seedDocument(t, st, idx, "doc-a", "A", "alpha content about search engines", nil, "", "")
	seedDocument(t, st, idx, "doc-b", "B", "beta content about search engines", nil, "", "")

	result, err := e.Query(context.Background(), "search engines", Options{Scope: ScopeDocument, DocumentID: "doc-a"})
	require.NoError(t, err)
	for _, item := range result.Items {
		assert.Equal(t, "doc-a", item.Document.ID)
	}
}

// Given: a document tagged "go"
// When: Query is called with a tag filter that excludes it
// Then: the document is filtered out of the result set
func TestQuery_TagFilterExcludes(t *testing.T) {
	e, st, idx := newTestEngine(t, Config{})
	seedDocument(t, st, idx, "doc-tagged", "Tagged", "a document with tags about rust programming", []string{"rust"}, "", "")

	result, err := e.Query(context.Background(), "rust programming", Options{Filters: Filters{Tags: []string{"python"}}})
	require.NoError(t, err)
	assert.Len(t, result.Items, 0)
}

// Given: a crawl session with two documents
// When: Query is called with a crawl_id filter matching only one
// Then: only the matching document survives
func TestQuery_CrawlIDFilter(t *testing.T) {
	e, st, idx := newTestEngine(t, Config{})
	seedDocument(t, st, idx, "doc-x", "X", "crawled content about vector databases", nil, "crawl-1", "")
	seedDocument(t, st, idx, "doc-y", "Y", "crawled content about vector databases", nil, "crawl-2", "")

	result, err := e.Query(context.Background(), "vector databases", Options{Filters: Filters{CrawlID: "crawl-1"}, Limit: 50})
	require.NoError(t, err)
	for _, item := range result.Items {
		assert.Equal(t, "crawl-1", item.Document.CrawlID)
	}
}

// Given: a document with no detected-language rows
// When: Query is called with a languages filter containing "unknown"
// Then: the document is treated as matching
func TestQuery_UnknownLanguageFilter(t *testing.T) {
	e, st, idx := newTestEngine(t, Config{})
	seedDocument(t, st, idx, "doc-nolang", "NoLang", "content without a detected language about caching", nil, "", "")

	result, err := e.Query(context.Background(), "caching", Options{Filters: Filters{Languages: []string{"unknown"}}})
	require.NoError(t, err)
	assert.Len(t, result.Items, 1)
}

// Given: a configured reranker that always errors
// When: Query is called with useReranking=true
// Then: the pre-rerank ordering is kept and no error is raised
func TestQuery_RerankFallback(t *testing.T) {
	e, st, idx := newTestEngine(t, Config{})
	seedDocument(t, st, idx, "doc-1", "One", "failing reranker fallback content about storage engines", nil, "", "")
	e.Reranker = failingReranker{}

	result, err := e.Query(context.Background(), "storage engines", Options{UseReranking: true})
	require.NoError(t, err)
	assert.Len(t, result.Items, 1)
}

type failingReranker struct{}

func (failingReranker) Rerank(_ context.Context, _ string, _ []string, _ rerank.Options) ([]rerank.Result, error) {
	return nil, errors.New(errors.Timeout, "reranker timed out", nil)
}

func (failingReranker) IsReady(_ context.Context) bool { return true }
