package ingest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagaeng/saga/internal/chunk"
	"github.com/sagaeng/saga/internal/docindex"
	"github.com/sagaeng/saga/internal/model"
	"github.com/sagaeng/saga/internal/scheduler"
	"github.com/sagaeng/saga/internal/store"
)

const testDimensions = 8

type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, testDimensions)
	for i, r := range text {
		vec[i%testDimensions] += float32(r % 31)
	}
	return vec, nil
}

type stubDetector struct{ langs []string }

func (d stubDetector) Detect(text string) []string { return d.langs }

type stubTagger struct {
	raw string
	err error
}

func (s stubTagger) Generate(ctx context.Context, content string) (string, error) {
	return s.raw, s.err
}

func newTestPipeline(t *testing.T, tagger TagGenerator) (*Pipeline, *store.Store) {
	t.Helper()
	st, err := store.Open(store.Config{EmbeddingDimension: testDimensions, UseHNSW: false})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	idx := docindex.New("")
	sched := scheduler.New()
	sched.MarkReady()

	p := New(st, idx, stubEmbedder{}, stubDetector{}, sched, tagger, Config{
		ChunkOptions: chunk.Options{MaxSize: 200, Overlap: 20},
	})
	p.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	return p, st
}

// Given: a pipeline with no language allowlist configured
// When: AddDocument is called with fresh content
// Then: the document is persisted with chunks and indexed
func TestAddDocument_HappyPath(t *testing.T) {
	p, st := newTestPipeline(t, nil)
	ctx := context.Background()

	content := strings.Repeat("alpha beta gamma delta epsilon. ", 20)
	result := p.AddDocument(ctx, AddDocumentInput{
		Title:       "Example",
		Content:     content,
		ContentType: "text",
		Metadata:    model.Metadata{Tags: []string{"Example", "Docs"}},
	})

	require.Nil(t, result.Rejected)
	require.NotNil(t, result.Document)
	assert.Greater(t, result.Document.ChunksCount, 0)

	stored, err := st.GetDocument(ctx, result.Document.ID)
	require.NoError(t, err)
	assert.Equal(t, content, stored.Content)

	chunks, err := st.GetChunksByDocument(ctx, result.Document.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Document.ChunksCount, len(chunks))

	path, found := p.Index.FindDocument(result.Document.ID)
	assert.True(t, found)
	assert.NotEmpty(t, path)

	tags, err := st.GetTagsByDocument(ctx, result.Document.ID)
	require.NoError(t, err)
	assert.Len(t, tags, 2)
}

// Given: a pipeline with an accepted-languages allowlist that excludes
// the detector's output
// When: AddDocument is called
// Then: it is rejected with LanguageRejected and nothing is persisted
func TestAddDocument_RejectsDisallowedLanguage(t *testing.T) {
	st, err := store.Open(store.Config{EmbeddingDimension: testDimensions})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	idx := docindex.New("")
	sched := scheduler.New()
	sched.MarkReady()

	p := New(st, idx, stubEmbedder{}, stubDetector{langs: []string{"fr"}}, sched, nil, Config{
		ChunkOptions:      chunk.Options{MaxSize: 200, Overlap: 20},
		AcceptedLanguages: []string{"en"},
	})

	result := p.AddDocument(context.Background(), AddDocumentInput{Content: "bonjour le monde"})
	require.NotNil(t, result.Rejected)
	assert.Nil(t, result.Document)

	stats, err := st.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.DocumentCount)
}

// Given: a document already ingested
// When: AddDocument is called again with identical content but new metadata
// Then: no new chunk rows are created and the existing document's
// metadata is merged
func TestAddDocument_ReingestMergesMetadata(t *testing.T) {
	p, st := newTestPipeline(t, nil)
	ctx := context.Background()

	content := "a fixed piece of content for dedup testing"
	first := p.AddDocument(ctx, AddDocumentInput{Content: content, Metadata: model.Metadata{Author: "alice"}})
	require.Nil(t, first.Rejected)

	firstChunks, err := st.GetChunksByDocument(ctx, first.Document.ID)
	require.NoError(t, err)

	second := p.AddDocument(ctx, AddDocumentInput{Content: content, Metadata: model.Metadata{Description: "updated"}})
	require.Nil(t, second.Rejected)
	assert.Equal(t, first.Document.ID, second.Document.ID)
	assert.Equal(t, "alice", second.Document.Author)
	assert.Equal(t, "updated", second.Document.Description)

	secondChunks, err := st.GetChunksByDocument(ctx, second.Document.ID)
	require.NoError(t, err)
	assert.Equal(t, len(firstChunks), len(secondChunks))
}

// Given: a document ingested and then deleted
// When: DeleteDocument is called
// Then: the store no longer has the document or its chunks, and the
// in-process index no longer resolves it
func TestDeleteDocument_RemovesEverything(t *testing.T) {
	p, st := newTestPipeline(t, nil)
	ctx := context.Background()

	result := p.AddDocument(ctx, AddDocumentInput{Content: "content bound for deletion"})
	require.Nil(t, result.Rejected)

	ok, err := p.DeleteDocument(ctx, result.Document.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	gone, err := st.GetDocument(ctx, result.Document.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	_, found := p.Index.FindDocument(result.Document.ID)
	assert.False(t, found)
}

// Given: a tag generator returning a JSON array wrapped in prose
// When: generateTagsDetached runs
// Then: the generated tags are stored with is_generated = true
func TestGenerateTagsDetached_ParsesBracketedJSON(t *testing.T) {
	p, st := newTestPipeline(t, stubTagger{raw: `here are the tags: ["go", "search", "embeddings"] thanks`})
	ctx := context.Background()

	result := p.AddDocument(ctx, AddDocumentInput{Content: "some document content about go and search"})
	require.Nil(t, result.Rejected)

	p.generateTagsDetached(result.Document.ID, "some document content about go and search")

	tags, err := st.GetTagsByDocument(ctx, result.Document.ID)
	require.NoError(t, err)
	require.Len(t, tags, 3)
	for _, tag := range tags {
		assert.True(t, tag.IsGenerated)
	}
}

// Given: a raw tag-generation response that is neither valid JSON nor a
// bracketed substring
// When: parseGeneratedTags runs
// Then: it falls back to splitting on commas/newlines
func TestParseGeneratedTags_LineSplitFallback(t *testing.T) {
	tags := parseGeneratedTags("go, search\nembeddings")
	assert.ElementsMatch(t, []string{"go", "search", "embeddings"}, tags)
}
