package chunk

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEmbedder returns a deterministic low-dimensional vector derived
// from content length, enough to exercise merge/search math without a
// real provider.
type stubEmbedder struct {
	calls int
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	s.calls++
	n := float32(len(text) % 7)
	return []float32{1, n, 0, 0}, nil
}

// Given: markdown content with headings, under the per-section budget
// When: Chunk is called with default markdown options
// Then: a single chunk covering the whole document is produced
func TestChunk_SmallMarkdownSingleChunk(t *testing.T) {
	content := "# Title\n\nShort paragraph of content."
	results, err := Chunk(context.Background(), "doc1", content, "markdown", Options{}, &stubEmbedder{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0, results[0].ChunkIndex)
	assert.Equal(t, content, results[0].Content)
}

// Given: text content far exceeding maxSize
// When: Chunk splits it
// Then: every chunk after the first carries the configured overlap
// prefix from its predecessor, and positions stay within bounds
func TestChunk_LargeTextAppliesOverlap(t *testing.T) {
	content := strings.Repeat("sentence number. ", 400)
	opts := Options{MaxSize: 200, Overlap: 40}
	results, err := Chunk(context.Background(), "doc2", content, "text", opts, &stubEmbedder{})
	require.NoError(t, err)
	require.Greater(t, len(results), 1)

	for i, r := range results {
		assert.Equal(t, i, r.ChunkIndex)
		assert.GreaterOrEqual(t, r.StartPosition, 0)
		assert.LessOrEqual(t, r.EndPosition, len(content))
		assert.Less(t, r.StartPosition, r.EndPosition)
		assert.NotEmpty(t, r.Embedding)
		if i > 0 {
			prev := results[i-1].Content
			assert.True(t, strings.HasPrefix(r.Content, prev[len(prev)-opts.Overlap:]))
		}
	}
}

// Given: identical content and options
// When: Chunk is called twice
// Then: chunk positions and indices are identical both times
func TestChunk_DeterministicAcrossRuns(t *testing.T) {
	content := strings.Repeat("alpha beta gamma delta. ", 200)
	opts := Options{MaxSize: 150, Overlap: 20}

	first, err := Chunk(context.Background(), "doc3", content, "text", opts, &stubEmbedder{})
	require.NoError(t, err)
	second, err := Chunk(context.Background(), "doc3", content, "text", opts, &stubEmbedder{})
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].StartPosition, second[i].StartPosition)
		assert.Equal(t, first[i].EndPosition, second[i].EndPosition)
		assert.Equal(t, first[i].ChunkIndex, second[i].ChunkIndex)
	}
}

// Given: content mixing a fenced code block and surrounding prose
// When: content type is not supplied
// Then: detection selects "mixed" and both sections are represented
func TestChunk_MixedContentDetectedAndSectioned(t *testing.T) {
	content := "# Doc\n\nIntro text here.\n\n```go\nfunc main() {}\n```\n\nMore prose after the fence describing what happened above."
	ct := DetectContentType(content, "")
	assert.Equal(t, ContentTypeMixed, ct)

	results, err := Chunk(context.Background(), "doc4", content, "", Options{}, &stubEmbedder{})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	var sawCode bool
	for _, r := range results {
		if strings.Contains(r.Content, "func main") {
			sawCode = true
		}
	}
	assert.True(t, sawCode)
}

// Given: adaptiveSize enabled and two adjacent pieces whose stub
// embeddings are identical (cosine similarity 1.0)
// When: semanticMerge runs
// Then: they are folded into one piece and the embed function is invoked
// for the merged text
func TestSemanticMerge_FoldsSimilarAdjacentPieces(t *testing.T) {
	pieces := []Piece{
		{Content: "aaaaaaa", Embedding: []float32{1, 0, 0, 0}},
		{Content: "bbbbbbb", Embedding: []float32{1, 0, 0, 0}},
	}
	var reEmbedCalls int
	embed := func(ctx context.Context, text string) ([]float32, error) {
		reEmbedCalls++
		return []float32{1, 0, 0, 0}, nil
	}

	merged, err := semanticMerge(context.Background(), pieces, 1000, embed)
	require.NoError(t, err)
	require.Len(t, merged, 1)
	assert.Equal(t, "aaaaaaabbbbbbb", merged[0].Content)
	assert.Equal(t, 1, reEmbedCalls)
}

// Given: addContext enabled and a chunk positioned after a markdown
// heading
// Then: the chunk's SemanticTopic is set to that heading's text
func TestEnrichContext_AttachesNearestHeading(t *testing.T) {
	content := "# Intro\n\nSome intro text.\n\n## Details\n\nDetailed body text goes here for the chunk."
	idx := strings.Index(content, "Detailed body")
	pieces := []Piece{{Content: "Detailed body text goes here for the chunk.", StartPosition: idx, EndPosition: len(content)}}

	enriched := enrichContext(content, pieces)
	require.Len(t, enriched, 1)
	assert.Equal(t, "Details", enriched[0].SemanticTopic)
}

// Given: results and a document id
// When: BuildChunkModels is called
// Then: chunk ids follow "{document_id}_chunk_{index}" and CreatedAt is stamped
func TestBuildChunkModels_AssignsDeterministicIDs(t *testing.T) {
	results := []Result{
		{ChunkIndex: 0, Content: "a", StartPosition: 0, EndPosition: 1},
		{ChunkIndex: 1, Content: "b", StartPosition: 1, EndPosition: 2},
	}
	now := time.Now()
	models := BuildChunkModels("doc5", results, now)
	require.Len(t, models, 2)
	assert.Equal(t, "doc5_chunk_0", models[0].ID)
	assert.Equal(t, "doc5_chunk_1", models[1].ID)
	assert.Equal(t, now, models[0].CreatedAt)
}
