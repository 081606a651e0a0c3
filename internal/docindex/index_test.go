package docindex

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Given: an empty index
// When: a document is put
// Then: FindDocument and FindDuplicateContent both resolve it
func TestIndex_PutAndFind(t *testing.T) {
	idx := New("")

	idx.Put("doc1", "data/doc1.md", SearchFields{
		Title: "Getting Started", Tags: []string{"intro"}, Source: "upload",
		Keywords: []string{"getting", "started", "guide"},
	}, "hello world content")

	path, ok := idx.FindDocument("doc1")
	require.True(t, ok)
	assert.Equal(t, "data/doc1.md", path)

	id, ok := idx.FindDuplicateContent("hello world content")
	require.True(t, ok)
	assert.Equal(t, "doc1", id)
}

// Given: documents tagged with overlapping and distinct tags
// When: SearchByTags is called with multiple tags
// Then: only documents carrying all of them are returned
func TestIndex_SearchByTags_Intersection(t *testing.T) {
	idx := New("")
	idx.Put("doc1", "p1", SearchFields{Tags: []string{"go", "tutorial"}}, "content one")
	idx.Put("doc2", "p2", SearchFields{Tags: []string{"go"}}, "content two")

	results := idx.SearchByTags([]string{"go", "tutorial"})
	assert.ElementsMatch(t, []string{"doc1"}, results)
}

// Given: documents with keyword postings
// When: SearchByKeywords is called
// Then: the intersection of matching documents is returned
func TestIndex_SearchByKeywords(t *testing.T) {
	idx := New("")
	idx.Put("doc1", "p1", SearchFields{Keywords: []string{"vector", "search", "embedding"}}, "c1")
	idx.Put("doc2", "p2", SearchFields{Keywords: []string{"vector", "database"}}, "c2")

	assert.ElementsMatch(t, []string{"doc1", "doc2"}, idx.SearchByKeywords([]string{"vector"}))
	assert.ElementsMatch(t, []string{"doc1"}, idx.SearchByKeywords([]string{"vector", "embedding"}))
}

// Given: a document matching only by title, and another only by keyword
// When: SearchByCombinedCriteria is called
// Then: both are returned, deduplicated
func TestIndex_SearchByCombinedCriteria(t *testing.T) {
	idx := New("")
	idx.Put("doc1", "p1", SearchFields{Title: "vector databases explained"}, "c1")
	idx.Put("doc2", "p2", SearchFields{Keywords: []string{"vector", "retrieval"}}, "c2")

	results := idx.SearchByCombinedCriteria("vector")
	assert.ElementsMatch(t, []string{"doc1", "doc2"}, results)
}

// Given: a document indexed with a crawl id
// When: Remove is called
// Then: it no longer appears in any posting list or crawl grouping
func TestIndex_Remove(t *testing.T) {
	idx := New("")
	idx.Put("doc1", "p1", SearchFields{Tags: []string{"go"}, Source: "crawl"}, "content")
	idx.PutCrawlID("doc1", "crawl-1")

	idx.Remove("doc1")

	_, ok := idx.FindDocument("doc1")
	assert.False(t, ok)
	assert.Empty(t, idx.SearchByTags([]string{"go"}))
	assert.Empty(t, idx.DocumentsByCrawlID("crawl-1"))
}

// Given: a populated index with a snapshot path
// When: Flush is called and the snapshot is reloaded with Load
// Then: the reloaded index answers the same queries
func TestIndex_PersistAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "document-index.json")

	idx := New(path)
	idx.Put("doc1", "data/doc1.md", SearchFields{
		Title: "Go Concurrency", Tags: []string{"go"}, Source: "upload",
		Keywords: []string{"concurrency", "goroutines"},
	}, "concurrency patterns in go")
	idx.Flush()

	reloaded, hadData, err := Load(path)
	require.NoError(t, err)
	require.True(t, hadData)

	p, ok := reloaded.FindDocument("doc1")
	require.True(t, ok)
	assert.Equal(t, "data/doc1.md", p)
	assert.ElementsMatch(t, []string{"doc1"}, reloaded.SearchByTags([]string{"go"}))
}

// Given: a populated index
// When: a mutation arms the debounce timer
// Then: the snapshot file exists on disk shortly after, without an
// explicit Flush call
func TestIndex_DebouncedSaveWritesEventually(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "document-index.json")

	idx := New(path)
	idx.Put("doc1", "data/doc1.md", SearchFields{Title: "x"}, "y")

	require.Eventually(t, func() bool {
		_, hadData, err := Load(path)
		return err == nil && hadData
	}, 2*time.Second, 20*time.Millisecond)
}
