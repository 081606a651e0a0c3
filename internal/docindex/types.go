// Package docindex implements the in-process document index: hash maps over id, content hash, keyword, tag, source,
// and title word, backed by a debounced JSON snapshot persisted
// alongside the store. The persistence trigger generalizes a coalescing
// timer idiom from file-event batching to a single-slot "dirty and
// armed" flag covering the whole index.
package docindex

// SchemaVersion is the persisted snapshot's schema version.
const SchemaVersion = "2.0"

// ChunkLocation identifies a chunk's owning document and position.
type ChunkLocation struct {
	DocumentID string `json:"document_id"`
	Index      int    `json:"index"`
}

// SearchFields is the per-document denormalized view used by title and
// combined-criteria search.
type SearchFields struct {
	Title    string   `json:"title"`
	Tags     []string `json:"tags"`
	Source   string   `json:"source"`
	Keywords []string `json:"keywords"`
}

// snapshot is the on-disk representation of the index.
type snapshot struct {
	SchemaVersion string                     `json:"schema_version"`
	IDToPath      map[string]string          `json:"id_to_path"`
	ChunkIndex    map[string]ChunkLocation    `json:"chunk_index"`
	ContentHash   map[string]string           `json:"content_hash_to_id"`
	Keywords      map[string][]string         `json:"keyword_postings"`
	Tags          map[string][]string         `json:"tag_postings"`
	Sources       map[string][]string         `json:"source_postings"`
	CrawlIDs      map[string][]string         `json:"crawl_postings"`
	TitleWords    map[string][]string         `json:"title_word_postings"`
	SearchFields  map[string]SearchFields     `json:"search_fields"`
}
