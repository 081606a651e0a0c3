// Package model defines the entities persisted by the store: Document, DocumentTag, DocumentLanguage, Chunk, CodeBlock,
// Keyword, and SchemaVersion.
package model

import "time"

// Source identifies how a Document entered the system.
type Source string

const (
	SourceUpload Source = "upload"
	SourceCrawl  Source = "crawl"
	SourceAPI    Source = "api"
)

// Status is a Document's lifecycle state.
type Status string

const (
	StatusActive  Status = "active"
	StatusDeleted Status = "deleted"
)

// KeywordSource identifies which field of a Document a Keyword row was
// extracted from.
type KeywordSource string

const (
	KeywordSourceTitle   KeywordSource = "title"
	KeywordSourceContent KeywordSource = "content"
)

// Metadata is the closed set of known ingest-time fields, plus an Extra
// escape hatch for forward compatibility with fields the tool-protocol
// surface may send that this engine does not yet interpret.
type Metadata struct {
	Source            Source            `json:"source,omitempty"`
	CrawlID           string            `json:"crawl_id,omitempty"`
	CrawlURL          string            `json:"crawl_url,omitempty"`
	Author            string            `json:"author,omitempty"`
	Description       string            `json:"description,omitempty"`
	ContentType       string            `json:"content_type,omitempty"`
	OriginalFilename  string            `json:"original_filename,omitempty"`
	FileExtension     string            `json:"file_extension,omitempty"`
	Languages         []string          `json:"languages,omitempty"`
	Tags              []string          `json:"tags,omitempty"`
	TagsGenerated     []string          `json:"tags_generated,omitempty"`
	Extra             map[string]string `json:"extra,omitempty"`
}

// Merge shallow-merges other into m: any non-zero field in other
// overwrites m's field. Used by addDocument step 3 (re-ingesting
// identical content updates metadata without creating new rows).
func (m Metadata) Merge(other Metadata) Metadata {
	out := m
	if other.Source != "" {
		out.Source = other.Source
	}
	if other.CrawlID != "" {
		out.CrawlID = other.CrawlID
	}
	if other.CrawlURL != "" {
		out.CrawlURL = other.CrawlURL
	}
	if other.Author != "" {
		out.Author = other.Author
	}
	if other.Description != "" {
		out.Description = other.Description
	}
	if other.ContentType != "" {
		out.ContentType = other.ContentType
	}
	if other.OriginalFilename != "" {
		out.OriginalFilename = other.OriginalFilename
	}
	if other.FileExtension != "" {
		out.FileExtension = other.FileExtension
	}
	if len(other.Languages) > 0 {
		out.Languages = other.Languages
	}
	if len(other.Tags) > 0 {
		out.Tags = other.Tags
	}
	if len(other.TagsGenerated) > 0 {
		out.TagsGenerated = other.TagsGenerated
	}
	if len(other.Extra) > 0 {
		merged := make(map[string]string, len(out.Extra)+len(other.Extra))
		for k, v := range out.Extra {
			merged[k] = v
		}
		for k, v := range other.Extra {
			merged[k] = v
		}
		out.Extra = merged
	}
	return out
}

// Document is the top-level ingested entity.
type Document struct {
	ID               string
	Title            string
	Content          string
	ContentHash      string
	ContentLength    int
	Source           Source
	OriginalFilename string
	FileExtension    string
	CrawlID          string
	CrawlURL         string
	Author           string
	Description      string
	ContentType      string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ProcessedAt      time.Time
	ChunksCount      int
	CodeBlocksCount  int
	Status           Status
	Extra            map[string]string
}

// DocumentTag records one (document, tag) pairing.
type DocumentTag struct {
	DocumentID  string
	Tag         string
	IsGenerated bool
}

// DocumentLanguage records one detected language for a document.
type DocumentLanguage struct {
	DocumentID   string
	LanguageCode string // ISO 639-1 or "unknown"
}

// Chunk is a contiguous, embedded slice of a Document's content.
type Chunk struct {
	ID                  string
	DocumentID          string
	ChunkIndex          int
	StartPosition       int
	EndPosition         int
	Content             string
	ContentLength       int
	Embedding           []float32
	SurroundingContext  string
	SemanticTopic       string
	CreatedAt           time.Time
}

// CodeBlock is a language-tagged code snippet extracted from a Document,
// indexed separately from prose.
type CodeBlock struct {
	ID            string
	DocumentID    string
	BlockID       string
	BlockIndex    int
	Language      string
	Content       string
	ContentLength int
	Embedding     []float32
	SourceURL     string
}

// Keyword is a posting used for keyword-fallback ranking.
type Keyword struct {
	Keyword    string
	DocumentID string
	Source     KeywordSource
	Frequency  int
}

// CurrentSchemaVersion is the store's expected schema version.
const CurrentSchemaVersion = 1
