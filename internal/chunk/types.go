// Package chunk implements the content-type-aware recursive chunker:
// content-type detection, a hierarchical separator-driven splitter,
// optional semantic merge, contextual enrichment, and mixed-content
// section handling. It splits on byte offsets rather than tree-sitter
// symbol extraction, since it operates over prose and markup rather
// than source code.
package chunk

import "context"

// ContentType classifies a document's content for per-type splitting
// defaults and separator lists.
type ContentType string

const (
	ContentTypeCode     ContentType = "code"
	ContentTypeMarkdown ContentType = "markdown"
	ContentTypeHTML     ContentType = "html"
	ContentTypeMixed    ContentType = "mixed"
	ContentTypeText     ContentType = "text"
	ContentTypePDF      ContentType = "pdf"
)

// Options configures one chunking pass.
type Options struct {
	MaxSize      int
	Overlap      int
	MinSize      int
	AdaptiveSize bool
	AddContext   bool
	MaxWorkers   int
	Language     string // detected source language, for code separator selection
}

// sizeDefaults are the per-content-type (maxSize, overlap) byte budgets.
var sizeDefaults = map[ContentType][2]int{
	ContentTypeCode:     {500, 100},
	ContentTypeMarkdown: {800, 160},
	ContentTypeHTML:     {600, 120},
	ContentTypeMixed:    {600, 120},
	ContentTypeText:     {1000, 200},
	ContentTypePDF:      {800, 160},
}

// WithDefaults fills zero-valued fields with the per-content-type
// defaults, leaving explicit overrides untouched.
func (o Options) WithDefaults(ct ContentType) Options {
	out := o
	defaults, ok := sizeDefaults[ct]
	if !ok {
		defaults = sizeDefaults[ContentTypeText]
	}
	if out.MaxSize <= 0 {
		out.MaxSize = defaults[0]
	}
	if out.Overlap <= 0 {
		out.Overlap = defaults[1]
	}
	if out.MinSize <= 0 {
		out.MinSize = out.MaxSize / 10
	}
	if out.MaxWorkers <= 0 {
		out.MaxWorkers = 4
	}
	return out
}

// Piece is one chunked slice of a document before it is embedded and
// assigned a dense index. Position fields are byte offsets into the
// original content (half-open, end > start).
type Piece struct {
	Content            string
	StartPosition      int
	EndPosition        int
	SurroundingContext string
	SemanticTopic      string
	Embedding          []float32
}

// embedFunc produces an embedding for a piece of text. Abstracted so
// the chunker does not import the embedder package directly.
type embedFunc func(ctx context.Context, text string) ([]float32, error)
