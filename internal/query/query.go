// Package query implements the query engine: embed -> vector search ->
// per-document aggregation -> threshold -> keyword fallback -> optional
// rerank -> metadata filter -> paginate.
package query

import (
	"context"
	"sort"
	"time"

	"github.com/sagaeng/saga/internal/chunk"
	"github.com/sagaeng/saga/internal/docindex"
	"github.com/sagaeng/saga/internal/errors"
	"github.com/sagaeng/saga/internal/model"
	"github.com/sagaeng/saga/internal/rerank"
	"github.com/sagaeng/saga/internal/store"
	"github.com/sagaeng/saga/internal/telemetry"
)

// Scope selects whether vector search runs over the whole corpus or is
// restricted to one document's chunks.
type Scope string

const (
	ScopeGlobal   Scope = "global"
	ScopeDocument Scope = "document"
)

const (
	defaultLimit              = 10
	defaultCandidateSlack     = 10
	rerankCandidateMultiplier = 5
	defaultScopeDocumentMax   = 10
)

// Filters are the post-join metadata predicates applied after vector
// search and aggregation.
type Filters struct {
	Tags        []string
	Source      string
	CrawlID     string
	Author      string
	ContentType string
	Languages   []string
}

// Options configures one query call.
type Options struct {
	Limit           int
	Offset          int
	IncludeMetadata bool
	Filters         Filters
	UseReranking    bool
	Scope           Scope
	DocumentID      string
}

// Item is one result document, with its aggregated score and (when
// IncludeMetadata was requested) its tags and languages.
type Item struct {
	Document    *model.Document
	Score       float64
	ChunksCount int
	Tags        []*model.DocumentTag
	Languages   []*model.DocumentLanguage
}

// Pagination reports where this page sits within the filtered result set.
type Pagination struct {
	TotalDocuments int
	Limit          int
	Offset         int
	HasMore        bool
	NextOffset     *int
}

// Result is the query operation's full response.
type Result struct {
	Items      []Item
	Pagination Pagination
}

// Config holds the engine's tunables, mirroring config.QueryConfig and
// config.StoreConfig without importing the config package.
type Config struct {
	DefaultQueryLanguages []string
	SimilarityThreshold   float64
	MaxResults            int
	MaxScopeDocumentLimit int
}

// Engine wires the store, in-process index, embedder, and reranker into
// the query operation.
type Engine struct {
	Store     store.Capability
	Index     *docindex.Index
	Embedder  chunk.Embedder
	Reranker  rerank.Reranker
	Config    Config
	Telemetry *telemetry.QueryMetrics // optional; nil disables recording
}

// New constructs an Engine. A nil reranker defaults to rerank.NoOp.
// Telemetry is off by default (nil); callers opt in by assigning
// Engine.Telemetry a *telemetry.QueryMetrics.
func New(st store.Capability, idx *docindex.Index, embedder chunk.Embedder, reranker rerank.Reranker, cfg Config) *Engine {
	if reranker == nil {
		reranker = rerank.NoOp{}
	}
	return &Engine{Store: st, Index: idx, Embedder: embedder, Reranker: reranker, Config: cfg}
}

type docScore struct {
	documentID  string
	score       float64
	chunksCount int
}

// Query implements the 10-step query algorithm.
func (e *Engine) Query(ctx context.Context, text string, opts Options) (result Result, err error) {
	start := time.Now()
	defer func() {
		e.Telemetry.Record(telemetry.QueryEvent{Query: text, ResultCount: len(result.Items), Latency: time.Since(start)})
	}()

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	maxResults := e.Config.MaxResults
	if maxResults <= 0 {
		maxResults = 200
	}
	if limit > maxResults {
		limit = maxResults
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	var filter *store.ScalarFilter
	if opts.Scope == ScopeDocument {
		if opts.DocumentID == "" {
			return Result{}, errors.New(errors.ValidationFailed, "scope=document requires document_id", nil)
		}
		maxScope := e.Config.MaxScopeDocumentLimit
		if maxScope <= 0 {
			maxScope = defaultScopeDocumentMax
		}
		if limit > maxScope {
			limit = maxScope
		}
		filter = &store.ScalarFilter{DocumentIDs: []string{opts.DocumentID}}
	}

	// Step 1: candidate pool size.
	candidatePool := limit + offset + defaultCandidateSlack
	if opts.UseReranking {
		candidatePool = rerankCandidateMultiplier * (limit + offset)
	}

	// Step 2: embed the query.
	vec, err := e.Embedder.Embed(ctx, text)
	if err != nil {
		return Result{}, errors.Wrap(errors.ProviderUnavailable, err)
	}

	// Step 3: vector-search chunks, no metadata pushdown.
	hits, err := e.Store.SearchChunksByVector(ctx, vec, candidatePool, filter)
	if err != nil {
		return Result{}, errors.Wrap(errors.IoError, err)
	}

	// Step 4: aggregate per document.
	survivors := e.aggregate(hits)

	// Step 5: drop below threshold.
	threshold := e.Config.SimilarityThreshold
	kept := survivors[:0]
	for _, s := range survivors {
		if s.score >= threshold {
			kept = append(kept, s)
		}
	}
	survivors = kept

	// Step 6: sort descending.
	sort.SliceStable(survivors, func(i, j int) bool { return survivors[i].score > survivors[j].score })

	// Step 7: keyword-fallback augmentation.
	minSurvivors := limit / 2
	if minSurvivors < 1 {
		minSurvivors = 1
	}
	if len(survivors) < minSurvivors {
		survivors = e.augmentWithKeywords(ctx, text, survivors, candidatePool)
	}

	// Step 8: optional rerank.
	if opts.UseReranking {
		survivors = e.rerankCandidates(ctx, text, survivors, limit+offset)
	}

	// Step 9: fetch metadata, apply filters.
	languages := opts.Filters.Languages
	if len(languages) == 0 {
		languages = e.Config.DefaultQueryLanguages
	}
	filters := opts.Filters
	filters.Languages = languages

	items := make([]Item, 0, len(survivors))
	for _, s := range survivors {
		doc, err := e.Store.GetDocument(ctx, s.documentID)
		if err != nil || doc == nil {
			continue
		}
		tags, _ := e.Store.GetTagsByDocument(ctx, s.documentID)
		langs, _ := e.Store.GetLanguagesByDocument(ctx, s.documentID)
		if !matchesFilters(doc, tags, langs, filters) {
			continue
		}
		items = append(items, Item{Document: doc, Score: s.score, ChunksCount: s.chunksCount, Tags: tags, Languages: langs})
	}

	// Step 10: paginate.
	total := len(items)
	hasMore := offset+limit < total
	var nextOffset *int
	if hasMore {
		n := offset + limit
		nextOffset = &n
	}
	var page []Item
	if offset < total {
		end := offset + limit
		if end > total {
			end = total
		}
		page = items[offset:end]
	}

	return Result{
		Items: page,
		Pagination: Pagination{
			TotalDocuments: total,
			Limit:          limit,
			Offset:         offset,
			HasMore:        hasMore,
			NextOffset:     nextOffset,
		},
	}, nil
}

// similarityScore converts a cosine distance into a [0,1] similarity.
func similarityScore(distance float32) float64 {
	s := (2 - float64(distance)) / 2
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// aggregate maps chunk hits to their owning documents and averages their
// scores, using the in-process index's chunk-location lookup.
func (e *Engine) aggregate(hits []store.VectorHit) []docScore {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	order := make([]string, 0)

	for _, h := range hits {
		loc, ok := e.Index.ChunkLocationOf(h.ID)
		if !ok {
			continue
		}
		if counts[loc.DocumentID] == 0 {
			order = append(order, loc.DocumentID)
		}
		sums[loc.DocumentID] += similarityScore(h.Distance)
		counts[loc.DocumentID]++
	}

	out := make([]docScore, 0, len(order))
	for _, id := range order {
		out = append(out, docScore{documentID: id, score: sums[id] / float64(counts[id]), chunksCount: counts[id]})
	}
	return out
}

// augmentWithKeywords appends documents matching title/content keyword
// postings at a fixed fallback score, deduplicated against the existing
// candidate set.
func (e *Engine) augmentWithKeywords(ctx context.Context, text string, survivors []docScore, limit int) []docScore {
	words := tokenize(text)
	if len(words) == 0 {
		return survivors
	}
	matches, err := e.Store.SearchKeywords(ctx, words, limit)
	if err != nil || len(matches) == 0 {
		return survivors
	}

	seen := make(map[string]bool, len(survivors))
	for _, s := range survivors {
		seen[s.documentID] = true
	}

	ids := make([]string, 0, len(matches))
	for id := range matches {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if matches[ids[i]] != matches[ids[j]] {
			return matches[ids[i]] > matches[ids[j]]
		}
		return ids[i] < ids[j]
	})

	const keywordFallbackScore = 0.5
	for _, id := range ids {
		if seen[id] {
			continue
		}
		survivors = append(survivors, docScore{documentID: id, score: keywordFallbackScore})
		seen[id] = true
	}
	return survivors
}

// rerankCandidates fetches each candidate's content and replaces the
// ordering with the reranker's response; a reranker failure keeps the
// pre-rerank ordering.
func (e *Engine) rerankCandidates(ctx context.Context, text string, survivors []docScore, topK int) []docScore {
	if len(survivors) == 0 {
		return survivors
	}
	docs := make([]string, len(survivors))
	for i, s := range survivors {
		doc, err := e.Store.GetDocument(ctx, s.documentID)
		if err != nil || doc == nil {
			continue
		}
		docs[i] = doc.Content
	}

	results, err := e.Reranker.Rerank(ctx, text, docs, rerank.Options{TopK: topK})
	if err != nil {
		return survivors
	}

	reordered := make([]docScore, 0, len(results))
	for _, r := range results {
		if r.Index < 0 || r.Index >= len(survivors) {
			continue
		}
		s := survivors[r.Index]
		s.score = r.Score
		reordered = append(reordered, s)
	}
	if len(reordered) == 0 {
		return survivors
	}
	return reordered
}
