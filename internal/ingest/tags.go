package ingest

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/sagaeng/saga/internal/model"
)

const tagGenerationTruncateBytes = 2000

// generateTagsDetached runs the background tag-generation LLM call
// (addDocument step 7) and persists the result as generated
// document_tags rows. It runs off the ingest goroutine and never
// surfaces an error to the caller — tag generation is a supplementary
// enrichment, not part of the ingest contract.
func (p *Pipeline) generateTagsDetached(documentID, content string) {
	ctx := context.Background()

	truncated := content
	if len(truncated) > tagGenerationTruncateBytes {
		truncated = truncated[:tagGenerationTruncateBytes]
	}

	raw, err := p.Tagger.Generate(ctx, truncated)
	if err != nil {
		slog.Warn("ingest_tag_generation_failed", slog.String("document_id", documentID), slog.String("error", err.Error()))
		return
	}

	tags := parseGeneratedTags(raw)
	if len(tags) == 0 {
		return
	}

	rows := make([]*model.DocumentTag, len(tags))
	for i, t := range tags {
		rows[i] = &model.DocumentTag{DocumentID: documentID, Tag: t, IsGenerated: true}
	}
	if err := p.Store.PutTags(ctx, rows); err != nil {
		slog.Warn("ingest_tag_generation_store_failed", slog.String("document_id", documentID), slog.String("error", err.Error()))
	}
}

// parseGeneratedTags tolerantly extracts a tag list from an LLM's raw
// text output: a clean JSON array, a bracketed JSON array substring
// inside surrounding prose, or (as a last resort) one tag per
// comma/newline-separated line.
func parseGeneratedTags(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if tags, ok := tryParseJSONArray(raw); ok {
		return normalizeTags(tags)
	}

	if start := strings.IndexByte(raw, '['); start >= 0 {
		if end := strings.LastIndexByte(raw, ']'); end > start {
			if tags, ok := tryParseJSONArray(raw[start : end+1]); ok {
				return normalizeTags(tags)
			}
		}
	}

	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	return normalizeTags(fields)
}

func tryParseJSONArray(s string) ([]string, bool) {
	var tags []string
	if err := json.Unmarshal([]byte(s), &tags); err != nil {
		return nil, false
	}
	return tags, true
}

func normalizeTags(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.ToLower(strings.Trim(strings.TrimSpace(t), `"'- `))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
