package query

import "github.com/sagaeng/saga/internal/model"

// matchesFilters applies the post-join metadata predicates: tags must
// all be present, source/crawl_id/author/content_type must match
// exactly when set, and the language filter matches when any of the
// document's detected languages is in the filter list, or when the
// filter includes "unknown" and the document has no language rows.
func matchesFilters(doc *model.Document, tags []*model.DocumentTag, langs []*model.DocumentLanguage, f Filters) bool {
	if f.Source != "" && string(doc.Source) != f.Source {
		return false
	}
	if f.CrawlID != "" && doc.CrawlID != f.CrawlID {
		return false
	}
	if f.Author != "" && doc.Author != f.Author {
		return false
	}
	if f.ContentType != "" && doc.ContentType != f.ContentType {
		return false
	}

	if len(f.Tags) > 0 {
		have := make(map[string]bool, len(tags))
		for _, t := range tags {
			have[t.Tag] = true
		}
		for _, want := range f.Tags {
			if !have[want] {
				return false
			}
		}
	}

	if len(f.Languages) > 0 && !matchesLanguages(langs, f.Languages) {
		return false
	}

	return true
}

func matchesLanguages(langs []*model.DocumentLanguage, want []string) bool {
	if len(langs) == 0 {
		for _, w := range want {
			if w == "unknown" {
				return true
			}
		}
		return false
	}
	wantSet := make(map[string]bool, len(want))
	for _, w := range want {
		wantSet[w] = true
	}
	for _, l := range langs {
		if wantSet[l.LanguageCode] {
			return true
		}
	}
	return false
}
