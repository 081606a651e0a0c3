package ingest

import (
	"context"
	"strings"

	"github.com/sagaeng/saga/internal/model"
)

// persistTagsAndLanguages stores the document-language rows and any
// explicit (non-generated) tags supplied at ingest time.
func (p *Pipeline) persistTagsAndLanguages(ctx context.Context, doc *model.Document, meta model.Metadata, detected []string) error {
	if len(detected) > 0 {
		langs := make([]*model.DocumentLanguage, len(detected))
		for i, code := range detected {
			langs[i] = &model.DocumentLanguage{DocumentID: doc.ID, LanguageCode: code}
		}
		if err := p.Store.PutLanguages(ctx, langs); err != nil {
			return err
		}
	}

	if len(meta.Tags) > 0 {
		tags := make([]*model.DocumentTag, 0, len(meta.Tags))
		for _, t := range meta.Tags {
			t = strings.ToLower(strings.TrimSpace(t))
			if t == "" {
				continue
			}
			tags = append(tags, &model.DocumentTag{DocumentID: doc.ID, Tag: t, IsGenerated: false})
		}
		if len(tags) > 0 {
			if err := p.Store.PutTags(ctx, tags); err != nil {
				return err
			}
		}
	}
	return nil
}
