package ingest

import "context"

// DeleteResult reports the outcome of a cascading delete (addDocument
// step counterpart for deleteCrawlSession): how many documents were
// removed and any per-document errors encountered along the way.
type DeleteResult struct {
	Deleted int
	Errors  []string
}

// DeleteDocument removes a document and every dependent row from the
// store, drops it from the in-process index, and discards any chunks
// still queued in the scheduler awaiting store readiness. It returns
// false, and changes nothing, when no document with id exists.
func (p *Pipeline) DeleteDocument(ctx context.Context, id string) (bool, error) {
	doc, err := p.Store.GetDocument(ctx, id)
	if err != nil {
		return false, err
	}
	if doc == nil {
		return false, nil
	}
	if err := p.Store.DeleteDocumentCascade(ctx, id); err != nil {
		return false, err
	}
	p.Index.Remove(id)
	p.Scheduler.Discard(id)
	return true, nil
}

// DeleteCrawlSession removes every document ingested under crawlID,
// along with their dependent rows, and keeps the in-process index and
// scheduler queue consistent with the store.
func (p *Pipeline) DeleteCrawlSession(ctx context.Context, crawlID string) DeleteResult {
	ids, err := p.Store.DeleteByCrawlID(ctx, crawlID)
	if err != nil {
		return DeleteResult{Errors: []string{err.Error()}}
	}
	for _, id := range ids {
		p.Index.Remove(id)
		p.Scheduler.Discard(id)
	}
	return DeleteResult{Deleted: len(ids)}
}
