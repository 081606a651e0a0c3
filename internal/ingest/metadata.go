package ingest

import "github.com/google/uuid"

// NewCrawlSessionID generates a new identifier for a crawl session. The
// crawler itself is an external collaborator; this is the one piece of
// crawl-session bookkeeping that lives in this module, since every
// document ingested under one crawl run shares this id for later
// deleteCrawlSession and crawl-scoped query filtering.
func NewCrawlSessionID() string {
	return uuid.NewString()
}
