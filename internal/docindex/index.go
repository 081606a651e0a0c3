package docindex

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// Index is the in-process document index: a set of posting-list hash
// maps plus a per-document search-fields view, guarded by a single
// mutex.
type Index struct {
	mu sync.RWMutex

	idToPath     map[string]string
	chunkIndex   map[string]ChunkLocation
	contentHash  map[string]string
	keywords     map[string]map[string]struct{}
	tags         map[string]map[string]struct{}
	sources      map[string]map[string]struct{}
	crawlIDs     map[string]map[string]struct{}
	titleWords   map[string]map[string]struct{}
	searchFields map[string]SearchFields

	persistence *persister
}

// New constructs an empty Index. snapshotPath, if non-empty, is where
// the debounced snapshot is persisted.
func New(snapshotPath string) *Index {
	idx := &Index{
		idToPath:     make(map[string]string),
		chunkIndex:   make(map[string]ChunkLocation),
		contentHash:  make(map[string]string),
		keywords:     make(map[string]map[string]struct{}),
		tags:         make(map[string]map[string]struct{}),
		sources:      make(map[string]map[string]struct{}),
		crawlIDs:     make(map[string]map[string]struct{}),
		titleWords:   make(map[string]map[string]struct{}),
		searchFields: make(map[string]SearchFields),
	}
	if snapshotPath != "" {
		idx.persistence = newPersister(snapshotPath, idx.buildSnapshot)
	}
	return idx
}

// hashContent computes the full 64-hex sha256 digest of content, the
// index's own duplicate-detection key. Document ids, and the store's
// content_hash column, use the first 16 hex chars of the same digest.
func hashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Put registers or updates a document's index entries.
func (idx *Index) Put(id, path string, fields SearchFields, content string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.removeLocked(id)

	idx.idToPath[id] = path
	idx.contentHash[hashContent(content)] = id
	idx.searchFields[id] = fields

	addPosting(idx.sources, fields.Source, id)
	for _, tag := range fields.Tags {
		addPosting(idx.tags, tag, id)
	}
	for _, kw := range fields.Keywords {
		addPosting(idx.keywords, kw, id)
	}
	for _, word := range tokenize(fields.Title) {
		addPosting(idx.titleWords, word, id)
	}

	idx.arm()
}

// PutCrawlID records a document's crawl_id membership, used by
// deleteCrawlSession to find the documents to cascade-delete without a
// store round trip.
func (idx *Index) PutCrawlID(id, crawlID string) {
	if crawlID == "" {
		return
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	addPosting(idx.crawlIDs, crawlID, id)
	idx.arm()
}

// PutChunkLocation registers a chunk id's owning document and position.
func (idx *Index) PutChunkLocation(chunkID string, loc ChunkLocation) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.chunkIndex[chunkID] = loc
	idx.arm()
}

// Remove deletes all of a document's index entries.
func (idx *Index) Remove(id string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.removeLocked(id)
	idx.arm()
}

func (idx *Index) removeLocked(id string) {
	fields, existed := idx.searchFields[id]
	if !existed {
		return
	}
	delete(idx.idToPath, id)
	delete(idx.searchFields, id)

	for hash, docID := range idx.contentHash {
		if docID == id {
			delete(idx.contentHash, hash)
		}
	}
	removePosting(idx.sources, fields.Source, id)
	for _, tag := range fields.Tags {
		removePosting(idx.tags, tag, id)
	}
	for _, kw := range fields.Keywords {
		removePosting(idx.keywords, kw, id)
	}
	for _, word := range tokenize(fields.Title) {
		removePosting(idx.titleWords, word, id)
	}
	for crawlID, set := range idx.crawlIDs {
		delete(set, id)
		if len(set) == 0 {
			delete(idx.crawlIDs, crawlID)
		}
	}
	for chunkID, loc := range idx.chunkIndex {
		if loc.DocumentID == id {
			delete(idx.chunkIndex, chunkID)
		}
	}
}

func addPosting(postings map[string]map[string]struct{}, key, id string) {
	if key == "" {
		return
	}
	set, ok := postings[key]
	if !ok {
		set = make(map[string]struct{})
		postings[key] = set
	}
	set[id] = struct{}{}
}

func removePosting(postings map[string]map[string]struct{}, key, id string) {
	if key == "" {
		return
	}
	if set, ok := postings[key]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(postings, key)
		}
	}
}

// FindDocument returns the path registered for id, O(1).
func (idx *Index) FindDocument(id string) (string, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	path, ok := idx.idToPath[id]
	return path, ok
}

// FindDuplicateContent returns the id of an existing document whose
// content hash matches content, O(len(content)).
func (idx *Index) FindDuplicateContent(content string) (string, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	id, ok := idx.contentHash[hashContent(content)]
	return id, ok
}

// ChunkLocationOf returns the owning document and position of a chunk id.
func (idx *Index) ChunkLocationOf(chunkID string) (ChunkLocation, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	loc, ok := idx.chunkIndex[chunkID]
	return loc, ok
}

// DocumentsByCrawlID returns the ids of documents ingested under crawlID.
func (idx *Index) DocumentsByCrawlID(crawlID string) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	set, ok := idx.crawlIDs[crawlID]
	if !ok {
		return nil
	}
	return setToSlice(set)
}

// SearchByKeywords returns ids matching the intersection of word
// posting lists.
func (idx *Index) SearchByKeywords(words []string) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return intersectPostings(idx.keywords, words)
}

// SearchByTags returns ids matching the intersection of tag posting
// lists.
func (idx *Index) SearchByTags(tags []string) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return intersectPostings(idx.tags, tags)
}

// SearchByTitle returns ids matching the union of title-word posting
// lists for the tokens of q.
func (idx *Index) SearchByTitle(q string) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return unionPostings(idx.titleWords, tokenize(q))
}

// SearchByCombinedCriteria returns the union of keyword and title
// results for q.
func (idx *Index) SearchByCombinedCriteria(q string) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	words := tokenize(q)
	union := unionPostings(idx.keywords, words)
	titleHits := unionPostings(idx.titleWords, words)
	seen := make(map[string]struct{}, len(union)+len(titleHits))
	for _, id := range union {
		seen[id] = struct{}{}
	}
	out := append([]string{}, union...)
	for _, id := range titleHits {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// Len reports the number of documents indexed.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.searchFields)
}

func intersectPostings(postings map[string]map[string]struct{}, keys []string) []string {
	if len(keys) == 0 {
		return nil
	}
	first, ok := postings[keys[0]]
	if !ok {
		return nil
	}
	result := make(map[string]struct{}, len(first))
	for id := range first {
		result[id] = struct{}{}
	}
	for _, key := range keys[1:] {
		set, ok := postings[key]
		if !ok {
			return nil
		}
		for id := range result {
			if _, ok := set[id]; !ok {
				delete(result, id)
			}
		}
	}
	return setToSlice(result)
}

func unionPostings(postings map[string]map[string]struct{}, keys []string) []string {
	result := make(map[string]struct{})
	for _, key := range keys {
		if set, ok := postings[key]; ok {
			for id := range set {
				result[id] = struct{}{}
			}
		}
	}
	return setToSlice(result)
}

func setToSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}
