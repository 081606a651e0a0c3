package docindex

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// debounceWindow is the coalescing delay between a mutation and the
// snapshot write it schedules.
const debounceWindow = 200 * time.Millisecond

// persister implements the coalescing save: a mutation, if the
// persister is not already armed, sets armed and starts a timer that
// writes the snapshot once and clears the flag. A single shared flag
// covers the whole index rather than per-path coalescing, since a
// snapshot write always serializes the full index anyway.
type persister struct {
	mu    sync.Mutex
	path  string
	armed bool
	timer *time.Timer

	buildSnapshot func() snapshot
	suppressed    bool
}

func newPersister(path string, build func() snapshot) *persister {
	return &persister{path: path, buildSnapshot: build}
}

// arm marks the index dirty and schedules a flush if one isn't already
// pending. Called with the index's mutex held by the caller.
func (idx *Index) arm() {
	if idx.persistence == nil {
		return
	}
	idx.persistence.mu.Lock()
	defer idx.persistence.mu.Unlock()
	if idx.persistence.suppressed || idx.persistence.armed {
		return
	}
	idx.persistence.armed = true
	idx.persistence.timer = time.AfterFunc(debounceWindow, func() {
		idx.persistence.flush()
	})
}

func (p *persister) flush() {
	p.mu.Lock()
	p.armed = false
	p.mu.Unlock()

	snap := p.buildSnapshot()
	if err := writeSnapshot(p.path, snap); err != nil {
		slog.Warn("document_index_snapshot_write_failed",
			slog.String("path", p.path), slog.String("error", err.Error()))
	}
}

// SuppressAutoSave disables the debounced save, used while a full
// rebuild is in progress.
func (idx *Index) SuppressAutoSave() {
	if idx.persistence == nil {
		return
	}
	idx.persistence.mu.Lock()
	defer idx.persistence.mu.Unlock()
	idx.persistence.suppressed = true
	if idx.persistence.timer != nil {
		idx.persistence.timer.Stop()
	}
	idx.persistence.armed = false
}

// ResumeAutoSave re-enables the debounced save after a rebuild and
// immediately persists the rebuilt snapshot.
func (idx *Index) ResumeAutoSave() {
	if idx.persistence == nil {
		return
	}
	idx.persistence.mu.Lock()
	idx.persistence.suppressed = false
	idx.persistence.mu.Unlock()
	idx.persistence.flush()
}

// Flush forces an immediate snapshot write, bypassing the debounce
// window (used on graceful shutdown).
func (idx *Index) Flush() {
	if idx.persistence == nil {
		return
	}
	idx.persistence.mu.Lock()
	if idx.persistence.timer != nil {
		idx.persistence.timer.Stop()
	}
	idx.persistence.armed = false
	idx.persistence.mu.Unlock()
	idx.persistence.flush()
}

func (idx *Index) buildSnapshot() snapshot {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	snap := snapshot{
		SchemaVersion: SchemaVersion,
		IDToPath:      cloneStringMap(idx.idToPath),
		ChunkIndex:    make(map[string]ChunkLocation, len(idx.chunkIndex)),
		ContentHash:   cloneStringMap(idx.contentHash),
		Keywords:      postingsToSlices(idx.keywords),
		Tags:          postingsToSlices(idx.tags),
		Sources:       postingsToSlices(idx.sources),
		CrawlIDs:      postingsToSlices(idx.crawlIDs),
		TitleWords:    postingsToSlices(idx.titleWords),
		SearchFields:  make(map[string]SearchFields, len(idx.searchFields)),
	}
	for k, v := range idx.chunkIndex {
		snap.ChunkIndex[k] = v
	}
	for k, v := range idx.searchFields {
		snap.SearchFields[k] = v
	}
	return snap
}

func cloneStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func postingsToSlices(postings map[string]map[string]struct{}) map[string][]string {
	out := make(map[string][]string, len(postings))
	for k, set := range postings {
		out[k] = setToSlice(set)
	}
	return out
}

func writeSnapshot(path string, snap snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load reads a persisted snapshot from path, returning (nil, false) if
// it does not exist.
func Load(path string) (*Index, bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, false, err
	}

	idx := New(path)
	idx.SuppressAutoSave()
	defer idx.ResumeAutoSaveWithoutFlush()

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.idToPath = snap.IDToPath
	if idx.idToPath == nil {
		idx.idToPath = make(map[string]string)
	}
	idx.chunkIndex = snap.ChunkIndex
	if idx.chunkIndex == nil {
		idx.chunkIndex = make(map[string]ChunkLocation)
	}
	idx.contentHash = snap.ContentHash
	if idx.contentHash == nil {
		idx.contentHash = make(map[string]string)
	}
	idx.keywords = slicesToPostings(snap.Keywords)
	idx.tags = slicesToPostings(snap.Tags)
	idx.sources = slicesToPostings(snap.Sources)
	idx.crawlIDs = slicesToPostings(snap.CrawlIDs)
	idx.titleWords = slicesToPostings(snap.TitleWords)
	idx.searchFields = snap.SearchFields
	if idx.searchFields == nil {
		idx.searchFields = make(map[string]SearchFields)
	}

	return idx, len(idx.searchFields) > 0, nil
}

// ResumeAutoSaveWithoutFlush re-enables the debounced save without
// forcing an immediate write, used after loading a snapshot from disk
// (there is nothing new to persist yet).
func (idx *Index) ResumeAutoSaveWithoutFlush() {
	if idx.persistence == nil {
		return
	}
	idx.persistence.mu.Lock()
	defer idx.persistence.mu.Unlock()
	idx.persistence.suppressed = false
}

func slicesToPostings(in map[string][]string) map[string]map[string]struct{} {
	out := make(map[string]map[string]struct{}, len(in))
	for k, ids := range in {
		set := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			set[id] = struct{}{}
		}
		out[k] = set
	}
	return out
}
