package store

import (
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
)

// bitmapIndex is a roaring-bitmap scalar index over one low-cardinality
// column (documents.source, documents.status, code_blocks.language),
// keyed by SQLite rowid.
type bitmapIndex struct {
	mu   sync.RWMutex
	sets map[string]*roaring.Bitmap
}

func newBitmapIndex() *bitmapIndex {
	return &bitmapIndex{sets: make(map[string]*roaring.Bitmap)}
}

func (b *bitmapIndex) add(value string, rowid uint32) {
	if value == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	bm, ok := b.sets[value]
	if !ok {
		bm = roaring.New()
		b.sets[value] = bm
	}
	bm.Add(rowid)
}

func (b *bitmapIndex) remove(value string, rowid uint32) {
	if value == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if bm, ok := b.sets[value]; ok {
		bm.Remove(rowid)
	}
}

// rowids returns the set of rowids tagged with value.
func (b *bitmapIndex) rowids(value string) *roaring.Bitmap {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if bm, ok := b.sets[value]; ok {
		return bm.Clone()
	}
	return roaring.New()
}

// union returns the rowids tagged with any of values.
func (b *bitmapIndex) union(values []string) *roaring.Bitmap {
	out := roaring.New()
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, v := range values {
		if bm, ok := b.sets[v]; ok {
			out.Or(bm)
		}
	}
	return out
}
