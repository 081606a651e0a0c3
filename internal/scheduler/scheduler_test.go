package scheduler

import (
	"context"
	"testing"

	"github.com/sagaeng/saga/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFlusher struct {
	flushed map[string][]*model.Chunk
}

func (f *stubFlusher) FlushChunks(ctx context.Context, documentID string, chunks []*model.Chunk) error {
	if f.flushed == nil {
		f.flushed = make(map[string][]*model.Chunk)
	}
	f.flushed[documentID] = chunks
	return nil
}

// Given: a new scheduler
// When: MarkReady is called
// Then: EnsureReady returns true immediately
func TestScheduler_MarkReadyUnblocksEnsureReady(t *testing.T) {
	s := New()
	s.MarkReady()
	assert.True(t, s.EnsureReady(context.Background()))
	assert.Equal(t, StateReady, s.State())
}

// Given: a scheduler marked disabled
// When: EnsureReady is called
// Then: it returns false without blocking
func TestScheduler_DisabledNeverBecomesReady(t *testing.T) {
	s := New()
	s.MarkDisabled()
	assert.False(t, s.EnsureReady(context.Background()))
	assert.Equal(t, StateDisabled, s.State())
}

// Given: chunks enqueued for a document while not ready
// When: Flush runs with a flusher
// Then: the flusher receives the document's chunks and the queue empties
func TestScheduler_FlushDrainsQueue(t *testing.T) {
	s := New()
	chunks := []*model.Chunk{{ID: "doc1_chunk_0"}}
	s.Enqueue("doc1", chunks)
	require.Equal(t, 1, s.PendingCount())

	f := &stubFlusher{}
	require.NoError(t, s.Flush(context.Background(), f))

	assert.Equal(t, chunks, f.flushed["doc1"])
	assert.Equal(t, 0, s.PendingCount())
}

// Given: a document with pending chunks
// When: Discard is called for it
// Then: the queue no longer carries that document
func TestScheduler_DiscardRemovesPending(t *testing.T) {
	s := New()
	s.Enqueue("doc1", []*model.Chunk{{ID: "doc1_chunk_0"}})
	s.Discard("doc1")
	assert.Equal(t, 0, s.PendingCount())
}
