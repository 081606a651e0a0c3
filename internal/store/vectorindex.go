package store

import (
	"context"
	"math"
	"sort"
	"strconv"
	"sync"

	"github.com/coder/hnsw"

	sagaerrors "github.com/sagaeng/saga/internal/errors"
)

// VectorHit is a single vector-search result: a row id and its distance.
type VectorHit struct {
	ID       string
	Distance float32
}

// IndexParams are the HNSW construction/search parameters chosen by
// corpus size.
type IndexParams struct {
	M              int
	EfConstruction int
	EfSearch       int
}

// ParamsForCorpusSize picks HNSW construction/search parameters by corpus size.
func ParamsForCorpusSize(n int) IndexParams {
	switch {
	case n < 1_000_000:
		return IndexParams{M: 16, EfConstruction: 200, EfSearch: 50}
	case n < 10_000_000:
		return IndexParams{M: 32, EfConstruction: 400, EfSearch: 100}
	default:
		return IndexParams{M: 64, EfConstruction: 800, EfSearch: 200}
	}
}

// ivfPQTrainingFloor is the minimum vector count IVF_PQ requires before
// training; below it, brute force is used regardless of configuration.
const ivfPQTrainingFloor = 256

// VectorIndex is an approximate-nearest-neighbor index over one table's
// embedding column (chunks.embedding or code_blocks.embedding). It wraps
// coder/hnsw — the pack's only vector-index library — and falls back to
// exact brute-force search either when HNSW is disabled by configuration
// or when the corpus is below the IVF_PQ training floor. There is no IVF_PQ library in the
// examples pack (see DESIGN.md); brute force stands in for that fallback
// path, used below the training floor anyway while the corpus is small.
type VectorIndex struct {
	mu         sync.RWMutex
	dimensions int
	useHNSW    bool

	graph   *hnsw.Graph[uint64]
	idMap   map[string]uint64
	keyMap  map[uint64]string
	nextKey uint64

	// bruteForce holds raw vectors for the brute-force fallback path.
	bruteForce map[string][]float32
}

// NewVectorIndex constructs a VectorIndex for the given dimension. useHNSW
// selects whether the ANN graph is consulted once the corpus clears the
// training floor; below the floor brute force is always used.
func NewVectorIndex(dimensions int, useHNSW bool, params IndexParams) *VectorIndex {
	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.CosineDistance
	graph.M = params.M
	graph.EfSearch = params.EfSearch
	graph.Ml = 1.0 / math.Log(float64(max(params.M, 2)))

	return &VectorIndex{
		dimensions: dimensions,
		useHNSW:    useHNSW,
		graph:      graph,
		idMap:      make(map[string]uint64),
		keyMap:     make(map[uint64]string),
		bruteForce: make(map[string][]float32),
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Add inserts or replaces vectors by id.
func (v *VectorIndex) Add(ctx context.Context, ids []string, vectors [][]float32) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	for i, id := range ids {
		vec := vectors[i]
		if len(vec) != v.dimensions {
			return sagaerrors.New(sagaerrors.ValidationFailed, "embedding dimension mismatch", nil).
				WithDetail("expected", itoa(v.dimensions)).WithDetail("got", itoa(len(vec)))
		}

		copied := make([]float32, len(vec))
		copy(copied, vec)
		v.bruteForce[id] = copied

		if existingKey, ok := v.idMap[id]; ok {
			delete(v.keyMap, existingKey)
			delete(v.idMap, id)
		}
		key := v.nextKey
		v.nextKey++
		v.graph.Add(hnsw.MakeNode(key, copied))
		v.idMap[id] = key
		v.keyMap[key] = id
	}
	return nil
}

// Delete removes vectors by id (lazy deletion from the HNSW graph).
func (v *VectorIndex) Delete(ctx context.Context, ids []string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, id := range ids {
		if key, ok := v.idMap[id]; ok {
			delete(v.keyMap, key)
			delete(v.idMap, id)
		}
		delete(v.bruteForce, id)
	}
	return nil
}

// Count returns the number of live vectors in the index.
func (v *VectorIndex) Count() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.bruteForce)
}

// Contains reports whether id has a live vector in the index.
func (v *VectorIndex) Contains(id string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.idMap[id]
	return ok
}

// Search returns the k nearest neighbors to query, optionally restricted
// to the given candidate id set (used to implement a scalar predicate
// pushed down to the vector table, e.g. document_id = 'X').
func (v *VectorIndex) Search(ctx context.Context, query []float32, k int, allow map[string]bool) ([]VectorHit, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if len(query) != v.dimensions {
		return nil, sagaerrors.New(sagaerrors.ValidationFailed, "query embedding dimension mismatch", nil)
	}
	if len(v.bruteForce) == 0 {
		return []VectorHit{}, nil
	}

	n := len(v.bruteForce)
	if !v.useHNSW || n < ivfPQTrainingFloor {
		return v.bruteForceSearch(query, k, allow), nil
	}

	nodes := v.graph.Search(query, searchPoolSize(k, allow))
	hits := make([]VectorHit, 0, len(nodes))
	for _, node := range nodes {
		id, ok := v.keyMap[node.Key]
		if !ok {
			continue
		}
		if allow != nil && !allow[id] {
			continue
		}
		hits = append(hits, VectorHit{ID: id, Distance: v.graph.Distance(query, node.Value)})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// searchPoolSize widens the HNSW candidate pool when a scalar filter will
// be applied post-search, so filtering doesn't starve the result set.
func searchPoolSize(k int, allow map[string]bool) int {
	if allow == nil {
		return k
	}
	return k * 10
}

func (v *VectorIndex) bruteForceSearch(query []float32, k int, allow map[string]bool) []VectorHit {
	hits := make([]VectorHit, 0, len(v.bruteForce))
	for id, vec := range v.bruteForce {
		if allow != nil && !allow[id] {
			continue
		}
		hits = append(hits, VectorHit{ID: id, Distance: cosineDistance(query, vec)})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

func cosineDistance(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	cos := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return float32(1 - cos)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
