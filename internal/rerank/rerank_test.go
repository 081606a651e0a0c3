package rerank

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Given: the identity reranker
// When: Rerank is called with a set of documents
// Then: it returns results in input order with strictly decreasing scores
func TestNoOp_PreservesOrder(t *testing.T) {
	docs := []string{"a", "b", "c"}
	results, err := NoOp{}.Rerank(context.Background(), "query", docs, Options{})
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, i, r.Index)
	}
	assert.Greater(t, results[0].Score, results[1].Score)
	assert.Greater(t, results[1].Score, results[2].Score)
}

// Given: the identity reranker and a TopK limit
// When: Rerank is called
// Then: only the first TopK results are returned
func TestNoOp_RespectsTopK(t *testing.T) {
	docs := []string{"a", "b", "c", "d"}
	results, err := NoOp{}.Rerank(context.Background(), "query", docs, Options{TopK: 2})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

// Given: the identity reranker
// When: IsReady is checked
// Then: it always reports true
func TestNoOp_AlwaysReady(t *testing.T) {
	assert.True(t, NoOp{}.IsReady(context.Background()))
}
