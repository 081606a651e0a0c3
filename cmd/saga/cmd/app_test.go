package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sagaeng/saga/internal/config"
	"github.com/sagaeng/saga/internal/rerank"
)

// Given: reranking disabled or no endpoint configured
// When: newReranker is called
// Then: it falls back to the identity reranker
func TestNewReranker_DisabledFallsBackToNoOp(t *testing.T) {
	r := newReranker(config.QueryConfig{UseReranking: false, RerankEndpoint: "http://example.invalid"})
	assert.Equal(t, rerank.NoOp{}, r)

	r = newReranker(config.QueryConfig{UseReranking: true, RerankEndpoint: ""})
	assert.Equal(t, rerank.NoOp{}, r)
}

// Given: reranking enabled with an endpoint configured
// When: newReranker is called
// Then: it returns an HTTP reranker
func TestNewReranker_EnabledBuildsHTTPReranker(t *testing.T) {
	r := newReranker(config.QueryConfig{UseReranking: true, RerankEndpoint: "http://example.invalid", RerankModel: "ce"})
	_, ok := r.(*rerank.HTTPReranker)
	assert.True(t, ok)
}
