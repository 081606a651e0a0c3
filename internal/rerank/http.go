package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	sagaerrors "github.com/sagaeng/saga/internal/errors"
)

// HTTPConfig configures the HTTP cross-encoder reranker endpoint.
type HTTPConfig struct {
	Endpoint string
	Model    string
	Timeout  time.Duration
}

// HTTPReranker calls a cross-encoder reranking HTTP endpoint. The
// provider-specific wire format is abstracted behind Rerank; failures
// are surfaced as errors for the caller to catch and fall back on.
type HTTPReranker struct {
	client *http.Client
	cfg    HTTPConfig

	mu    sync.RWMutex
	ready bool
}

var _ Reranker = (*HTTPReranker)(nil)

// NewHTTPReranker constructs an HTTPReranker against the given config.
func NewHTTPReranker(cfg HTTPConfig) *HTTPReranker {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &HTTPReranker{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		ready:  true,
	}
}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopK      int      `json:"top_k,omitempty"`
}

type rerankResponse struct {
	Results []struct {
		Index int     `json:"index"`
		Score float64 `json:"score"`
	} `json:"results"`
}

// Rerank calls the endpoint and returns results sorted by score
// descending.
func (r *HTTPReranker) Rerank(ctx context.Context, query string, docs []string, opts Options) ([]Result, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	if opts.MaxCandidates > 0 && len(docs) > opts.MaxCandidates {
		docs = docs[:opts.MaxCandidates]
	}

	body, err := json.Marshal(rerankRequest{Model: r.cfg.Model, Query: query, Documents: docs, TopK: opts.TopK})
	if err != nil {
		return nil, sagaerrors.New(sagaerrors.Malformed, "encode rerank request", err)
	}

	url := strings.TrimRight(r.cfg.Endpoint, "/") + "/v1/rerank"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, sagaerrors.New(sagaerrors.Malformed, "build rerank request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, sagaerrors.New(sagaerrors.Timeout, "rerank request timed out", err)
		}
		return nil, sagaerrors.New(sagaerrors.ProviderUnavailable, "rerank request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, sagaerrors.New(sagaerrors.ProviderUnavailable,
			fmt.Sprintf("reranker endpoint returned %d", resp.StatusCode), nil)
	}

	var parsed rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, sagaerrors.New(sagaerrors.Malformed, "decode rerank response", err)
	}

	results := make([]Result, len(parsed.Results))
	for i, res := range parsed.Results {
		results[i] = Result{Index: res.Index, Score: res.Score}
	}
	sortByScoreDesc(results)
	if opts.TopK > 0 && opts.TopK < len(results) {
		results = results[:opts.TopK]
	}
	return results, nil
}

// IsReady reports whether the reranker has been constructed; the HTTP
// provider has no separate warm-up phase.
func (r *HTTPReranker) IsReady(_ context.Context) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ready
}
