package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	sagaerrors "github.com/sagaeng/saga/internal/errors"
)

// HTTPConfig configures an OpenAI-compatible embedding endpoint.
type HTTPConfig struct {
	BaseURL    string
	Model      string
	APIKey     string
	Dimensions int
	Timeout    time.Duration
}

// HTTPEmbedder calls an OpenAI-compatible POST {base}/v1/embeddings
// endpoint, retrying transient failures with backoff before surfacing
// an error to the caller.
type HTTPEmbedder struct {
	client *http.Client
	cfg    HTTPConfig

	mu     sync.RWMutex
	closed bool
}

var _ Embedder = (*HTTPEmbedder)(nil)

// NewHTTPEmbedder constructs an HTTPEmbedder against the given config.
func NewHTTPEmbedder(cfg HTTPConfig) *HTTPEmbedder {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &HTTPEmbedder{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
	}
}

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed embeds a single text via the HTTP endpoint.
func (e *HTTPEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// embedRetryConfig is the backoff budget for transient embeddings-endpoint
// failures (connection refused, 5xx): 3 attempts, 200ms base, doubling.
func embedRetryConfig() sagaerrors.RetryConfig {
	return sagaerrors.RetryConfig{
		MaxRetries:   2,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2.0,
	}
}

// EmbedBatch embeds multiple texts in one request, retrying transient
// connection/5xx failures with backoff.
func (e *HTTPEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.RLock()
	closed := e.closed
	e.mu.RUnlock()
	if closed {
		return nil, sagaerrors.New(sagaerrors.ProviderUnavailable, "http embedder is closed", nil)
	}
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	var out [][]float32
	err := sagaerrors.Retry(ctx, embedRetryConfig(), func() error {
		vecs, err := e.embedBatchOnce(ctx, texts)
		if err != nil {
			return err
		}
		out = vecs
		return nil
	})
	return out, err
}

func (e *HTTPEmbedder) embedBatchOnce(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(embeddingsRequest{Model: e.cfg.Model, Input: texts})
	if err != nil {
		return nil, sagaerrors.New(sagaerrors.Malformed, "encode embeddings request", err)
	}

	url := strings.TrimRight(e.cfg.BaseURL, "/") + "/v1/embeddings"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, sagaerrors.New(sagaerrors.Malformed, "build embeddings request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, sagaerrors.New(sagaerrors.Timeout, "embeddings request timed out", err)
		}
		return nil, sagaerrors.New(sagaerrors.ProviderUnavailable, "embeddings request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, sagaerrors.New(sagaerrors.ProviderUnavailable,
			fmt.Sprintf("embeddings endpoint returned %d: %s", resp.StatusCode, string(data)), nil)
	}

	var parsed embeddingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, sagaerrors.New(sagaerrors.Malformed, "decode embeddings response", err)
	}
	if len(parsed.Data) != len(texts) {
		return nil, sagaerrors.New(sagaerrors.Malformed,
			fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(parsed.Data)), nil)
	}

	out := make([][]float32, len(parsed.Data))
	for i, d := range parsed.Data {
		out[i] = normalizeVector(d.Embedding)
	}
	return out, nil
}

// ModelName returns the configured model identifier.
func (e *HTTPEmbedder) ModelName() string { return e.cfg.Model }

// Dimensions returns the configured embedding width.
func (e *HTTPEmbedder) Dimensions() int { return e.cfg.Dimensions }

// IsAvailable performs a lightweight reachability probe against the host.
func (e *HTTPEmbedder) IsAvailable(ctx context.Context) bool {
	e.mu.RLock()
	closed := e.closed
	e.mu.RUnlock()
	if closed {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(e.cfg.BaseURL, "/")+"/v1/models", nil)
	if err != nil {
		return false
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 500
}

// Close marks the embedder unusable.
func (e *HTTPEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}
