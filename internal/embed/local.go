package embed

import (
	"context"
	"hash/fnv"
	"regexp"
	"strings"
	"sync"
	"unicode"

	sagaerrors "github.com/sagaeng/saga/internal/errors"
)

// LocalDimensions is the vector width produced by the local in-process
// embedder.
const LocalDimensions = 256

const (
	tokenWeight = 0.7
	ngramWeight = 0.3
	ngramSize   = 3
)

var tokenRegex = regexp.MustCompile(`[a-zA-Z0-9]+`)

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "of": true,
	"to": true, "in": true, "is": true, "it": true, "for": true, "on": true,
}

// LocalEmbedder is an in-process, network-free embedder. It is started
// lazily: the first call allocates its internal state, without pulling
// in an actual model runtime (accelerator-hardware model bootstrap is
// out of scope here).
//
// The vector is a deterministic hashed bag-of-tokens/n-grams projection —
// good enough for exercising the rest of the pipeline deterministically,
// not a claim of semantic quality.
type LocalEmbedder struct {
	mu      sync.RWMutex
	started bool
	closed  bool
}

var _ Embedder = (*LocalEmbedder)(nil)

// NewLocalEmbedder constructs a LocalEmbedder. No work happens until the
// first Embed/EmbedBatch call.
func NewLocalEmbedder() *LocalEmbedder {
	return &LocalEmbedder{}
}

func (e *LocalEmbedder) ensureStarted() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.started = true
}

// Embed generates a unit-normalized embedding for a single text.
func (e *LocalEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.RLock()
	closed := e.closed
	e.mu.RUnlock()
	if closed {
		return nil, sagaerrors.New(sagaerrors.ProviderUnavailable, "local embedder is closed", nil)
	}
	e.ensureStarted()

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return make([]float32, LocalDimensions), nil
	}
	return normalizeVector(generateVector(trimmed)), nil
}

// EmbedBatch embeds each text independently, preserving order.
func (e *LocalEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ModelName identifies this provider for cache keys and stored metadata.
func (e *LocalEmbedder) ModelName() string { return "local-static" }

// Dimensions returns the fixed embedding width.
func (e *LocalEmbedder) Dimensions() int { return LocalDimensions }

// IsAvailable is always true once not closed — there is no external
// dependency to fail.
func (e *LocalEmbedder) IsAvailable(_ context.Context) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return !e.closed
}

// Close marks the embedder unusable.
func (e *LocalEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

func generateVector(text string) []float32 {
	vector := make([]float32, LocalDimensions)

	for _, tok := range tokenize(text) {
		if stopWords[tok] {
			continue
		}
		vector[hashToIndex(tok, LocalDimensions)] += tokenWeight
	}

	normalized := normalizeForNgrams(text)
	for _, ng := range extractNgrams(normalized, ngramSize) {
		vector[hashToIndex(ng, LocalDimensions)] += ngramWeight
	}

	return vector
}

func tokenize(text string) []string {
	var tokens []string
	for _, word := range tokenRegex.FindAllString(text, -1) {
		for _, t := range splitCompound(word) {
			if lower := strings.ToLower(t); lower != "" {
				tokens = append(tokens, lower)
			}
		}
	}
	return tokens
}

func splitCompound(token string) []string {
	if strings.Contains(token, "_") {
		var parts []string
		for _, part := range strings.Split(token, "_") {
			if part != "" {
				parts = append(parts, splitCamelCase(part)...)
			}
		}
		return parts
	}
	return splitCamelCase(token)
}

func splitCamelCase(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	var current strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevLower := unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || nextLower {
				if current.Len() > 0 {
					result = append(result, current.String())
					current.Reset()
				}
			}
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		result = append(result, current.String())
	}
	return result
}

func normalizeForNgrams(text string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func extractNgrams(text string, n int) []string {
	if len(text) < n {
		return []string{}
	}
	out := make([]string, 0, len(text)-n+1)
	for i := 0; i <= len(text)-n; i++ {
		out = append(out, text[i:i+n])
	}
	return out
}

func hashToIndex(s string, size int) int {
	h := fnv.New64()
	_, _ = h.Write([]byte(s))
	return int(h.Sum64() % uint64(size))
}
