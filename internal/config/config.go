// Package config assembles saga's typed configuration from environment
// variables: typed knobs read from a canonical env var subset, with
// documented defaults.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sagaeng/saga/internal/logging"
)

// Config is saga's complete runtime configuration.
type Config struct {
	Paths      PathsConfig
	Embeddings EmbeddingsConfig
	Store      StoreConfig
	Chunking   ChunkingConfig
	Query      QueryConfig
	Ingest     IngestConfig
	Language   LanguageConfig
	Crawl      CrawlConfig
	Timeouts   TimeoutConfig
}

// PathsConfig locates the three on-disk areas of the persisted state
// layout.
type PathsConfig struct {
	BaseDir     string // default ${HOME}/.saga
	DataDir     string // BaseDir/data — per-document json+md plus index snapshot
	StorePath   string // BaseDir/lancedb — or SAGA_STORE_PATH override
	UploadsDir  string // BaseDir/uploads
}

// EmbeddingsConfig configures the embedding provider.
type EmbeddingsConfig struct {
	Provider   string // "local" or "openai"
	BaseURL    string
	Model      string
	APIKey     string
	Dimensions int
	CacheSize  int
}

// StoreConfig configures the vector/metadata store.
type StoreConfig struct {
	UseHNSW              bool
	HNSWM                int
	HNSWEfConstruction   int
	HNSWEfSearch         int
	BatchSize            int
	SimilarityThreshold  float64
}

// ChunkingConfig configures the chunker.
type ChunkingConfig struct {
	MaxSizeOverride int // 0 means use per-content-type default
	OverlapOverride int
	Parallel        bool
	MaxWorkers      int
}

// QueryConfig configures the query engine.
type QueryConfig struct {
	MaxResults            int
	DefaultQueryLanguages []string
	UseReranking          bool
	RerankEndpoint        string
	RerankModel           string
}

// IngestConfig configures the ingest pipeline.
type IngestConfig struct {
	TagGeneration        bool
	IncludeGeneratedTags bool
	Streaming            bool
	StreamChunkBytes     int
	StreamThresholdBytes int
}

// LanguageConfig configures the language detector.
type LanguageConfig struct {
	AcceptedLanguages    []string // empty means accept all
	ConfidenceThreshold  float64
}

// CrawlConfig carries the crawler's canonical knobs. The crawler itself is
// an external collaborator; these values are only
// forwarded to it.
type CrawlConfig struct {
	UserAgent       string
	DelayMS         int
	MaxResponseBytes int64
}

// TimeoutConfig configures per-class outbound call timeouts with fallback
// to a global default.
type TimeoutConfig struct {
	Global    time.Duration
	Embedding time.Duration
	Crawl     time.Duration
}

// Load assembles Config from environment variables, applying defaults for
// anything unset.
func Load() Config {
	base := logging.DefaultBaseDir()

	global := envDuration("SAGA_TIMEOUT", 15*time.Second)

	return Config{
		Paths: PathsConfig{
			BaseDir:    base,
			DataDir:    filepath.Join(base, "data"),
			StorePath:  envString("SAGA_STORE_PATH", filepath.Join(base, "lancedb")),
			UploadsDir: filepath.Join(base, "uploads"),
		},
		Embeddings: EmbeddingsConfig{
			Provider:   envString("SAGA_EMBEDDING_PROVIDER", "local"),
			BaseURL:    envString("SAGA_EMBEDDING_BASE_URL", "http://localhost:11434"),
			Model:      envString("SAGA_EMBEDDING_MODEL", "local-static"),
			APIKey:     envString("SAGA_EMBEDDING_API_KEY", ""),
			Dimensions: envInt("SAGA_EMBEDDING_DIMENSIONS", 256),
			CacheSize:  envInt("SAGA_EMBEDDING_CACHE_SIZE", 1000),
		},
		Store: StoreConfig{
			UseHNSW:             envBool("SAGA_USE_HNSW", true),
			HNSWM:               envInt("SAGA_HNSW_M", 16),
			HNSWEfConstruction:  envInt("SAGA_HNSW_EF_CONSTRUCTION", 200),
			HNSWEfSearch:        envInt("SAGA_HNSW_EF_SEARCH", 50),
			BatchSize:           envInt("SAGA_STORE_BATCH_SIZE", 1000),
			SimilarityThreshold: envFloat("SAGA_SIMILARITY_THRESHOLD", 0.0),
		},
		Chunking: ChunkingConfig{
			MaxSizeOverride: envInt("SAGA_CHUNK_SIZE", 0),
			OverlapOverride: envInt("SAGA_CHUNK_OVERLAP", 0),
			Parallel:        envBool("SAGA_PARALLEL_CHUNKING", true),
			MaxWorkers:      envInt("SAGA_MAX_WORKERS", 4),
		},
		Query: QueryConfig{
			MaxResults:            envInt("SAGA_MAX_SEARCH_RESULTS", 200),
			DefaultQueryLanguages: envList("SAGA_DEFAULT_QUERY_LANGUAGES", nil),
			UseReranking:          envBool("SAGA_USE_RERANKING", false),
			RerankEndpoint:        envString("SAGA_RERANK_ENDPOINT", ""),
			RerankModel:           envString("SAGA_RERANK_MODEL", ""),
		},
		Ingest: IngestConfig{
			TagGeneration:        envBool("SAGA_TAG_GENERATION", false),
			IncludeGeneratedTags: envBool("SAGA_INCLUDE_GENERATED_TAGS_IN_QUERY", true),
			Streaming:            envBool("SAGA_STREAMING_UPLOADS", true),
			StreamChunkBytes:     envInt("SAGA_STREAM_CHUNK_SIZE", 64*1024),
			StreamThresholdBytes: envInt("SAGA_STREAM_THRESHOLD_BYTES", 10*1024*1024),
		},
		Language: LanguageConfig{
			AcceptedLanguages:   envList("SAGA_ACCEPTED_LANGUAGES", nil),
			ConfidenceThreshold: envFloat("SAGA_LANGUAGE_CONFIDENCE_THRESHOLD", 0.2),
		},
		Crawl: CrawlConfig{
			UserAgent:        envString("SAGA_CRAWL_USER_AGENT", "saga-crawler/1.0"),
			DelayMS:          envInt("SAGA_CRAWL_DELAY_MS", 250),
			MaxResponseBytes: int64(envInt("SAGA_CRAWL_MAX_RESPONSE_BYTES", 10*1024*1024)),
		},
		Timeouts: TimeoutConfig{
			Global:    global,
			Embedding: envDuration("SAGA_EMBEDDING_TIMEOUT", global),
			Crawl:     envDuration("SAGA_CRAWL_TIMEOUT", global),
		},
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, strings.ToLower(p))
		}
	}
	return out
}
