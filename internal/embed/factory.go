package embed

import "github.com/sagaeng/saga/internal/config"

// New builds the configured Embedder, always wrapped in a CachedEmbedder.
func New(cfg config.EmbeddingsConfig) Embedder {
	var inner Embedder
	switch cfg.Provider {
	case "openai", "http":
		inner = NewHTTPEmbedder(HTTPConfig{
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			APIKey:     cfg.APIKey,
			Dimensions: cfg.Dimensions,
		})
	default:
		inner = NewLocalEmbedder()
	}
	return NewCachedEmbedder(inner, cfg.CacheSize)
}
