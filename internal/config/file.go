package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// FileOverrides holds the subset of Config that may be set via an optional
// on-disk defaults file (BaseDir/config.yaml). This is a convenience layer
// on top of Load's env-var surface, not a replacement for it: env vars
// always take precedence, matching the override order used throughout the
// corpus (file defaults, then env).
type FileOverrides struct {
	Embeddings struct {
		Provider string `yaml:"provider"`
		Model    string `yaml:"model"`
		BaseURL  string `yaml:"base_url"`
	} `yaml:"embeddings"`
	Query struct {
		MaxResults int `yaml:"max_results"`
	} `yaml:"query"`
}

// LoadFileOverrides reads BaseDir/config.yaml if present and applies its
// values to cfg wherever the corresponding env var was not set. A missing
// file is not an error.
func LoadFileOverrides(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var f FileOverrides
	if err := yaml.Unmarshal(data, &f); err != nil {
		return err
	}

	if os.Getenv("SAGA_EMBEDDING_PROVIDER") == "" && f.Embeddings.Provider != "" {
		cfg.Embeddings.Provider = f.Embeddings.Provider
	}
	if os.Getenv("SAGA_EMBEDDING_MODEL") == "" && f.Embeddings.Model != "" {
		cfg.Embeddings.Model = f.Embeddings.Model
	}
	if os.Getenv("SAGA_EMBEDDING_BASE_URL") == "" && f.Embeddings.BaseURL != "" {
		cfg.Embeddings.BaseURL = f.Embeddings.BaseURL
	}
	if os.Getenv("SAGA_MAX_SEARCH_RESULTS") == "" && f.Query.MaxResults > 0 {
		cfg.Query.MaxResults = f.Query.MaxResults
	}

	return nil
}
