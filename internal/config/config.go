// Package config provides configuration loading and structs for the finance assistant.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Router    RouterConfig    `yaml:"router"`
	Market    MarketConfig    `yaml:"market"`
	LLM       LLMConfig       `yaml:"llm"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the persisted index artifacts.
// IndexStem is the shared path stem: vectors go to <stem>.vec and chunk
// metadata to <stem>.db; both must be present for load to succeed.
type StorageConfig struct {
	IndexStem      string `yaml:"index_stem"`
	BleveIndexPath string `yaml:"bleve_index_path"`
}

// EmbeddingConfig holds embedding oracle settings.
// Provider is one of "remote" (OpenAI-compatible HTTP API), "onnx" (local
// model, requires the onnx build tag), or "mock" (deterministic, for tests
// and offline development).
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	ModelPath  string `yaml:"model_path"`
	Dimensions int    `yaml:"dimensions"`
	MaxTokens  int    `yaml:"max_tokens"`
	CacheSize  int    `yaml:"cache_size"`
}

// RetrievalConfig holds chunking and retrieval settings. Expansions maps
// query terms to related vocabulary appended before embedding; like the
// router keyword tables, it is configuration data so the domain vocabulary
// can be tuned without code changes.
type RetrievalConfig struct {
	ChunkSize        int                 `yaml:"chunk_size"`
	ChunkOverlap     int                 `yaml:"chunk_overlap"`
	K                int                 `yaml:"k"`
	OverfetchFactor  int                 `yaml:"overfetch_factor"`
	MaxContextChars  int                 `yaml:"max_context_chars"`
	DiversityPenalty float64             `yaml:"diversity_penalty"`
	EnhanceQuery     *bool               `yaml:"enhance_query"`
	Expansions       map[string][]string `yaml:"expansions"`
}

// EnhanceQueryOrDefault returns whether query expansion is on; defaults to true.
func (r *RetrievalConfig) EnhanceQueryOrDefault() bool {
	if r.EnhanceQuery != nil {
		return *r.EnhanceQuery
	}
	return true
}

// Validate rejects chunk parameters that would make chunking loop or lose
// text. Called at startup; a bad value here is a configuration error.
func (r *RetrievalConfig) Validate() error {
	if r.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", r.ChunkSize)
	}
	if r.ChunkOverlap < 0 {
		return fmt.Errorf("chunk_overlap must not be negative, got %d", r.ChunkOverlap)
	}
	if r.ChunkOverlap >= r.ChunkSize {
		return fmt.Errorf("chunk_overlap (%d) must be smaller than chunk_size (%d)", r.ChunkOverlap, r.ChunkSize)
	}
	if r.OverfetchFactor < 1 {
		return fmt.Errorf("overfetch_factor must be at least 1, got %d", r.OverfetchFactor)
	}
	if r.DiversityPenalty <= 0 || r.DiversityPenalty > 1 {
		return fmt.Errorf("diversity_penalty must be in (0, 1], got %v", r.DiversityPenalty)
	}
	return nil
}

// RouterConfig holds the keyword tables for intent routing. The tables are
// configuration data so routing vocabulary can be tuned without code changes;
// priority order (portfolio, market, goal) is fixed in the router.
type RouterConfig struct {
	PortfolioKeywords []string `yaml:"portfolio_keywords"`
	MarketKeywords    []string `yaml:"market_keywords"`
	GoalKeywords      []string `yaml:"goal_keywords"`
}

// MarketConfig holds market-data client settings. The API key comes from the
// MARKET_API_KEY environment variable; without one the client serves
// deterministic mock quotes.
type MarketConfig struct {
	BaseURL           string `yaml:"base_url"`
	CacheTTLSeconds   int    `yaml:"cache_ttl_seconds"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
}

// LLMConfig holds language-model client settings. The API key comes from the
// LLM_API_KEY environment variable; without one the Q&A agent answers with
// the retrieved passages only.
type LLMConfig struct {
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
}

// WatchConfig holds knowledge-base directory watch settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// Load reads and parses the config file at path, expands paths, applies
// defaults, and validates the retrieval parameters.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.IndexStem = expandPath(cfg.Storage.IndexStem, configDir)
	cfg.Storage.BleveIndexPath = expandPath(cfg.Storage.BleveIndexPath, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	if err := cfg.Retrieval.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retrieval config: %w", err)
	}
	return &cfg, nil
}

// Save writes the config to path. Used for persisting watch directory changes.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative
// to configDir; other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
