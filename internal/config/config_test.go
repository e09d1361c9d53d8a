package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9000
storage:
  index_stem: "./data/index/kb"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	wantStem := filepath.Join(filepath.Dir(path), "data", "index", "kb")
	if cfg.Storage.IndexStem != wantStem {
		t.Errorf("index_stem = %q, want %q", cfg.Storage.IndexStem, wantStem)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
server:
  host: "localhost"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Retrieval.ChunkSize != 500 || cfg.Retrieval.ChunkOverlap != 50 {
		t.Errorf("unexpected chunk defaults: %+v", cfg.Retrieval)
	}
	if cfg.Retrieval.K != 5 || cfg.Retrieval.OverfetchFactor != 3 {
		t.Errorf("unexpected retrieval defaults: %+v", cfg.Retrieval)
	}
	if cfg.Retrieval.MaxContextChars != 2000 {
		t.Errorf("max_context_chars = %d, want 2000", cfg.Retrieval.MaxContextChars)
	}
	if !cfg.Retrieval.EnhanceQueryOrDefault() {
		t.Error("query enhancement should default to enabled")
	}
	if len(cfg.Router.PortfolioKeywords) == 0 || len(cfg.Router.MarketKeywords) == 0 || len(cfg.Router.GoalKeywords) == 0 {
		t.Error("router keyword tables should have defaults")
	}
	if len(cfg.Retrieval.Expansions) == 0 {
		t.Error("query expansion table should have defaults")
	}
	if got := cfg.Retrieval.Expansions["401k"]; len(got) == 0 {
		t.Error("default expansion table missing 401k vocabulary")
	}
	if cfg.Market.RequestsPerMinute != 5 {
		t.Errorf("requests_per_minute = %d, want 5", cfg.Market.RequestsPerMinute)
	}
}

func TestLoad_InvalidChunkConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"overlap equals size", "retrieval:\n  chunk_size: 100\n  chunk_overlap: 100\n"},
		{"overlap exceeds size", "retrieval:\n  chunk_size: 100\n  chunk_overlap: 150\n"},
		{"negative overlap", "retrieval:\n  chunk_size: 100\n  chunk_overlap: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := Load(path); err == nil {
				t.Error("expected config error")
			}
		})
	}
}

func TestLoad_EnhanceQueryDisabled(t *testing.T) {
	path := writeConfig(t, `
retrieval:
  enhance_query: false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Retrieval.EnhanceQueryOrDefault() {
		t.Error("expected enhancement disabled")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
