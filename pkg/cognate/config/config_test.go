package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cognicore/cognate/pkg/cognate/editdist"
	"github.com/cognicore/cognate/pkg/cognate/internalerr"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default config invalid: %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, "cognate.yaml", `languages:
  source: es
  target: en
classifier:
  threshold: 0.3
  normalization: max
scoring:
  weights:
    ratio: 0.5
    gap: 0.5
    length: 0.1
search:
  beam_size: 5
  call_timeout: 10s
  seed_words: [hotel, museo]
  require_seed_words: true
cache:
  kind: redis
  ttl: 1h
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Languages.Source != "es" {
		t.Errorf("source = %q", cfg.Languages.Source)
	}
	if cfg.Search.BeamSize != 5 || cfg.Search.CallTimeout != 10*time.Second {
		t.Errorf("search = %+v", cfg.Search)
	}
	// Untouched fields keep their defaults.
	if cfg.Search.Branching != Default().Search.Branching {
		t.Errorf("branching = %d, want default", cfg.Search.Branching)
	}
	if cfg.Cache.TTL != time.Hour || cfg.Cache.Kind != CacheRedis {
		t.Errorf("cache = %+v", cfg.Cache)
	}

	cls := cfg.ClassifyConfig()
	if cls.SourceLang != "es" || cls.Threshold != 0.3 || cls.Normalization != editdist.NormalizeMax {
		t.Errorf("classify config = %+v", cls)
	}
	srch := cfg.SearchConfig()
	if !srch.RequireSeedWords || len(srch.SeedWords) != 2 || srch.TargetLang != "en" {
		t.Errorf("search config = %+v", srch)
	}
	if cfg.Scorer() == nil {
		t.Error("expected scorer")
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"same languages", func(c *Config) { c.Languages.Target = c.Languages.Source }},
		{"zero threshold", func(c *Config) { c.Classifier.Threshold = 0 }},
		{"bad normalization", func(c *Config) { c.Classifier.Normalization = "median" }},
		{"negative weight", func(c *Config) { c.Scoring.Weights.Gap = -1 }},
		{"zero max average gap", func(c *Config) { c.Scoring.Thresholds.MaxAverageGap = 0 }},
		{"min ratio above one", func(c *Config) { c.Scoring.Thresholds.MinRatio = 1.5 }},
		{"negative biggest gap", func(c *Config) { c.Scoring.Thresholds.MaxBiggestGap = -1 }},
		{"unknown cache", func(c *Config) { c.Cache.Kind = "memcached" }},
		{"empty lru", func(c *Config) { c.Cache.Size = 0 }},
		{"zero beam", func(c *Config) { c.Search.BeamSize = 0 }},
		{"one seed word", func(c *Config) {
			c.Search.SeedWords = []string{"hotel"}
			c.Search.RequireSeedWords = true
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, internalerr.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadRejectsZeroMaxAverageGap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cognate.yaml")
	data := "scoring:\n  thresholds:\n    max_average_gap: 0\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/cognate.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeFile(t, "bad.yaml", "search: [not, a, map")
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLLMClientReadsKeyFromEnv(t *testing.T) {
	t.Setenv("COGNATE_TEST_KEY", "sk-test")
	cfg := Default()
	cfg.LLM.APIKeyEnv = "COGNATE_TEST_KEY"
	c := cfg.LLMClient()
	if c.APIKey != "sk-test" {
		t.Errorf("APIKey = %q", c.APIKey)
	}
	if c.Model != cfg.LLM.ChatModel {
		t.Errorf("Model = %q", c.Model)
	}
}
