// Package config loads cognate search settings from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/cognate/internal/llm"
	"github.com/cognicore/cognate/pkg/cognate/classify"
	"github.com/cognicore/cognate/pkg/cognate/difficulty"
	"github.com/cognicore/cognate/pkg/cognate/editdist"
	"github.com/cognicore/cognate/pkg/cognate/internalerr"
	"github.com/cognicore/cognate/pkg/cognate/normalize"
	"github.com/cognicore/cognate/pkg/cognate/search"
)

// Config is the top-level settings file.
type Config struct {
	Languages  Languages  `yaml:"languages"`
	Classifier Classifier `yaml:"classifier"`
	Scoring    Scoring    `yaml:"scoring"`
	Search     Search     `yaml:"search"`
	LLM        LLM        `yaml:"llm"`
	Translator Translator `yaml:"translator"`
	Cache      Cache      `yaml:"cache"`
	Store      Store      `yaml:"store"`
}

// Languages names the language being learned and the one compared against.
type Languages struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

type Classifier struct {
	Threshold     float64  `yaml:"threshold"`
	MaxSynonyms   int      `yaml:"max_synonyms"`
	Elisions      []string `yaml:"elisions"`
	Normalization string   `yaml:"normalization"` // "average" or "max"
	Workers       int      `yaml:"workers"`
	LexiconPath   string   `yaml:"lexicon_path"`
}

type Scoring struct {
	Weights    difficulty.Weights    `yaml:"weights"`
	Thresholds difficulty.Thresholds `yaml:"thresholds"`
}

type Search struct {
	BeamSize          int           `yaml:"beam_size"`
	Branching         int           `yaml:"branching"`
	MaxIterations     int           `yaml:"max_iterations"`
	ContinueThreshold float64       `yaml:"continue_threshold"`
	Workers           int           `yaml:"workers"`
	CallTimeout       time.Duration `yaml:"call_timeout"`
	RankTopN          int           `yaml:"rank_top_n"`
	StopOnRankerPick  bool          `yaml:"stop_on_ranker_pick"`
	BlendRubric       bool          `yaml:"blend_rubric"`
	SeedWords         []string      `yaml:"seed_words"`
	RequireSeedWords  bool          `yaml:"require_seed_words"`
}

// LLM configures the OpenAI-compatible endpoint. The key itself is read
// from the environment variable named by APIKeyEnv.
type LLM struct {
	BaseURL         string `yaml:"base_url"`
	CompletionModel string `yaml:"completion_model"`
	ChatModel       string `yaml:"chat_model"`
	APIKeyEnv       string `yaml:"api_key_env"`
	MaxRetries      int    `yaml:"max_retries"`
}

type Translator struct {
	URL            string `yaml:"url"`
	APIKeyEnv      string `yaml:"api_key_env"`
	DictionaryPath string `yaml:"dictionary_path"`
	MaxRetries     int    `yaml:"max_retries"`
}

// Cache selects the translation cache: "lru", "redis" or "none".
type Cache struct {
	Kind        string        `yaml:"kind"`
	Size        int           `yaml:"size"`
	RedisURLEnv string        `yaml:"redis_url_env"`
	TTL         time.Duration `yaml:"ttl"`
}

type Store struct {
	Path string `yaml:"path"`
}

// Cache kinds.
const (
	CacheLRU   = "lru"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Default returns French to English settings.
func Default() Config {
	cls := classify.DefaultConfig()
	srch := search.DefaultConfig()
	return Config{
		Languages: Languages{Source: "fr", Target: "en"},
		Classifier: Classifier{
			Threshold:     cls.Threshold,
			MaxSynonyms:   cls.MaxSynonyms,
			Elisions:      append([]string(nil), normalize.DefaultElisions...),
			Normalization: string(editdist.NormalizeAverage),
			Workers:       cls.Workers,
		},
		Scoring: Scoring{
			Weights:    difficulty.DefaultWeights(),
			Thresholds: difficulty.DefaultThresholds(),
		},
		Search: Search{
			BeamSize:          srch.BeamSize,
			Branching:         srch.Branching,
			MaxIterations:     srch.MaxIterations,
			ContinueThreshold: srch.ContinueThreshold,
			Workers:           srch.Workers,
			CallTimeout:       srch.CallTimeout,
		},
		LLM: LLM{
			BaseURL:         "https://api.openai.com/v1",
			CompletionModel: "gpt-3.5-turbo-instruct",
			ChatModel:       "gpt-4o-mini",
			APIKeyEnv:       "OPENAI_API_KEY",
			MaxRetries:      llm.DefaultRetryPolicy().MaxRetries,
		},
		Translator: Translator{
			URL:        "http://localhost:5000/translate",
			APIKeyEnv:  "TRANSLATE_API_KEY",
			MaxRetries: 2,
		},
		Cache: Cache{
			Kind:        CacheLRU,
			Size:        10000,
			RedisURLEnv: "REDIS_URL",
			TTL:         30 * 24 * time.Hour,
		},
		Store: Store{Path: "cognate.db"},
	}
}

// Load reads a YAML file on top of Default and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field ranges. Search settings are checked by the engine
// as well, but failing here reports the problem before any service is built.
func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("config: "+format+": %w", append(args, internalerr.ErrInvalidConfig)...)
	}
	switch {
	case c.Languages.Source == "" || c.Languages.Target == "":
		return invalid("languages.source and languages.target are required")
	case c.Languages.Source == c.Languages.Target:
		return invalid("source and target language are both %q", c.Languages.Source)
	case c.Classifier.Threshold <= 0 || c.Classifier.Threshold > 1:
		return invalid("classifier.threshold %v out of (0,1]", c.Classifier.Threshold)
	case c.Classifier.Normalization != string(editdist.NormalizeAverage) &&
		c.Classifier.Normalization != string(editdist.NormalizeMax):
		return invalid("classifier.normalization %q", c.Classifier.Normalization)
	case c.Scoring.Weights.Ratio < 0 || c.Scoring.Weights.Gap < 0 || c.Scoring.Weights.Length < 0:
		return invalid("scoring weights must be non-negative")
	}
	if err := c.Scoring.Thresholds.Validate(); err != nil {
		return fmt.Errorf("config: scoring.thresholds: %w", err)
	}
	switch c.Cache.Kind {
	case CacheLRU:
		if c.Cache.Size < 1 {
			return invalid("cache.size %d", c.Cache.Size)
		}
	case CacheRedis, CacheNone:
	default:
		return invalid("cache.kind %q", c.Cache.Kind)
	}
	if err := c.SearchConfig().Validate(); err != nil {
		return err
	}
	return nil
}

// ClassifyConfig converts the classifier section.
func (c Config) ClassifyConfig() classify.Config {
	return classify.Config{
		SourceLang:    c.Languages.Source,
		TargetLang:    c.Languages.Target,
		Threshold:     c.Classifier.Threshold,
		MaxSynonyms:   c.Classifier.MaxSynonyms,
		Elisions:      c.Classifier.Elisions,
		Normalization: editdist.Normalization(c.Classifier.Normalization),
		Workers:       c.Classifier.Workers,
	}
}

// SearchConfig converts the search section.
func (c Config) SearchConfig() search.Config {
	s := c.Search
	return search.Config{
		SourceLang:        c.Languages.Source,
		TargetLang:        c.Languages.Target,
		BeamSize:          s.BeamSize,
		Branching:         s.Branching,
		MaxIterations:     s.MaxIterations,
		ContinueThreshold: s.ContinueThreshold,
		Workers:           s.Workers,
		CallTimeout:       s.CallTimeout,
		RankTopN:          s.RankTopN,
		StopOnRankerPick:  s.StopOnRankerPick,
		BlendRubric:       s.BlendRubric,
		SeedWords:         s.SeedWords,
		RequireSeedWords:  s.RequireSeedWords,
	}
}

// Scorer builds the difficulty scorer.
func (c Config) Scorer() *difficulty.Scorer {
	return difficulty.NewScorer(c.Scoring.Weights, c.Scoring.Thresholds)
}

// LLMClient builds the API client, reading the key from the environment.
func (c Config) LLMClient() *llm.Client {
	retry := llm.DefaultRetryPolicy()
	retry.MaxRetries = c.LLM.MaxRetries
	return &llm.Client{
		BaseURL: c.LLM.BaseURL,
		APIKey:  os.Getenv(c.LLM.APIKeyEnv),
		Model:   c.LLM.ChatModel,
		Retry:   retry,
	}
}

// RedisURL returns the Redis URL from the environment.
func (c Config) RedisURL() string {
	return os.Getenv(c.Cache.RedisURLEnv)
}
