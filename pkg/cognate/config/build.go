package config

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/cognicore/cognate/internal/llm"
	"github.com/cognicore/cognate/pkg/cognate/classify"
	"github.com/cognicore/cognate/pkg/cognate/internalerr"
	"github.com/cognicore/cognate/pkg/cognate/search"
	"github.com/cognicore/cognate/pkg/cognate/translate"
)

// BuildTranslator builds the translation chain:
//
//	auxiliary dictionary -> process cache (LRU or Redis) -> memo -> HTTP service
//
// memo may be nil. An empty translator URL leaves the dictionary as the only
// source. The returned cleanup closes any Redis connection.
func (c Config) BuildTranslator(ctx context.Context, comp *Components, memo translate.Memo) (classify.WordTranslator, func(), error) {
	cleanup := func() {}

	var next classify.WordTranslator
	if c.Translator.URL != "" {
		retry := llm.DefaultRetryPolicy()
		retry.MaxRetries = c.Translator.MaxRetries
		next = &translate.HTTPTranslator{
			URL:    c.Translator.URL,
			APIKey: os.Getenv(c.Translator.APIKeyEnv),
			Retry:  retry,
		}
		if memo != nil {
			next = &translate.Cached{Name: "memo", Cache: translate.StoreCache{Memo: memo}, Next: next}
		}

		switch c.Cache.Kind {
		case CacheLRU:
			lru, err := translate.NewLRU(c.Cache.Size)
			if err != nil {
				return nil, nil, fmt.Errorf("translation cache: %w", err)
			}
			next = &translate.Cached{Name: CacheLRU, Cache: lru, Next: next}
		case CacheRedis:
			url := c.RedisURL()
			if url == "" {
				return nil, nil, fmt.Errorf("cache.kind redis needs $%s: %w", c.Cache.RedisURLEnv, internalerr.ErrInvalidConfig)
			}
			rc, err := translate.NewRedisCache(ctx, url, c.Cache.TTL)
			if err != nil {
				return nil, nil, fmt.Errorf("connect redis: %w", err)
			}
			cleanup = func() { rc.Close() }
			next = &translate.Cached{Name: CacheRedis, Cache: rc, Next: next}
		}
	}

	return &translate.DictionaryFirst{Dict: comp.Dictionary, Next: next}, cleanup, nil
}

// BuildSynonyms picks the synonym source: the lexicon when it has entries,
// otherwise the chat model when an API key is set, otherwise none.
func (c Config) BuildSynonyms(comp *Components, client *llm.Client) classify.SynonymLookup {
	if comp.Lexicon != nil && comp.Lexicon.Stats().Groups > 0 {
		return comp.Lexicon
	}
	if client != nil && client.APIKey != "" {
		return &llm.SynonymClient{
			Client:   client,
			Language: search.LanguageName(c.Languages.Target),
			Limit:    c.Classifier.MaxSynonyms,
		}
	}
	return nil
}

// BuildClassifier wires a classifier from the translator and synonym source.
func (c Config) BuildClassifier(tr classify.WordTranslator, syn classify.SynonymLookup, logger *log.Logger) (*classify.Classifier, error) {
	cls, err := classify.New(c.ClassifyConfig(), tr, syn)
	if err != nil {
		return nil, err
	}
	cls.Logger = logger
	return cls, nil
}

// BuildEngine wires the beam search engine on top of cls and the LLM client.
// The ranker and rubric scorer are only attached when the settings use them.
func (c Config) BuildEngine(cls search.Classifier, client *llm.Client, logger *log.Logger) (*search.Engine, error) {
	if client == nil {
		return nil, fmt.Errorf("engine: llm client required: %w", internalerr.ErrInvalidConfig)
	}
	src, dst := search.LanguageName(c.Languages.Source), search.LanguageName(c.Languages.Target)

	opts := search.Options{
		Config:     c.SearchConfig(),
		Generator:  llm.NewGenerator(client, c.LLM.CompletionModel),
		Classifier: cls,
		Scorer:     c.Scorer(),
		Logger:     logger,
	}
	if c.Search.RankTopN > 1 {
		opts.Ranker = &llm.Ranker{Client: client, SourceName: src, TargetName: dst}
	}
	if c.Search.BlendRubric {
		opts.Rubric = &llm.RubricScorer{Client: client, SourceName: src, TargetName: dst}
	}
	return search.New(opts)
}
