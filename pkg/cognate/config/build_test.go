package config

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/cognicore/cognate/internal/llm"
	"github.com/cognicore/cognate/pkg/cognate/auxdict"
	"github.com/cognicore/cognate/pkg/cognate/internalerr"
	"github.com/cognicore/cognate/pkg/cognate/lexicon"
	"github.com/cognicore/cognate/pkg/cognate/store/memstore"
	"github.com/cognicore/cognate/pkg/cognate/translate"
)

func TestBuildTranslatorDictionaryOnly(t *testing.T) {
	cfg := Default()
	cfg.Translator.URL = ""
	comp := &Components{Dictionary: auxdict.New(map[string]string{"président": "president"})}

	tr, cleanup, err := cfg.BuildTranslator(context.Background(), comp, nil)
	if err != nil {
		t.Fatalf("BuildTranslator: %v", err)
	}
	defer cleanup()

	got, err := tr.Translate(context.Background(), "président", "fr", "en")
	if err != nil || got != "president" {
		t.Errorf("Translate = %q, %v", got, err)
	}
	if _, err := tr.Translate(context.Background(), "pain", "fr", "en"); !errors.Is(err, internalerr.ErrTranslationUnavailable) {
		t.Errorf("expected ErrTranslationUnavailable, got %v", err)
	}
}

func TestBuildTranslatorCachesThroughMemo(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(map[string]string{"translatedText": "bread"})
	}))
	defer srv.Close()

	cfg := Default()
	cfg.Translator.URL = srv.URL
	cfg.Translator.MaxRetries = 0
	memo := memstore.New()
	comp := &Components{Dictionary: auxdict.New(nil)}

	tr, cleanup, err := cfg.BuildTranslator(context.Background(), comp, memo)
	if err != nil {
		t.Fatalf("BuildTranslator: %v", err)
	}
	defer cleanup()

	for i := 0; i < 3; i++ {
		got, err := tr.Translate(context.Background(), "pain", "fr", "en")
		if err != nil || got != "bread" {
			t.Fatalf("Translate = %q, %v", got, err)
		}
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("expected 1 upstream call, got %d", n)
	}
	if v, ok, _ := memo.GetTranslation(context.Background(), translate.CacheKey("pain", "fr", "en")); !ok || v != "bread" {
		t.Errorf("memo entry = %q, %v", v, ok)
	}
}

func TestBuildTranslatorRedisNeedsURL(t *testing.T) {
	t.Setenv("COGNATE_TEST_REDIS", "")
	cfg := Default()
	cfg.Cache.Kind = CacheRedis
	cfg.Cache.RedisURLEnv = "COGNATE_TEST_REDIS"
	_, _, err := cfg.BuildTranslator(context.Background(), &Components{Dictionary: auxdict.New(nil)}, nil)
	if !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestBuildSynonymsPreference(t *testing.T) {
	cfg := Default()
	lex := lexicon.New()
	lex.AddSynonymGroup("assure", []string{"ensure"})

	if _, ok := cfg.BuildSynonyms(&Components{Lexicon: lex}, nil).(*lexicon.Lexicon); !ok {
		t.Error("expected lexicon when it has groups")
	}
	client := &llm.Client{APIKey: "sk-test"}
	if _, ok := cfg.BuildSynonyms(&Components{Lexicon: lexicon.New()}, client).(*llm.SynonymClient); !ok {
		t.Error("expected LLM synonyms when lexicon is empty")
	}
	if syn := cfg.BuildSynonyms(&Components{Lexicon: lexicon.New()}, &llm.Client{}); syn != nil {
		t.Errorf("expected no synonym source, got %T", syn)
	}
}

func TestBuildEngine(t *testing.T) {
	cfg := Default()
	cfg.Translator.URL = ""
	comp := &Components{Dictionary: auxdict.New(nil), Lexicon: lexicon.New()}
	tr, cleanup, err := cfg.BuildTranslator(context.Background(), comp, nil)
	if err != nil {
		t.Fatalf("BuildTranslator: %v", err)
	}
	defer cleanup()

	cls, err := cfg.BuildClassifier(tr, nil, nil)
	if err != nil {
		t.Fatalf("BuildClassifier: %v", err)
	}
	if _, err := cfg.BuildEngine(cls, nil, nil); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig without client, got %v", err)
	}

	cfg.Search.RankTopN = 3
	cfg.Search.BlendRubric = true
	engine, err := cfg.BuildEngine(cls, cfg.LLMClient(), nil)
	if err != nil {
		t.Fatalf("BuildEngine: %v", err)
	}
	if engine.Config().RankTopN != 3 {
		t.Errorf("RankTopN = %d", engine.Config().RankTopN)
	}
}
