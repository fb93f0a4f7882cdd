package search

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/cognicore/cognate/pkg/cognate/classify"
	"github.com/cognicore/cognate/pkg/cognate/difficulty"
	"github.com/cognicore/cognate/pkg/cognate/internalerr"
	"github.com/cognicore/cognate/pkg/cognate/normalize"
)

type dictTranslator map[string]string

func (d dictTranslator) Translate(_ context.Context, word, _, _ string) (string, error) {
	if out, ok := d[word]; ok {
		return out, nil
	}
	return "", internalerr.ErrTranslationUnavailable
}

var frEn = dictTranslator{
	"president": "president",
	"emmanuel":  "Emmanuel",
	"macron":    "Macron",
	"assure":    "to assure",
	"peuple":    "people",
	"canadien":  "Canadian",
	"veux":      "want",
	"manger":    "to eat",
	"pain":      "bread",
	"hotel":     "hotel",
	"grand":     "big",
}

func scoreSentence(t *testing.T, sentence string) difficulty.ScoreBreakdown {
	t.Helper()
	cls, err := classify.New(classify.DefaultConfig(), frEn, nil)
	if err != nil {
		t.Fatalf("classify.New: %v", err)
	}
	cls.Logger = log.New(io.Discard, "", 0)
	words := normalize.Tokenize(sentence, false)
	res := cls.ClassifyAll(context.Background(), words)
	b, err := difficulty.NewScorer(difficulty.DefaultWeights(), difficulty.DefaultThresholds()).Score(words, res.Cognates)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	return b
}

func TestEndToEndCognateRichSentence(t *testing.T) {
	b := scoreSentence(t, "Le président Emmanuel Macron assure le peuple canadien")
	if b.Total <= 0.5 {
		t.Fatalf("total = %v, want > 0.5 (%+v)", b.Total, b)
	}
}

func TestEndToEndOpaqueSentence(t *testing.T) {
	b := scoreSentence(t, "Je veux manger du pain")
	if !b.RejectedEarly || b.Total != 0 {
		t.Fatalf("expected rejection with total 0, got %+v", b)
	}
}

func TestEndToEndSearchWithRealClassifier(t *testing.T) {
	cls, err := classify.New(classify.DefaultConfig(), frEn, nil)
	if err != nil {
		t.Fatalf("classify.New: %v", err)
	}
	cls.Logger = log.New(io.Discard, "", 0)
	cfg := testConfig()
	cfg.MaxIterations = 2
	cfg.ContinueThreshold = 0
	e := newTestEngine(t, cfg, fixedGenerator(defaultGenerations...), cls)

	res, err := e.Run(context.Background(), "Le")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Iterations != 2 || len(res.Beam) == 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	for _, w := range []string{"président", "assure", "peuple", "canadien"} {
		if !res.Best.Cognates.Contains(w) {
			t.Errorf("best state missing cognate %q: %v", w, res.Best.Cognates.Slice())
		}
	}
}
