// Package classify decides whether a source-language word is a cognate of
// its translation in the comparison language.
package classify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/cognicore/cognate/pkg/cognate/editdist"
	"github.com/cognicore/cognate/pkg/cognate/internalerr"
	"github.com/cognicore/cognate/pkg/cognate/normalize"
)

// WordTranslator translates a single word between two languages.
// Implementations return an error (ideally wrapping
// internalerr.ErrTranslationUnavailable) when no translation exists.
type WordTranslator interface {
	Translate(ctx context.Context, word, srcLang, dstLang string) (string, error)
}

// SynonymLookup lists synonyms of a comparison-language word.
type SynonymLookup interface {
	Synonyms(ctx context.Context, word string) ([]string, error)
}

// Config controls classification.
type Config struct {
	SourceLang    string
	TargetLang    string
	Threshold     float64
	MaxSynonyms   int
	Elisions      []string
	Normalization editdist.Normalization
	Workers       int
}

// DefaultConfig returns French to English settings.
func DefaultConfig() Config {
	return Config{
		SourceLang:    "fr",
		TargetLang:    "en",
		Threshold:     0.35,
		MaxSynonyms:   10,
		Elisions:      normalize.DefaultElisions,
		Normalization: editdist.NormalizeAverage,
		Workers:       8,
	}
}

// Diagnostic records why a word could not be classified.
type Diagnostic struct {
	Word string
	Err  error
}

// Result is the outcome of classifying a batch of words.
type Result struct {
	// Cognates holds the raw-cased input words judged cognate, in input
	// order and without duplicates.
	Cognates    []string
	Diagnostics []Diagnostic
}

// Classifier flags cognates using a translator and optional synonyms.
type Classifier struct {
	cfg        Config
	translator WordTranslator
	synonyms   SynonymLookup
	cmp        editdist.Comparator

	// Logger receives per-word diagnostics. Nil uses log.Default().
	Logger *log.Logger
}

// New creates a classifier. synonyms may be nil.
func New(cfg Config, translator WordTranslator, synonyms SynonymLookup) (*Classifier, error) {
	if translator == nil {
		return nil, fmt.Errorf("classify: translator required: %w", internalerr.ErrInvalidConfig)
	}
	if cfg.Threshold <= 0 || cfg.Threshold > 1 {
		return nil, fmt.Errorf("classify: threshold %v out of (0,1]: %w", cfg.Threshold, internalerr.ErrInvalidConfig)
	}
	if cfg.SourceLang == "" || cfg.TargetLang == "" {
		return nil, fmt.Errorf("classify: languages required: %w", internalerr.ErrInvalidConfig)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Classifier{
		cfg:        cfg,
		translator: translator,
		synonyms:   synonyms,
		cmp:        editdist.Comparator{Normalization: cfg.Normalization},
	}, nil
}

// IsCognate reports whether word resembles its translation or one of the
// translation's synonyms. Words of two runes or fewer are never cognates
// and are not translated. A missing translation yields false and an error
// wrapping ErrTranslationUnavailable.
func (c *Classifier) IsCognate(ctx context.Context, word string) (bool, error) {
	form := normalize.Normalize(normalize.StripElision(word, c.cfg.Elisions))
	if normalize.RuneLen(form) <= editdist.ShortWordLen {
		return false, nil
	}

	raw, err := c.translator.Translate(ctx, form, c.cfg.SourceLang, c.cfg.TargetLang)
	if err != nil {
		if errors.Is(err, internalerr.ErrTranslationUnavailable) {
			return false, err
		}
		return false, fmt.Errorf("translate %q: %w: %v", form, internalerr.ErrTranslationUnavailable, err)
	}
	translation := CleanTranslation(raw)
	if translation == "" {
		return false, fmt.Errorf("translate %q: empty result: %w", form, internalerr.ErrTranslationUnavailable)
	}

	if c.similar(form, translation) {
		return true, nil
	}
	for _, syn := range c.lookupSynonyms(ctx, translation) {
		if c.similar(form, syn) {
			return true, nil
		}
	}
	return false, nil
}

// ClassifyAll classifies every word concurrently. A failing word is
// reported in Diagnostics and counted as non-cognate.
func (c *Classifier) ClassifyAll(ctx context.Context, words []string) Result {
	flags := make([]bool, len(words))
	errs := make([]error, len(words))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Workers)
	for i, w := range words {
		g.Go(func() error {
			ok, err := c.IsCognate(gctx, w)
			flags[i], errs[i] = ok, err
			return nil
		})
	}
	_ = g.Wait()

	var res Result
	seen := make(map[string]struct{}, len(words))
	for i, w := range words {
		if errs[i] != nil {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{Word: w, Err: errs[i]})
			c.logger().Printf("classify: %q: %v", w, errs[i])
			continue
		}
		if !flags[i] {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		res.Cognates = append(res.Cognates, w)
	}
	return res
}

// Config returns the classifier settings.
func (c *Classifier) Config() Config { return c.cfg }

func (c *Classifier) similar(a, b string) bool {
	ratio, err := c.cmp.Ratio(a, b)
	if err != nil {
		return false
	}
	return ratio < c.cfg.Threshold
}

func (c *Classifier) lookupSynonyms(ctx context.Context, word string) []string {
	if c.synonyms == nil || c.cfg.MaxSynonyms <= 0 {
		return nil
	}
	list, err := c.synonyms.Synonyms(ctx, word)
	if err != nil {
		c.logger().Printf("classify: synonyms for %q: %v", word, err)
		return nil
	}
	out := make([]string, 0, min(len(list), c.cfg.MaxSynonyms))
	for _, s := range list {
		if len(out) == c.cfg.MaxSynonyms {
			break
		}
		if s = normalize.Normalize(s); s != "" && s != word {
			out = append(out, s)
		}
	}
	return out
}

func (c *Classifier) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.Default()
}

// CleanTranslation normalizes a translator response and drops the leading
// infinitive marker of English verbs ("to assure" becomes "assure").
func CleanTranslation(raw string) string {
	s := strings.TrimSpace(strings.ToLower(raw))
	s = strings.TrimPrefix(s, "to ")
	return normalize.Normalize(s)
}
