// Package search grows cognate-rich sentences with a beam search over
// model-generated continuations.
package search

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cognicore/cognate/internal/metrics"
	"github.com/cognicore/cognate/pkg/cognate/classify"
	"github.com/cognicore/cognate/pkg/cognate/difficulty"
	"github.com/cognicore/cognate/pkg/cognate/internalerr"
	"github.com/cognicore/cognate/pkg/cognate/normalize"
)

// CandidateGenerator returns n continuations for a prompt.
type CandidateGenerator interface {
	Generate(ctx context.Context, prompt string, n int) ([]string, error)
}

// CandidateRanker picks the easiest candidate and returns its 1-based rank.
type CandidateRanker interface {
	Rank(ctx context.Context, candidates []string) (int, error)
}

// RubricScorer grades a sentence on the 0..3 rubric.
type RubricScorer interface {
	ScoreRubric(ctx context.Context, sentence string) (difficulty.Rubric, error)
}

// Classifier flags cognates in a batch of words.
type Classifier interface {
	ClassifyAll(ctx context.Context, words []string) classify.Result
}

// Config controls a search. It is read-only once the engine is built.
type Config struct {
	SourceLang string
	TargetLang string

	BeamSize          int
	Branching         int // continuations requested per state
	MaxIterations     int
	ContinueThreshold float64
	Workers           int
	CallTimeout       time.Duration

	// RankTopN > 1 lets the ranker choose among the first N beam states.
	RankTopN         int
	StopOnRankerPick bool
	BlendRubric      bool

	SeedWords        []string
	RequireSeedWords bool
}

// DefaultConfig returns French to English settings.
func DefaultConfig() Config {
	return Config{
		SourceLang:        "fr",
		TargetLang:        "en",
		BeamSize:          3,
		Branching:         6,
		MaxIterations:     5,
		ContinueThreshold: 0.40,
		Workers:           4,
		CallTimeout:       30 * time.Second,
	}
}

// Validate checks the settings.
func (c Config) Validate() error {
	switch {
	case c.BeamSize < 1:
		return fmt.Errorf("search: beam size %d: %w", c.BeamSize, internalerr.ErrInvalidConfig)
	case c.Branching < 1:
		return fmt.Errorf("search: branching %d: %w", c.Branching, internalerr.ErrInvalidConfig)
	case c.MaxIterations < 1:
		return fmt.Errorf("search: max iterations %d: %w", c.MaxIterations, internalerr.ErrInvalidConfig)
	case c.ContinueThreshold < 0 || c.ContinueThreshold > 1:
		return fmt.Errorf("search: continue threshold %v: %w", c.ContinueThreshold, internalerr.ErrInvalidConfig)
	case c.RequireSeedWords && len(c.SeedWords) < 2:
		return fmt.Errorf("search: at least two seed words required: %w", internalerr.ErrInvalidConfig)
	}
	return nil
}

// Options wires an Engine.
type Options struct {
	Config     Config
	Generator  CandidateGenerator
	Classifier Classifier
	Scorer     *difficulty.Scorer

	// Optional collaborators.
	Ranker   CandidateRanker
	Rubric   RubricScorer
	Logger   *log.Logger
	Rand     *rand.Rand
	Observer func(Phase, Beam)
}

// Engine runs beam searches. It is safe for concurrent use.
type Engine struct {
	cfg        Config
	generator  CandidateGenerator
	classifier Classifier
	scorer     *difficulty.Scorer
	ranker     CandidateRanker
	rubric     RubricScorer
	logger     *log.Logger
	observer   func(Phase, Beam)

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New validates opts and builds an engine.
func New(opts Options) (*Engine, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	if opts.Generator == nil || opts.Classifier == nil || opts.Scorer == nil {
		return nil, fmt.Errorf("search: generator, classifier and scorer required: %w", internalerr.ErrInvalidConfig)
	}
	cfg := opts.Config
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	e := &Engine{
		cfg:        cfg,
		generator:  opts.Generator,
		classifier: opts.Classifier,
		scorer:     opts.Scorer,
		ranker:     opts.Ranker,
		rubric:     opts.Rubric,
		logger:     opts.Logger,
		observer:   opts.Observer,
		rng:        opts.Rand,
	}
	if e.logger == nil {
		e.logger = log.Default()
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x636f676e))
	}
	return e, nil
}

// Config returns the engine settings.
func (e *Engine) Config() Config { return e.cfg }

// Root scores the seed text and returns the Seeded state.
func (e *Engine) Root(ctx context.Context, seed string) (SentenceState, error) {
	text := strings.Join(strings.Fields(seed), " ")
	root := SentenceState{Text: text, Cognates: CognateSet{}}
	words := normalize.Tokenize(text, false)
	if len(words) == 0 {
		return root, nil
	}
	res := e.classifier.ClassifyAll(ctx, words)
	root.Cognates = NewCognateSet(res.Cognates...)
	score, err := e.scorer.Score(words, root.Cognates.Slice())
	if err != nil {
		return SentenceState{}, err
	}
	root.Score = score
	return root, nil
}

// InitBeam seeds the search and performs the first expansion.
func (e *Engine) InitBeam(ctx context.Context, seed string, beamSize int) (Beam, error) {
	root, err := e.Root(ctx, seed)
	if err != nil {
		return nil, err
	}
	e.observe(PhaseSeeded, Beam{root})
	return e.StepBeam(ctx, Beam{root}, beamSize)
}

// candidate is a generated suffix waiting to be scored.
type candidate struct {
	parent int
	suffix string
	prompt string
	seeds  []string
}

// StepBeam expands every state of beam, scores the children and returns the
// best beamSize of them, sorted by descending total. A failed generation or
// scoring drops only the affected candidates. ErrNoCandidates is returned
// when nothing survives.
func (e *Engine) StepBeam(ctx context.Context, beam Beam, beamSize int) (Beam, error) {
	if beamSize < 1 {
		return nil, fmt.Errorf("search: beam size %d: %w", beamSize, internalerr.ErrInvalidArgument)
	}
	if len(beam) == 0 {
		return nil, fmt.Errorf("search: empty beam: %w", internalerr.ErrNoCandidates)
	}

	e.observe(PhaseExpanding, beam)
	pending := e.expand(ctx, beam)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	children := e.scoreAll(ctx, beam, pending)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.observe(PhaseScored, Beam(children))

	next := sortAndTrim(children, beamSize)
	if len(next) == 0 {
		return nil, fmt.Errorf("search: %d states produced nothing usable: %w", len(beam), internalerr.ErrNoCandidates)
	}
	if e.cfg.BlendRubric && e.rubric != nil {
		next = e.blendRubric(ctx, next)
	}
	metrics.BestScore(next[0].Score.Total)
	e.observe(PhaseTrimmed, next)
	return next, nil
}

// expand asks the generator for continuations of every state in parallel.
func (e *Engine) expand(ctx context.Context, beam Beam) []candidate {
	perParent := make([][]candidate, len(beam))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for i, st := range beam {
		g.Go(func() error {
			perParent[i] = e.expandOne(gctx, i, st)
			return nil
		})
	}
	_ = g.Wait()

	var out []candidate
	for _, c := range perParent {
		out = append(out, c...)
	}
	return out
}

func (e *Engine) expandOne(ctx context.Context, idx int, st SentenceState) []candidate {
	seeds := e.pickSeedWords()
	prompt := BuildPrompt(e.cfg, st.Text, seeds)

	callCtx, cancel := e.callContext(ctx)
	gens, err := e.generator.Generate(callCtx, prompt, e.cfg.Branching)
	cancel()
	if err != nil {
		if !errors.Is(err, internalerr.ErrGeneration) {
			err = fmt.Errorf("%w: %v", internalerr.ErrGeneration, err)
		}
		metrics.Candidate(metrics.OutcomeFailed)
		e.logger.Printf("search: expand %q: %v", st.Text, err)
		return nil
	}

	out := make([]candidate, 0, len(gens))
	for _, g := range gens {
		suffix := CleanGeneration(g, st.Text)
		switch {
		case suffix == "":
			metrics.Candidate(metrics.OutcomeEmpty)
			continue
		case !hasLowerASCII(suffix):
			metrics.Candidate(metrics.OutcomeNoLetter)
			e.logger.Printf("search: rejected generation without letters: %q", suffix)
			continue
		case e.cfg.RequireSeedWords && !containsSeedWord(suffix, seeds):
			metrics.Candidate(metrics.OutcomeNoSeed)
			continue
		}
		out = append(out, candidate{parent: idx, suffix: suffix, prompt: prompt, seeds: seeds})
	}
	return out
}

// scoreAll classifies only each suffix, merges the parent's cognates and
// scores the full text. Order of the result follows pending.
func (e *Engine) scoreAll(ctx context.Context, beam Beam, pending []candidate) []SentenceState {
	results := make([]*SentenceState, len(pending))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for i, c := range pending {
		g.Go(func() error {
			st, err := e.scoreCandidate(gctx, beam[c.parent], c)
			if err != nil {
				metrics.Candidate(metrics.OutcomeFailed)
				e.logger.Printf("search: score %q: %v", c.suffix, err)
				return nil
			}
			metrics.Candidate(metrics.OutcomeKept)
			results[i] = &st
			return nil
		})
	}
	_ = g.Wait()

	out := make([]SentenceState, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

func (e *Engine) scoreCandidate(ctx context.Context, parent SentenceState, c candidate) (SentenceState, error) {
	res := e.classifier.ClassifyAll(ctx, normalize.Tokenize(c.suffix, false))
	cognates := parent.Cognates.Union(res.Cognates)

	text := c.suffix
	if parent.Text != "" {
		text = parent.Text + " " + c.suffix
	}
	words := normalize.Tokenize(text, false)
	if len(words) == 0 {
		return SentenceState{}, fmt.Errorf("no words in %q: %w", text, internalerr.ErrGeneration)
	}
	score, err := e.scorer.Score(words, cognates.Slice())
	if err != nil {
		return SentenceState{}, err
	}
	return SentenceState{
		Text:         text,
		Cognates:     cognates,
		Score:        score,
		OriginPrompt: c.prompt,
		ParentText:   parent.Text,
		SeedWords:    c.seeds,
	}, nil
}

// blendRubric mixes a rubric grade into each surviving state and re-sorts.
// States whose grading fails keep their heuristic score.
func (e *Engine) blendRubric(ctx context.Context, beam Beam) Beam {
	out := make([]SentenceState, len(beam))
	copy(out, beam)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for i := range out {
		g.Go(func() error {
			callCtx, cancel := e.callContext(gctx)
			defer cancel()
			r, err := e.rubric.ScoreRubric(callCtx, out[i].Text)
			if err == nil {
				var blended difficulty.ScoreBreakdown
				if blended, err = difficulty.Blend(out[i].Score, r); err == nil {
					out[i].Score = blended
					return nil
				}
			}
			e.logger.Printf("search: rubric for %q: %v", out[i].Text, err)
			return nil
		})
	}
	_ = g.Wait()
	return sortAndTrim(out, len(out))
}

// SelectBest returns the state to report for beam. With a ranker configured
// the ranker chooses among the first RankTopN states and picked is true; a
// ranking failure falls back to the heuristic order and is returned as an
// error wrapping ErrRanking alongside the fallback state.
func (e *Engine) SelectBest(ctx context.Context, beam Beam) (best SentenceState, picked bool, err error) {
	best, ok := beam.Best()
	if !ok {
		return SentenceState{}, false, fmt.Errorf("search: empty beam: %w", internalerr.ErrNoCandidates)
	}
	if e.ranker == nil || e.cfg.RankTopN < 2 || len(beam) < 2 {
		return best, false, nil
	}

	n := min(e.cfg.RankTopN, len(beam))
	callCtx, cancel := e.callContext(ctx)
	defer cancel()
	rank, err := e.ranker.Rank(callCtx, beam[:n].Texts())
	if err == nil && (rank < 1 || rank > n) {
		err = fmt.Errorf("rank %d outside 1..%d: %w", rank, n, internalerr.ErrRanking)
	}
	if err != nil {
		if !errors.Is(err, internalerr.ErrRanking) {
			err = fmt.Errorf("%w: %v", internalerr.ErrRanking, err)
		}
		e.logger.Printf("search: ranker fallback to heuristic order: %v", err)
		return best, false, err
	}
	return beam[rank-1], true, nil
}

func (e *Engine) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.cfg.CallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.cfg.CallTimeout)
}

func (e *Engine) pickSeedWords() []string {
	if len(e.cfg.SeedWords) < 2 {
		return nil
	}
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	i := e.rng.IntN(len(e.cfg.SeedWords))
	j := e.rng.IntN(len(e.cfg.SeedWords) - 1)
	if j >= i {
		j++
	}
	return []string{e.cfg.SeedWords[i], e.cfg.SeedWords[j]}
}

// RandomStarter draws a starter using the engine's random source.
func (e *Engine) RandomStarter(starters []string) string {
	e.rngMu.Lock()
	defer e.rngMu.Unlock()
	return RandomStarter(e.rng, starters)
}

func (e *Engine) observe(p Phase, b Beam) {
	if e.observer != nil {
		e.observer(p, b)
	}
}

// CleanGeneration turns a raw model continuation into a suffix: an echoed
// parent text is removed, newlines are flattened, the trailing partial word
// is dropped and runs of spaces collapse.
func CleanGeneration(gen, parent string) string {
	gen = strings.TrimSpace(gen)
	if parent != "" {
		gen = strings.TrimSpace(strings.TrimPrefix(gen, parent))
	}
	gen = normalize.TrimPartialWord(gen)
	return strings.Join(strings.Fields(gen), " ")
}

func hasLowerASCII(s string) bool {
	return strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz")
}

func containsSeedWord(text string, seeds []string) bool {
	if len(seeds) == 0 {
		return true
	}
	want := make(map[string]struct{}, len(seeds))
	for _, s := range seeds {
		want[normalize.Normalize(s)] = struct{}{}
	}
	for _, tok := range normalize.Tokenize(text, false) {
		if _, ok := want[normalize.Normalize(tok)]; ok {
			return true
		}
	}
	return false
}
