package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/cognicore/cognate/internal/llm"
	"github.com/cognicore/cognate/pkg/cognate/config"
	"github.com/cognicore/cognate/pkg/cognate/difficulty"
	"github.com/cognicore/cognate/pkg/cognate/normalize"
	"github.com/cognicore/cognate/pkg/cognate/search"
	"github.com/cognicore/cognate/pkg/cognate/store/sqlite"
	"github.com/cognicore/cognate/pkg/cognate/story"
	"github.com/cognicore/cognate/pkg/cognate/translate"
)

// Output is the JSON line printed per sentence.
type Output struct {
	Sentence    string                    `json:"sentence"`
	Cognates    []string                  `json:"cognate_words"`
	Difficulty  int                       `json:"difficulty"`
	Highlighted string                    `json:"highlighted,omitempty"`
	Breakdown   difficulty.ScoreBreakdown `json:"breakdown"`
	Rubric      *difficulty.Rubric        `json:"rubric,omitempty"`
	Unresolved  []string                  `json:"unresolved_words,omitempty"`
}

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file (optional)")
		dbPath     = flag.String("db", "", "Database with the translation memo (optional)")
		rubric     = flag.Bool("rubric", false, "Blend in the LLM rubric grade")
		batchSize  = flag.Int("rubric-batch", 0, "Grade this many sentences per rubric request (needs --rubric)")
		highlight  = flag.Bool("highlight", false, "Include HTML with cognates highlighted")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: .env: %v", err)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = loaded
	}

	ctx := context.Background()

	var memo translate.Memo
	if *dbPath != "" {
		st, err := sqlite.OpenSQLite(ctx, *dbPath)
		if err != nil {
			log.Fatalf("open store: %v", err)
		}
		defer st.Close()
		memo = st
	}

	sc, cleanup, err := buildScorer(ctx, cfg, memo, *rubric)
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()
	sc.highlight = *highlight
	sc.batchSize = *batchSize

	sentences := flag.Args()
	if len(sentences) == 0 {
		if sentences, err = readLines(os.Stdin); err != nil {
			log.Fatal(err)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	for _, out := range sc.scoreAll(ctx, sentences) {
		if err := enc.Encode(out); err != nil {
			log.Fatal(err)
		}
	}
}

type rubricBatcher interface {
	ScoreRubricBatch(ctx context.Context, sentences []string) ([]difficulty.Rubric, error)
}

type scorer struct {
	classifier search.Classifier
	difficulty *difficulty.Scorer
	rubric     search.RubricScorer
	batch      rubricBatcher
	batchSize  int
	highlight  bool
}

func buildScorer(ctx context.Context, cfg config.Config, memo translate.Memo, withRubric bool) (*scorer, func(), error) {
	comp, err := config.NewLoader(cfg).Load()
	if err != nil {
		return nil, nil, err
	}
	client := cfg.LLMClient()
	if withRubric && client.APIKey == "" {
		return nil, nil, fmt.Errorf("--rubric needs $%s", cfg.LLM.APIKeyEnv)
	}

	tr, cleanup, err := cfg.BuildTranslator(ctx, comp, memo)
	if err != nil {
		return nil, nil, err
	}
	cls, err := cfg.BuildClassifier(tr, cfg.BuildSynonyms(comp, client), nil)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	sc := &scorer{classifier: cls, difficulty: cfg.Scorer()}
	if withRubric {
		rs := &llm.RubricScorer{
			Client:     client,
			SourceName: search.LanguageName(cfg.Languages.Source),
			TargetName: search.LanguageName(cfg.Languages.Target),
		}
		sc.rubric = rs
		sc.batch = rs
	}
	return sc, cleanup, nil
}

func (s *scorer) score(ctx context.Context, sentence string) (Output, error) {
	words := normalize.Tokenize(sentence, false)
	res := s.classifier.ClassifyAll(ctx, words)

	b, err := s.difficulty.Score(words, res.Cognates)
	if err != nil {
		return Output{}, err
	}
	out := Output{
		Sentence: sentence,
		Cognates: res.Cognates,
	}
	for _, d := range res.Diagnostics {
		out.Unresolved = append(out.Unresolved, d.Word)
	}

	out.Breakdown = b
	out.Difficulty = difficulty.Ordinal(b.Total)
	if s.highlight {
		out.Highlighted = story.Highlight(sentence, res.Cognates)
	}

	if s.rubric != nil && !s.batching() {
		r, err := s.rubric.ScoreRubric(ctx, sentence)
		if err != nil {
			log.Printf("rubric %q: %v", sentence, err)
		} else {
			applyRubric(&out, r)
		}
	}
	return out, nil
}

func (s *scorer) batching() bool {
	return s.batch != nil && s.batchSize > 1
}

// scoreAll scores every sentence, skipping the ones that fail, and grades
// them in rubric batches when batching is enabled. A failed batch leaves
// its sentences with the heuristic score only.
func (s *scorer) scoreAll(ctx context.Context, sentences []string) []Output {
	outs := make([]Output, 0, len(sentences))
	for _, sentence := range sentences {
		out, err := s.score(ctx, sentence)
		if err != nil {
			log.Printf("score %q: %v", sentence, err)
			continue
		}
		outs = append(outs, out)
	}
	if !s.batching() {
		return outs
	}

	for start := 0; start < len(outs); start += s.batchSize {
		chunk := outs[start:min(start+s.batchSize, len(outs))]
		texts := make([]string, len(chunk))
		for i := range chunk {
			texts[i] = chunk[i].Sentence
		}
		verdicts, err := s.batch.ScoreRubricBatch(ctx, texts)
		if err != nil {
			log.Printf("rubric batch at %d: %v", start, err)
			continue
		}
		for i := range chunk {
			applyRubric(&chunk[i], verdicts[i])
		}
	}
	return outs
}

func applyRubric(out *Output, r difficulty.Rubric) {
	blended, err := difficulty.Blend(out.Breakdown, r)
	if err != nil {
		log.Printf("rubric %q: %v", out.Sentence, err)
		return
	}
	out.Breakdown = blended
	out.Difficulty = difficulty.Ordinal(blended.Total)
	out.Rubric = &r
}

func readLines(r io.Reader) ([]string, error) {
	var out []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			out = append(out, line)
		}
	}
	return out, scanner.Err()
}
