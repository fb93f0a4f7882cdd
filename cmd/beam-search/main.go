package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cognicore/cognate/internal/article"
	"github.com/cognicore/cognate/internal/llm"
	"github.com/cognicore/cognate/internal/metrics"
	"github.com/cognicore/cognate/pkg/cognate/config"
	"github.com/cognicore/cognate/pkg/cognate/search"
	"github.com/cognicore/cognate/pkg/cognate/store"
	"github.com/cognicore/cognate/pkg/cognate/store/sqlite"
	"github.com/cognicore/cognate/pkg/cognate/story"
	"github.com/cognicore/cognate/pkg/cognate/translate"
)

func main() {
	var (
		configPath  = flag.String("config", "", "YAML config file (optional, defaults are French to English)")
		dbPath      = flag.String("db", "", "Story database path (overrides store.path)")
		seed        = flag.String("seed", "", "Seed text for the first sentence")
		seedURL     = flag.String("seed-url", "", "Article URL to take the first seed sentence from ('random' for a random Wikipedia page)")
		learnerJSON = flag.String("learner-json", "", "Learner dictionary JSON; a random example sentence is translated and used as seed")
		sentences   = flag.Int("sentences", 1, "Number of sentences in the story")
		iterations  = flag.Int("iterations", 0, "Max iterations per sentence (overrides search.max_iterations)")
		metricsAddr = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
		asJSON      = flag.Bool("json", false, "Print the story as JSON")
		noSave      = flag.Bool("no-save", false, "Do not persist the story")
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
	if *dbPath != "" {
		cfg.Store.Path = *dbPath
	}
	if *iterations > 0 {
		cfg.Search.MaxIterations = *iterations
	}
	if *sentences < 1 {
		log.Fatal("--sentences must be at least 1")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *metricsAddr != "" {
		go serveMetrics(*metricsAddr)
	}

	st, err := sqlite.OpenSQLite(ctx, cfg.Store.Path)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer st.Close()

	engine, cleanup, err := buildEngine(ctx, cfg, st)
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	first, err := firstSeed(ctx, cfg, *seed, *seedURL, *learnerJSON)
	if err != nil {
		log.Fatal(err)
	}

	s, runErr := runStory(ctx, engine, cfg, first, *sentences)
	if len(s.Sentences) == 0 {
		if runErr != nil {
			log.Fatal(runErr)
		}
		log.Fatal("no sentence produced")
	}
	if runErr != nil {
		log.Printf("Story stopped after %d sentences: %v", len(s.Sentences), runErr)
	}

	if !*noSave {
		if err := saveStory(st, s); err != nil {
			log.Fatal(err)
		}
		log.Printf("Saved story %s (%d sentences) to %s", s.ID, len(s.Sentences), cfg.Store.Path)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			log.Fatal(err)
		}
	} else {
		printStory(s)
	}
	if runErr != nil {
		os.Exit(1)
	}
}

// buildEngine wires the translator chain, classifier and search engine.
// The returned cleanup releases cache connections.
func buildEngine(ctx context.Context, cfg config.Config, memo store.Store) (*search.Engine, func(), error) {
	client := cfg.LLMClient()
	if client.APIKey == "" {
		return nil, nil, fmt.Errorf("$%s is not set", cfg.LLM.APIKeyEnv)
	}

	comp, err := config.NewLoader(cfg).Load()
	if err != nil {
		return nil, nil, err
	}

	var m translate.Memo
	if memo != nil {
		m = memo
	}
	tr, cleanup, err := cfg.BuildTranslator(ctx, comp, m)
	if err != nil {
		return nil, nil, err
	}

	cls, err := cfg.BuildClassifier(tr, cfg.BuildSynonyms(comp, client), nil)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	engine, err := cfg.BuildEngine(cls, client, nil)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return engine, cleanup, nil
}

// firstSeed resolves the seed of the first sentence. Precedence: --seed,
// --seed-url, --learner-json. An empty result means a random starter.
func firstSeed(ctx context.Context, cfg config.Config, seed, seedURL, learnerJSON string) (string, error) {
	switch {
	case seed != "":
		return seed, nil
	case seedURL != "":
		if seedURL == "random" {
			seedURL = article.RandomWikipediaURL(cfg.Languages.Source)
		}
		f := &article.Fetcher{UserAgent: "cognate-beam-search/1.0", Retry: llm.DefaultRetryPolicy()}
		return f.Seed(ctx, seedURL, 6)
	case learnerJSON != "":
		examples, err := article.LoadExampleSentences(learnerJSON)
		if err != nil {
			return "", err
		}
		if len(examples) == 0 {
			return "", fmt.Errorf("no example sentences in %s", learnerJSON)
		}
		example := examples[rand.IntN(len(examples))]
		if cfg.Translator.URL == "" {
			return "", fmt.Errorf("--learner-json needs translator.url to translate %q", example)
		}
		tr := &translate.HTTPTranslator{URL: cfg.Translator.URL, APIKey: os.Getenv(cfg.Translator.APIKeyEnv), Retry: llm.DefaultRetryPolicy()}
		out, err := tr.Translate(ctx, example, cfg.Languages.Target, cfg.Languages.Source)
		if err != nil {
			return "", err
		}
		log.Printf("Seed %q translated from %q", out, example)
		return article.Clean(out), nil
	}
	return "", nil
}

// runStory runs one search per sentence. Later sentences start from a
// random starter. Cancellation keeps what was found so far.
func runStory(ctx context.Context, engine *search.Engine, cfg config.Config, first string, n int) (story.Story, error) {
	builder := story.NewBuilder()
	s := builder.New(cfg.Languages.Source, cfg.Languages.Target)

	seed := first
	for i := 0; i < n; i++ {
		if seed == "" {
			seed = engine.RandomStarter(nil)
		}
		log.Printf("Sentence %d/%d: seed %q", i+1, n, seed)

		res, err := engine.Run(ctx, seed)
		if err != nil {
			return s, fmt.Errorf("sentence %d: %w", i+1, err)
		}
		if res.Best.Text != "" {
			metrics.BestScore(res.Best.Score.Total)
			s.Append(story.Record(res.Best))
			log.Printf("Sentence %d: %.2f after %d iterations (%s)", i+1, res.Best.Score.Total, res.Iterations, res.Reason)
		}
		if res.Reason == search.StopCancelled {
			break
		}
		seed = ""
	}
	return s, nil
}

// saveStory persists s even when the run context is already cancelled.
func saveStory(st store.Store, s story.Story) error {
	if err := st.SaveStory(context.Background(), s); err != nil {
		return fmt.Errorf("save story: %w", err)
	}
	return nil
}

func printStory(s story.Story) {
	fmt.Printf("Story %s (%s -> %s)\n\n", s.ID, s.SourceLang, s.TargetLang)
	for i, rec := range s.Sentences {
		fmt.Printf("%d. %s\n", i+1, rec.Sentence)
		fmt.Printf("   score %.2f  difficulty %d  cognates %v\n", rec.ActualScore, rec.Difficulty, rec.CognateWords)
	}
	fmt.Printf("\nDifficulty counts: %v\n", s.DifficultyCounts)
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Printf("Serving metrics on %s/metrics", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("metrics server: %v", err)
	}
}
