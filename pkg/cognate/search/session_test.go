package search

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cognicore/cognate/pkg/cognate/internalerr"
)

func TestRunStopsAtMaxIterations(t *testing.T) {
	cfg := testConfig()
	cfg.MaxIterations = 3
	cfg.ContinueThreshold = 0

	var phases []Phase
	var mu sync.Mutex
	e := newTestEngine(t, cfg, fixedGenerator(defaultGenerations...), defaultClassifier(), func(o *Options) {
		o.Observer = func(p Phase, _ Beam) {
			mu.Lock()
			phases = append(phases, p)
			mu.Unlock()
		}
	})

	res, err := e.Run(context.Background(), "Le")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Reason != StopMaxIterations || res.Iterations != 3 {
		t.Fatalf("reason=%s iterations=%d", res.Reason, res.Iterations)
	}
	if len(res.History) != 3 {
		t.Errorf("history length = %d, want 3", len(res.History))
	}
	if res.Best.Text != res.Beam[0].Text {
		t.Errorf("best should be the heuristic leader without a ranker")
	}
	if phases[0] != PhaseSeeded || phases[len(phases)-1] != PhaseDone {
		t.Errorf("unexpected phase sequence %v", phases)
	}
}

func TestRunStopsBelowThreshold(t *testing.T) {
	cfg := testConfig()
	cfg.ContinueThreshold = 0.9
	e := newTestEngine(t, cfg, fixedGenerator(defaultGenerations...), defaultClassifier())

	res, err := e.Run(context.Background(), "Le")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Reason != StopBelowThreshold || res.Iterations != 1 {
		t.Fatalf("reason=%s iterations=%d", res.Reason, res.Iterations)
	}
}

func TestRunStopsOnRankerPick(t *testing.T) {
	cfg := testConfig()
	cfg.RankTopN = 2
	cfg.StopOnRankerPick = true
	e := newTestEngine(t, cfg, fixedGenerator(defaultGenerations...), defaultClassifier(),
		func(o *Options) { o.Ranker = stubRanker{rank: 2} })

	res, err := e.Run(context.Background(), "Le")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Reason != StopRankerPick {
		t.Fatalf("reason = %s", res.Reason)
	}
	if res.Best.Text != res.Beam[1].Text {
		t.Errorf("ranker choice not reported as best")
	}
}

func TestRunNoCandidates(t *testing.T) {
	e := newTestEngine(t, testConfig(), fixedGenerator("", "123"), defaultClassifier())
	if _, err := e.Run(context.Background(), "Le"); !errors.Is(err, internalerr.ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}
}

func TestRunCancelledReturnsBestSoFar(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	calls := 0
	gen := &stubGenerator{fn: func(ctx context.Context, _ string, _ int) ([]string, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			return defaultGenerations, nil
		}
		cancel()
		return nil, ctx.Err()
	}}
	cfg := testConfig()
	cfg.ContinueThreshold = 0
	e := newTestEngine(t, cfg, gen, defaultClassifier())

	res, err := e.Run(ctx, "Le")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Reason != StopCancelled {
		t.Fatalf("reason = %s", res.Reason)
	}
	if len(res.Beam) != 2 || res.Beam[0].Score.Total != 0.58 {
		t.Fatalf("expected the first beam to survive cancellation, got %v", res.Beam.Texts())
	}
}
