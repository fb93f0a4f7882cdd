package search

import (
	"context"
	"errors"
	"fmt"
)

// Phase is a step of the search state machine.
type Phase int

const (
	PhaseSeeded Phase = iota
	PhaseExpanding
	PhaseScored
	PhaseTrimmed
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseSeeded:
		return "seeded"
	case PhaseExpanding:
		return "expanding"
	case PhaseScored:
		return "scored"
	case PhaseTrimmed:
		return "trimmed"
	case PhaseDone:
		return "done"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// StopReason explains why a session finished.
type StopReason string

const (
	StopMaxIterations  StopReason = "max_iterations"
	StopBelowThreshold StopReason = "below_threshold"
	StopRankerPick     StopReason = "ranker_pick"
	StopCancelled      StopReason = "cancelled"
)

// Result is the outcome of a session.
type Result struct {
	Beam       Beam
	Best       SentenceState
	Iterations int
	Reason     StopReason
	// History holds the selected state of every iteration.
	History []SentenceState
}

// Run grows seed until the iteration budget is spent, the best total drops
// below ContinueThreshold, the ranker makes a final pick or ctx is done. On
// cancellation the best beam found so far, possibly empty, is returned with
// a nil error.
func (e *Engine) Run(ctx context.Context, seed string) (Result, error) {
	var res Result

	beam, err := e.InitBeam(ctx, seed, e.cfg.BeamSize)
	if err != nil {
		if ctx.Err() != nil {
			return e.finish(res, StopCancelled), nil
		}
		return res, err
	}
	res.Beam = beam
	res.Iterations = 1

	for {
		best, picked, rankErr := e.SelectBest(ctx, res.Beam)
		if rankErr != nil && ctx.Err() != nil {
			return e.finish(res, StopCancelled), nil
		}
		res.Best = best
		res.History = append(res.History, best)

		switch {
		case picked && e.cfg.StopOnRankerPick:
			return e.finish(res, StopRankerPick), nil
		case res.Beam[0].Score.Total < e.cfg.ContinueThreshold:
			return e.finish(res, StopBelowThreshold), nil
		case res.Iterations >= e.cfg.MaxIterations:
			return e.finish(res, StopMaxIterations), nil
		}

		next, err := e.StepBeam(ctx, res.Beam, e.cfg.BeamSize)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return e.finish(res, StopCancelled), nil
			}
			return e.finish(res, ""), err
		}
		res.Beam = next
		res.Iterations++
	}
}

func (e *Engine) finish(res Result, reason StopReason) Result {
	res.Reason = reason
	e.observe(PhaseDone, res.Beam)
	return res
}
