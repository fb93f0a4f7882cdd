package difficulty

import (
	"fmt"

	"github.com/cognicore/cognate/pkg/cognate/internalerr"
)

// MaxRubricScore is the top of the 0..3 rubric scale.
const MaxRubricScore = 3

// Rubric is an externally assigned difficulty judgement.
type Rubric struct {
	Sentence     string   `json:"sentence"`
	Reasoning    string   `json:"reasoning"`
	CognateWords []string `json:"cognate_words"`
	Score        int      `json:"score"`
}

// Validate checks that the score lies on the rubric scale.
func (r Rubric) Validate() error {
	if r.Score < 0 || r.Score > MaxRubricScore {
		return fmt.Errorf("rubric score %d outside 0..%d: %w", r.Score, MaxRubricScore, internalerr.ErrInvalidArgument)
	}
	return nil
}

// Blend averages the heuristic total with the rubric score mapped to [0,1].
// Rejected breakdowns keep a zero total.
func Blend(b ScoreBreakdown, r Rubric) (ScoreBreakdown, error) {
	if err := r.Validate(); err != nil {
		return b, err
	}
	score := r.Score
	b.RubricScore = &score
	if b.RejectedEarly {
		return b, nil
	}
	b.Total = clamp01(round2(0.5*b.Total + 0.5*float64(r.Score)/MaxRubricScore))
	return b, nil
}

// Ordinal maps a total in [0,1] onto the 0..3 rubric scale.
func Ordinal(total float64) int {
	switch {
	case total < 0.25:
		return 0
	case total < 0.5:
		return 1
	case total < 0.75:
		return 2
	default:
		return 3
	}
}
