package difficulty

import (
	"errors"
	"testing"

	"github.com/cognicore/cognate/pkg/cognate/internalerr"
)

func TestBlend(t *testing.T) {
	b := ScoreBreakdown{Total: 0.68}
	got, err := Blend(b, Rubric{Score: 3})
	if err != nil {
		t.Fatalf("Blend: %v", err)
	}
	if got.Total != 0.84 {
		t.Errorf("Total = %v, want 0.84", got.Total)
	}
	if got.RubricScore == nil || *got.RubricScore != 3 {
		t.Errorf("RubricScore not recorded: %v", got.RubricScore)
	}
}

func TestBlendKeepsRejection(t *testing.T) {
	b := ScoreBreakdown{RejectedEarly: true}
	got, err := Blend(b, Rubric{Score: 3})
	if err != nil {
		t.Fatalf("Blend: %v", err)
	}
	if got.Total != 0 {
		t.Errorf("rejected sentence should stay at 0, got %v", got.Total)
	}
}

func TestBlendInvalidRubric(t *testing.T) {
	if _, err := Blend(ScoreBreakdown{}, Rubric{Score: 4}); !errors.Is(err, internalerr.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestOrdinal(t *testing.T) {
	cases := map[float64]int{0: 0, 0.24: 0, 0.25: 1, 0.49: 1, 0.5: 2, 0.74: 2, 0.75: 3, 1: 3}
	for total, want := range cases {
		if got := Ordinal(total); got != want {
			t.Errorf("Ordinal(%v) = %d, want %d", total, got, want)
		}
	}
}
