// Package difficulty scores how readable a sentence is for a learner who
// only knows the comparison language.
package difficulty

import (
	"fmt"
	"math"
	"strings"

	"github.com/cognicore/cognate/pkg/cognate/gaps"
	"github.com/cognicore/cognate/pkg/cognate/internalerr"
	"github.com/cognicore/cognate/pkg/cognate/normalize"
)

// Weights defines the contribution of each component to the total.
type Weights struct {
	Ratio  float64 `yaml:"ratio"`  // cognate ratio
	Gap    float64 `yaml:"gap"`    // normalized average gap
	Length float64 `yaml:"length"` // per-character penalty on non-cognates
}

// Thresholds controls early rejection.
type Thresholds struct {
	MinRatio      float64 `yaml:"min_ratio"`
	MaxAverageGap float64 `yaml:"max_average_gap"`
	// GapNormalizedCeiling can never be exceeded since the normalized gap
	// lives in [0,1]; it is kept so stored breakdowns stay comparable.
	GapNormalizedCeiling float64 `yaml:"gap_normalized_ceiling"`
	MaxBiggestGap        int     `yaml:"max_biggest_gap"`
}

// DefaultWeights returns the production weights.
func DefaultWeights() Weights {
	return Weights{Ratio: 0.6, Gap: 0.4, Length: 0.05}
}

// DefaultThresholds returns the production rejection thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinRatio:             0.2,
		MaxAverageGap:        6,
		GapNormalizedCeiling: 7,
		MaxBiggestGap:        4,
	}
}

// Rejection reasons recorded on a breakdown.
const (
	ReasonLowRatio    = "cognate_ratio"
	ReasonGapCeiling  = "avg_gap_normalized"
	ReasonBiggestGap  = "biggest_gap"
	ReasonUnderscores = "underscore"
)

// ScoreBreakdown provides the per-component scoring detail of a sentence.
type ScoreBreakdown struct {
	CognateRatio            float64  `json:"cognate_ratio"`
	AverageGap              float64  `json:"avg_gap_between_consecutive_cognates"`
	AverageGapNormalized    float64  `json:"avg_gap_normalized"`
	BiggestGap              int      `json:"biggest_gap"`
	NumGaps                 int      `json:"num_gaps"`
	// AverageNonCognateLength is measured on normalized words, so
	// punctuation and apostrophes do not count toward the length.
	AverageNonCognateLength float64  `json:"avg_non_cognate_length"`
	RejectedEarly           bool     `json:"was_sentence_rejected_early"`
	RejectReasons           []string `json:"reject_reasons,omitempty"`
	RubricScore             *int     `json:"rubric_score,omitempty"`
	Total                   float64  `json:"total_score"`
}

// Scorer computes difficulty breakdowns.
type Scorer struct {
	weights    Weights
	thresholds Thresholds
}

// NewScorer creates a scorer with the given weights and thresholds.
func NewScorer(w Weights, th Thresholds) *Scorer {
	return &Scorer{weights: w, thresholds: th}
}

// Score evaluates a tokenized sentence against its cognate set.
//
// total = round2(max(wr·ratio + wg·gapNorm, 0)) − wl·avgNonCognateLen
//
// clamped to [0,1]. Rejected sentences score 0.
func (s *Scorer) Score(words []string, cognates []string) (ScoreBreakdown, error) {
	if len(words) == 0 {
		return ScoreBreakdown{}, fmt.Errorf("difficulty: no words: %w", internalerr.ErrInvalidArgument)
	}

	var b ScoreBreakdown
	cset := lowerSet(cognates)

	b.CognateRatio = math.Min(float64(len(cset))/float64(len(words)), 1)
	if b.CognateRatio < s.thresholds.MinRatio {
		b.reject(ReasonLowRatio)
	}

	st := gaps.Analyze(words, cognates)
	b.AverageGap = st.AverageGap
	b.BiggestGap = st.BiggestGap
	b.NumGaps = st.NumGaps
	b.AverageGapNormalized = normalizeGap(st.AverageGap, s.thresholds.MaxAverageGap)
	if b.AverageGapNormalized > s.thresholds.GapNormalizedCeiling {
		b.reject(ReasonGapCeiling)
	}
	if b.BiggestGap > s.thresholds.MaxBiggestGap {
		b.reject(ReasonBiggestGap)
	}

	b.AverageNonCognateLength = averageNonCognateLength(words, cset)

	for _, w := range words {
		if strings.Contains(w, "_") {
			b.reject(ReasonUnderscores)
			break
		}
	}

	if b.RejectedEarly {
		b.Total = 0
		return b, nil
	}
	base := round2(math.Max(s.weights.Ratio*b.CognateRatio+s.weights.Gap*b.AverageGapNormalized, 0))
	b.Total = clamp01(round2(base - s.weights.Length*b.AverageNonCognateLength))
	return b, nil
}

// Validate checks that the thresholds keep every component in range.
func (t Thresholds) Validate() error {
	switch {
	case t.MinRatio < 0 || t.MinRatio > 1 || math.IsNaN(t.MinRatio):
		return fmt.Errorf("difficulty: min_ratio %v out of [0,1]: %w", t.MinRatio, internalerr.ErrInvalidConfig)
	case !(t.MaxAverageGap > 0):
		return fmt.Errorf("difficulty: max_average_gap %v must be positive: %w", t.MaxAverageGap, internalerr.ErrInvalidConfig)
	case t.MaxBiggestGap < 0:
		return fmt.Errorf("difficulty: max_biggest_gap %d is negative: %w", t.MaxBiggestGap, internalerr.ErrInvalidConfig)
	}
	return nil
}

// ScoreSentence tokenizes sentence and scores it.
func (s *Scorer) ScoreSentence(sentence string, cognates []string) (ScoreBreakdown, error) {
	return s.Score(normalize.Tokenize(sentence, false), cognates)
}

func (b *ScoreBreakdown) reject(reason string) {
	b.RejectedEarly = true
	b.RejectReasons = append(b.RejectReasons, reason)
}

// averageNonCognateLength is the mean normalized length of the distinct
// words outside the cognate set, rounded to two decimals.
func averageNonCognateLength(words []string, cset map[string]struct{}) float64 {
	seen := make(map[string]struct{}, len(words))
	var sum, n int
	for _, w := range words {
		if _, ok := cset[strings.ToLower(w)]; ok {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		sum += normalize.RuneLen(normalize.Normalize(w))
		n++
	}
	if n == 0 {
		return 0
	}
	return round2(float64(sum) / float64(n))
}

// normalizeGap maps avg onto [0,1], 1 meaning no gap. A non-positive
// ceiling tolerates no gap at all.
func normalizeGap(avg, ceiling float64) float64 {
	if !(ceiling > 0) {
		if avg == 0 {
			return 1
		}
		return 0
	}
	return 1 - math.Min(avg, ceiling)/ceiling
}

func lowerSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
