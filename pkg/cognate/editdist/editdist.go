// Package editdist compares two normalized word forms by edit distance.
package editdist

import (
	"fmt"
	"math"

	"github.com/cognicore/cognate/pkg/cognate/internalerr"
)

// Normalization selects the length a distance is divided by.
type Normalization string

const (
	// NormalizeAverage divides by the mean length of both words.
	NormalizeAverage Normalization = "average"
	// NormalizeMax divides by the longer word.
	NormalizeMax Normalization = "max"
)

const (
	// ShortWordLen is the length at or below which a word never matches.
	ShortWordLen = 2
	// StrictPairLen is the shorter-word length at or below which only a
	// single edit is tolerated.
	StrictPairLen = 5
)

// Comparator computes similarity ratios. The zero value divides by the
// average length.
type Comparator struct {
	Normalization Normalization
}

// Ratio returns a dissimilarity in [0,1] for two normalized words; lower
// means more similar. Empty input is rejected with ErrInvalidArgument.
func (c Comparator) Ratio(a, b string) (float64, error) {
	if a == "" || b == "" {
		return 0, fmt.Errorf("editdist: empty word: %w", internalerr.ErrInvalidArgument)
	}
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	if la <= ShortWordLen || lb <= ShortWordLen {
		return 1, nil
	}

	dist := levenshtein(ra, rb)
	if min(la, lb) <= StrictPairLen {
		if dist <= 1 {
			return 0, nil
		}
		return 1, nil
	}

	var denom float64
	switch c.Normalization {
	case NormalizeMax:
		denom = float64(max(la, lb))
	default:
		denom = float64(la+lb) / 2
	}
	ratio := math.Round(float64(dist)/denom*100) / 100
	return math.Min(ratio, 1), nil
}

// Ratio is Comparator{}.Ratio.
func Ratio(a, b string) (float64, error) {
	return Comparator{}.Ratio(a, b)
}

// Levenshtein returns the insert/delete/substitute distance between a and b,
// counted in runes.
func Levenshtein(a, b string) int {
	return levenshtein([]rune(a), []rune(b))
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
