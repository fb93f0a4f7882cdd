// Package analytics aggregates statistics across persisted stories.
package analytics

import (
	"sort"
	"strings"

	"github.com/cognicore/cognate/pkg/cognate/difficulty"
	"github.com/cognicore/cognate/pkg/cognate/story"
)

// DefaultMinCount is the minimum number of occurrences before a cognate's
// average is reported.
const DefaultMinCount = 2

// WordAverage is the mean sentence score of the sentences a cognate appears in.
type WordAverage struct {
	Word    string  `json:"word"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// CognateAverages computes, for every cognate word seen in at least minCount
// sentences, the mean ActualScore of those sentences.
func CognateAverages(stories []story.Story, minCount int) map[string]WordAverage {
	totals := make(map[string]float64)
	counts := make(map[string]int)
	for _, st := range stories {
		for _, rec := range st.Sentences {
			for _, w := range rec.CognateWords {
				totals[w] += rec.ActualScore
				counts[w]++
			}
		}
	}

	out := make(map[string]WordAverage, len(totals))
	for w, total := range totals {
		if counts[w] < minCount {
			continue
		}
		out[w] = WordAverage{Word: w, Average: total / float64(counts[w]), Count: counts[w]}
	}
	return out
}

// Sorted orders averages by descending score, then by word.
func Sorted(averages map[string]WordAverage) []WordAverage {
	out := make([]WordAverage, 0, len(averages))
	for _, a := range averages {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Average != out[j].Average {
			return out[i].Average > out[j].Average
		}
		return out[i].Word < out[j].Word
	})
	return out
}

// LevelStats summarizes the sentences of one difficulty level.
type LevelStats struct {
	Sentences       int     `json:"sentences"`
	AverageLength   float64 `json:"average_length"`
	AverageCognates float64 `json:"average_cognates"`
}

// Distribution reports sentence counts, mean word length and mean cognate
// count per difficulty level.
type Distribution struct {
	Total   int                                       `json:"total_sentences"`
	ByLevel [difficulty.MaxRubricScore + 1]LevelStats `json:"by_difficulty"`
}

// SentenceDistribution computes the per-difficulty distribution of sentences.
// Levels with no sentences report zero averages.
func SentenceDistribution(stories []story.Story) Distribution {
	var d Distribution
	var words, cognates [difficulty.MaxRubricScore + 1]int
	for _, st := range stories {
		for _, rec := range st.Sentences {
			lvl := rec.Difficulty
			if lvl < 0 || lvl > difficulty.MaxRubricScore {
				continue
			}
			d.Total++
			d.ByLevel[lvl].Sentences++
			words[lvl] += len(strings.Fields(rec.Sentence))
			cognates[lvl] += len(rec.CognateWords)
		}
	}
	for lvl := range d.ByLevel {
		n := d.ByLevel[lvl].Sentences
		if n == 0 {
			continue
		}
		d.ByLevel[lvl].AverageLength = float64(words[lvl]) / float64(n)
		d.ByLevel[lvl].AverageCognates = float64(cognates[lvl]) / float64(n)
	}
	return d
}
