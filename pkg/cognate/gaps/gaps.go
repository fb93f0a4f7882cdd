// Package gaps measures runs of unfamiliar words between cognates.
package gaps

import (
	"math"
	"strings"

	"github.com/cognicore/cognate/pkg/cognate/normalize"
)

// Stats describes the gaps of one sentence.
type Stats struct {
	BiggestGap int
	NumGaps    int
	AverageGap float64
	Runs       []int
}

// Analyze scans words left to right. A gap is a maximal run of words not in
// cognates; a cognate closes the current run without joining it. Words
// starting with an upper-case letter that are not cognates are treated as
// proper nouns and neither extend nor close a run. Membership ignores case.
func Analyze(words []string, cognates []string) Stats {
	set := make(map[string]struct{}, len(cognates))
	for _, c := range cognates {
		set[strings.ToLower(c)] = struct{}{}
	}

	var (
		st    Stats
		run   int
		total int
	)
	closeRun := func() {
		if run == 0 {
			return
		}
		st.Runs = append(st.Runs, run)
		total += run
		st.BiggestGap = max(st.BiggestGap, run)
		run = 0
	}

	for _, w := range words {
		if w == "" {
			continue
		}
		if _, ok := set[strings.ToLower(w)]; ok {
			closeRun()
			continue
		}
		if normalize.IsCapitalized(w) {
			continue
		}
		run++
	}
	closeRun()

	st.NumGaps = len(st.Runs)
	if st.NumGaps > 0 {
		st.AverageGap = math.Round(float64(total)/float64(st.NumGaps)*10) / 10
	}
	return st
}
