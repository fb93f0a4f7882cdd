// Package story turns search results into persisted learner stories.
package story

import (
	"crypto/rand"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/cognate/pkg/cognate/difficulty"
	"github.com/cognicore/cognate/pkg/cognate/search"
)

// SentenceRecord is one scored sentence of a story.
type SentenceRecord struct {
	Sentence     string                    `json:"sentence"`
	ActualScore  float64                   `json:"actual_score"`
	CognateWords []string                  `json:"cognate_words"`
	Difficulty   int                       `json:"difficulty"`
	Breakdown    difficulty.ScoreBreakdown `json:"breakdown"`
}

// Story is an ordered list of sentences with metadata.
type Story struct {
	ID         string           `json:"id"`
	SourceLang string           `json:"source_lang"`
	TargetLang string           `json:"target_lang"`
	CreatedAt  time.Time        `json:"created_at"`
	Sentences  []SentenceRecord `json:"sentences"`
	// DifficultyCounts is a histogram of sentence difficulties, 0..3.
	DifficultyCounts [difficulty.MaxRubricScore + 1]int `json:"difficulty_counts"`
}

// Builder creates stories with monotonic ULID identifiers.
type Builder struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// NewBuilder creates a story builder.
func NewBuilder() *Builder {
	return &Builder{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// New starts an empty story.
func (b *Builder) New(src, dst string) Story {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now().UTC()
	return Story{
		ID:         ulid.MustNew(ulid.Timestamp(now), b.entropy).String(),
		SourceLang: src,
		TargetLang: dst,
		CreatedAt:  now,
	}
}

// Record converts a search state into a sentence record.
func Record(st search.SentenceState) SentenceRecord {
	return SentenceRecord{
		Sentence:     st.Text,
		ActualScore:  st.Score.Total,
		CognateWords: st.Cognates.Slice(),
		Difficulty:   difficulty.Ordinal(st.Score.Total),
		Breakdown:    st.Score,
	}
}

// Append adds a sentence and updates the difficulty histogram.
func (s *Story) Append(rec SentenceRecord) {
	s.Sentences = append(s.Sentences, rec)
	if rec.Difficulty >= 0 && rec.Difficulty < len(s.DifficultyCounts) {
		s.DifficultyCounts[rec.Difficulty]++
	}
}

// FromResult builds a story from the selected state of every iteration.
func (b *Builder) FromResult(res search.Result, src, dst string) (Story, error) {
	if len(res.History) == 0 {
		return Story{}, fmt.Errorf("story: result has no sentences")
	}
	s := b.New(src, dst)
	for _, st := range res.History {
		s.Append(Record(st))
	}
	return s, nil
}

// Highlight wraps every token of sentence whose word matches a cognate in a
// highlight span. Matching ignores case and surrounding punctuation; the
// output is HTML-escaped and whitespace is collapsed to single spaces.
func Highlight(sentence string, cognates []string) string {
	set := make(map[string]struct{}, len(cognates))
	for _, c := range cognates {
		if core := strings.ToLower(trimPunct(c)); core != "" {
			set[core] = struct{}{}
		}
	}

	tokens := strings.Fields(sentence)
	for i, tok := range tokens {
		core := trimPunct(tok)
		if _, ok := set[strings.ToLower(core)]; !ok || core == "" {
			tokens[i] = html.EscapeString(tok)
			continue
		}
		start := strings.Index(tok, core)
		tokens[i] = html.EscapeString(tok[:start]) +
			`<span class="highlight">` + html.EscapeString(core) + `</span>` +
			html.EscapeString(tok[start+len(core):])
	}
	return strings.Join(tokens, " ")
}

func trimPunct(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '’'
	})
}
