package search

import (
	"encoding/json"
	"sort"

	"github.com/cognicore/cognate/pkg/cognate/difficulty"
)

// CognateSet is a set of raw-cased tokens judged cognate. A set attached to
// a SentenceState is never modified; Union returns a new set.
type CognateSet map[string]struct{}

// NewCognateSet builds a set from words.
func NewCognateSet(words ...string) CognateSet {
	s := make(CognateSet, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// Union returns a new set holding s and words.
func (s CognateSet) Union(words []string) CognateSet {
	out := make(CognateSet, len(s)+len(words))
	for w := range s {
		out[w] = struct{}{}
	}
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}

// Contains reports whether w is in the set.
func (s CognateSet) Contains(w string) bool {
	_, ok := s[w]
	return ok
}

// Slice returns the members in sorted order.
func (s CognateSet) Slice() []string {
	out := make([]string, 0, len(s))
	for w := range s {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON encodes the set as a sorted list.
func (s CognateSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

// UnmarshalJSON decodes a list of words.
func (s *CognateSet) UnmarshalJSON(data []byte) error {
	var words []string
	if err := json.Unmarshal(data, &words); err != nil {
		return err
	}
	*s = NewCognateSet(words...)
	return nil
}

// SentenceState is one node of the search: a text, the cognates found in
// it and its score. OriginPrompt and ParentText are empty for the root.
type SentenceState struct {
	Text         string                    `json:"text"`
	Cognates     CognateSet                `json:"cognates"`
	Score        difficulty.ScoreBreakdown `json:"score"`
	OriginPrompt string                    `json:"origin_prompt,omitempty"`
	ParentText   string                    `json:"parent_text,omitempty"`
	SeedWords    []string                  `json:"seed_words,omitempty"`
}

// IsRoot reports whether the state was seeded rather than generated.
func (s SentenceState) IsRoot() bool { return s.ParentText == "" && s.OriginPrompt == "" }

// Beam is the ordered set of retained states, best first.
type Beam []SentenceState

// Best returns the first state of the beam.
func (b Beam) Best() (SentenceState, bool) {
	if len(b) == 0 {
		return SentenceState{}, false
	}
	return b[0], true
}

// Texts returns the texts of the beam in order.
func (b Beam) Texts() []string {
	out := make([]string, len(b))
	for i, s := range b {
		out[i] = s.Text
	}
	return out
}

// sortAndTrim stable-sorts states by descending total and keeps the first
// size entries. Ties keep generation order.
func sortAndTrim(states []SentenceState, size int) Beam {
	sort.SliceStable(states, func(i, j int) bool {
		return states[i].Score.Total > states[j].Score.Total
	})
	if len(states) > size {
		states = states[:size]
	}
	return Beam(states)
}
