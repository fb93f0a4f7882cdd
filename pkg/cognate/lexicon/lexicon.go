// Package lexicon holds curated synonym groups of the comparison language
// and serves them to the cognate classifier.
package lexicon

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Lexicon maps every member of a synonym group to the whole group.
//
// Groups are bidirectional: looking up "automobile" or "car" yields the
// same group. Matching is case-insensitive.
type Lexicon struct {
	// canonical -> members, canonical first
	groups map[string][]string

	// member -> canonical
	reverseIndex map[string]string
}

// New creates an empty lexicon.
func New() *Lexicon {
	return &Lexicon{
		groups:       make(map[string][]string),
		reverseIndex: make(map[string]string),
	}
}

// LoadFromYAML loads synonym groups from a YAML file.
//
// Expected format:
//
//	synonyms:
//	  - canonical: car
//	    variants: [automobile, vehicle, motorcar]
//	  - canonical: assure
//	    variants: [ensure, guarantee, reassure]
func LoadFromYAML(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc struct {
		Synonyms []struct {
			Canonical string   `yaml:"canonical"`
			Variants  []string `yaml:"variants"`
		} `yaml:"synonyms"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse lexicon %s: %w", path, err)
	}

	lex := New()
	for _, entry := range doc.Synonyms {
		if strings.TrimSpace(entry.Canonical) == "" {
			continue
		}
		lex.AddSynonymGroup(entry.Canonical, entry.Variants)
	}
	return lex, nil
}

// AddSynonymGroup registers a group. Re-adding a canonical form replaces
// the previous group.
func (l *Lexicon) AddSynonymGroup(canonical string, variants []string) {
	canonical = strings.ToLower(strings.TrimSpace(canonical))

	if old, exists := l.groups[canonical]; exists {
		for _, v := range old {
			delete(l.reverseIndex, v)
		}
	}

	members := make([]string, 0, len(variants)+1)
	seen := map[string]bool{canonical: true}
	members = append(members, canonical)
	for _, v := range variants {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		members = append(members, v)
	}

	l.groups[canonical] = members
	for _, v := range members {
		l.reverseIndex[v] = canonical
	}
}

// Canonical returns the canonical form of word, or word itself.
func (l *Lexicon) Canonical(word string) string {
	word = strings.ToLower(word)
	if canonical, ok := l.reverseIndex[word]; ok {
		return canonical
	}
	return word
}

// Variants returns the full group of word including word itself.
func (l *Lexicon) Variants(word string) []string {
	word = strings.ToLower(word)
	if canonical, ok := l.reverseIndex[word]; ok {
		return l.groups[canonical]
	}
	return []string{word}
}

// HasSynonyms reports whether word belongs to any group.
func (l *Lexicon) HasSynonyms(word string) bool {
	_, ok := l.reverseIndex[strings.ToLower(word)]
	return ok
}

// Synonyms returns the other members of word's group. Unknown words have
// no synonyms. The lexicon is read-only after loading, so concurrent calls
// are safe.
func (l *Lexicon) Synonyms(_ context.Context, word string) ([]string, error) {
	word = strings.ToLower(word)
	canonical, ok := l.reverseIndex[word]
	if !ok {
		return nil, nil
	}
	group := l.groups[canonical]
	out := make([]string, 0, len(group)-1)
	for _, v := range group {
		if v != word {
			out = append(out, v)
		}
	}
	return out, nil
}

// Stats summarizes the lexicon contents.
func (l *Lexicon) Stats() Stats {
	total := 0
	for _, g := range l.groups {
		total += len(g)
	}
	return Stats{Groups: len(l.groups), Members: total}
}

// Stats holds lexicon counts.
type Stats struct {
	Groups  int
	Members int
}
