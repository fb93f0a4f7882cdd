package llm

import (
	"context"
	"encoding/json"
	"fmt"
)

// SynonymClient looks up synonyms of a comparison-language word.
type SynonymClient struct {
	Client   *Client
	Language string // e.g. "English"
	Limit    int
}

// Synonyms returns up to Limit synonyms of word.
func (s *SynonymClient) Synonyms(ctx context.Context, word string) ([]string, error) {
	limit := s.Limit
	if limit <= 0 {
		limit = 10
	}
	prompt := fmt.Sprintf("List up to %d common %s synonyms of the word %q. "+
		"Respond with JSON only, in the form {\"synonyms\": [\"...\"]}.", limit, s.Language, word)
	resp, err := s.Client.Chat(ctx, "You are a precise thesaurus.", prompt)
	if err != nil {
		return nil, err
	}
	raw, err := ExtractJSON(resp)
	if err != nil {
		return nil, err
	}
	var out struct {
		Synonyms []string `json:"synonyms"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("synonyms: decode: %w", err)
	}
	if len(out.Synonyms) > limit {
		out.Synonyms = out.Synonyms[:limit]
	}
	return out.Synonyms, nil
}
