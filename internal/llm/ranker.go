package llm

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cognicore/cognate/pkg/cognate/internalerr"
)

// Ranker asks a chat model which candidate is easiest to understand.
type Ranker struct {
	Client     *Client
	SourceName string // e.g. "French"
	TargetName string // e.g. "English"
}

// Rank returns the 1-based index of the chosen candidate. Out-of-range or
// non-numeric answers wrap ErrRanking.
func (r *Ranker) Rank(ctx context.Context, candidates []string) (int, error) {
	if len(candidates) == 0 {
		return 0, fmt.Errorf("rank: no candidates: %w", internalerr.ErrRanking)
	}
	system := fmt.Sprintf("You are about to receive a set of %d sentences in %s. "+
		"Please identify which sentence would be easiest to understand for an %s speaker who doesn't know any %s.\n"+
		"Please output a number between 1 and %d. Output nothing else.",
		len(candidates), r.SourceName, r.TargetName, r.SourceName, len(candidates))

	var user strings.Builder
	for i, c := range candidates {
		fmt.Fprintf(&user, "%d. %s\n", i+1, c)
	}

	resp, err := r.Client.Chat(ctx, system, user.String())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", internalerr.ErrRanking, err)
	}
	return ParseRank(resp, len(candidates))
}

// ParseRank parses a model answer into a rank in [1,n].
func ParseRank(resp string, n int) (int, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\t', '\r', '.':
			return -1
		}
		return r
	}, resp)
	rank, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, fmt.Errorf("rank: unexpected response %q: %w", resp, internalerr.ErrRanking)
	}
	if rank < 1 || rank > n {
		return 0, fmt.Errorf("rank: %d outside 1..%d: %w", rank, n, internalerr.ErrRanking)
	}
	return rank, nil
}
