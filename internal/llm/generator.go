package llm

import (
	"context"
	"fmt"

	"github.com/cognicore/cognate/pkg/cognate/internalerr"
)

// Generator produces sentence continuations through the completions
// endpoint.
type Generator struct {
	Client      *Client
	Model       string
	MaxTokens   int
	Temperature float64
	TopP        float64
	Presence    float64
}

// NewGenerator returns a generator with the sampling settings used for
// short continuations.
func NewGenerator(c *Client, model string) *Generator {
	return &Generator{
		Client:      c,
		Model:       model,
		MaxTokens:   20,
		Temperature: 1.3,
		TopP:        0.9,
		Presence:    0.6,
	}
}

// Generate returns n continuations of prompt. Failures wrap ErrGeneration.
func (g *Generator) Generate(ctx context.Context, prompt string, n int) ([]string, error) {
	if n <= 0 {
		return nil, fmt.Errorf("generate: n must be positive: %w", internalerr.ErrInvalidArgument)
	}
	out, err := g.Client.Complete(ctx, CompletionRequest{
		Model:           g.Model,
		Prompt:          prompt,
		MaxTokens:       g.MaxTokens,
		N:               n,
		Temperature:     g.Temperature,
		TopP:            g.TopP,
		PresencePenalty: g.Presence,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrGeneration, err)
	}
	return out, nil
}
