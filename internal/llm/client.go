// Package llm talks to OpenAI-compatible completion endpoints and adapts
// them to the generator, ranker, rubric and synonym roles of the search.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/cognicore/cognate/internal/metrics"
)

// Client calls an OpenAI-compatible API. BaseURL is the API root, e.g.
// "https://api.openai.com/v1".
type Client struct {
	BaseURL string
	APIKey  string
	Model   string

	HTTPClient *http.Client
	Retry      RetryPolicy
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error"`
}

// CompletionRequest is a legacy text completion request returning N
// independent continuations.
type CompletionRequest struct {
	Model            string   `json:"model"`
	Prompt           string   `json:"prompt"`
	MaxTokens        int      `json:"max_tokens,omitempty"`
	N                int      `json:"n,omitempty"`
	Temperature      float64  `json:"temperature"`
	TopP             float64  `json:"top_p,omitempty"`
	PresencePenalty  float64  `json:"presence_penalty,omitempty"`
	FrequencyPenalty float64  `json:"frequency_penalty,omitempty"`
	Stop             []string `json:"stop,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Text  string `json:"text"`
		Index int    `json:"index"`
	} `json:"choices"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Message string `json:"message"`
}

// StatusError is returned for non-2xx HTTP responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("llm: http %d: %s", e.Code, e.Body)
}

// Chat sends a system and user message and returns the first choice.
func (c *Client) Chat(ctx context.Context, system, user string) (string, error) {
	if c.BaseURL == "" || c.Model == "" {
		return "", fmt.Errorf("llm: base URL and model required")
	}
	var messages []chatMessage
	if system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: user})

	var payload chatResponse
	err := c.Retry.Do(ctx, "chat", func(ctx context.Context) error {
		payload = chatResponse{}
		return c.post(ctx, "/chat/completions", chatRequest{Model: c.Model, Messages: messages}, &payload)
	})
	if err != nil {
		return "", err
	}
	if payload.Error != nil {
		return "", fmt.Errorf("llm error: %s", payload.Error.Message)
	}
	if len(payload.Choices) == 0 {
		return "", fmt.Errorf("llm: empty response")
	}
	return payload.Choices[0].Message.Content, nil
}

// Complete runs a text completion and returns the choice texts ordered by
// choice index.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) ([]string, error) {
	if req.Model == "" {
		req.Model = c.Model
	}
	if c.BaseURL == "" || req.Model == "" {
		return nil, fmt.Errorf("llm: base URL and model required")
	}

	var payload completionResponse
	err := c.Retry.Do(ctx, "completions", func(ctx context.Context) error {
		payload = completionResponse{}
		return c.post(ctx, "/completions", req, &payload)
	})
	if err != nil {
		return nil, err
	}
	if payload.Error != nil {
		return nil, fmt.Errorf("llm error: %s", payload.Error.Message)
	}
	if len(payload.Choices) == 0 {
		return nil, fmt.Errorf("llm: empty response")
	}
	sort.SliceStable(payload.Choices, func(i, j int) bool {
		return payload.Choices[i].Index < payload.Choices[j].Index
	})
	out := make([]string, len(payload.Choices))
	for i, ch := range payload.Choices {
		out[i] = ch.Text
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, body, into any) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveCall("llm"+path, start, err) }()

	reqBody, err := json.Marshal(body)
	if err != nil {
		return err
	}
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	return json.NewDecoder(resp.Body).Decode(into)
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 15 * time.Second}
}
