// Package translate provides word translators for the cognate classifier:
// a remote HTTP translator, an auxiliary-dictionary fast path and cache
// decorators.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cognicore/cognate/internal/llm"
	"github.com/cognicore/cognate/internal/metrics"
	"github.com/cognicore/cognate/pkg/cognate/auxdict"
	"github.com/cognicore/cognate/pkg/cognate/classify"
	"github.com/cognicore/cognate/pkg/cognate/internalerr"
)

// HTTPTranslator calls a LibreTranslate-compatible /translate endpoint.
type HTTPTranslator struct {
	URL    string
	APIKey string

	HTTPClient *http.Client
	Retry      llm.RetryPolicy
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error"`
}

// Translate implements classify.WordTranslator.
func (t *HTTPTranslator) Translate(ctx context.Context, word, src, dst string) (string, error) {
	if t.URL == "" {
		return "", fmt.Errorf("translate: URL required: %w", internalerr.ErrInvalidConfig)
	}
	body, err := json.Marshal(translateRequest{Q: word, Source: src, Target: dst, Format: "text", APIKey: t.APIKey})
	if err != nil {
		return "", err
	}

	var payload translateResponse
	err = t.Retry.Do(ctx, "translate", func(ctx context.Context) (err error) {
		start := time.Now()
		defer func() { metrics.ObserveCall("translate", start, err) }()

		payload = translateResponse{}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.URL, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := t.httpClient().Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return &llm.StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
		}
		return json.NewDecoder(resp.Body).Decode(&payload)
	})
	if err != nil {
		return "", fmt.Errorf("translate %q: %w: %v", word, internalerr.ErrTranslationUnavailable, err)
	}
	if payload.Error != "" || strings.TrimSpace(payload.TranslatedText) == "" {
		return "", fmt.Errorf("translate %q: %s: %w", word, payload.Error, internalerr.ErrTranslationUnavailable)
	}
	return payload.TranslatedText, nil
}

func (t *HTTPTranslator) httpClient() *http.Client {
	if t.HTTPClient != nil {
		return t.HTTPClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}

// DictionaryFirst answers from an auxiliary dictionary and falls back to
// Next for unknown words. Next may be nil.
type DictionaryFirst struct {
	Dict *auxdict.Dictionary
	Next classify.WordTranslator
}

// Translate implements classify.WordTranslator.
func (d *DictionaryFirst) Translate(ctx context.Context, word, src, dst string) (string, error) {
	if out, ok := d.Dict.Lookup(word); ok {
		return out, nil
	}
	if d.Next == nil {
		return "", fmt.Errorf("translate %q: not in dictionary: %w", word, internalerr.ErrTranslationUnavailable)
	}
	return d.Next.Translate(ctx, word, src, dst)
}
