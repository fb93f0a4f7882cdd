package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cognicore/cognate/pkg/cognate/internalerr"
)

type roundTrip func(*http.Request) *http.Response

func (rt roundTrip) RoundTrip(req *http.Request) (*http.Response, error) {
	return rt(req), nil
}

func jsonResponse(code int, body string) *http.Response {
	return &http.Response{
		StatusCode: code,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func testClient(rt roundTrip) *Client {
	return &Client{
		BaseURL:    "https://api.test/v1",
		Model:      "gpt-test",
		HTTPClient: &http.Client{Transport: rt},
	}
}

func TestChat(t *testing.T) {
	client := testClient(func(req *http.Request) *http.Response {
		if req.URL.Path != "/v1/chat/completions" {
			t.Fatalf("unexpected path %s", req.URL.Path)
		}
		return jsonResponse(200, `{"choices":[{"message":{"role":"assistant","content":"hi"}}]}`)
	})
	out, err := client.Chat(context.Background(), "system", "user prompt")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if out != "hi" {
		t.Fatalf("unexpected chat output %s", out)
	}
}

func TestChatAPIError(t *testing.T) {
	client := testClient(func(req *http.Request) *http.Response {
		return jsonResponse(200, `{"error":{"message":"bad"}}`)
	})
	if _, err := client.Chat(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error")
	}
}

func TestCompleteOrdersChoices(t *testing.T) {
	client := testClient(func(req *http.Request) *http.Response {
		if req.URL.Path != "/v1/completions" {
			t.Fatalf("unexpected path %s", req.URL.Path)
		}
		var got CompletionRequest
		if err := json.NewDecoder(req.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if got.N != 2 || got.Model != "gpt-test" {
			t.Fatalf("unexpected request %+v", got)
		}
		return jsonResponse(200, `{"choices":[{"text":" second","index":1},{"text":" first","index":0}]}`)
	})
	out, err := client.Complete(context.Background(), CompletionRequest{Prompt: "Il était", N: 2})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !reflect.DeepEqual(out, []string{" first", " second"}) {
		t.Fatalf("unexpected choices %q", out)
	}
}

func TestRetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	client := testClient(func(req *http.Request) *http.Response {
		if calls.Add(1) < 3 {
			return jsonResponse(503, `overloaded`)
		}
		return jsonResponse(200, `{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`)
	})
	client.Retry = RetryPolicy{MaxRetries: 3, Backoff: time.Millisecond}

	out, err := client.Chat(context.Background(), "", "u")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if out != "ok" || calls.Load() != 3 {
		t.Fatalf("out=%q calls=%d", out, calls.Load())
	}
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	client := testClient(func(req *http.Request) *http.Response {
		calls.Add(1)
		return jsonResponse(400, `bad request`)
	})
	client.Retry = RetryPolicy{MaxRetries: 3, Backoff: time.Millisecond}

	_, err := client.Chat(context.Background(), "", "u")
	var se *StatusError
	if !errors.As(err, &se) || se.Code != 400 {
		t.Fatalf("expected StatusError 400, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("client errors must not be retried, got %d calls", calls.Load())
	}
}

func TestGeneratorWrapsFailure(t *testing.T) {
	client := testClient(func(req *http.Request) *http.Response {
		return jsonResponse(500, `boom`)
	})
	_, err := NewGenerator(client, "").Generate(context.Background(), "prompt", 3)
	if !errors.Is(err, internalerr.ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
}

func TestRankerParsesAnswer(t *testing.T) {
	client := testClient(func(req *http.Request) *http.Response {
		body, _ := io.ReadAll(req.Body)
		if !strings.Contains(string(body), "2. deux") {
			t.Fatalf("candidates not numbered in prompt: %s", body)
		}
		return jsonResponse(200, `{"choices":[{"message":{"role":"assistant","content":" 2\n"}}]}`)
	})
	r := &Ranker{Client: client, SourceName: "French", TargetName: "English"}
	rank, err := r.Rank(context.Background(), []string{"un", "deux", "trois"})
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if rank != 2 {
		t.Fatalf("rank = %d, want 2", rank)
	}
}

func TestParseRank(t *testing.T) {
	if got, err := ParseRank("3.", 3); err != nil || got != 3 {
		t.Fatalf("ParseRank(3.) = %d, %v", got, err)
	}
	for _, bad := range []string{"0", "4", "-1", "the second", ""} {
		if _, err := ParseRank(bad, 3); !errors.Is(err, internalerr.ErrRanking) {
			t.Errorf("ParseRank(%q) should fail with ErrRanking, got %v", bad, err)
		}
	}
}

func TestScoreRubricBatch(t *testing.T) {
	var calls atomic.Int32
	client := testClient(func(req *http.Request) *http.Response {
		calls.Add(1)
		body, _ := io.ReadAll(req.Body)
		if !strings.Contains(string(body), "2. Le climat") {
			t.Fatalf("sentences not numbered in prompt: %s", body)
		}
		content := "```json\n[{\"sentence\":\"Le hotel\",\"reasoning\":\"r\",\"cognate_words\":[\"hotel\"],\"score\":3}," +
			"{\"sentence\":\"Le climat\",\"reasoning\":\"r\",\"cognate_words\":[\"climat\"],\"score\":2}]\n```"
		payload, _ := json.Marshal(map[string]any{
			"choices": []any{map[string]any{"message": map[string]string{"role": "assistant", "content": content}}},
		})
		return jsonResponse(200, string(payload))
	})
	r := &RubricScorer{Client: client, SourceName: "French", TargetName: "English"}
	got, err := r.ScoreRubricBatch(context.Background(), []string{"Le hotel", "Le climat"})
	if err != nil {
		t.Fatalf("ScoreRubricBatch: %v", err)
	}
	if len(got) != 2 || got[0].Score != 3 || got[1].Score != 2 {
		t.Fatalf("unexpected verdicts %+v", got)
	}
	if !reflect.DeepEqual(got[1].CognateWords, []string{"climat"}) {
		t.Errorf("cognate words = %v", got[1].CognateWords)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("expected one request, got %d", n)
	}
}

func TestScoreRubricBatchEmpty(t *testing.T) {
	client := testClient(func(req *http.Request) *http.Response {
		t.Fatal("no request expected for an empty batch")
		return nil
	})
	r := &RubricScorer{Client: client}
	got, err := r.ScoreRubricBatch(context.Background(), nil)
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil; got %v, %v", got, err)
	}
}
