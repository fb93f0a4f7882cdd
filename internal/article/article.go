// Package article sources seed sentences from encyclopedia pages and
// learner dictionary dumps.
package article

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/cognicore/cognate/internal/llm"
	"github.com/cognicore/cognate/internal/metrics"
	"github.com/cognicore/cognate/pkg/cognate/internalerr"
)

// ContentID is the id of the element holding a MediaWiki article body.
const ContentID = "mw-content-text"

// RandomWikipediaURL returns the random-article URL of a Wikipedia edition.
func RandomWikipediaURL(lang string) string {
	return fmt.Sprintf("https://%s.wikipedia.org/wiki/Special:Random", lang)
}

// ExtractParagraphs returns the text of every <p> inside the element whose
// id is ContentID. Empty paragraphs are skipped.
func ExtractParagraphs(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	content := findByID(doc, ContentID)
	if content == nil {
		return nil, fmt.Errorf("article content #%s: %w", ContentID, internalerr.ErrNotFound)
	}

	var paragraphs []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "p" {
			if text := strings.TrimSpace(textOf(n)); text != "" {
				paragraphs = append(paragraphs, text)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(content)
	return paragraphs, nil
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func textOf(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

var (
	bracketed  = regexp.MustCompile(`[\[(].*?[\])]`)
	spaces     = regexp.MustCompile(`\s+`)
	sentenceRE = regexp.MustCompile(`[^.!?]+[.!?]*`)
)

// Clean drops newlines and any bracketed or parenthesised text (citation
// markers, pronunciations) and collapses whitespace.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	text = bracketed.ReplaceAllString(text, "")
	text = spaces.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// SplitSentences splits text after terminal punctuation, keeping it.
func SplitSentences(text string) []string {
	var out []string
	for _, m := range sentenceRE.FindAllString(text, -1) {
		if s := strings.TrimSpace(m); s != "" && strings.Trim(s, ".!? ") != "" {
			out = append(out, s)
		}
	}
	return out
}

// FirstSentence returns the first sentence of paragraphs, after cleaning,
// that has at least minWords words.
func FirstSentence(paragraphs []string, minWords int) (string, bool) {
	for _, p := range paragraphs {
		for _, s := range SplitSentences(Clean(p)) {
			if len(strings.Fields(s)) >= minWords {
				return s, true
			}
		}
	}
	return "", false
}

// Fetcher downloads article pages.
type Fetcher struct {
	HTTPClient *http.Client
	UserAgent  string
	Retry      llm.RetryPolicy
}

// Fetch downloads url and returns its article paragraphs.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]string, error) {
	var paragraphs []string
	err := f.Retry.Do(ctx, "fetch article", func(ctx context.Context) (err error) {
		start := time.Now()
		defer func() { metrics.ObserveCall("article", start, err) }()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		if f.UserAgent != "" {
			req.Header.Set("User-Agent", f.UserAgent)
		}
		resp, err := f.httpClient().Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
			return &llm.StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
		}
		paragraphs, err = ExtractParagraphs(resp.Body)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	return paragraphs, nil
}

// Seed fetches url and returns its first sentence with at least minWords
// words.
func (f *Fetcher) Seed(ctx context.Context, url string, minWords int) (string, error) {
	paragraphs, err := f.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	s, ok := FirstSentence(paragraphs, minWords)
	if !ok {
		return "", fmt.Errorf("no sentence of %d+ words in %s: %w", minWords, url, internalerr.ErrNotFound)
	}
	return s, nil
}

func (f *Fetcher) httpClient() *http.Client {
	if f.HTTPClient != nil {
		return f.HTTPClient
	}
	return &http.Client{Timeout: 20 * time.Second}
}
