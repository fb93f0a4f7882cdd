package article

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// markup is the inline formatting found in learner dictionary examples.
var markup = []string{"{it}", "{/it}", "{phrase}", "{/phrase}"}

// ExampleSentences walks a learner dictionary JSON dump and returns every
// string stored under a "t" key, with inline markup removed. Object keys are
// visited in sorted order so results are deterministic.
func ExampleSentences(data []byte) ([]string, error) {
	for _, m := range markup {
		data = bytes.ReplaceAll(data, []byte(m), nil)
	}
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode learner json: %w", err)
	}
	var out []string
	collectExamples(root, &out)
	return out, nil
}

// LoadExampleSentences reads ExampleSentences from a file.
func LoadExampleSentences(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ExampleSentences(data)
}

func collectExamples(v any, out *[]string) {
	switch node := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(node))
		for k := range node {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if s, ok := node[k].(string); ok && k == "t" {
				*out = append(*out, s)
				continue
			}
			collectExamples(node[k], out)
		}
	case []any:
		for _, item := range node {
			collectExamples(item, out)
		}
	}
}
