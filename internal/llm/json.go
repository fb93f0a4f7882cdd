package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	fenceOpen  = regexp.MustCompile("(?s)```(?:json)?\\s*")
	fenceClose = regexp.MustCompile("(?s)```\\s*$")
)

// ExtractJSON pulls the outermost JSON object out of a model response that
// may carry markdown fences or prose around it.
func ExtractJSON(response string) (string, error) {
	response = strings.TrimSpace(response)
	response = fenceOpen.ReplaceAllString(response, "")
	response = fenceClose.ReplaceAllString(response, "")
	response = strings.TrimSpace(response)

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("no valid JSON object found in response")
	}
	jsonStr := response[start : end+1]

	var js json.RawMessage
	if err := json.Unmarshal([]byte(jsonStr), &js); err != nil {
		return "", fmt.Errorf("extracted text is not valid JSON: %w", err)
	}
	return jsonStr, nil
}

// ExtractJSONArray is ExtractJSON for a top-level array.
func ExtractJSONArray(response string) (string, error) {
	response = strings.TrimSpace(response)
	response = fenceOpen.ReplaceAllString(response, "")
	response = fenceClose.ReplaceAllString(response, "")

	start := strings.Index(response, "[")
	end := strings.LastIndex(response, "]")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("no valid JSON array found in response")
	}
	jsonStr := response[start : end+1]

	var js []json.RawMessage
	if err := json.Unmarshal([]byte(jsonStr), &js); err != nil {
		return "", fmt.Errorf("extracted text is not a valid JSON array: %w", err)
	}
	return jsonStr, nil
}
