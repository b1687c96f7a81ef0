package aifallback

import (
	"fmt"
	"strings"
)

// JSONExtractor pulls the JSON payload out of a raw model response.
// Models wrap their output in markdown fences or prose often enough that
// the envelope cannot be decoded as-is.
type JSONExtractor interface {
	// Extract returns the JSON document contained in the response
	Extract(response string) (string, error)
}

// DelimiterExtractor extracts the substring between the first '{' and the
// last '}' of the response.
type DelimiterExtractor struct{}

// NewDelimiterExtractor creates a delimiter-based JSON extractor
func NewDelimiterExtractor() *DelimiterExtractor {
	return &DelimiterExtractor{}
}

// Extract returns the first-'{' to last-'}' slice of the response
func (e *DelimiterExtractor) Extract(response string) (string, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("no JSON object found in model response")
	}
	return response[start : end+1], nil
}
