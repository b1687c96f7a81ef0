// Package aifallback implements the generative-AI parsing path used when no
// bank grammar matches a statement, and for photo imports which always go
// through the model.
package aifallback

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Generator produces a model completion for a prompt and optional images.
// It exists so the fallback parser can be tested without network access.
type Generator interface {
	// Generate returns the model's text response for the prompt. Images,
	// when present, are attached as JPEG parts.
	Generate(ctx context.Context, prompt string, images [][]byte) (string, error)
}

// GeminiConfig configures the Gemini-backed generator
type GeminiConfig struct {
	APIKey string
	Model  string
}

// DefaultGeminiModel is the model used when none is configured
const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiGenerator calls the Gemini API to produce completions
type GeminiGenerator struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiGenerator creates a generator backed by the Gemini API
func NewGeminiGenerator(ctx context.Context, config GeminiConfig) (*GeminiGenerator, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	modelName := config.Model
	if modelName == "" {
		modelName = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"

	return &GeminiGenerator{client: client, model: model}, nil
}

// Generate sends the prompt (and any images) to the model and concatenates
// the text parts of the first candidate.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, images [][]byte) (string, error) {
	parts := make([]genai.Part, 0, 1+len(images))
	parts = append(parts, genai.Text(prompt))
	for _, image := range images {
		parts = append(parts, genai.ImageData("jpeg", image))
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from gemini")
	}

	var out string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out += string(text)
		}
	}
	if out == "" {
		return "", fmt.Errorf("no text parts in gemini response")
	}

	return out, nil
}

// Close releases the underlying client connection
func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}
