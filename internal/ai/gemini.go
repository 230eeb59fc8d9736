package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiModel is the model every Gemini request uses.
const GeminiModel = "gemini-2.0-flash"

// GeminiBackend sends the whole prompt as a single text part.
type GeminiBackend struct {
	client *genai.Client
	model  string
}

// NewGeminiBackend initializes the Gemini client.
func NewGeminiBackend(ctx context.Context, apiKey string, opts ...option.ClientOption) (*GeminiBackend, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiBackend{client: client, model: GeminiModel}, nil
}

// Complete calls generateContent and returns the text of the first candidate.
func (g *GeminiBackend) Complete(ctx context.Context, prompt string) (string, error) {
	res, err := g.client.GenerativeModel(g.model).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	text := responseText(res)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Close releases the underlying client.
func (g *GeminiBackend) Close() error {
	return g.client.Close()
}

func responseText(res *genai.GenerateContentResponse) string {
	if res == nil || len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}
