package analytics

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModel is the generative model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

type geminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiAnalyzer builds an Analyzer backed by the hosted
// generative-language API.
func NewGeminiAnalyzer(ctx context.Context, apiKey, model string) (*Analyzer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is not configured")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newAnalyzer(&geminiGenerator{client: client, model: model}), nil
}

func (g *geminiGenerator) generateText(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	// Low temperature keeps the reply close to the requested JSON shape.
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.3),
		TopP:            genai.Ptr[float32](0.8),
		MaxOutputTokens: 4096,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}
