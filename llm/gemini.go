package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"mystery-shorts-pipeline/config"
)

// Gemini wraps a genai client and the fallback chain over its model
// variants. Close must be called when the run is done.
type Gemini struct {
	client *genai.Client
	*Chain
}

// NewGemini creates the production chain using the GOOGLE_API_KEY
// environment variable.
func NewGemini(ctx context.Context, cfg config.LLMConfig) (*Gemini, error) {
	apiKey := os.Getenv("GOOGLE_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GOOGLE_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}

	g := &Gemini{client: client}
	g.Chain = NewChain(g.generateContent, cfg)
	return g, nil
}

func (g *Gemini) generateContent(ctx context.Context, model, prompt string) (string, error) {
	resp, err := g.client.GenerativeModel(model).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, part := range c.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("model %s returned no text", model)
	}
	return sb.String(), nil
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	return g.client.Close()
}
