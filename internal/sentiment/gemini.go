package sentiment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiConfig wires Gemini access.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// GeminiAnalyzer asks Gemini for a JSON sentiment verdict.
type GeminiAnalyzer struct {
	client *genai.Client
	model  string
}

// NewGeminiAnalyzer returns an Analyzer backed by the Gemini API.
func NewGeminiAnalyzer(ctx context.Context, cfg GeminiConfig) (*GeminiAnalyzer, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key missing")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	return &GeminiAnalyzer{client: client, model: model}, nil
}

func (g *GeminiAnalyzer) Analyze(ctx context.Context, text string) (Result, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt(text), genai.RoleUser)}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0)),
		ResponseMIMEType: "application/json",
		MaxOutputTokens:  128,
	})
	if err != nil {
		return Result{}, err
	}
	return Parse(resp.Text())
}

func prompt(text string) string {
	var b strings.Builder
	b.WriteString("Analyze the sentiment of the following text, written by someone working on their social anxiety.\n")
	b.WriteString(`Reply ONLY with JSON in the form {"score": number, "label": string}.` + "\n")
	b.WriteString("The score must be between -1 (very anxious or negative) and 1 (very confident or positive).\n")
	b.WriteString("Text: ")
	b.WriteString(fmt.Sprintf("%q", strings.TrimSpace(text)))
	return b.String()
}
