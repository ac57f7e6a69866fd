package language

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini extracts names and summarizes messages with Google Gemini
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini creates a new Gemini language backend
func NewGemini(apiKey string, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	// The model is never mutated after this point, so concurrent calls are safe
	model := client.GenerativeModel(modelName)
	model.SetTemperature(0)

	return &Gemini{client: client, model: model}, nil
}

// ExtractPersonNames returns the person names Gemini finds in text
func (g *Gemini) ExtractPersonNames(ctx context.Context, text string) ([]string, error) {
	reply, err := g.generate(ctx, namesRequest(text))
	if err != nil {
		return nil, err
	}
	return parseNames(reply)
}

// Summarize returns a one-sentence summary of text
func (g *Gemini) Summarize(ctx context.Context, text string, minLen, maxLen int) (string, error) {
	reply, err := g.generate(ctx, summaryRequest(text, minLen, maxLen))
	if err != nil {
		return "", err
	}
	return parseSummary(reply)
}

func (g *Gemini) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	return text.String(), nil
}

// Close closes the Gemini client
func (g *Gemini) Close() error {
	return g.client.Close()
}
