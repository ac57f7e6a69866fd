package language

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Ollama extracts names and summarizes messages with a local Ollama model
type Ollama struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllama creates a new Ollama language backend
func NewOllama(baseURL string, modelName string) (*Ollama, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if modelName == "" {
		modelName = "llama3.1"
	}

	return &Ollama{
		baseURL: baseURL,
		model:   modelName,
		client:  &http.Client{Timeout: 60 * time.Second},
	}, nil
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Format  json.RawMessage `json:"format,omitempty"`
	Options generateOptions `json:"options"`
}

// namesSchema constrains name replies to {"names": [...]}
var namesSchema = json.RawMessage(`{"type":"object","properties":{"names":{"type":"array","items":{"type":"string"}}},"required":["names"]}`)

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// ExtractPersonNames returns the person names the model finds in text
func (o *Ollama) ExtractPersonNames(ctx context.Context, text string) ([]string, error) {
	reply, err := o.generate(ctx, generateRequest{
		Prompt: namesRequest(text),
		Format: namesSchema,
	})
	if err != nil {
		return nil, err
	}
	return parseNames(reply)
}

// Summarize returns a one-sentence summary of text
func (o *Ollama) Summarize(ctx context.Context, text string, minLen, maxLen int) (string, error) {
	reply, err := o.generate(ctx, generateRequest{
		Prompt:  summaryRequest(text, minLen, maxLen),
		Options: generateOptions{NumPredict: tokenBudget(maxLen)},
	})
	if err != nil {
		return "", err
	}
	return parseSummary(reply)
}

func (o *Ollama) generate(ctx context.Context, reqBody generateRequest) (string, error) {
	reqBody.Model = o.model
	reqBody.Stream = false
	reqBody.Options.Temperature = 0

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling ollama API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama API error (status %d): %s", resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	return genResp.Response, nil
}

// Close is a no-op for the HTTP client
func (o *Ollama) Close() error {
	return nil
}
