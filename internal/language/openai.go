package language

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAI extracts names and summarizes messages through the chat completions
// API. Any OpenAI-compatible server works when a base URL is given.
type OpenAI struct {
	client openai.Client
	model  string
}

// NewOpenAI creates a new OpenAI language backend
func NewOpenAI(apiKey, baseURL, modelName string) (*OpenAI, error) {
	if apiKey == "" && baseURL == "" {
		return nil, fmt.Errorf("openai api key is required unless a base url is set")
	}
	if modelName == "" {
		modelName = defaultOpenAIModel
	}

	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  modelName,
	}, nil
}

// ExtractPersonNames returns the person names the model finds in text
func (o *OpenAI) ExtractPersonNames(ctx context.Context, text string) ([]string, error) {
	reply, err := o.complete(ctx, namesRequest(text), 0)
	if err != nil {
		return nil, err
	}
	return parseNames(reply)
}

// Summarize returns a one-sentence summary of text
func (o *OpenAI) Summarize(ctx context.Context, text string, minLen, maxLen int) (string, error) {
	reply, err := o.complete(ctx, summaryRequest(text, minLen, maxLen), tokenBudget(maxLen))
	if err != nil {
		return "", err
	}
	return parseSummary(reply)
}

func (o *OpenAI) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(prompt),
					},
				},
			},
		},
		Temperature: openai.Float(0),
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}

	completion, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("creating chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return completion.Choices[0].Message.Content, nil
}

// Close is a no-op; the client holds no resources
func (o *OpenAI) Close() error {
	return nil
}
