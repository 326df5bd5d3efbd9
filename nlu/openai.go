package nlu

import (
	"context"
	"encoding/json"
	"fmt"

	oai "github.com/sashabaranov/go-openai"
)

// OpenAIClassifier classifies intents with an OpenAI chat model constrained
// to JSON output.
type OpenAIClassifier struct {
	client *oai.Client
	model  string
}

// NewOpenAIClassifier wraps an existing OpenAI client. An empty model
// defaults to gpt-4o-mini.
func NewOpenAIClassifier(client *oai.Client, model string) *OpenAIClassifier {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIClassifier{client: client, model: model}
}

func (c *OpenAIClassifier) Classify(ctx context.Context, query, language string) (*Result, error) {
	req := oai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		MaxTokens:   64,
		ResponseFormat: &oai.ChatCompletionResponseFormat{
			Type: oai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []oai.ChatCompletionMessage{
			{Role: oai.ChatMessageRoleSystem, Content: fmt.Sprintf(classifyPrompt, language)},
			{Role: oai.ChatMessageRoleUser, Content: query},
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai classify failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}

	return parseResult(resp.Choices[0].Message.Content)
}

func parseResult(raw string) (*Result, error) {
	var result Result
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("malformed classifier output: %w", err)
	}
	if result.Intent == "" {
		return nil, fmt.Errorf("classifier output missing intent")
	}
	if result.Confidence < 0 || result.Confidence > 1 {
		return nil, fmt.Errorf("classifier confidence %v out of range", result.Confidence)
	}
	return &result, nil
}
