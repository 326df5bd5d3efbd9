package nlu

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
)

// AnthropicClassifier classifies intents with a Claude model.
type AnthropicClassifier struct {
	client anthropic.Client
	model  anthropic.Model
}

// NewAnthropicClassifier wraps an existing Anthropic client. An empty model
// defaults to Claude 3.5 Haiku.
func NewAnthropicClassifier(client anthropic.Client, model anthropic.Model) *AnthropicClassifier {
	if model == "" {
		model = anthropic.ModelClaude3_5HaikuLatest
	}
	return &AnthropicClassifier{client: client, model: model}
}

func (c *AnthropicClassifier) Classify(ctx context.Context, query, language string) (*Result, error) {
	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 64,
		System: []anthropic.TextBlockParam{
			{Text: fmt.Sprintf(classifyPrompt, language)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(query)),
		},
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic classify failed: %w", err)
	}

	for _, block := range resp.Content {
		if block.Type == "text" {
			return parseResult(block.Text)
		}
	}
	return nil, fmt.Errorf("anthropic returned no text content")
}
