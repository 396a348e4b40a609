package conversation

import (
	"context"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
)

// AnthropicOracle backs the conversation with the Anthropic Messages API.
type AnthropicOracle struct {
	client  *anthropic.Client
	model   anthropic.Model
	timeout time.Duration
}

func NewAnthropicOracle(client *anthropic.Client, model string, timeout time.Duration) *AnthropicOracle {
	return &AnthropicOracle{client: client, model: anthropic.Model(model), timeout: timeout}
}

func (o *AnthropicOracle) Reply(ctx context.Context, history []Message, sys SystemContext) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	conv := make([]anthropic.MessageParam, 0, len(history))
	for _, m := range history {
		switch m.Role {
		case RoleUser:
			conv = append(conv, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case RoleAssistant:
			conv = append(conv, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	msg, err := o.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     o.model,
		MaxTokens: 1024,
		System:    []anthropic.TextBlockParam{{Text: SystemPrompt(sys)}},
		Messages:  conv,
	})
	if err != nil {
		return "", fmt.Errorf("oracle call: %w", err)
	}

	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			return tb.Text, nil
		}
	}
	return "", fmt.Errorf("oracle returned no text content")
}
