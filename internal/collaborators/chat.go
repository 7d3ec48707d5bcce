package collaborators

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
	"github.com/sashabaranov/go-openai"

	"github.com/JaimeStill/tariff/internal/config"
)

// agentChat sends one chat inference per call through a go-agents agent.
type agentChat struct {
	cfg gaconfig.AgentConfig
}

func (c *agentChat) complete(ctx context.Context, p Prompt) (string, error) {
	a, err := agent.New(&c.cfg)
	if err != nil {
		return "", fmt.Errorf("%w: create agent: %w", ErrCallFailed, err)
	}

	resp, err := a.Chat(ctx, p.Text())
	if err != nil {
		return "", fmt.Errorf("%w: chat call: %w", ErrCallFailed, err)
	}

	content := resp.Content()
	if content == "" {
		return "", ErrEmptyReply
	}
	return content, nil
}

// openAIChat calls an OpenAI-compatible endpoint in JSON mode.
type openAIChat struct {
	api         *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

func newOpenAIChat(cfg *config.AgentConfig) *openAIChat {
	oc := openai.DefaultConfig(cfg.Token)
	oc.BaseURL = cfg.BaseURL

	var temperature float32
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}

	return &openAIChat{
		api:         openai.NewClientWithConfig(oc),
		model:       cfg.Model,
		temperature: temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

func (c *openAIChat) complete(ctx context.Context, p Prompt) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.System},
			{Role: openai.ChatMessageRoleUser, Content: p.User},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCallFailed, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyReply
	}
	return resp.Choices[0].Message.Content, nil
}
