// Package collaborators executes engine decisions against the specialist
// agents through a go-agents client or an OpenAI-compatible endpoint.
package collaborators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/tariff/internal/config"
	"github.com/JaimeStill/tariff/workflow"
)

// System executes a decision and returns the partial state update it produced.
type System interface {
	Execute(ctx context.Context, d workflow.Decision, s workflow.ConversationState) (workflow.Outcome, error)
}

type completer interface {
	complete(ctx context.Context, p Prompt) (string, error)
}

type client struct {
	chat    completer
	prompts Prompts
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a collaborator System for the configured provider. Ollama and
// Azure go through the go-agents client; openai uses a chat completion client.
func New(cfg *config.AgentConfig, ps Prompts, logger *slog.Logger) (System, error) {
	var chat completer
	if cfg.UsesAgentClient() {
		ac, err := cfg.Agent()
		if err != nil {
			return nil, fmt.Errorf("agent config: %w", err)
		}
		chat = &agentChat{cfg: ac}
	} else {
		chat = newOpenAIChat(cfg)
	}

	return &client{
		chat:    chat,
		prompts: ps,
		timeout: cfg.TimeoutDuration(),
		logger:  logger.With("system", "collaborators", "provider", cfg.Provider),
	}, nil
}

// Executable reports whether a collaborator carries out the action.
func Executable(a workflow.Action) bool {
	return a != workflow.ActionRequestUserInput && !a.IsTerminal()
}

func (c *client) Execute(ctx context.Context, d workflow.Decision, s workflow.ConversationState) (workflow.Outcome, error) {
	if !Executable(d.Action) {
		return workflow.Outcome{}, fmt.Errorf("%w: %s", ErrNotExecutable, d.Action)
	}
	if d.Agent == "" {
		return workflow.Outcome{}, fmt.Errorf("%w: %s", ErrNoAgent, d.Action)
	}

	prompt, err := ComposePrompt(ctx, c.prompts, d, &s)
	if err != nil {
		return workflow.Outcome{}, err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	content, err := c.chat.complete(ctx, prompt)
	if err != nil {
		c.logger.ErrorContext(ctx, "collaborator call failed",
			"agent", d.Agent,
			"action", d.Action,
			"error", err,
		)
		return workflow.Outcome{}, err
	}

	outcome, err := ParseReply(d, &s, content)
	if err != nil {
		return workflow.Outcome{}, fmt.Errorf("%s reply: %w", d.Agent, err)
	}

	c.logger.InfoContext(ctx, "collaborator call complete",
		"agent", d.Agent,
		"action", d.Action,
		"duration", time.Since(start),
	)
	return outcome, nil
}
