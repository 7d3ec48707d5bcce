package collaborators

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/JaimeStill/tariff/workflow"
)

// Prompts supplies the instructions and response specification of an agent.
// prompts.System satisfies it.
type Prompts interface {
	Instructions(ctx context.Context, agent workflow.Agent) (string, error)
	Spec(ctx context.Context, agent workflow.Agent) (string, error)
}

// Prompt is the message pair sent to a collaborating agent.
type Prompt struct {
	System string
	User   string
}

// Text joins the messages for clients that take a single prompt.
func (p Prompt) Text() string {
	return p.System + "\n\n" + p.User
}

// ComposePrompt builds the system message from the agent's tunable
// instructions and immutable response spec, and the user message from the
// decision and the current classification state.
func ComposePrompt(
	ctx context.Context,
	ps Prompts,
	d workflow.Decision,
	s *workflow.ConversationState,
) (Prompt, error) {
	instructions, err := ps.Instructions(ctx, d.Agent)
	if err != nil {
		return Prompt{}, fmt.Errorf("load instructions for %s: %w", d.Agent, err)
	}

	spec, err := ps.Spec(ctx, d.Agent)
	if err != nil {
		return Prompt{}, fmt.Errorf("load spec for %s: %w", d.Agent, err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Task: %s\n", d.Action)
	if d.Reason != "" {
		fmt.Fprintf(&sb, "Reason: %s\n", d.Reason)
	}

	if len(d.SpecificRequest) > 0 {
		request, err := json.MarshalIndent(d.SpecificRequest, "", "  ")
		if err != nil {
			return Prompt{}, fmt.Errorf("serialize request: %w", err)
		}
		sb.WriteString("\nRequest:\n\n")
		sb.Write(request)
		sb.WriteString("\n")
	}

	if s != nil {
		current, err := json.MarshalIndent(s.CurrentState, "", "  ")
		if err != nil {
			return Prompt{}, fmt.Errorf("serialize classification state: %w", err)
		}
		sb.WriteString("\nCurrent classification state:\n\n")
		sb.Write(current)
	}

	return Prompt{
		System: instructions + "\n\n" + spec,
		User:   sb.String(),
	}, nil
}
