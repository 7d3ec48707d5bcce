// Package prompts manages the instructions handed to the collaborating agents.
// Every agent has hardcoded default instructions and an immutable response
// specification; named overrides stored in PostgreSQL can replace the default
// instructions of one agent at a time.
package prompts

import (
	"github.com/google/uuid"

	"github.com/JaimeStill/tariff/workflow"
)

// Prompt is a named instruction override for a collaborating agent.
type Prompt struct {
	ID           uuid.UUID      `json:"id"`
	Name         string         `json:"name"`
	Agent        workflow.Agent `json:"agent"`
	Instructions string         `json:"instructions"`
	Description  *string        `json:"description"`
	Active       bool           `json:"active"`
}

// CreateCommand carries the data needed to create a new prompt override.
type CreateCommand struct {
	Name         string         `json:"name"`
	Agent        workflow.Agent `json:"agent"`
	Instructions string         `json:"instructions"`
	Description  *string        `json:"description"`
}

// UpdateCommand carries the data needed to update an existing prompt override.
type UpdateCommand struct {
	Name         string         `json:"name"`
	Agent        workflow.Agent `json:"agent"`
	Instructions string         `json:"instructions"`
	Description  *string        `json:"description"`
}

// ParseAgent validates an agent name, mapping failures to ErrInvalidAgent.
func ParseAgent(s string) (workflow.Agent, error) {
	a, err := workflow.ParseAgent(s)
	if err != nil {
		return "", ErrInvalidAgent
	}
	return a, nil
}

func validate(name string, agent workflow.Agent, instructions string) error {
	if name == "" {
		return ErrInvalidPrompt
	}
	if instructions == "" {
		return ErrInvalidPrompt
	}
	if _, err := ParseAgent(string(agent)); err != nil {
		return err
	}
	return nil
}
