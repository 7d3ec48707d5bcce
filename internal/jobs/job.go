// Package jobs implements the classification job domain. A job owns one
// conversation state, persisted in PostgreSQL together with the audit trail
// of every decision the runner executed for it.
package jobs

import (
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/tariff/internal/confidence"
	"github.com/JaimeStill/tariff/internal/engine"
	"github.com/JaimeStill/tariff/internal/runner"
	"github.com/JaimeStill/tariff/workflow"
)

// Job is a stored classification conversation with its flattened summary columns.
type Job struct {
	ID                  uuid.UUID                  `json:"id"`
	ProductName         string                     `json:"product_name"`
	Description         string                     `json:"description"`
	Status              workflow.Status            `json:"status"`
	CurrentRound        int                        `json:"current_round"`
	MaxRounds           int                        `json:"max_rounds"`
	SelfHealingAttempts int                        `json:"self_healing_attempts"`
	OverallConfidence   int                        `json:"overall_confidence"`
	DecidedCode         *string                    `json:"decided_code"`
	State               workflow.ConversationState `json:"state"`
	CreatedAt           time.Time                  `json:"created_at"`
	UpdatedAt           time.Time                  `json:"updated_at"`
}

// DecisionRecord is one audited runner round.
type DecisionRecord struct {
	ID         uuid.UUID         `json:"id"`
	JobID      uuid.UUID         `json:"job_id"`
	Round      int               `json:"round"`
	Result     runner.Result     `json:"result"`
	Action     workflow.Action   `json:"action"`
	Agent      *workflow.Agent   `json:"agent"`
	Stage      workflow.Stage    `json:"stage"`
	Reason     string            `json:"reason"`
	Decision   workflow.Decision `json:"decision"`
	Confidence int               `json:"confidence"`
	Error      *string           `json:"error"`
	DecidedAt  time.Time         `json:"decided_at"`
}

// Evaluation is the engine's view of a job without advancing it.
type Evaluation struct {
	Decision    workflow.Decision         `json:"decision"`
	Termination engine.Termination        `json:"termination"`
	Confidence  confidence.FactorAnalysis `json:"confidence"`
}

// RunResult is the job after a run together with the rounds it executed.
type RunResult struct {
	Job   Job           `json:"job"`
	Steps []runner.Step `json:"steps"`
}

// CreateCommand starts a new classification job from a product description.
// MaxRounds falls back to the configured workflow limit when zero.
type CreateCommand struct {
	Description string `json:"description"`
	MaxRounds   int    `json:"max_rounds"`
}
