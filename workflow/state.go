package workflow

import (
	"encoding/json"
	"slices"
)

const (
	// DefaultMaxRounds applies when a state carries no positive round cap.
	DefaultMaxRounds = 10
	// MaxSelfHealingAttempts is the number of self-healing actions allowed
	// before the engine escalates.
	MaxSelfHealingAttempts = 3
)

// Status is the lifecycle status of a conversation.
type Status string

// Conversation statuses.
const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusEscalated Status = "escalated"
)

var statuses = []Status{
	StatusActive,
	StatusCompleted,
	StatusFailed,
	StatusEscalated,
}

// IsTerminal reports whether no further rounds may run.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusEscalated
}

// ParseStatus validates a string as a known status.
func ParseStatus(s string) (Status, error) {
	v := Status(s)
	if !slices.Contains(statuses, v) {
		return "", ErrInvalidStatus
	}
	return v, nil
}

// UnmarshalJSON decodes a status. Empty, unknown, or non-string values
// decode to active: a malformed status is treated as not provided.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		*s = StatusActive
		return nil
	}
	v, err := ParseStatus(raw)
	if err != nil {
		v = StatusActive
	}
	*s = v
	return nil
}

// ConversationState is the aggregate root of a classification conversation.
type ConversationState struct {
	CurrentRound        int            `json:"current_round"`
	MaxRounds           int            `json:"max_rounds"`
	SelfHealingAttempts int            `json:"self_healing_attempts"`
	OverallConfidence   int            `json:"overall_confidence"`
	Status              Status         `json:"status"`
	CurrentState        CurrentState   `json:"current_state"`
	History             []HistoryEntry `json:"history,omitempty"`
}

// NewConversation starts an active conversation for a product description.
func NewConversation(description string, maxRounds int) ConversationState {
	return ConversationState{
		MaxRounds:    maxRounds,
		Status:       StatusActive,
		CurrentState: CurrentState{Description: description},
	}
}

// RoundLimit returns the effective round cap.
func (s *ConversationState) RoundLimit() int {
	if s.MaxRounds <= 0 {
		return DefaultMaxRounds
	}
	return s.MaxRounds
}

// RoundsExhausted reports whether the round cap has been reached.
func (s *ConversationState) RoundsExhausted() bool {
	return s.CurrentRound >= s.RoundLimit()
}

// SelfHealingExhausted reports whether the self-healing budget is spent.
func (s *ConversationState) SelfHealingExhausted() bool {
	return s.SelfHealingAttempts >= MaxSelfHealingAttempts
}

// CurrentState holds the sub-documents populated progressively by agents.
// Every field is optional; nil means "not yet provided".
type CurrentState struct {
	Description       string            `json:"description,omitempty"`
	ProductProfile    *ProductProfile   `json:"product_profile,omitempty"`
	ProductReadiness  int               `json:"product_readiness"`
	CandidateHeadings []string          `json:"candidate_headings,omitempty"`
	LegalResearch     *LegalResearch    `json:"legal_research,omitempty"`
	Precedents        *Precedents       `json:"precedents,omitempty"`
	GIRDecision       *RuleDecision     `json:"gir_decision,omitempty"`
	ValidationResult  *ValidationResult `json:"validation_result,omitempty"`
	RegulatoryStatus  *RegulatoryStatus `json:"regulatory_status,omitempty"`
}

// ProductName returns the profile name, falling back to the raw description.
func (c *CurrentState) ProductName() string {
	if c.ProductProfile != nil && c.ProductProfile.Name != "" {
		return c.ProductProfile.Name
	}
	return c.Description
}

// ProductDescription returns the richest free-text description available.
func (c *CurrentState) ProductDescription() string {
	if c.ProductProfile != nil && c.ProductProfile.Description != "" {
		return c.ProductProfile.Description
	}
	return c.Description
}

// DecidedCode returns the tariff code of the current rule decision, if any.
func (c *CurrentState) DecidedCode() string {
	if c.GIRDecision == nil {
		return ""
	}
	return c.GIRDecision.Code
}

// HistoryEntry records a sub-document superseded by a newer result.
type HistoryEntry struct {
	Round int             `json:"round"`
	Field string          `json:"field"`
	Value json.RawMessage `json:"value"`
}
