package engine

import (
	"fmt"

	"github.com/JaimeStill/tariff/workflow"
)

// Termination is the verdict of ShouldTerminate.
type Termination struct {
	Terminate bool            `json:"terminate"`
	Status    workflow.Status `json:"status"`
	Reason    string          `json:"reason"`
}

// ShouldTerminate reports whether the conversation should stop and with which status.
func (e *Engine) ShouldTerminate(s *workflow.ConversationState) Termination {
	if s.Status.IsTerminal() {
		return Termination{
			Terminate: true,
			Status:    s.Status,
			Reason:    fmt.Sprintf("Conversation already %s", s.Status),
		}
	}

	if s.RoundsExhausted() {
		return Termination{
			Terminate: true,
			Status:    workflow.StatusEscalated,
			Reason:    fmt.Sprintf("Maximum rounds reached (%d of %d)", s.CurrentRound, s.RoundLimit()),
		}
	}

	if Complete(s) {
		if overall := e.calc.Score(s).Overall; overall >= CaveatThreshold {
			return Termination{
				Terminate: true,
				Status:    workflow.StatusCompleted,
				Reason:    fmt.Sprintf("Classification complete with confidence %d", overall),
			}
		}
	}

	return Termination{
		Status: workflow.StatusActive,
		Reason: "Classification in progress",
	}
}
