// Package workflow defines the shared data model of the tariff classification
// workflow: the conversation state aggregate, the sub-documents produced by
// collaborating agents, validation issues, and the decision record emitted
// by the decision engine.
package workflow

import "errors"

// Sentinel errors for workflow data handling.
var (
	ErrInvalidAction = errors.New("unknown workflow action")
	ErrInvalidAgent  = errors.New("unknown workflow agent")
	ErrInvalidStage  = errors.New("unknown workflow stage")
	ErrInvalidStatus = errors.New("status must be active, completed, failed, or escalated")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidIssue  = errors.New("invalid validation issue")
)
