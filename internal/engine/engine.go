// Package engine decides the next action of a classification conversation.
//
// Decide walks the pipeline stages in fixed precedence order and returns the
// action for the earliest stage whose data is missing or failed. It never
// mutates the state it is given; the runner applies outcomes between calls.
package engine

import (
	"fmt"

	"github.com/JaimeStill/tariff/internal/confidence"
	"github.com/JaimeStill/tariff/internal/lookup"
	"github.com/JaimeStill/tariff/workflow"
)

// Stage thresholds on the 0-100 scale.
const (
	ReadinessThreshold = 80
	BoostThreshold     = 70
	FinalizeThreshold  = 80
	CaveatThreshold    = 60
)

// Request focus values.
const (
	FocusGeneral             = "general"
	FocusMaterialBreakdown   = "material_breakdown"
	FocusSectionChapterNotes = "section_chapter_notes"
	FocusEssentialCharacter  = "essential_character"
	DepthDeep                = "deep"
)

// Engine holds the immutable tables and calculator the decision policy reads.
type Engine struct {
	tables *lookup.Tables
	calc   *confidence.Calculator
}

// New creates an Engine.
func New(tables *lookup.Tables, calc *confidence.Calculator) *Engine {
	return &Engine{tables: tables, calc: calc}
}

// Decide returns the single next action for the state.
func (e *Engine) Decide(s *workflow.ConversationState) workflow.Decision {
	if d, ok := guard(s); ok {
		return d
	}

	stages := []func(*workflow.ConversationState) (workflow.Decision, bool){
		e.productStage,
		researchStage,
		precedentStage,
		classificationStage,
		e.validationStage,
		regulatoryStage,
	}
	for _, stage := range stages {
		if d, ok := stage(s); ok {
			return d
		}
	}

	return e.finalization(s)
}

// Complete reports whether every pipeline output is present and validation
// passed. Decide and ShouldTerminate share this predicate.
func Complete(s *workflow.ConversationState) bool {
	cur := &s.CurrentState
	return cur.ProductProfile != nil &&
		cur.LegalResearch != nil &&
		cur.Precedents != nil &&
		cur.GIRDecision != nil &&
		cur.ValidationResult != nil && cur.ValidationResult.Passed &&
		cur.RegulatoryStatus != nil
}

func guard(s *workflow.ConversationState) (workflow.Decision, bool) {
	if s.RoundsExhausted() {
		return workflow.Decision{
			Action: workflow.ActionEscalate,
			Stage:  workflow.StageTermination,
			Reason: fmt.Sprintf("Maximum rounds reached (%d of %d)", s.CurrentRound, s.RoundLimit()),
		}, true
	}
	if s.SelfHealingExhausted() {
		return workflow.Decision{
			Action: workflow.ActionEscalate,
			Stage:  workflow.StageTermination,
			Reason: fmt.Sprintf("Self-healing attempts exhausted (%d of %d)", s.SelfHealingAttempts, workflow.MaxSelfHealingAttempts),
		}, true
	}
	return workflow.Decision{}, false
}

func (e *Engine) finalization(s *workflow.ConversationState) workflow.Decision {
	overall := e.calc.Score(s).Overall

	if overall < BoostThreshold {
		return e.boost(s, workflow.StageConfidenceBoost,
			fmt.Sprintf("Confidence %d is below %d", overall, BoostThreshold))
	}

	if Complete(s) {
		d := workflow.Decision{
			Action: workflow.ActionFinalize,
			Stage:  workflow.StageFinalization,
			Reason: fmt.Sprintf("Classification %s complete with confidence %d", s.CurrentState.DecidedCode(), overall),
			SpecificRequest: workflow.Request{
				workflow.KeyCode:        s.CurrentState.DecidedCode(),
				workflow.KeyGIRDecision: s.CurrentState.GIRDecision,
			},
		}
		if overall < FinalizeThreshold {
			d.ConfidenceNote = fmt.Sprintf(
				"Confidence %d is below the %d finalization threshold; review the classification before relying on it",
				overall, FinalizeThreshold,
			)
		}
		if overall >= CaveatThreshold {
			return d
		}
	}

	return workflow.Decision{
		Action: workflow.ActionEscalate,
		Stage:  workflow.StageFinalization,
		Reason: fmt.Sprintf("Low confidence (%d) after the full pipeline", overall),
	}
}
