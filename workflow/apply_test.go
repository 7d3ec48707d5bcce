package workflow_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/tariff/workflow"
)

func classify() workflow.Decision {
	return workflow.Decision{
		Action: workflow.ActionClassify,
		Agent:  workflow.AgentClassifier,
		Stage:  workflow.StageClassification,
		Reason: "classify",
	}
}

func TestApplyAdvancesRound(t *testing.T) {
	s := workflow.NewConversation("widget", 10)
	next := s.Apply(classify(), workflow.Outcome{})

	assert.Equal(t, 1, next.CurrentRound)
	assert.Equal(t, 0, s.CurrentRound)
	assert.Zero(t, next.SelfHealingAttempts)
}

func TestApplyCountsSelfHealing(t *testing.T) {
	s := workflow.NewConversation("widget", 10)
	d := classify()
	d.Stage = workflow.StageSelfHealing

	next := s.Apply(d, workflow.Outcome{})
	assert.Equal(t, 1, next.SelfHealingAttempts)
}

func TestApplyTerminalActions(t *testing.T) {
	s := workflow.NewConversation("widget", 10)

	done := s.Apply(workflow.Decision{Action: workflow.ActionFinalize}, workflow.Outcome{})
	assert.Equal(t, workflow.StatusCompleted, done.Status)

	escalated := s.Apply(workflow.Decision{Action: workflow.ActionEscalate}, workflow.Outcome{})
	assert.Equal(t, workflow.StatusEscalated, escalated.Status)
}

func TestApplyNewDecisionSupersedesDerivedResults(t *testing.T) {
	s := workflow.NewConversation("widget", 10)
	s.CurrentState.GIRDecision = &workflow.RuleDecision{Rule: workflow.GIR1, Code: "8471.30"}
	s.CurrentState.ValidationResult = &workflow.ValidationResult{Passed: true}
	s.CurrentState.RegulatoryStatus = &workflow.RegulatoryStatus{Code: "8471.30"}

	next := s.Apply(classify(), workflow.Outcome{
		GIRDecision: &workflow.RuleDecision{Rule: workflow.GIR3B, Code: "8473.30"},
	})

	assert.Equal(t, "8473.30", next.CurrentState.DecidedCode())
	assert.Nil(t, next.CurrentState.ValidationResult)
	assert.Nil(t, next.CurrentState.RegulatoryStatus)

	require.Len(t, next.History, 3)
	assert.Equal(t, "gir_decision", next.History[0].Field)
	assert.Equal(t, "validation_result", next.History[1].Field)
	assert.Equal(t, "regulatory_status", next.History[2].Field)

	var old workflow.RuleDecision
	require.NoError(t, json.Unmarshal(next.History[0].Value, &old))
	assert.Equal(t, "8471.30", old.Code)

	assert.NotNil(t, s.CurrentState.ValidationResult)
	assert.Empty(t, s.History)
}

func TestApplySelfHealingSupersedesFailedValidation(t *testing.T) {
	s := workflow.NewConversation("widget", 10)
	s.CurrentState.ValidationResult = &workflow.ValidationResult{
		Passed: false,
		Issues: workflow.Issues{workflow.PrecedentConflict{ConflictingCase: "BTI-1"}},
	}
	d := workflow.Decision{
		Action: workflow.ActionResolveConflict,
		Agent:  workflow.AgentLegalResearcher,
		Stage:  workflow.StageSelfHealing,
	}

	next := s.Apply(d, workflow.Outcome{
		LegalResearch: &workflow.LegalResearch{LegalNotes: []workflow.LegalNote{{Type: "Chapter Note", Text: "n"}}},
	})

	assert.Nil(t, next.CurrentState.ValidationResult)
	require.Len(t, next.History, 1)
	assert.Equal(t, "validation_result", next.History[0].Field)
}

func TestApplyMerges(t *testing.T) {
	s := workflow.NewConversation("widget", 10)
	s.CurrentState.CandidateHeadings = []string{"8471"}
	s.CurrentState.LegalResearch = &workflow.LegalResearch{
		VerifiedSources: []workflow.Source{{URL: "https://www.wcoomd.org"}},
	}
	s.CurrentState.Precedents = &workflow.Precedents{
		Cases:     []workflow.PrecedentCase{{Reference: "A", ClassificationCode: "8471.30"}},
		Consensus: &workflow.Consensus{HasConsensus: true},
	}

	next := s.Apply(classify(), workflow.Outcome{
		CandidateHeadings: []string{"8471", " 8473 ", ""},
		LegalResearch: &workflow.LegalResearch{
			VerifiedSources: []workflow.Source{{URL: "https://www.wcoomd.org"}, {URL: "https://ebti.example"}},
		},
		Precedents: &workflow.Precedents{
			Cases: []workflow.PrecedentCase{
				{Reference: "A", ClassificationCode: "8471.30"},
				{Reference: "B", ClassificationCode: "8473.30"},
			},
		},
	})

	assert.Equal(t, []string{"8471", "8473"}, next.CurrentState.CandidateHeadings)
	assert.Equal(t, []string{"8471"}, s.CurrentState.CandidateHeadings)
	assert.Len(t, next.CurrentState.LegalResearch.VerifiedSources, 2)
	assert.Len(t, next.CurrentState.Precedents.Cases, 2)
	assert.Nil(t, next.CurrentState.Precedents.Consensus)
	assert.NotNil(t, s.CurrentState.Precedents.Consensus)
}

func TestApplyClampsReadiness(t *testing.T) {
	s := workflow.NewConversation("widget", 10)
	over := 140
	next := s.Apply(classify(), workflow.Outcome{ProductReadiness: &over})
	assert.Equal(t, 100, next.CurrentState.ProductReadiness)
}

func TestWithInput(t *testing.T) {
	s := workflow.NewConversation("widget", 10)
	s.CurrentRound = 2
	s.CurrentState.ProductProfile = &workflow.ProductProfile{
		Name:            "Widget",
		IndustryDetails: map[string]string{"size": "M"},
	}

	in := workflow.UserInput{
		PrimaryFunction: "fastening",
		IndustryDetails: map[string]string{"finish": "zinc"},
	}
	assert.False(t, in.Empty())
	assert.True(t, workflow.UserInput{}.Empty())

	next := s.WithInput(in)
	assert.Equal(t, 2, next.CurrentRound)
	assert.Equal(t, "Widget", next.CurrentState.ProductProfile.Name)
	assert.Equal(t, "fastening", next.CurrentState.ProductProfile.PrimaryFunction)
	assert.Equal(t, map[string]string{"size": "M", "finish": "zinc"}, next.CurrentState.ProductProfile.IndustryDetails)

	assert.Empty(t, s.CurrentState.ProductProfile.PrimaryFunction)
	assert.Len(t, s.CurrentState.ProductProfile.IndustryDetails, 1)
}

func TestWithInputCreatesProfile(t *testing.T) {
	s := workflow.NewConversation("widget", 10)
	next := s.WithInput(workflow.UserInput{Name: "Widget"})

	require.NotNil(t, next.CurrentState.ProductProfile)
	assert.Equal(t, "Widget", next.CurrentState.ProductProfile.Name)
	assert.Nil(t, s.CurrentState.ProductProfile)
}
