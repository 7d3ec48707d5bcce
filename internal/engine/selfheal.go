package engine

import (
	"fmt"

	"github.com/JaimeStill/tariff/workflow"
)

// selfHeal dispatches on the first validation issue. The decision carries
// StageSelfHealing so the runner counts it against the attempt budget.
func (e *Engine) selfHeal(s *workflow.ConversationState) workflow.Decision {
	cur := &s.CurrentState
	issues := cur.ValidationResult.Issues.Present()

	if len(issues) == 0 {
		return workflow.Decision{
			Action: workflow.ActionEscalate,
			Stage:  workflow.StageValidation,
			Reason: "Validation failed without identified issues",
		}
	}

	d := workflow.Decision{Stage: workflow.StageSelfHealing}

	switch issue := issues[0].(type) {
	case workflow.HierarchyViolation:
		restart := issue.MissingState
		if restart == "" {
			restart = workflow.GIR1
		}
		d.Action = workflow.ActionClassify
		d.Agent = workflow.AgentClassifier
		d.Reason = fmt.Sprintf("Rule hierarchy violated; restart classification from %s", restart)
		d.SpecificRequest = workflow.Request{
			workflow.KeyRestartFrom:     restart,
			workflow.KeyCurrentDecision: cur.GIRDecision,
			workflow.KeyFeedback:        issue.Description(),
		}

	case workflow.EssentialCharacterIncomplete:
		d.Action = workflow.ActionRefineProduct
		d.Agent = workflow.AgentProductAnalyst
		d.Reason = "Essential character analysis lacks a material breakdown"
		d.SpecificRequest = workflow.Request{
			workflow.KeyFocus:          FocusMaterialBreakdown,
			workflow.KeyProductProfile: cur.ProductProfile,
			workflow.KeyMissingFields:  issue.Missing,
		}

	case workflow.ENContradiction:
		heading := issue.ConflictingHeading
		if heading == "" {
			heading = workflow.Heading(cur.DecidedCode())
		}
		d.Action = workflow.ActionClassify
		d.Agent = workflow.AgentClassifier
		d.Reason = fmt.Sprintf("Explanatory note contradicts heading %s; reclassify", heading)
		d.SpecificRequest = workflow.Request{
			workflow.KeyExcludeHeading:  heading,
			workflow.KeyRespectNote:     issue.NoteText,
			workflow.KeyCurrentDecision: cur.GIRDecision,
		}

	case workflow.PrecedentConflict:
		d.Action = workflow.ActionResolveConflict
		d.Agent = workflow.AgentLegalResearcher
		d.Reason = fmt.Sprintf("Precedent %s conflicts with the current decision", issue.ConflictingCase)
		d.SpecificRequest = workflow.Request{
			workflow.KeyConflictingCase: issue.ConflictingCase,
			workflow.KeyCurrentDecision: cur.GIRDecision,
		}

	case workflow.ConfidenceBelowThreshold:
		return e.boost(s, workflow.StageSelfHealing,
			fmt.Sprintf("Validator reported confidence %.0f below threshold", issue.Score))

	default:
		d.Action = workflow.ActionClassify
		d.Agent = workflow.AgentClassifier
		d.Reason = fmt.Sprintf("Validation issue %q; reclassify with feedback", issue.Type())
		d.SpecificRequest = workflow.Request{
			workflow.KeyFeedback:        issue.Description(),
			workflow.KeyIssueType:       string(issue.Type()),
			workflow.KeyCurrentDecision: cur.GIRDecision,
		}
	}

	return d
}
