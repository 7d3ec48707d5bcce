package engine

import (
	"fmt"

	"github.com/JaimeStill/tariff/workflow"
)

// boost picks the cheapest action likely to raise confidence. First match wins.
func (e *Engine) boost(s *workflow.ConversationState, stage workflow.Stage, cause string) workflow.Decision {
	cur := &s.CurrentState
	d := workflow.Decision{Stage: stage}

	switch {
	case cur.GIRDecision != nil && e.tables.IsLastResort(cur.GIRDecision.Rule):
		d.Action = workflow.ActionRequestUserInput
		d.Reason = fmt.Sprintf("%s; %s is a last-resort rule and needs the importer's intent", cause, cur.GIRDecision.Rule)
		d.Questions = e.tables.IntentQuestions()
		d.SpecificRequest = workflow.Request{
			workflow.KeyGIRDecision: cur.GIRDecision,
		}

	case cur.Precedents == nil || cur.Precedents.Total() < 2:
		d.Action = workflow.ActionSearchPrecedents
		d.Agent = workflow.AgentPrecedentResearcher
		d.Reason = fmt.Sprintf("%s; fewer than 2 precedent cases found", cause)
		d.SpecificRequest = workflow.Request{
			workflow.KeyProductName:       cur.ProductName(),
			workflow.KeyCandidateHeadings: cur.CandidateHeadings,
			workflow.KeyDeepSearch:        true,
		}

	case cur.Precedents.HasConflicts():
		d.Action = workflow.ActionResolveConflict
		d.Agent = workflow.AgentLegalResearcher
		d.Reason = fmt.Sprintf("%s; precedent rulings conflict", cause)
		d.SpecificRequest = workflow.Request{
			workflow.KeyConflicts:       cur.Precedents.Consensus.ConflictingCases,
			workflow.KeyCurrentDecision: cur.GIRDecision,
		}

	case cur.LegalResearch == nil || len(cur.LegalResearch.LegalNotes) == 0:
		d.Action = workflow.ActionFetchLegalSources
		d.Agent = workflow.AgentLegalResearcher
		d.Reason = fmt.Sprintf("%s; no section or chapter notes", cause)
		d.SpecificRequest = workflow.Request{
			workflow.KeyFocus:             FocusSectionChapterNotes,
			workflow.KeyCandidateHeadings: cur.CandidateHeadings,
		}

	default:
		d.Action = workflow.ActionRefineProduct
		d.Agent = workflow.AgentProductAnalyst
		d.Reason = fmt.Sprintf("%s; deepen the essential character analysis", cause)
		d.SpecificRequest = workflow.Request{
			workflow.KeyFocus:          FocusEssentialCharacter,
			workflow.KeyDepth:          DepthDeep,
			workflow.KeyProductProfile: cur.ProductProfile,
		}
	}

	return d
}
