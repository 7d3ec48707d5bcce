package engine

import (
	"fmt"
	"strings"

	"github.com/JaimeStill/tariff/workflow"
)

func (e *Engine) productStage(s *workflow.ConversationState) (workflow.Decision, bool) {
	cur := &s.CurrentState
	p := cur.ProductProfile

	if p == nil {
		return workflow.Decision{
			Action: workflow.ActionAnalyzeProduct,
			Agent:  workflow.AgentProductAnalyst,
			Stage:  workflow.StageProductUnderstanding,
			Reason: "No product profile yet; analyze the product description",
			SpecificRequest: workflow.Request{
				workflow.KeyProductName: cur.ProductName(),
			},
		}, true
	}

	if cur.ProductReadiness < ReadinessThreshold {
		if missing := p.MissingCritical(); len(missing) > 0 {
			questions := make([]string, 0, len(missing))
			for _, field := range missing {
				questions = append(questions, e.tables.Question(field))
			}
			return workflow.Decision{
				Action: workflow.ActionRequestUserInput,
				Stage:  workflow.StageProductUnderstanding,
				Reason: fmt.Sprintf("Product readiness %d; missing critical fields: %s",
					cur.ProductReadiness, strings.Join(missing, ", ")),
				SpecificRequest: workflow.Request{
					workflow.KeyMissingFields: missing,
				},
				Questions: questions,
			}, true
		}

		optional := p.MissingOptional()
		focus := FocusGeneral
		if len(optional) > 0 {
			focus = optional[0]
		}
		return workflow.Decision{
			Action: workflow.ActionRefineProduct,
			Agent:  workflow.AgentProductAnalyst,
			Stage:  workflow.StageProductUnderstanding,
			Reason: fmt.Sprintf("Product readiness %d is below %d; refine %s",
				cur.ProductReadiness, ReadinessThreshold, focus),
			SpecificRequest: workflow.Request{
				workflow.KeyFocus:          focus,
				workflow.KeyProductProfile: p,
				workflow.KeyMissingFields:  optional,
			},
		}, true
	}

	if d := cur.GIRDecision; d != nil && e.tables.IsEssentialCharacter(d.Rule) && !p.HasMaterialBreakdown() {
		return workflow.Decision{
			Action: workflow.ActionRefineProduct,
			Agent:  workflow.AgentProductAnalyst,
			Stage:  workflow.StageProductUnderstanding,
			Reason: fmt.Sprintf("%s applied without a material breakdown", d.Rule),
			SpecificRequest: workflow.Request{
				workflow.KeyFocus:          FocusMaterialBreakdown,
				workflow.KeyProductProfile: p,
			},
		}, true
	}

	return workflow.Decision{}, false
}

func researchStage(s *workflow.ConversationState) (workflow.Decision, bool) {
	cur := &s.CurrentState

	if len(cur.CandidateHeadings) == 0 {
		return workflow.Decision{
			Action: workflow.ActionIdentifyCandidates,
			Agent:  workflow.AgentClassifier,
			Stage:  workflow.StageLegalResearch,
			Reason: "No candidate headings identified",
			SpecificRequest: workflow.Request{
				workflow.KeyProductProfile: cur.ProductProfile,
			},
		}, true
	}

	if cur.LegalResearch == nil {
		return workflow.Decision{
			Action: workflow.ActionFetchLegalSources,
			Agent:  workflow.AgentLegalResearcher,
			Stage:  workflow.StageLegalResearch,
			Reason: fmt.Sprintf("No legal research for headings %s", strings.Join(cur.CandidateHeadings, ", ")),
			SpecificRequest: workflow.Request{
				workflow.KeyCandidateHeadings: cur.CandidateHeadings,
			},
		}, true
	}

	return workflow.Decision{}, false
}

func precedentStage(s *workflow.ConversationState) (workflow.Decision, bool) {
	cur := &s.CurrentState
	if cur.Precedents != nil {
		return workflow.Decision{}, false
	}
	return workflow.Decision{
		Action: workflow.ActionSearchPrecedents,
		Agent:  workflow.AgentPrecedentResearcher,
		Stage:  workflow.StagePrecedentSearch,
		Reason: "Precedent rulings have not been searched",
		SpecificRequest: workflow.Request{
			workflow.KeyProductName:       cur.ProductName(),
			workflow.KeyCandidateHeadings: cur.CandidateHeadings,
		},
	}, true
}

func classificationStage(s *workflow.ConversationState) (workflow.Decision, bool) {
	cur := &s.CurrentState
	if cur.GIRDecision != nil {
		return workflow.Decision{}, false
	}
	return workflow.Decision{
		Action: workflow.ActionClassify,
		Agent:  workflow.AgentClassifier,
		Stage:  workflow.StageClassification,
		Reason: "No classification decision yet",
		SpecificRequest: workflow.Request{
			workflow.KeyProductProfile: cur.ProductProfile,
			workflow.KeyLegalResearch:  cur.LegalResearch,
			workflow.KeyPrecedents:     cur.Precedents,
		},
	}, true
}

func (e *Engine) validationStage(s *workflow.ConversationState) (workflow.Decision, bool) {
	cur := &s.CurrentState

	if cur.ValidationResult == nil {
		return workflow.Decision{
			Action: workflow.ActionValidate,
			Agent:  workflow.AgentQualityValidator,
			Stage:  workflow.StageValidation,
			Reason: fmt.Sprintf("Classification %s has not been validated", cur.DecidedCode()),
			SpecificRequest: workflow.Request{
				workflow.KeyGIRDecision:    cur.GIRDecision,
				workflow.KeyProductProfile: cur.ProductProfile,
				workflow.KeyLegalResearch:  cur.LegalResearch,
				workflow.KeyPrecedents:     cur.Precedents,
			},
		}, true
	}

	if !cur.ValidationResult.Passed {
		return e.selfHeal(s), true
	}

	return workflow.Decision{}, false
}

func regulatoryStage(s *workflow.ConversationState) (workflow.Decision, bool) {
	cur := &s.CurrentState
	if cur.RegulatoryStatus != nil {
		return workflow.Decision{}, false
	}
	return workflow.Decision{
		Action: workflow.ActionCheckRegulatory,
		Agent:  workflow.AgentRegulatoryChecker,
		Stage:  workflow.StageRegulatory,
		Reason: fmt.Sprintf("Regulatory status of %s not checked", cur.DecidedCode()),
		SpecificRequest: workflow.Request{
			workflow.KeyCode: cur.DecidedCode(),
		},
	}, true
}
