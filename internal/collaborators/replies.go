package collaborators

import (
	"fmt"
	"strings"

	"github.com/JaimeStill/tariff/pkg/formatting"
	"github.com/JaimeStill/tariff/workflow"
)

type productReply struct {
	ProductProfile *workflow.ProductProfile `json:"product_profile"`
	Readiness      *int                     `json:"readiness"`
}

type classifierReply struct {
	CandidateHeadings []string               `json:"candidate_headings"`
	GIRDecision       *workflow.RuleDecision `json:"gir_decision"`
}

// ParseReply converts the raw content of a collaborator reply into the
// outcome of the decided action.
func ParseReply(d workflow.Decision, s *workflow.ConversationState, content string) (workflow.Outcome, error) {
	switch d.Action {
	case workflow.ActionAnalyzeProduct, workflow.ActionRefineProduct:
		r, err := formatting.Parse[productReply](content)
		if err != nil {
			return workflow.Outcome{}, err
		}
		if r.ProductProfile == nil {
			return workflow.Outcome{}, fmt.Errorf("%w: product_profile", ErrIncompleteReply)
		}
		return workflow.Outcome{ProductProfile: r.ProductProfile, ProductReadiness: r.Readiness}, nil

	case workflow.ActionIdentifyCandidates:
		r, err := formatting.Parse[classifierReply](content)
		if err != nil {
			return workflow.Outcome{}, err
		}
		headings := normalizeHeadings(r.CandidateHeadings)
		if len(headings) == 0 {
			return workflow.Outcome{}, fmt.Errorf("%w: candidate_headings", ErrIncompleteReply)
		}
		return workflow.Outcome{CandidateHeadings: headings}, nil

	case workflow.ActionClassify:
		r, err := formatting.Parse[classifierReply](content)
		if err != nil {
			return workflow.Outcome{}, err
		}
		if r.GIRDecision == nil || r.GIRDecision.Code == "" {
			return workflow.Outcome{}, fmt.Errorf("%w: gir_decision", ErrIncompleteReply)
		}
		return workflow.Outcome{
			GIRDecision:       r.GIRDecision,
			CandidateHeadings: normalizeHeadings(r.CandidateHeadings),
		}, nil

	case workflow.ActionFetchLegalSources, workflow.ActionResolveConflict:
		r, err := formatting.Parse[workflow.LegalResearch](content)
		if err != nil {
			return workflow.Outcome{}, err
		}
		return workflow.Outcome{LegalResearch: &r}, nil

	case workflow.ActionSearchPrecedents:
		r, err := formatting.Parse[workflow.Precedents](content)
		if err != nil {
			return workflow.Outcome{}, err
		}
		r.Consensus = nil
		return workflow.Outcome{Precedents: &r}, nil

	case workflow.ActionValidate:
		r, err := formatting.Parse[workflow.ValidationResult](content)
		if err != nil {
			return workflow.Outcome{}, err
		}
		if r.Issues == nil {
			r.Issues = workflow.Issues{}
		}
		return workflow.Outcome{ValidationResult: &r}, nil

	case workflow.ActionCheckRegulatory:
		r, err := formatting.Parse[workflow.RegulatoryStatus](content)
		if err != nil {
			return workflow.Outcome{}, err
		}
		if r.Code == "" && s != nil {
			r.Code = s.CurrentState.DecidedCode()
		}
		return workflow.Outcome{RegulatoryStatus: &r}, nil

	default:
		return workflow.Outcome{}, fmt.Errorf("%w: %s", ErrNotExecutable, d.Action)
	}
}

// normalizeHeadings reduces candidate codes to distinct 4-digit headings.
// Entries with fewer than four digits are dropped.
func normalizeHeadings(raw []string) []string {
	var out []string
	seen := make(map[string]bool, len(raw))
	for _, code := range raw {
		h := workflow.Heading(strings.TrimSpace(code))
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	return out
}
