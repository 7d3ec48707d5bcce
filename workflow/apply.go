package workflow

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"
)

// Outcome is the partial update produced by executing a decision.
// Nil and empty fields leave the current state untouched.
type Outcome struct {
	ProductProfile    *ProductProfile   `json:"product_profile,omitempty"`
	ProductReadiness  *int              `json:"product_readiness,omitempty"`
	CandidateHeadings []string          `json:"candidate_headings,omitempty"`
	LegalResearch     *LegalResearch    `json:"legal_research,omitempty"`
	Precedents        *Precedents       `json:"precedents,omitempty"`
	GIRDecision       *RuleDecision     `json:"gir_decision,omitempty"`
	ValidationResult  *ValidationResult `json:"validation_result,omitempty"`
	RegulatoryStatus  *RegulatoryStatus `json:"regulatory_status,omitempty"`
}

// Apply returns the state that results from executing d with outcome o.
//
// The round counter always advances. Self-healing decisions consume one
// self-healing attempt. FINALIZE and ESCALATE set the terminal status.
// A new rule decision supersedes the validation result and regulatory status
// derived from the previous one, and the outcome of a self-healing decision
// supersedes a failed validation result. Superseded values move to History.
func (s ConversationState) Apply(d Decision, o Outcome) ConversationState {
	next := s
	next.History = slices.Clone(s.History)
	next.CurrentState.CandidateHeadings = slices.Clone(s.CurrentState.CandidateHeadings)
	next.CurrentRound++

	if d.SelfHealing() {
		next.SelfHealingAttempts++
	}

	switch d.Action {
	case ActionFinalize:
		next.Status = StatusCompleted
	case ActionEscalate:
		next.Status = StatusEscalated
	}

	cur := &next.CurrentState

	if o.ProductProfile != nil {
		supersede(&next, "product_profile", cur.ProductProfile)
		cur.ProductProfile = o.ProductProfile
	}
	if o.ProductReadiness != nil {
		cur.ProductReadiness = min(max(*o.ProductReadiness, 0), 100)
	}
	for _, h := range o.CandidateHeadings {
		h = strings.TrimSpace(h)
		if h != "" && !slices.Contains(cur.CandidateHeadings, h) {
			cur.CandidateHeadings = append(cur.CandidateHeadings, h)
		}
	}
	if o.LegalResearch != nil {
		merged := &LegalResearch{}
		merged.Merge(cur.LegalResearch)
		merged.Merge(o.LegalResearch)
		cur.LegalResearch = merged
	}
	if o.Precedents != nil {
		cur.Precedents = mergePrecedents(cur.Precedents, o.Precedents)
	}
	if o.GIRDecision != nil {
		supersede(&next, "gir_decision", cur.GIRDecision)
		supersede(&next, "validation_result", cur.ValidationResult)
		supersede(&next, "regulatory_status", cur.RegulatoryStatus)
		cur.GIRDecision = o.GIRDecision
		cur.ValidationResult = nil
		cur.RegulatoryStatus = nil
	}
	if o.ValidationResult != nil {
		supersede(&next, "validation_result", cur.ValidationResult)
		cur.ValidationResult = o.ValidationResult
	} else if d.SelfHealing() && cur.ValidationResult != nil && !cur.ValidationResult.Passed {
		supersede(&next, "validation_result", cur.ValidationResult)
		cur.ValidationResult = nil
	}
	if o.RegulatoryStatus != nil {
		supersede(&next, "regulatory_status", cur.RegulatoryStatus)
		cur.RegulatoryStatus = o.RegulatoryStatus
	}

	return next
}

func supersede[T any](s *ConversationState, field string, value *T) {
	if value == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	s.History = append(s.History, HistoryEntry{
		Round: s.CurrentRound,
		Field: field,
		Value: data,
	})
}

// mergePrecedents unions rulings by reference. The consensus is dropped
// because it no longer describes the merged set.
func mergePrecedents(cur, update *Precedents) *Precedents {
	merged := &Precedents{}
	if cur != nil {
		merged.Cases = slices.Clone(cur.Cases)
		merged.Opinions = slices.Clone(cur.Opinions)
	}
	merged.Cases = appendCases(merged.Cases, update.Cases)
	merged.Opinions = appendCases(merged.Opinions, update.Opinions)
	if cur == nil {
		merged.Consensus = update.Consensus
	}
	return merged
}

func appendCases(dst, src []PrecedentCase) []PrecedentCase {
	for _, c := range src {
		exists := slices.ContainsFunc(dst, func(e PrecedentCase) bool {
			return c.Reference != "" && e.Reference == c.Reference
		})
		if !exists {
			dst = append(dst, c)
		}
	}
	return dst
}

// UserInput carries answers supplied in response to REQUEST_USER_INPUT.
type UserInput struct {
	Name                string            `json:"name,omitempty"`
	PrimaryFunction     string            `json:"primary_function,omitempty"`
	MaterialComposition string            `json:"material_composition,omitempty"`
	EssentialCharacter  string            `json:"essential_character,omitempty"`
	IntendedUse         string            `json:"intended_use,omitempty"`
	IndustryDetails     map[string]string `json:"industry_details,omitempty"`
}

// Empty reports whether the input carries no answers.
func (u UserInput) Empty() bool {
	return u.Name == "" &&
		u.PrimaryFunction == "" &&
		u.MaterialComposition == "" &&
		u.EssentialCharacter == "" &&
		u.IntendedUse == "" &&
		len(u.IndustryDetails) == 0
}

// WithInput returns the state with the user's answers merged into the product profile.
// The round counter does not advance.
func (s ConversationState) WithInput(in UserInput) ConversationState {
	next := s
	profile := ProductProfile{}
	if s.CurrentState.ProductProfile != nil {
		profile = *s.CurrentState.ProductProfile
		profile.IndustryDetails = maps.Clone(profile.IndustryDetails)
	}

	if in.Name != "" {
		profile.Name = in.Name
	}
	if in.PrimaryFunction != "" {
		profile.PrimaryFunction = in.PrimaryFunction
	}
	if in.MaterialComposition != "" {
		profile.MaterialComposition = in.MaterialComposition
	}
	if in.EssentialCharacter != "" {
		profile.EssentialCharacter = in.EssentialCharacter
	}
	if in.IntendedUse != "" {
		profile.IntendedUse = in.IntendedUse
	}
	if len(in.IndustryDetails) > 0 {
		if profile.IndustryDetails == nil {
			profile.IndustryDetails = make(map[string]string, len(in.IndustryDetails))
		}
		maps.Copy(profile.IndustryDetails, in.IndustryDetails)
	}

	next.CurrentState.ProductProfile = &profile
	return next
}
