package workflow

import (
	"encoding/json"
	"strings"
)

// Rule identifies a General Interpretative Rule of the harmonized nomenclature.
type Rule string

// Classification rules in hierarchy order.
const (
	GIR1  Rule = "GIR1"
	GIR2  Rule = "GIR2"
	GIR2A Rule = "GIR2A"
	GIR2B Rule = "GIR2B"
	GIR3  Rule = "GIR3"
	GIR3A Rule = "GIR3A"
	GIR3B Rule = "GIR3B"
	GIR3C Rule = "GIR3C"
	GIR4  Rule = "GIR4"
	GIR5  Rule = "GIR5"
	GIR6  Rule = "GIR6"
)

// NormalizeRule canonicalizes collaborator spellings of a rule id:
// "GIR 3(b)", "gir3b", "Rule 3 b" and "3b" all become GIR3B.
// Unrecognized input is returned upper-cased with the GIR prefix.
func NormalizeRule(raw string) Rule {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	for _, prefix := range []string{"GIR", "RULE"} {
		s = strings.TrimPrefix(s, prefix)
	}

	var sb strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z') {
			sb.WriteRune(r)
		}
	}
	return Rule("GIR" + sb.String())
}

// RuleDecision is the classification agent's applied rule and resulting code.
type RuleDecision struct {
	Rule       Rule     `json:"rule"`
	Code       string   `json:"code"`
	Confidence *float64 `json:"confidence,omitempty"`
	AuditTrail []string `json:"audit_trail,omitempty"`
	Rationale  string   `json:"rationale,omitempty"`
}

// UnmarshalJSON folds the aliased rule fields reported by collaborators
// (rule, applied_gir, gir_applied) into Rule and normalizes it.
func (d *RuleDecision) UnmarshalJSON(data []byte) error {
	type plain RuleDecision
	var aux struct {
		plain
		AppliedGIR string `json:"applied_gir"`
		GIRApplied string `json:"gir_applied"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*d = RuleDecision(aux.plain)
	raw := string(d.Rule)
	if raw == "" {
		raw = aux.AppliedGIR
	}
	if raw == "" {
		raw = aux.GIRApplied
	}
	d.Rule = NormalizeRule(raw)
	return nil
}

// ConfidencePercent returns the self-reported confidence on a 0-100 scale.
// Fractions in [0,1] are scaled. The second result is false when unreported.
func (d *RuleDecision) ConfidencePercent() (float64, bool) {
	if d.Confidence == nil {
		return 0, false
	}
	c := *d.Confidence
	if c <= 1 {
		c *= 100
	}
	return c, true
}
