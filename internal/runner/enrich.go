package runner

import (
	"fmt"
	"slices"

	"github.com/JaimeStill/tariff/internal/precedents"
	"github.com/JaimeStill/tariff/workflow"
)

// enrich recomputes the fields the runner derives locally instead of
// trusting collaborators: precedent consensus and the local validation checks.
func (r *Runner) enrich(s *workflow.ConversationState, d workflow.Decision) {
	switch d.Action {
	case workflow.ActionSearchPrecedents, workflow.ActionClassify:
		refreshConsensus(s)
	case workflow.ActionValidate:
		refreshConsensus(s)
		r.checkValidation(s)
	}
}

// ConsensusTarget is the code consensus is measured against: the decided
// code, otherwise the first candidate heading.
func ConsensusTarget(cur *workflow.CurrentState) string {
	if code := cur.DecidedCode(); code != "" {
		return code
	}
	if len(cur.CandidateHeadings) > 0 {
		return cur.CandidateHeadings[0]
	}
	return ""
}

func refreshConsensus(s *workflow.ConversationState) {
	cur := &s.CurrentState
	if cur.Precedents == nil || cur.Precedents.Total() == 0 {
		return
	}

	p := *cur.Precedents
	c := precedents.AnalyzeConsensus(p.All(), ConsensusTarget(cur))
	p.Consensus = &c
	cur.Precedents = &p
}

func (r *Runner) checkValidation(s *workflow.ConversationState) {
	cur := &s.CurrentState
	if cur.ValidationResult == nil {
		return
	}

	v := *cur.ValidationResult
	v.Issues = slices.Clone(v.Issues)
	added := append(r.legalConflicts(cur, v.Issues), precedentConflict(cur, v.Issues)...)
	if len(added) == 0 {
		return
	}

	v.Issues = append(v.Issues, added...)
	v.Passed = false
	cur.ValidationResult = &v
}

func (r *Runner) legalConflicts(cur *workflow.CurrentState, existing workflow.Issues) workflow.Issues {
	code := cur.DecidedCode()
	if code == "" || cur.LegalResearch == nil {
		return nil
	}

	description := cur.ProductDescription()
	var found workflow.Issues
	for _, doc := range cur.LegalResearch.DocumentsFor(code) {
		match := r.matcher.Match(description, r.matcher.Parse(doc.Text))
		for _, issue := range match.Issues(workflow.Heading(code)) {
			ec := issue.(workflow.ENContradiction)
			if !hasContradiction(existing, ec.NoteText) && !hasContradiction(found, ec.NoteText) {
				found = append(found, issue)
			}
		}
	}
	return found
}

func hasContradiction(issues workflow.Issues, note string) bool {
	return slices.ContainsFunc(issues, func(i workflow.Issue) bool {
		ec, ok := i.(workflow.ENContradiction)
		return ok && ec.NoteText == note
	})
}

// precedentConflict reports a consensus that settles on another heading than
// the decided code. The named case is the first ruling of that consensus.
func precedentConflict(cur *workflow.CurrentState, existing workflow.Issues) workflow.Issues {
	if cur.Precedents == nil || cur.Precedents.Consensus == nil || cur.DecidedCode() == "" {
		return nil
	}
	c := cur.Precedents.Consensus
	if !c.HasConsensus || c.TargetMatch || len(c.SupportingCases) == 0 {
		return nil
	}
	if slices.ContainsFunc(existing, func(i workflow.Issue) bool {
		return i != nil && i.Type() == workflow.IssuePrecedentConflict
	}) {
		return nil
	}

	ruling := c.SupportingCases[0]
	return workflow.Issues{workflow.PrecedentConflict{
		IssueBase: workflow.IssueBase{
			Level: workflow.SeverityMajor,
			Details: fmt.Sprintf(
				"precedent consensus classifies under %s (%.0f%% agreement), not %s",
				c.ConsensusCode, c.AgreementRate*100, cur.DecidedCode(),
			),
		},
		ConflictingCase: ruling.Reference,
		ConflictingCode: c.ConsensusCode,
	}}
}
