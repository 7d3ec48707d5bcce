package legaltext

import (
	"slices"

	"github.com/JaimeStill/tariff/workflow"
)

// Finding is a legal sentence that shares significant terms with the product.
type Finding struct {
	Sentence    string   `json:"sentence"`
	SharedTerms []string `json:"shared_terms"`
}

// MatchResult is the outcome of cross-checking a product against parsed legal text.
type MatchResult struct {
	Conflicts     []Finding `json:"conflicts"`
	Confirmations []Finding `json:"confirmations"`
	Adjustment    int       `json:"adjustment"`
}

// HasConflicts reports whether any exclusion matched the product.
func (r MatchResult) HasConflicts() bool {
	return len(r.Conflicts) > 0
}

// Match flags exclusion sentences sharing at least two significant terms with
// the description as conflicts, and inclusion sentences sharing at least two
// as confirmations. Adjustment is the net confidence change.
func (m *Matcher) Match(description string, parsed ParsedText) MatchResult {
	result := MatchResult{
		Conflicts:     []Finding{},
		Confirmations: []Finding{},
	}

	terms := SignificantTerms(description)
	if len(terms) < minSharedTerm {
		return result
	}

	for _, sentence := range parsed.Excludes {
		if shared := sharedTerms(terms, sentence); len(shared) >= minSharedTerm {
			result.Conflicts = append(result.Conflicts, Finding{Sentence: sentence, SharedTerms: shared})
		}
	}
	for _, sentence := range parsed.Includes {
		if shared := sharedTerms(terms, sentence); len(shared) >= minSharedTerm {
			result.Confirmations = append(result.Confirmations, Finding{Sentence: sentence, SharedTerms: shared})
		}
	}

	result.Adjustment = len(result.Confirmations)*ConfirmationBonus - len(result.Conflicts)*ConflictPenalty
	return result
}

func sharedTerms(productTerms []string, sentence string) []string {
	shared := []string{}
	for _, term := range SignificantTerms(sentence) {
		if slices.Contains(productTerms, term) {
			shared = append(shared, term)
		}
	}
	return shared
}

// Issues converts conflicts into explanatory-note contradiction issues
// against the given heading.
func (r MatchResult) Issues(heading string) workflow.Issues {
	issues := workflow.Issues{}
	for _, c := range r.Conflicts {
		issues = append(issues, workflow.ENContradiction{
			IssueBase: workflow.IssueBase{
				Level:   workflow.SeverityMajor,
				Details: "explanatory note excludes goods matching the product description",
			},
			ConflictingHeading: heading,
			NoteText:           c.Sentence,
		})
	}
	return issues
}
