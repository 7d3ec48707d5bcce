// Package precedents measures agreement among prior classification rulings
// and scores each ruling's relevance to the product under classification.
package precedents

import (
	"fmt"
	"strings"

	"github.com/JaimeStill/tariff/workflow"
)

// ConsensusThreshold is the minimum agreement rate that counts as consensus.
const ConsensusThreshold = 0.7

// AnalyzeConsensus groups cases by classification code and reports the
// majority group. Ties between equally sized groups go to the code encountered
// first. The target code matches when it equals the consensus code or shares
// its 4-digit heading.
func AnalyzeConsensus(cases []workflow.PrecedentCase, target string) workflow.Consensus {
	if len(cases) == 0 {
		return workflow.Consensus{
			Strength:         workflow.StrengthNone,
			SupportingCases:  []workflow.PrecedentCase{},
			ConflictingCases: []workflow.PrecedentCase{},
			Analysis:         "No precedent cases available",
		}
	}

	var (
		order  []string
		groups = make(map[string][]workflow.PrecedentCase)
	)
	for _, c := range cases {
		key := groupKey(c.ClassificationCode)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], c)
	}

	majority := order[0]
	for _, key := range order[1:] {
		if len(groups[key]) > len(groups[majority]) {
			majority = key
		}
	}

	supporting := groups[majority]
	conflicting := make([]workflow.PrecedentCase, 0, len(cases)-len(supporting))
	for _, c := range cases {
		if groupKey(c.ClassificationCode) != majority {
			conflicting = append(conflicting, c)
		}
	}

	rate := float64(len(supporting)) / float64(len(cases))
	code := supporting[0].ClassificationCode
	strength := StrengthOf(rate)

	result := workflow.Consensus{
		HasConsensus:     rate >= ConsensusThreshold,
		ConsensusCode:    code,
		AgreementRate:    rate,
		Strength:         strength,
		TargetMatch:      TargetMatches(target, code),
		SupportingCases:  supporting,
		ConflictingCases: conflicting,
	}
	result.Analysis = describe(result, len(cases), target)
	return result
}

// StrengthOf maps an agreement rate to its consensus tier.
func StrengthOf(rate float64) workflow.Strength {
	switch {
	case rate >= 0.9:
		return workflow.StrengthStrong
	case rate >= 0.7:
		return workflow.StrengthModerate
	case rate >= 0.5:
		return workflow.StrengthWeak
	default:
		return workflow.StrengthNone
	}
}

// TargetMatches reports whether target and code are the same code or share a heading.
func TargetMatches(target, code string) bool {
	t, c := workflow.Digits(target), workflow.Digits(code)
	if t == "" || c == "" {
		return false
	}
	if t == c {
		return true
	}
	h := workflow.Heading(target)
	return h != "" && h == workflow.Heading(code)
}

func groupKey(code string) string {
	if d := workflow.Digits(code); d != "" {
		return d
	}
	return strings.ToUpper(strings.TrimSpace(code))
}

func describe(c workflow.Consensus, total int, target string) string {
	var sb strings.Builder
	if c.HasConsensus {
		fmt.Fprintf(&sb, "%s consensus: %d of %d cases classify under %s",
			tierLabel(c.Strength), len(c.SupportingCases), total, c.ConsensusCode)
	} else {
		fmt.Fprintf(&sb, "No consensus (%s agreement): most common code %s appears in %d of %d cases",
			c.Strength, c.ConsensusCode, len(c.SupportingCases), total)
	}

	if target != "" {
		if c.TargetMatch {
			fmt.Fprintf(&sb, "; target %s agrees", target)
		} else {
			fmt.Fprintf(&sb, "; target %s differs", target)
		}
	}
	return sb.String()
}

func tierLabel(s workflow.Strength) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}
