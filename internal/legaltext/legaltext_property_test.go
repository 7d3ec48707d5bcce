package legaltext_test

import (
	"slices"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/JaimeStill/tariff/internal/legaltext"
	"github.com/JaimeStill/tariff/internal/lookup"
)

func TestParseProperties(t *testing.T) {
	m := legaltext.New(lookup.MustDefault())

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("categorized sentences come from the sentence split", prop.ForAll(
		func(text string) bool {
			sentences := legaltext.Sentences(text)
			parsed := m.Parse(text)
			for _, group := range [][]string{parsed.Includes, parsed.Excludes, parsed.Conditions, parsed.EssentialCharacter} {
				for _, s := range group {
					if !slices.Contains(sentences, s) {
						return false
					}
				}
			}
			return true
		},
		gen.AnyString(),
	))

	properties.Property("rule relevance is sorted and positive", prop.ForAll(
		func(words []string) bool {
			text := ""
			for _, w := range words {
				text += w + " essential character "
			}
			hits := m.Parse(text).RuleRelevance
			for i, h := range hits {
				if h.Hits <= 0 {
					return false
				}
				if i > 0 && hits[i-1].Hits < h.Hits {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.Property("match never reports findings below two shared terms", prop.ForAll(
		func(description string) bool {
			result := m.Match(description, m.Parse("This heading excludes keyboards and printers presented separately"))
			for _, f := range result.Conflicts {
				if len(f.SharedTerms) < 2 {
					return false
				}
			}
			return result.Adjustment == len(result.Confirmations)*legaltext.ConfirmationBonus-len(result.Conflicts)*legaltext.ConflictPenalty
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
