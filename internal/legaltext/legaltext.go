// Package legaltext parses explanatory-note and legal-note text into
// categorized sentences and cross-checks a product description against them.
package legaltext

import (
	"cmp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/JaimeStill/tariff/internal/lookup"
	"github.com/JaimeStill/tariff/workflow"
)

// Scoring adjustments applied per finding.
const (
	ConflictPenalty   = 15
	ConfirmationBonus = 5
)

const (
	minTermLength = 5
	minSharedTerm = 2
)

// Matcher parses and matches legal text using injected keyword tables.
type Matcher struct {
	tables *lookup.Tables
}

// New creates a Matcher over the given lookup tables.
func New(tables *lookup.Tables) *Matcher {
	return &Matcher{tables: tables}
}

// ParsedText is legal text bucketed by keyword category. A sentence may
// appear in several categories.
type ParsedText struct {
	Includes           []string  `json:"includes"`
	Excludes           []string  `json:"excludes"`
	Conditions         []string  `json:"conditions"`
	EssentialCharacter []string  `json:"essential_character"`
	RuleRelevance      []RuleHit `json:"rule_relevance"`
}

// RuleHit counts keyword occurrences for one classification rule.
type RuleHit struct {
	Rule workflow.Rule `json:"rule"`
	Hits int           `json:"hits"`
}

// Parse splits text into sentences and categorizes them.
func (m *Matcher) Parse(text string) ParsedText {
	parsed := ParsedText{
		Includes:           []string{},
		Excludes:           []string{},
		Conditions:         []string{},
		EssentialCharacter: []string{},
	}

	for _, sentence := range Sentences(text) {
		lower := strings.ToLower(sentence)
		if m.matches(lower, lookup.CategoryIncludes) {
			parsed.Includes = append(parsed.Includes, sentence)
		}
		if m.matches(lower, lookup.CategoryExcludes) {
			parsed.Excludes = append(parsed.Excludes, sentence)
		}
		if m.matches(lower, lookup.CategoryConditions) {
			parsed.Conditions = append(parsed.Conditions, sentence)
		}
		if m.matches(lower, lookup.CategoryEssentialCharacter) {
			parsed.EssentialCharacter = append(parsed.EssentialCharacter, sentence)
		}
	}

	parsed.RuleRelevance = m.ruleRelevance(strings.ToLower(text))
	return parsed
}

func (m *Matcher) matches(lower string, c lookup.Category) bool {
	return slices.ContainsFunc(m.tables.Keywords(c), func(kw string) bool {
		return strings.Contains(lower, kw)
	})
}

// ruleRelevance counts keyword hits per rule, drops rules without hits, and
// orders the rest by hits descending with ties in rule order.
func (m *Matcher) ruleRelevance(lower string) []RuleHit {
	hits := []RuleHit{}
	for _, rule := range m.tables.Rules() {
		n := 0
		for _, kw := range m.tables.RuleKeywords(rule) {
			n += strings.Count(lower, strings.ToLower(kw))
		}
		if n > 0 {
			hits = append(hits, RuleHit{Rule: rule, Hits: n})
		}
	}

	slices.SortStableFunc(hits, func(a, b RuleHit) int {
		return cmp.Compare(b.Hits, a.Hits)
	})
	return hits
}

// Sentences splits text on sentence terminators (. ; ! ?) and line breaks.
// A period between two digits is part of a tariff code and does not split.
func Sentences(text string) []string {
	var (
		sentences []string
		current   strings.Builder
	)

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	for i, r := range text {
		switch r {
		case '.':
			if isDigitBefore(text, i) && isDigitAfter(text, i) {
				current.WriteRune(r)
				continue
			}
			flush()
		case ';', '!', '?', '\n', '\r':
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()

	return sentences
}

func isDigitBefore(s string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return unicode.IsDigit(r)
}

func isDigitAfter(s string, i int) bool {
	if i+1 >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[i+1:])
	return unicode.IsDigit(r)
}

// SignificantTerms returns the distinct lower-cased words longer than four
// characters, in order of first appearance.
func SignificantTerms(text string) []string {
	return Words(text, minTermLength)
}

// Words returns the distinct lower-cased words of at least minRunes
// characters, in order of first appearance.
func Words(text string, minRunes int) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	terms := []string{}
	for _, w := range words {
		if utf8.RuneCountInString(w) >= minRunes && !slices.Contains(terms, w) {
			terms = append(terms, w)
		}
	}
	return terms
}
