package precedents

import (
	"cmp"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/JaimeStill/tariff/internal/legaltext"
	"github.com/JaimeStill/tariff/internal/lookup"
	"github.com/JaimeStill/tariff/workflow"
)

// Relevance scoring points.
const (
	pointsExactCode   = 30.0
	pointsSameHeading = 20.0
	pointsSameChapter = 10.0
	pointsPerKeyword  = 5.0
	maxKeywordMatches = 5
	minKeywordRunes   = 4
	pointsRecent      = 10.0
	pointsTopSource   = 15.0
	pointsRegional    = 5.0
	recencyYears      = 3

	// RelevanceDivisor normalizes raw points to a percentage. The raw maximum
	// is 100 (an exact code also earns the heading points), so scores can
	// exceed 100.
	RelevanceDivisor = 75.0
)

// Scorer ranks precedent cases by relevance using injected authority tables.
type Scorer struct {
	tables *lookup.Tables
}

// NewScorer creates a Scorer over the given lookup tables.
func NewScorer(tables *lookup.Tables) *Scorer {
	return &Scorer{tables: tables}
}

// Scored pairs a case with its relevance.
type Scored struct {
	Case      workflow.PrecedentCase `json:"case"`
	Relevance float64                `json:"relevance"`
}

// Relevance scores a case against the target code and product keywords as
// of now. The result is raw points divided by RelevanceDivisor, times 100.
func (s *Scorer) Relevance(c workflow.PrecedentCase, target string, keywords []string, now time.Time) float64 {
	points := codePoints(c.ClassificationCode, target)

	description := strings.ToLower(c.Description)
	matches := 0
	seen := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if utf8.RuneCountInString(kw) < minKeywordRunes || seen[kw] {
			continue
		}
		seen[kw] = true
		if strings.Contains(description, kw) {
			matches++
		}
	}
	points += float64(min(matches, maxKeywordMatches)) * pointsPerKeyword

	if !c.Date.IsZero() && !c.Date.Before(now.AddDate(-recencyYears, 0, 0)) {
		points += pointsRecent
	}

	switch s.tables.Authority(c.Source) {
	case lookup.AuthorityTop:
		points += pointsTopSource
	case lookup.AuthorityRegional:
		points += pointsRegional
	}

	return points / RelevanceDivisor * 100
}

// Rank scores every case and orders them by relevance descending. Equal
// scores keep their input order.
func (s *Scorer) Rank(cases []workflow.PrecedentCase, target string, keywords []string, now time.Time) []Scored {
	scored := make([]Scored, 0, len(cases))
	for _, c := range cases {
		scored = append(scored, Scored{Case: c, Relevance: s.Relevance(c, target, keywords, now)})
	}
	slices.SortStableFunc(scored, func(a, b Scored) int {
		return cmp.Compare(b.Relevance, a.Relevance)
	})
	return scored
}

// Keywords derives relevance keywords from the product profile and
// description: distinct words longer than three characters.
func Keywords(profile *workflow.ProductProfile, description string) []string {
	var parts []string
	if profile != nil {
		parts = append(parts, profile.Name, profile.PrimaryFunction, profile.Description)
	}
	parts = append(parts, description)
	return legaltext.Words(strings.Join(parts, " "), minKeywordRunes)
}

// codePoints awards the exact-code points on top of the heading points; a
// chapter match only counts when the heading differs.
func codePoints(code, target string) float64 {
	c, t := workflow.Digits(code), workflow.Digits(target)
	if c == "" || t == "" {
		return 0
	}

	var points float64
	if c == t {
		points += pointsExactCode
	}
	switch {
	case workflow.Heading(code) != "" && workflow.Heading(code) == workflow.Heading(target):
		points += pointsSameHeading
	case workflow.Chapter(code) != "" && workflow.Chapter(code) == workflow.Chapter(target):
		points += pointsSameChapter
	}
	return points
}
