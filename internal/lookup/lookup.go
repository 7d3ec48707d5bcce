// Package lookup provides the immutable classification lookup tables: rule
// strengths and tiers, legal-text keyword sets, question templates, and
// authority domain lists. The tables are embedded in the binary and decoded
// once; consumers receive them by injection.
package lookup

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/JaimeStill/tariff/workflow"
)

//go:embed tables.yaml
var embedded []byte

// ErrInvalidTables indicates the lookup document failed validation.
var ErrInvalidTables = errors.New("invalid lookup tables")

// Tier groups rules by how strongly their application supports a decision.
type Tier string

// Rule tiers.
const (
	TierSpecific           Tier = "specific"
	TierStructural         Tier = "structural"
	TierEssentialCharacter Tier = "essential_character"
	TierLastResort         Tier = "last_resort"
	TierSubheading         Tier = "subheading"
)

// UnmarshalYAML rejects unknown tiers.
func (t *Tier) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	switch v := Tier(s); v {
	case TierSpecific, TierStructural, TierEssentialCharacter, TierLastResort, TierSubheading:
		*t = v
		return nil
	default:
		return fmt.Errorf("invalid rule tier: %q", s)
	}
}

// Authority is the standing of a ruling source.
type Authority int

// Authority levels.
const (
	AuthorityUnknown Authority = iota
	AuthorityRegional
	AuthorityTop
)

// Category is a legal-text keyword category.
type Category string

// Legal-text categories.
const (
	CategoryIncludes           Category = "includes"
	CategoryExcludes           Category = "excludes"
	CategoryConditions         Category = "conditions"
	CategoryEssentialCharacter Category = "essential_character"
)

// Categories returns the legal-text categories in fixed order.
func Categories() []Category {
	return []Category{
		CategoryIncludes,
		CategoryExcludes,
		CategoryConditions,
		CategoryEssentialCharacter,
	}
}

type ruleEntry struct {
	ID       workflow.Rule `yaml:"id"`
	Tier     Tier          `yaml:"tier"`
	Strength float64       `yaml:"strength"`
	Keywords []string      `yaml:"keywords"`
}

type document struct {
	DefaultStrength float64               `yaml:"default_strength"`
	Rules           []ruleEntry           `yaml:"rules"`
	LegalKeywords   map[Category][]string `yaml:"legal_keywords"`
	Questions       struct {
		Generic string            `yaml:"generic"`
		Fields  map[string]string `yaml:"fields"`
		Intent  []string          `yaml:"intent"`
	} `yaml:"questions"`
	Authorities struct {
		Top      []string `yaml:"top"`
		Regional []string `yaml:"regional"`
	} `yaml:"authorities"`
}

// Tables is the read-only view over the decoded lookup document.
type Tables struct {
	doc   document
	rules map[workflow.Rule]ruleEntry
}

// Load decodes a lookup document. A nil or empty data slice loads the embedded tables.
func Load(data []byte) (*Tables, error) {
	if len(data) == 0 {
		data = embedded
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTables, err)
	}

	t := &Tables{
		doc:   doc,
		rules: make(map[workflow.Rule]ruleEntry, len(doc.Rules)),
	}

	for i, r := range doc.Rules {
		r.ID = workflow.NormalizeRule(string(r.ID))
		doc.Rules[i] = r
		t.rules[r.ID] = r
	}
	for _, c := range Categories() {
		lower(doc.LegalKeywords[c])
	}
	lower(doc.Authorities.Top)
	lower(doc.Authorities.Regional)

	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func lower(values []string) {
	for i, v := range values {
		values[i] = strings.ToLower(strings.TrimSpace(v))
	}
}

var (
	defaultOnce   sync.Once
	defaultTables *Tables
	defaultErr    error
)

// Default returns the embedded tables, decoding them on first use.
func Default() (*Tables, error) {
	defaultOnce.Do(func() {
		defaultTables, defaultErr = Load(nil)
	})
	return defaultTables, defaultErr
}

// MustDefault returns the embedded tables and panics if they fail to load.
func MustDefault() *Tables {
	t, err := Default()
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Tables) validate() error {
	if len(t.doc.Rules) == 0 {
		return fmt.Errorf("%w: no rules", ErrInvalidTables)
	}
	if t.doc.DefaultStrength < 0 || t.doc.DefaultStrength > 100 {
		return fmt.Errorf("%w: default_strength out of range", ErrInvalidTables)
	}
	for _, r := range t.doc.Rules {
		if r.ID == "" {
			return fmt.Errorf("%w: rule without id", ErrInvalidTables)
		}
		if r.Tier == "" {
			return fmt.Errorf("%w: rule %s has no tier", ErrInvalidTables, r.ID)
		}
		if r.Strength < 0 || r.Strength > 100 {
			return fmt.Errorf("%w: rule %s strength out of range", ErrInvalidTables, r.ID)
		}
	}
	for _, c := range Categories() {
		if len(t.doc.LegalKeywords[c]) == 0 {
			return fmt.Errorf("%w: no %s keywords", ErrInvalidTables, c)
		}
	}
	if !strings.Contains(t.doc.Questions.Generic, "{field}") {
		return fmt.Errorf("%w: generic question lacks {field} placeholder", ErrInvalidTables)
	}
	if len(t.doc.Questions.Intent) == 0 {
		return fmt.Errorf("%w: no intent questions", ErrInvalidTables)
	}
	return nil
}

// Rules returns the rule ids in table order.
func (t *Tables) Rules() []workflow.Rule {
	ids := make([]workflow.Rule, 0, len(t.doc.Rules))
	for _, r := range t.doc.Rules {
		ids = append(ids, r.ID)
	}
	return ids
}

// Strength returns the base strength of a rule, or the default strength for unknown rules.
func (t *Tables) Strength(rule workflow.Rule) float64 {
	if r, ok := t.rules[rule]; ok {
		return r.Strength
	}
	return t.doc.DefaultStrength
}

// Tier returns the tier of a rule. Unknown rules have no tier.
func (t *Tables) Tier(rule workflow.Rule) (Tier, bool) {
	r, ok := t.rules[rule]
	return r.Tier, ok
}

// IsLastResort reports whether the rule is in the last-resort tier.
func (t *Tables) IsLastResort(rule workflow.Rule) bool {
	tier, ok := t.Tier(rule)
	return ok && tier == TierLastResort
}

// IsEssentialCharacter reports whether the rule decides by essential character.
func (t *Tables) IsEssentialCharacter(rule workflow.Rule) bool {
	tier, ok := t.Tier(rule)
	return ok && tier == TierEssentialCharacter
}

// RuleKeywords returns the relevance keywords of a rule.
func (t *Tables) RuleKeywords(rule workflow.Rule) []string {
	return slices.Clone(t.rules[rule].Keywords)
}

// Keywords returns the lower-cased keyword set of a legal-text category.
func (t *Tables) Keywords(c Category) []string {
	return slices.Clone(t.doc.LegalKeywords[c])
}

// Question returns the question template for a product field, falling back
// to the generic template.
func (t *Tables) Question(field string) string {
	if q, ok := t.doc.Questions.Fields[field]; ok {
		return q
	}
	return strings.ReplaceAll(t.doc.Questions.Generic, "{field}", strings.ReplaceAll(field, "_", " "))
}

// IntentQuestions returns the fixed questions asked when only a last-resort rule applies.
func (t *Tables) IntentQuestions() []string {
	return slices.Clone(t.doc.Questions.Intent)
}

// Authority classifies a ruling source or URL by substring match against the
// authority lists. Top authorities are checked first.
func (t *Tables) Authority(source string) Authority {
	s := strings.ToLower(source)
	if s == "" {
		return AuthorityUnknown
	}
	for _, a := range t.doc.Authorities.Top {
		if strings.Contains(s, a) {
			return AuthorityTop
		}
	}
	for _, a := range t.doc.Authorities.Regional {
		if strings.Contains(s, a) {
			return AuthorityRegional
		}
	}
	return AuthorityUnknown
}
