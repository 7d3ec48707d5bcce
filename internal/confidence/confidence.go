// Package confidence computes the weighted 0-100 confidence score of a
// classification conversation and names the factors holding it back.
package confidence

import (
	"math"

	"github.com/JaimeStill/tariff/internal/lookup"
	"github.com/JaimeStill/tariff/workflow"
)

// Factor weights. They sum to 1.
const (
	WeightProduct    = 0.20
	WeightLegal      = 0.25
	WeightRule       = 0.30
	WeightPrecedent  = 0.15
	WeightValidation = 0.10
)

// Penalty points.
const (
	PenaltyNoSupport    = 5.0
	PenaltyConflicts    = 10.0
	PenaltyLastResort   = 10.0
	PenaltyPerIssue     = 3.0
	substantialENLength = 1000
)

// Scores holds the five factor sub-scores, each on a 0-100 scale.
type Scores struct {
	Product    float64 `json:"product"`
	Legal      float64 `json:"legal"`
	Rule       float64 `json:"rule"`
	Precedent  float64 `json:"precedent"`
	Validation float64 `json:"validation"`
}

// Component is one weighted factor of the breakdown.
type Component struct {
	Score    float64 `json:"score"`
	Weight   float64 `json:"weight"`
	Weighted float64 `json:"weighted"`
}

// Breakdown lists every factor's contribution.
type Breakdown struct {
	Product    Component `json:"product"`
	Legal      Component `json:"legal"`
	Rule       Component `json:"rule"`
	Precedent  Component `json:"precedent"`
	Validation Component `json:"validation"`
}

// Penalty is a single deduction with its cause.
type Penalty struct {
	Reason string  `json:"reason"`
	Points float64 `json:"points"`
}

// Penalties is the itemized deduction applied after weighting.
type Penalties struct {
	Total float64   `json:"total"`
	Items []Penalty `json:"items"`
}

func (p *Penalties) add(reason string, points float64) {
	p.Items = append(p.Items, Penalty{Reason: reason, Points: points})
	p.Total += points
}

// Result is the full confidence computation.
type Result struct {
	Overall     int       `json:"overall"`
	RawWeighted float64   `json:"raw_weighted"`
	Breakdown   Breakdown `json:"breakdown"`
	Penalties   Penalties `json:"penalties"`
}

// Calculator scores conversation states using injected rule tables.
type Calculator struct {
	tables *lookup.Tables
}

// New creates a Calculator over the given lookup tables.
func New(tables *lookup.Tables) *Calculator {
	return &Calculator{tables: tables}
}

// Score computes the confidence of a state. The state is not modified.
func (c *Calculator) Score(s *workflow.ConversationState) Result {
	return Combine(c.Scores(s), c.Penalties(s))
}

// Combine applies the factor weights and subtracts penalties. The overall
// score is rounded and clamped to [0,100].
func Combine(scores Scores, penalties Penalties) Result {
	b := Breakdown{
		Product:    component(scores.Product, WeightProduct),
		Legal:      component(scores.Legal, WeightLegal),
		Rule:       component(scores.Rule, WeightRule),
		Precedent:  component(scores.Precedent, WeightPrecedent),
		Validation: component(scores.Validation, WeightValidation),
	}
	raw := b.Product.Weighted + b.Legal.Weighted + b.Rule.Weighted + b.Precedent.Weighted + b.Validation.Weighted

	if penalties.Items == nil {
		penalties.Items = []Penalty{}
	}

	return Result{
		Overall:     int(math.Round(clamp(raw - penalties.Total))),
		RawWeighted: raw,
		Breakdown:   b,
		Penalties:   penalties,
	}
}

func component(score, weight float64) Component {
	return Component{Score: score, Weight: weight, Weighted: score * weight}
}

// Scores computes every factor sub-score.
func (c *Calculator) Scores(s *workflow.ConversationState) Scores {
	cur := &s.CurrentState
	return Scores{
		Product:    ProductScore(cur),
		Legal:      c.LegalScore(cur.LegalResearch),
		Rule:       c.RuleScore(cur.GIRDecision),
		Precedent:  PrecedentScore(cur.Precedents),
		Validation: ValidationScore(cur.ValidationResult),
	}
}

// Penalties itemizes the deductions that apply to a state.
func (c *Calculator) Penalties(s *workflow.ConversationState) Penalties {
	cur := &s.CurrentState
	p := Penalties{Items: []Penalty{}}

	if cur.Precedents != nil && cur.Precedents.SupportingCount() == 0 {
		p.add("precedent search found no supporting cases", PenaltyNoSupport)
	}
	if cur.Precedents != nil && cur.Precedents.HasConflicts() {
		p.add("precedent consensus reports conflicting cases", PenaltyConflicts)
	}
	if cur.GIRDecision != nil && c.tables.IsLastResort(cur.GIRDecision.Rule) {
		p.add("classification relies on a last-resort rule", PenaltyLastResort)
	}
	if cur.ValidationResult != nil {
		for _, issue := range cur.ValidationResult.Issues.Present() {
			p.add("unresolved validation issue: "+string(issue.Type()), PenaltyPerIssue)
		}
	}
	return p
}

// ProductScore starts from the stated readiness and rewards a material
// percentage, a stated essential character and rich industry detail.
func ProductScore(cur *workflow.CurrentState) float64 {
	p := cur.ProductProfile
	if p == nil {
		return 0
	}

	score := float64(cur.ProductReadiness)
	if p.HasPercentMarker() {
		score += 10
	}
	if p.EssentialCharacter != "" {
		score += 10
	}
	if len(p.IndustryDetails) >= 4 {
		score += 5
	}
	return clamp(score)
}

// LegalScore rates the depth of legal research.
func (c *Calculator) LegalScore(r *workflow.LegalResearch) float64 {
	if r == nil {
		return 0
	}

	score := 40.0
	if len(r.ENDocuments) > 0 {
		score += 20
		for _, d := range r.ENDocuments {
			if len(d.Text) > substantialENLength {
				score += 10
				break
			}
		}
	}
	if len(r.LegalNotes) > 0 {
		score += 15
		for _, n := range r.LegalNotes {
			if n.IsSectionNote() {
				score += 5
				break
			}
		}
	}

	top := 0
	for _, src := range r.VerifiedSources {
		if c.tables.Authority(src.URL) == lookup.AuthorityTop || c.tables.Authority(src.Title) == lookup.AuthorityTop {
			top++
		}
	}
	score += min(float64(top)*3, 10)

	return clamp(score)
}

// RuleScore blends the applied rule's base strength with the agent's
// self-reported confidence (70/30) and rewards an audit trail.
func (c *Calculator) RuleScore(d *workflow.RuleDecision) float64 {
	if d == nil {
		return 0
	}

	score := c.tables.Strength(d.Rule)
	if reported, ok := d.ConfidencePercent(); ok {
		score = score*0.7 + clamp(reported)*0.3
	}
	if len(d.AuditTrail) >= 2 {
		score += 5
	}
	return clamp(score)
}

// PrecedentScore rates precedent support. Without a search it is neutral (70).
func PrecedentScore(p *workflow.Precedents) float64 {
	if p == nil {
		return 70
	}

	score := 50.0
	if len(p.Opinions) > 0 {
		score += 30
	}
	score += min(float64(len(p.Cases))*5, 20)
	if p.Consensus != nil && p.Consensus.HasConsensus && p.Consensus.AgreementRate > 0.8 {
		score += 15
	}
	if p.HasConflicts() {
		score -= 20
	}
	return clamp(score)
}

// ValidationScore rates the validation verdict. Without validation it is 50.
func ValidationScore(v *workflow.ValidationResult) float64 {
	switch {
	case v == nil:
		return 50
	case !v.Passed:
		return 20
	case v.Score != nil:
		s := *v.Score
		if s <= 1 {
			s *= 100
		}
		return clamp(s)
	default:
		return 80
	}
}

func clamp(v float64) float64 {
	return math.Min(math.Max(v, 0), 100)
}
