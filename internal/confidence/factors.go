package confidence

import "github.com/JaimeStill/tariff/workflow"

// Factor names a confidence factor.
type Factor string

// Confidence factors.
const (
	FactorProduct    Factor = "product"
	FactorLegal      Factor = "legal"
	FactorRule       Factor = "rule"
	FactorPrecedent  Factor = "precedent"
	FactorValidation Factor = "validation"
)

// Thresholds below which a factor is reported as weak.
const (
	ThresholdProduct   = 80.0
	ThresholdLegal     = 70.0
	ThresholdRule      = 70.0
	ThresholdPrecedent = 60.0
)

// WeakFactor is a factor scoring below its threshold with a remedy.
type WeakFactor struct {
	Factor         Factor  `json:"factor"`
	Score          float64 `json:"score"`
	Threshold      float64 `json:"threshold"`
	Recommendation string  `json:"recommendation"`
}

// FactorAnalysis is a confidence result plus the weak factors behind it.
type FactorAnalysis struct {
	Result
	WeakFactors []WeakFactor `json:"weak_factors"`
}

// Recommendations returns the recommendation text of every weak factor.
func (a FactorAnalysis) Recommendations() []string {
	recs := make([]string, 0, len(a.WeakFactors))
	for _, w := range a.WeakFactors {
		recs = append(recs, w.Recommendation)
	}
	return recs
}

// Analyze scores the state and lists weak factors in fixed factor order.
func (c *Calculator) Analyze(s *workflow.ConversationState) FactorAnalysis {
	result := c.Score(s)
	b := result.Breakdown

	checks := []struct {
		factor    Factor
		score     float64
		threshold float64
		rec       string
	}{
		{FactorProduct, b.Product.Score, ThresholdProduct,
			"Gather more product detail: materials with percentages, essential character, and technical specifications"},
		{FactorLegal, b.Legal.Score, ThresholdLegal,
			"Fetch explanatory notes and section or chapter notes for the candidate headings from authoritative sources"},
		{FactorRule, b.Rule.Score, ThresholdRule,
			"Re-examine the rule application; prefer the earliest rule in the hierarchy that resolves the classification"},
		{FactorPrecedent, b.Precedent.Score, ThresholdPrecedent,
			"Search for additional precedent rulings and reconcile conflicting decisions"},
	}

	analysis := FactorAnalysis{Result: result, WeakFactors: []WeakFactor{}}
	for _, chk := range checks {
		if chk.score < chk.threshold {
			analysis.WeakFactors = append(analysis.WeakFactors, WeakFactor{
				Factor:         chk.factor,
				Score:          chk.score,
				Threshold:      chk.threshold,
				Recommendation: chk.rec,
			})
		}
	}
	return analysis
}
