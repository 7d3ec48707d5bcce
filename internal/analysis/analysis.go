// Package analysis exposes the decision core over HTTP without persistence.
// Every request carries the full input and receives the core output; nothing
// is stored and no collaborator is called.
package analysis

import (
	"time"

	"github.com/JaimeStill/tariff/internal/confidence"
	"github.com/JaimeStill/tariff/internal/engine"
	"github.com/JaimeStill/tariff/internal/legaltext"
	"github.com/JaimeStill/tariff/internal/lookup"
	"github.com/JaimeStill/tariff/internal/precedents"
	"github.com/JaimeStill/tariff/workflow"
)

// ConsensusRequest is the input of a consensus analysis.
type ConsensusRequest struct {
	Cases  []workflow.PrecedentCase `json:"cases"`
	Target string                   `json:"target"`
}

// RelevanceRequest is the input of a relevance ranking. When Keywords is
// empty they are derived from Profile and Description. Now defaults to the
// current time.
type RelevanceRequest struct {
	Cases       []workflow.PrecedentCase `json:"cases"`
	Target      string                   `json:"target"`
	Keywords    []string                 `json:"keywords,omitempty"`
	Profile     *workflow.ProductProfile `json:"product_profile,omitempty"`
	Description string                   `json:"description,omitempty"`
	Now         *time.Time               `json:"now,omitempty"`
}

// ParseRequest is the input of a legal-text parse.
type ParseRequest struct {
	Text string `json:"text"`
}

// MatchRequest is the input of a legal-text match. Code is the tariff code
// the text belongs to; contradiction issues are raised against its heading.
type MatchRequest struct {
	Description string `json:"description"`
	Text        string `json:"text"`
	Code        string `json:"code,omitempty"`
}

// MatchResponse carries the match together with the issues it raises.
type MatchResponse struct {
	legaltext.MatchResult
	Issues workflow.Issues `json:"issues"`
}

// Analyzer runs the decision core over request payloads.
type Analyzer struct {
	engine  *engine.Engine
	calc    *confidence.Calculator
	matcher *legaltext.Matcher
	scorer  *precedents.Scorer
	now     func() time.Time
}

// New creates an Analyzer over the given lookup tables.
func New(tables *lookup.Tables) *Analyzer {
	calc := confidence.New(tables)
	return &Analyzer{
		engine:  engine.New(tables, calc),
		calc:    calc,
		matcher: legaltext.New(tables),
		scorer:  precedents.NewScorer(tables),
		now:     time.Now,
	}
}

func (a *Analyzer) Decide(s workflow.ConversationState) workflow.Decision {
	return a.engine.Decide(&s)
}

func (a *Analyzer) Terminate(s workflow.ConversationState) engine.Termination {
	return a.engine.ShouldTerminate(&s)
}

func (a *Analyzer) Score(s workflow.ConversationState) confidence.Result {
	return a.calc.Score(&s)
}

func (a *Analyzer) Factors(s workflow.ConversationState) confidence.FactorAnalysis {
	return a.calc.Analyze(&s)
}

func (a *Analyzer) Consensus(req ConsensusRequest) workflow.Consensus {
	return precedents.AnalyzeConsensus(req.Cases, req.Target)
}

func (a *Analyzer) Relevance(req RelevanceRequest) []precedents.Scored {
	keywords := req.Keywords
	if len(keywords) == 0 {
		keywords = precedents.Keywords(req.Profile, req.Description)
	}

	now := a.now()
	if req.Now != nil {
		now = *req.Now
	}

	return a.scorer.Rank(req.Cases, req.Target, keywords, now)
}

func (a *Analyzer) Parse(req ParseRequest) legaltext.ParsedText {
	return a.matcher.Parse(req.Text)
}

// Match parses the legal text and checks the description against it. Issues
// are only raised when the request names a code.
func (a *Analyzer) Match(req MatchRequest) MatchResponse {
	result := a.matcher.Match(req.Description, a.matcher.Parse(req.Text))

	resp := MatchResponse{MatchResult: result, Issues: workflow.Issues{}}
	if heading := workflow.Heading(req.Code); heading != "" {
		resp.Issues = result.Issues(heading)
	}
	return resp
}
