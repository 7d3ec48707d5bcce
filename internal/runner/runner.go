// Package runner advances classification conversations one round at a time:
// it asks the decision engine for the next action, executes it through a
// collaborator, applies the outcome and refreshes the derived fields.
package runner

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/JaimeStill/tariff/internal/collaborators"
	"github.com/JaimeStill/tariff/internal/confidence"
	"github.com/JaimeStill/tariff/internal/engine"
	"github.com/JaimeStill/tariff/internal/legaltext"
	"github.com/JaimeStill/tariff/internal/lookup"
	"github.com/JaimeStill/tariff/workflow"
)

// Result classifies what a step did.
type Result string

// Step results.
const (
	ResultAdvanced      Result = "advanced"
	ResultTerminated    Result = "terminated"
	ResultAwaitingInput Result = "awaiting_input"
	ResultFailed        Result = "failed"
)

// Step is the record of one runner round.
type Step struct {
	Round       int                        `json:"round"`
	Result      Result                     `json:"result"`
	Decision    *workflow.Decision         `json:"decision,omitempty"`
	Termination engine.Termination         `json:"termination"`
	Error       string                     `json:"error,omitempty"`
	State       workflow.ConversationState `json:"state"`
}

// Done reports whether the run loop must stop after this step.
func (s Step) Done() bool {
	return s.Result != ResultAdvanced
}

// Runner executes engine decisions against collaborators.
type Runner struct {
	engine   *engine.Engine
	calc     *confidence.Calculator
	matcher  *legaltext.Matcher
	collab   collaborators.System
	maxSteps int
	logger   *slog.Logger
	flight   singleflight.Group
}

// New creates a Runner. maxSteps bounds the rounds a single Run may execute.
func New(
	tables *lookup.Tables,
	collab collaborators.System,
	maxSteps int,
	logger *slog.Logger,
) *Runner {
	calc := confidence.New(tables)
	return &Runner{
		engine:   engine.New(tables, calc),
		calc:     calc,
		matcher:  legaltext.New(tables),
		collab:   collab,
		maxSteps: max(maxSteps, 1),
		logger:   logger.With("system", "runner"),
	}
}

// Engine returns the decision engine the runner consults.
func (r *Runner) Engine() *engine.Engine {
	return r.engine
}

// Calculator returns the confidence calculator the runner scores with.
func (r *Runner) Calculator() *confidence.Calculator {
	return r.calc
}

// Step executes one round. Collaborator failures are reported through a
// failed step, not an error; the error return is reserved for cancellation.
// Every decision, including a request for user input, consumes a round.
func (r *Runner) Step(ctx context.Context, s workflow.ConversationState) (Step, error) {
	if err := ctx.Err(); err != nil {
		return Step{}, err
	}

	step := Step{Round: s.CurrentRound + 1}

	if t := r.engine.ShouldTerminate(&s); t.Terminate {
		s.Status = t.Status
		step.Result = ResultTerminated
		step.Termination = t
		step.State = s
		return step, nil
	}

	d := r.engine.Decide(&s)
	step.Decision = &d

	switch {
	case d.Action.IsTerminal():
		next := s.Apply(d, workflow.Outcome{})
		next.OverallConfidence = r.calc.Score(&next).Overall
		step.Result = ResultTerminated
		step.Termination = engine.Termination{Terminate: true, Status: next.Status, Reason: d.Reason}
		step.State = next
		r.logRound(ctx, step)
		return step, nil

	case d.Action == workflow.ActionRequestUserInput:
		// A pause consumes the round, and a self-healing attempt when the
		// question comes from self-healing, so the caps still bound the job.
		next := s.Apply(d, workflow.Outcome{})
		next.OverallConfidence = r.calc.Score(&next).Overall
		step.Result = ResultAwaitingInput
		step.Termination = engine.Termination{Status: next.Status, Reason: d.Reason}
		step.State = next
		r.logRound(ctx, step)
		return step, nil
	}

	outcome, err := r.collab.Execute(ctx, d, s)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Step{}, ctxErr
		}
		s.Status = workflow.StatusFailed
		step.Result = ResultFailed
		step.Error = err.Error()
		step.Termination = engine.Termination{Terminate: true, Status: workflow.StatusFailed, Reason: err.Error()}
		step.State = s
		r.logger.ErrorContext(ctx, "round failed",
			"round", step.Round,
			"action", d.Action,
			"agent", d.Agent,
			"error", err,
		)
		return step, nil
	}

	next := s.Apply(d, outcome)
	r.enrich(&next, d)
	next.OverallConfidence = r.calc.Score(&next).Overall

	step.Result = ResultAdvanced
	step.Termination = r.engine.ShouldTerminate(&next)
	step.State = next
	r.logRound(ctx, step)
	return step, nil
}

func (r *Runner) logRound(ctx context.Context, step Step) {
	r.logger.InfoContext(ctx, "round complete",
		"round", step.Round,
		"result", step.Result,
		"action", step.Decision.Action,
		"agent", step.Decision.Agent,
		"stage", step.Decision.Stage,
		"confidence", step.State.OverallConfidence,
	)
}
