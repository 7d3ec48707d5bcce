package runner

import (
	"context"
	"fmt"

	"github.com/JaimeStill/tariff/workflow"
)

// PersistFunc is called after every step, before the next one begins.
type PersistFunc func(ctx context.Context, step Step) error

// Run loops Step until the conversation terminates, waits for user input,
// fails, or the step budget is spent. Concurrent runs sharing a key join the
// in-flight run and receive its steps; at most one round per key executes
// at a time. A joining caller's state, persist callback and context are not
// used: callers pass the key of the state they loaded, so the in-flight run
// already covers it.
func (r *Runner) Run(
	ctx context.Context,
	key string,
	s workflow.ConversationState,
	persist PersistFunc,
) ([]Step, error) {
	v, err, shared := r.flight.Do(key, func() (any, error) {
		return r.run(ctx, s, persist)
	})
	if shared {
		r.logger.InfoContext(ctx, "joined in-flight run", "key", key)
	}

	steps, _ := v.([]Step)
	return steps, err
}

func (r *Runner) run(ctx context.Context, s workflow.ConversationState, persist PersistFunc) ([]Step, error) {
	var steps []Step
	state := s

	for range r.maxSteps {
		step, err := r.Step(ctx, state)
		if err != nil {
			return steps, err
		}

		if persist != nil {
			if err := persist(ctx, step); err != nil {
				return steps, fmt.Errorf("persist round %d: %w", step.Round, err)
			}
		}

		steps = append(steps, step)
		state = step.State
		if step.Done() {
			break
		}
	}

	return steps, nil
}
