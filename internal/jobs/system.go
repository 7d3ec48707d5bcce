package jobs

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/tariff/internal/confidence"
	"github.com/JaimeStill/tariff/pkg/pagination"
	"github.com/JaimeStill/tariff/workflow"
)

// System defines the public contract for classification job operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Job], error)

	Find(ctx context.Context, id uuid.UUID) (*Job, error)
	Create(ctx context.Context, cmd CreateCommand) (*Job, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Decide evaluates the next action for a job without executing it.
	Decide(ctx context.Context, id uuid.UUID) (*Evaluation, error)
	Score(ctx context.Context, id uuid.UUID) (*confidence.Result, error)

	// Run advances the job until it terminates, needs user input, fails,
	// or spends the per-run step budget. Every round is persisted as it completes.
	Run(ctx context.Context, id uuid.UUID) (*RunResult, error)
	ProvideInput(ctx context.Context, id uuid.UUID, input workflow.UserInput) (*Job, error)
	Decisions(ctx context.Context, id uuid.UUID) ([]DecisionRecord, error)
}
