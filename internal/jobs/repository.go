package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/tariff/internal/confidence"
	"github.com/JaimeStill/tariff/internal/config"
	"github.com/JaimeStill/tariff/internal/runner"
	"github.com/JaimeStill/tariff/pkg/pagination"
	"github.com/JaimeStill/tariff/pkg/query"
	"github.com/JaimeStill/tariff/pkg/repository"
	"github.com/JaimeStill/tariff/workflow"
)

type repo struct {
	db         *sql.DB
	runner     *runner.Runner
	workflow   config.WorkflowConfig
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a job repository implementing the System interface.
func New(
	db *sql.DB,
	runner *runner.Runner,
	cfg *config.WorkflowConfig,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		runner:     runner,
		workflow:   *cfg,
		logger:     logger.With("system", "jobs"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Job], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "ProductName", "Description", "DecidedCode")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanJob)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Job, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	j, err := repository.QueryOne(ctx, r.db, q, args, scanJob)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &j, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Job, error) {
	description := strings.TrimSpace(cmd.Description)
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	if cmd.MaxRounds < 0 {
		return nil, fmt.Errorf("%w: max_rounds must not be negative", ErrInvalidInput)
	}

	maxRounds := cmd.MaxRounds
	if maxRounds == 0 {
		maxRounds = r.workflow.MaxRounds
	}

	state := workflow.NewConversation(description, maxRounds)
	flat, err := flatten(state)
	if err != nil {
		return nil, err
	}

	q := `
		INSERT INTO jobs(product_name, description, status, max_rounds, state)
		VALUES ($1, $2, $3, $4, $5)
		` + returning

	j, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Job, error) {
		return repository.QueryOne(ctx, tx, q,
			[]any{flat.productName, description, string(state.Status), maxRounds, flat.state},
			scanJob,
		)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("job created",
		"id", j.ID,
		"product_name", j.ProductName,
		"max_rounds", j.MaxRounds,
	)
	return &j, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, "DELETE FROM jobs WHERE id = $1", id)
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("job deleted", "id", id)
	return nil
}

func (r *repo) Decide(ctx context.Context, id uuid.UUID) (*Evaluation, error) {
	j, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	eng := r.runner.Engine()
	return &Evaluation{
		Decision:    eng.Decide(&j.State),
		Termination: eng.ShouldTerminate(&j.State),
		Confidence:  r.runner.Calculator().Analyze(&j.State),
	}, nil
}

func (r *repo) Score(ctx context.Context, id uuid.UUID) (*confidence.Result, error) {
	j, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	result := r.runner.Calculator().Score(&j.State)
	return &result, nil
}

func (r *repo) Run(ctx context.Context, id uuid.UUID) (*RunResult, error) {
	j, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if j.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: status is %s", ErrInvalidStatus, j.Status)
	}

	if timeout := r.workflow.RunTimeoutDuration(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	steps, err := r.runner.Run(ctx, id.String(), j.State, func(ctx context.Context, step runner.Step) error {
		return r.persist(ctx, id, step)
	})
	if err != nil {
		return nil, fmt.Errorf("run job %s: %w", id, err)
	}

	updated, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	r.logger.Info("job run",
		"id", id,
		"steps", len(steps),
		"status", updated.Status,
		"round", updated.CurrentRound,
		"confidence", updated.OverallConfidence,
	)
	return &RunResult{Job: *updated, Steps: steps}, nil
}

// persist stores the job state after a step and audits its decision.
// Steps that terminated before a decision was made leave no audit row.
func (r *repo) persist(ctx context.Context, id uuid.UUID, step runner.Step) error {
	flat, err := flatten(step.State)
	if err != nil {
		return err
	}

	updateQ := `
		UPDATE jobs
		SET product_name = $1, status = $2, current_round = $3, self_healing_attempts = $4,
			overall_confidence = $5, decided_code = $6, state = $7, updated_at = NOW()
		WHERE id = $8`

	insertQ := `
		INSERT INTO decisions(job_id, round, result, action, agent, stage, reason, payload, confidence, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		s := step.State
		if err := repository.ExecExpectOne(ctx, tx, updateQ,
			flat.productName, string(s.Status), s.CurrentRound, s.SelfHealingAttempts,
			s.OverallConfidence, flat.decidedCode, flat.state, id,
		); err != nil {
			return struct{}{}, err
		}

		if step.Decision == nil {
			return struct{}{}, nil
		}

		d := step.Decision
		payload, err := json.Marshal(d)
		if err != nil {
			return struct{}{}, fmt.Errorf("marshal decision: %w", err)
		}

		var agent, stepErr *string
		if d.Agent != "" {
			a := string(d.Agent)
			agent = &a
		}
		if step.Error != "" {
			stepErr = &step.Error
		}

		_, err = tx.ExecContext(ctx, insertQ,
			id, step.Round, string(step.Result), string(d.Action), agent, string(d.Stage),
			d.Reason, payload, s.OverallConfidence, stepErr,
		)
		return struct{}{}, err
	})

	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}

func (r *repo) ProvideInput(ctx context.Context, id uuid.UUID, input workflow.UserInput) (*Job, error) {
	if input.Empty() {
		return nil, fmt.Errorf("%w: no answers provided", ErrInvalidInput)
	}

	j, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if j.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: status is %s", ErrInvalidStatus, j.Status)
	}

	next := j.State.WithInput(input)
	flat, err := flatten(next)
	if err != nil {
		return nil, err
	}

	q := `
		UPDATE jobs
		SET product_name = $1, state = $2, updated_at = NOW()
		WHERE id = $3 AND status = 'active'
		` + returning

	updated, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Job, error) {
		return repository.QueryOne(ctx, tx, q, []any{flat.productName, flat.state, id}, scanJob)
	})

	if err != nil {
		return nil, repository.MapError(err, ErrInvalidStatus, ErrDuplicate)
	}

	r.logger.Info("job input provided", "id", id, "product_name", updated.ProductName)
	return &updated, nil
}

func (r *repo) Decisions(ctx context.Context, id uuid.UUID) ([]DecisionRecord, error) {
	if _, err := r.Find(ctx, id); err != nil {
		return nil, err
	}

	q, args := query.
		NewBuilder(decisionProjection, decisionSort...).
		WhereEquals("JobID", id).
		Build()

	records, err := repository.QueryMany(ctx, r.db, q, args, scanDecision)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	return records, nil
}
