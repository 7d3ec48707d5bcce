package api

import (
	"fmt"

	"github.com/JaimeStill/tariff/internal/analysis"
	"github.com/JaimeStill/tariff/internal/collaborators"
	"github.com/JaimeStill/tariff/internal/jobs"
	"github.com/JaimeStill/tariff/internal/legaltext"
	"github.com/JaimeStill/tariff/internal/prompts"
	"github.com/JaimeStill/tariff/internal/runner"
	"github.com/JaimeStill/tariff/internal/sources"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Jobs     jobs.System
	Sources  sources.System
	Prompts  prompts.System
	Analysis *analysis.Analyzer
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) (*Domain, error) {
	promptsSystem := prompts.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	collab, err := collaborators.New(runtime.Agent, promptsSystem, runtime.Logger)
	if err != nil {
		return nil, fmt.Errorf("collaborators init failed: %w", err)
	}

	jobRunner := runner.New(
		runtime.Tables,
		collab,
		runtime.Workflow.MaxStepsPerRun,
		runtime.Logger,
	)

	jobsSystem := jobs.New(
		runtime.Database.Connection(),
		jobRunner,
		runtime.Workflow,
		runtime.Logger,
		runtime.Pagination,
	)

	sourcesSystem := sources.New(
		runtime.Storage,
		legaltext.New(runtime.Tables),
		runtime.Logger,
		runtime.MaxListSize,
	)

	return &Domain{
		Jobs:     jobsSystem,
		Sources:  sourcesSystem,
		Prompts:  promptsSystem,
		Analysis: analysis.New(runtime.Tables),
	}, nil
}
