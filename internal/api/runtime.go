package api

import (
	"github.com/JaimeStill/tariff/internal/config"
	"github.com/JaimeStill/tariff/internal/infrastructure"
	"github.com/JaimeStill/tariff/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination  pagination.Config
	Agent       *config.AgentConfig
	Workflow    *config.WorkflowConfig
	MaxListSize int32
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
			Tables:    infra.Tables,
		},
		Pagination:  cfg.API.Pagination,
		Agent:       &cfg.Agent,
		Workflow:    &cfg.Workflow,
		MaxListSize: cfg.Storage.MaxListSize,
	}
}
