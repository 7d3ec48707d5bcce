package api

import (
	"net/http"

	"github.com/JaimeStill/tariff/internal/analysis"
	"github.com/JaimeStill/tariff/internal/config"
	"github.com/JaimeStill/tariff/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) []routes.Group {
	groups := []routes.Group{
		domain.Jobs.Handler().Routes(),
		domain.Sources.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		domain.Prompts.Handler().Routes(),
		analysis.NewHandler(domain.Analysis, runtime.Logger).Routes(),
	}

	routes.Register(mux, groups...)
	return groups
}
