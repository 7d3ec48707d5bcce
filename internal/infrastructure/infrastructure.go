// Package infrastructure provides core service initialization for application startup.
// It assembles the shared dependencies domain systems require: logging, the
// database, blob storage and the classification lookup tables.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/tariff/internal/config"
	"github.com/JaimeStill/tariff/internal/lookup"
	"github.com/JaimeStill/tariff/pkg/database"
	"github.com/JaimeStill/tariff/pkg/lifecycle"
	"github.com/JaimeStill/tariff/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
// Tables are read-only after load and shared by every engine instance.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Tables    *lookup.Tables
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	tables, err := lookup.Default()
	if err != nil {
		return nil, fmt.Errorf("lookup tables init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Tables:    tables,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
// Database and storage hooks are registered for startup and shutdown coordination.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	return nil
}
