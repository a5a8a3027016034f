package cli

import (
	"fmt"
	"log/slog"

	"github.com/eshaffer321/realestate-detective-backend/internal/adapters/clients"
	"github.com/eshaffer321/realestate-detective-backend/internal/adapters/providers"
	"github.com/eshaffer321/realestate-detective-backend/internal/application/reconcile"
	"github.com/eshaffer321/realestate-detective-backend/internal/application/service"
	"github.com/eshaffer321/realestate-detective-backend/internal/domain/matcher"
	"github.com/eshaffer321/realestate-detective-backend/internal/infrastructure/config"
	"github.com/eshaffer321/realestate-detective-backend/internal/infrastructure/storage"
)

// App bundles the wired components shared by every command
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Store    storage.Repository
	Feed     providers.TransactionFeed
	Registry providers.BuildingRegistry
	Search   *service.SearchService
}

// Close releases the storage handle
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}

// NewApp opens storage and wires the reconciliation pipeline
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	c, err := clients.NewClients(cfg, logger)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewStorage(cfg.Storage.DatabasePath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	matcherCfg := cfg.MatcherConfig()
	fetcher := matcher.NewCandidateFetcher(c.Registry, matcherCfg.RegistryTimeout, logger)
	orchestrator := reconcile.NewOrchestrator(
		matcher.NewMatcher(matcherCfg, fetcher),
		store,
		logger,
		reconcile.WithMaxConcurrency(cfg.Matching.MaxConcurrency),
	)

	search := service.NewSearchService(c.Feed, orchestrator, logger)
	search.SetMaxParallelBatches(cfg.Matching.MaxParallel)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		Feed:     c.Feed,
		Registry: c.Registry,
		Search:   search,
	}, nil
}
