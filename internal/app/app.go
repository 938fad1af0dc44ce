// Package app wires configuration into a running pick service.
package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/smart-picks/internal/broadcast"
	"github.com/yourusername/smart-picks/internal/cache"
	"github.com/yourusername/smart-picks/internal/config"
	"github.com/yourusername/smart-picks/internal/database"
	"github.com/yourusername/smart-picks/internal/datasource"
	"github.com/yourusername/smart-picks/internal/repository"
	"github.com/yourusername/smart-picks/internal/service"
)

// App holds the long-lived components shared by the entry points
type App struct {
	Config  *config.Config
	Logger  *logrus.Logger
	DB      *database.DB // nil when persistence is in memory
	Sources *datasource.Sources
	Cache   *cache.TeamRateCache
	Hub     *broadcast.Hub
	Repos   *repository.Repositories
	Service *service.PickService
}

// New connects the database when enabled and builds the sources and pick service.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	if cfg.Database.Enabled {
		db, err := database.Initialize(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.DB = db
		repos, err := repository.NewRepositories(db)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize repositories: %w", err)
		}
		a.Repos = repos
		logger.Info("Database connection established")
	} else {
		a.Repos = repository.NewMemoryRepositories()
		logger.Info("Database disabled; keeping picks in memory")
	}

	sources, err := datasource.NewFactory(cfg, logger).NewSources()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create data sources: %w", err)
	}
	a.Sources = sources

	byName := make(map[string]datasource.DataSource)
	for _, t := range sources.Available() {
		src, _ := sources.Get(t)
		byName[src.Name()] = src
	}

	var fallback datasource.DataSource
	if sources.Simulated.IsEnabled() {
		fallback = sources.Simulated
	}

	a.Cache = cache.NewTeamRateCache(cfg.CacheTTL(), cfg.Cache.MaxSize)
	a.Hub = broadcast.NewHub(logger)

	svc, err := service.NewPickService(cfg, service.Dependencies{
		Sources:   byName,
		Fallback:  fallback,
		Odds:      sources.Odds,
		Repos:     a.Repos,
		Cache:     a.Cache,
		Publisher: a.Hub,
		Logger:    logger,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create pick service: %w", err)
	}
	a.Service = svc

	return a, nil
}

// Close releases connections and disconnects stream clients
func (a *App) Close() {
	if a.Hub != nil {
		a.Hub.Close()
	}
	if a.Sources != nil {
		if err := a.Sources.Close(); err != nil {
			a.Logger.WithError(err).Warn("Failed to close data sources")
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
