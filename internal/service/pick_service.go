// Package service runs analysis cycles: fetch fixtures and histories, score, select and persist picks.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/smart-picks/internal/cache"
	"github.com/yourusername/smart-picks/internal/config"
	"github.com/yourusername/smart-picks/internal/datasource"
	"github.com/yourusername/smart-picks/internal/logger"
	"github.com/yourusername/smart-picks/internal/models"
	"github.com/yourusername/smart-picks/internal/picks"
	"github.com/yourusername/smart-picks/internal/repository"
)

var (
	// ErrMarketNotConfigured is returned for markets missing from configuration or disabled
	ErrMarketNotConfigured = errors.New("market not configured")
	// ErrCycleInProgress is returned when a cycle for the same market is already running
	ErrCycleInProgress = errors.New("analysis cycle already in progress")
	// ErrNoFixtureSource is returned when neither the primary nor the fallback source is usable
	ErrNoFixtureSource = errors.New("no fixture source available")
)

// Publisher receives each cycle's picks, e.g. to stream them to clients
type Publisher interface {
	PublishPicks(market models.Market, cycleID uuid.UUID, picks []*models.PickRecord)
}

// Dependencies are the collaborators of a PickService
type Dependencies struct {
	Sources   map[string]datasource.DataSource // keyed by DataSource.Name()
	Fallback  datasource.DataSource            // used when the primary source fails or is empty
	Odds      datasource.OddsSource            // optional
	Repos     *repository.Repositories
	Cache     *cache.TeamRateCache // optional
	Publisher Publisher            // optional
	Logger    *logrus.Logger
}

// PickService orchestrates analysis cycles for the configured markets
type PickService struct {
	cfg       *config.Config
	engines   map[models.Market]*picks.Engine
	sources   map[string]datasource.DataSource
	fallback  datasource.DataSource
	odds      datasource.OddsSource
	repos     *repository.Repositories
	cache     *cache.TeamRateCache
	publisher Publisher
	logger    *logrus.Entry
	pickLog   *logger.PickLogger
	now       func() time.Time

	mu      sync.Mutex
	running map[models.Market]bool
}

// NewPickService builds one engine per enabled market, validating window size and thresholds up front
func NewPickService(cfg *config.Config, deps Dependencies) (*PickService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if deps.Repos == nil {
		return nil, fmt.Errorf("repositories are required")
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewDiscardLogger()
	}

	engines := make(map[models.Market]*picks.Engine)
	for _, mc := range cfg.EnabledMarkets() {
		engine, err := picks.NewEngine(cfg.Engine.WindowSize, mc.Threshold)
		if err != nil {
			return nil, fmt.Errorf("invalid engine settings for market %s: %w", mc.Name, err)
		}
		engines[mc.Market()] = engine
	}

	sources := deps.Sources
	if sources == nil {
		sources = make(map[string]datasource.DataSource)
	}

	return &PickService{
		cfg:       cfg,
		engines:   engines,
		sources:   sources,
		fallback:  deps.Fallback,
		odds:      deps.Odds,
		repos:     deps.Repos,
		cache:     deps.Cache,
		publisher: deps.Publisher,
		logger:    deps.Logger.WithField("component", "pick_service"),
		pickLog:   logger.NewPickLogger(deps.Logger),
		now:       time.Now,
		running:   make(map[models.Market]bool),
	}, nil
}

// Markets returns the markets this service can analyse
func (s *PickService) Markets() []models.Market {
	var out []models.Market
	for _, m := range models.AllMarkets() {
		if _, ok := s.engines[m]; ok {
			out = append(out, m)
		}
	}
	return out
}

// Engine returns the engine configured for market
func (s *PickService) Engine(market models.Market) (*picks.Engine, bool) {
	e, ok := s.engines[market]
	return e, ok
}

// RunAll runs one cycle per enabled market, continuing past failures
func (s *PickService) RunAll(ctx context.Context) ([]*CycleResult, error) {
	var (
		results []*CycleResult
		errs    []error
	)
	for _, market := range s.Markets() {
		result, err := s.RunCycle(ctx, market)
		if result != nil {
			results = append(results, result)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", market, err))
		}
	}
	return results, errors.Join(errs...)
}

// LatestPicks returns up to limit picks from the market's most recent cycle
func (s *PickService) LatestPicks(ctx context.Context, market models.Market, limit int) ([]*models.PickRecord, error) {
	return s.repos.Pick.LoadPicks(ctx, market, limit)
}

// LatestRun returns the market's most recent cycle record
func (s *PickService) LatestRun(ctx context.Context, market models.Market) (*models.AnalysisRun, error) {
	return s.repos.AnalysisRun.Latest(ctx, market)
}

// TeamStats returns the stored team rate snapshots for a league
func (s *PickService) TeamStats(ctx context.Context, league string, market models.Market) ([]*models.TeamStats, error) {
	return s.repos.TeamStats.LoadTeamStats(ctx, league, market)
}

func (s *PickService) acquire(market models.Market) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[market] {
		return false
	}
	s.running[market] = true
	return true
}

func (s *PickService) release(market models.Market) {
	s.mu.Lock()
	delete(s.running, market)
	s.mu.Unlock()
}
