package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/smart-picks/internal/cache"
	"github.com/yourusername/smart-picks/internal/config"
	"github.com/yourusername/smart-picks/internal/datasource"
	"github.com/yourusername/smart-picks/internal/metrics"
	"github.com/yourusername/smart-picks/internal/models"
	"github.com/yourusername/smart-picks/internal/picks"
)

// CycleResult is the outcome of one analysis cycle
type CycleResult struct {
	CycleID          uuid.UUID
	Market           models.Market
	Source           models.PickSource
	SourceName       string
	StartedAt        time.Time
	Duration         time.Duration
	Fixtures         []models.Fixture
	Rates            map[string]picks.TeamRate // keyed by league and team
	Scores           []picks.FixtureScore
	Picks            []*models.PickRecord
	TeamsWithoutData int
}

// teamRef is a team within a league
type teamRef struct {
	League string
	Name   string
}

func (t teamRef) key() string {
	return strings.ToLower(t.League) + "|" + strings.ToLower(t.Name)
}

// RunCycle fetches fixtures for market, scores them and persists the selected picks.
// Provider failures degrade to simulated fixtures or empty histories; only
// configuration, fixture-source and persistence failures are returned.
func (s *PickService) RunCycle(ctx context.Context, market models.Market) (*CycleResult, error) {
	mc, ok := s.cfg.Market(market)
	engine, hasEngine := s.engines[market]
	if !ok || !hasEngine {
		return nil, fmt.Errorf("%w: %s", ErrMarketNotConfigured, market)
	}
	if !s.acquire(market) {
		return nil, fmt.Errorf("%w: %s", ErrCycleInProgress, market)
	}
	defer s.release(market)

	if timeout := s.cfg.CycleTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result := &CycleResult{
		CycleID:   uuid.New(),
		Market:    market,
		StartedAt: s.now().UTC(),
	}
	cycleID := result.CycleID.String()
	s.pickLog.LogCycleStarted(cycleID, string(market), engine.Threshold(), engine.WindowSize())

	source, fixtures, err := s.fetchFixtures(ctx, mc, result)
	if err != nil {
		metrics.RecordCycle(string(market), "failed", time.Since(result.StartedAt).Seconds())
		return nil, err
	}
	result.Fixtures = fixtures

	histories := s.fetchHistories(ctx, source, market, fixtures, engine.WindowSize())
	s.score(result, engine, histories)
	s.enrichWithOdds(ctx, mc, result)

	result.Duration = s.now().UTC().Sub(result.StartedAt)
	persistErr := s.persist(ctx, engine, result)

	if s.publisher != nil {
		s.publisher.PublishPicks(market, result.CycleID, result.Picks)
	}

	s.recordMetrics(result, persistErr)
	s.pickLog.LogCycleCompleted(cycleID, string(market), result.SourceName, len(result.Fixtures),
		len(result.Picks), result.TeamsWithoutData, result.Duration)

	if persistErr != nil {
		return result, fmt.Errorf("failed to persist cycle %s: %w", cycleID, persistErr)
	}
	return result, nil
}

// fetchFixtures reads fixtures from the market's source across its leagues,
// falling back to the simulated source when the primary yields nothing.
func (s *PickService) fetchFixtures(ctx context.Context, mc config.MarketConfig, result *CycleResult) (datasource.DataSource, []models.Fixture, error) {
	from := result.StartedAt
	to := from.Add(mc.Lookahead())

	primary, ok := s.sources[mc.Source]
	reason := "source not enabled"
	if ok && primary.IsEnabled() {
		fixtures, err := s.collectFixtures(ctx, primary, mc, from, to)
		switch {
		case err != nil:
			reason = err.Error()
		case len(fixtures) == 0:
			reason = "no upcoming fixtures"
		default:
			result.Source, result.SourceName = s.pickSourceFor(primary), primary.Name()
			return primary, fixtures, nil
		}
		if primary == s.fallback {
			// Simulated is already the primary; an empty simulated slate is a valid result.
			result.Source, result.SourceName = models.PickSourceSimulated, primary.Name()
			return primary, fixtures, err
		}
	}

	if s.fallback == nil || !s.fallback.IsEnabled() {
		return nil, nil, fmt.Errorf("%w for market %s: %s", ErrNoFixtureSource, mc.Name, reason)
	}

	s.pickLog.LogFallback(result.CycleID.String(), mc.Name, mc.Source, reason)
	metrics.RecordFallback(mc.Name)

	fixtures, err := s.collectFixtures(ctx, s.fallback, mc, from, to)
	if err != nil {
		return nil, nil, fmt.Errorf("fallback source failed for market %s: %w", mc.Name, err)
	}
	result.Source, result.SourceName = models.PickSourceSimulated, s.fallback.Name()
	return s.fallback, fixtures, nil
}

func (s *PickService) pickSourceFor(src datasource.DataSource) models.PickSource {
	if src == s.fallback {
		return models.PickSourceSimulated
	}
	return models.PickSourceLive
}

// collectFixtures fetches every league in order. A failing league is skipped
// unless all leagues fail.
func (s *PickService) collectFixtures(ctx context.Context, src datasource.DataSource, mc config.MarketConfig, from, to time.Time) ([]models.Fixture, error) {
	var (
		fixtures []models.Fixture
		lastErr  error
		failed   int
	)
	for _, league := range mc.Leagues {
		data, err := src.FetchUpcomingFixtures(ctx, league, from, to)
		if err != nil {
			failed++
			lastErr = err
			s.logger.WithError(err).WithFields(logrus.Fields{
				"source": src.Name(),
				"league": league,
			}).Warn("Failed to fetch fixtures")
			continue
		}
		for _, fd := range data {
			fixture := fd.ToFixture(mc.Market(), len(fixtures))
			if err := fixture.Validate(); err != nil {
				s.logger.WithError(err).WithField("external_id", fd.SourceID).Warn("Skipping invalid fixture")
				continue
			}
			fixtures = append(fixtures, fixture)
		}
	}
	if failed == len(mc.Leagues) && lastErr != nil {
		return nil, lastErr
	}
	return fixtures, nil
}

// fetchHistories loads each distinct team's recent results concurrently. Teams
// with a cached rate are skipped. Failures degrade to an empty history that is
// scored for this cycle only.
func (s *PickService) fetchHistories(ctx context.Context, src datasource.DataSource, market models.Market, fixtures []models.Fixture, windowSize int) map[string]history {
	teams := distinctTeams(fixtures)
	histories := make(map[string]history, len(teams))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	if n := s.cfg.Engine.MaxConcurrentFetches; n > 0 {
		g.SetLimit(n)
	}

	limit := s.cfg.Engine.HistoryLimit
	if limit < windowSize {
		limit = windowSize
	}

	for _, team := range teams {
		if s.cache != nil {
			if rate, ok := s.cache.Get(s.cacheKey(team, market, windowSize)); ok {
				mu.Lock()
				histories[team.key()] = history{team: team, rate: &rate}
				mu.Unlock()
				continue
			}
		}

		g.Go(func() error {
			results, err := src.FetchRecentMatches(gctx, team.Name, team.League, limit)
			failed := err != nil
			if failed {
				s.logger.WithError(err).WithFields(logrus.Fields{
					"source": src.Name(),
					"team":   team.Name,
					"league": team.League,
				}).Warn("Failed to fetch team history, treating as no data")
				results = nil
			}
			h := history{team: team, outcomes: picks.OutcomesFor(team.Name, market, results), fetchFailed: failed}

			mu.Lock()
			histories[team.key()] = h
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return histories
}

type history struct {
	team        teamRef
	outcomes    []picks.MatchOutcome
	rate        *picks.TeamRate // set when served from cache
	fetchFailed bool            // never cached
}

func distinctTeams(fixtures []models.Fixture) []teamRef {
	seen := make(map[string]bool)
	var teams []teamRef
	for _, f := range fixtures {
		for _, name := range []string{f.HomeTeam, f.AwayTeam} {
			t := teamRef{League: f.League, Name: name}
			if seen[t.key()] {
				continue
			}
			seen[t.key()] = true
			teams = append(teams, t)
		}
	}
	return teams
}

func (s *PickService) cacheKey(team teamRef, market models.Market, windowSize int) cache.Key {
	return cache.Key{Team: team.Name, League: team.League, Market: market, WindowSize: windowSize}
}

// score computes rates, fixture scores and picks in discovery order
func (s *PickService) score(result *CycleResult, engine *picks.Engine, histories map[string]history) {
	cycleID := result.CycleID.String()
	result.Rates = make(map[string]picks.TeamRate, len(histories))

	rateOf := func(league, name string) picks.TeamRate {
		t := teamRef{League: league, Name: name}
		if r, ok := result.Rates[t.key()]; ok {
			return r
		}
		h := histories[t.key()]
		var r picks.TeamRate
		cached := h.rate != nil
		if cached {
			r = *h.rate
		} else {
			r = engine.TeamRate(name, h.outcomes)
			if s.cache != nil && !h.fetchFailed {
				s.cache.Set(s.cacheKey(t, result.Market, engine.WindowSize()), r)
			}
		}
		if !r.HasData() {
			result.TeamsWithoutData++
		}
		result.Rates[t.key()] = r
		s.pickLog.LogTeamRate(cycleID, name, r.Rate, r.SampleSize, cached)
		return r
	}

	byID := make(map[string]models.Fixture, len(result.Fixtures))
	result.Scores = make([]picks.FixtureScore, 0, len(result.Fixtures))
	for _, f := range result.Fixtures {
		byID[f.Key()] = f
		home := rateOf(f.League, f.HomeTeam)
		away := rateOf(f.League, f.AwayTeam)
		result.Scores = append(result.Scores, engine.ScoreFixture(f.Key(), home, away))
	}

	selected := engine.Select(result.Scores)
	createdAt := s.now().UTC()
	result.Picks = make([]*models.PickRecord, 0, len(selected))
	for _, p := range selected {
		f := byID[p.FixtureIdentity]
		home := result.Rates[teamRef{League: f.League, Name: f.HomeTeam}.key()]
		away := result.Rates[teamRef{League: f.League, Name: f.AwayTeam}.key()]
		record := &models.PickRecord{
			ID:                uuid.New(),
			CycleID:           result.CycleID,
			FixtureID:         f.ID,
			ExternalID:        f.ExternalID,
			Market:            result.Market,
			League:            f.League,
			HomeTeam:          f.HomeTeam,
			AwayTeam:          f.AwayTeam,
			StartTime:         f.StartTime,
			Rank:              p.Rank,
			Probability:       p.Probability,
			ConfidencePercent: p.ConfidencePercent,
			HomeRate:          p.HomeRate,
			AwayRate:          p.AwayRate,
			HomeSampleSize:    home.SampleSize,
			AwaySampleSize:    away.SampleSize,
			Source:            result.Source,
			CreatedAt:         createdAt,
		}
		result.Picks = append(result.Picks, record)
		s.pickLog.LogPickSelected(cycleID, f.ID.String(), f.Label(), p.Rank, p.Probability, p.ConfidencePercent)
	}
}

// enrichWithOdds attaches the best available price to each pick. Odds are
// informational; failures are logged and the picks are kept unchanged.
func (s *PickService) enrichWithOdds(ctx context.Context, mc config.MarketConfig, result *CycleResult) {
	if s.odds == nil || mc.OddsSportKey == "" || len(result.Picks) == 0 || result.Source != models.PickSourceLive {
		return
	}

	odds, err := s.odds.FetchOdds(ctx, mc.OddsSportKey, result.Market)
	if err != nil {
		s.logger.WithError(err).WithField("sport_key", mc.OddsSportKey).Warn("Failed to fetch odds")
		return
	}

	for _, p := range result.Picks {
		match := datasource.MatchOdds(odds, p.HomeTeam, p.AwayTeam)
		if match == nil {
			continue
		}
		price := match.BestPrice
		p.BestOdds = &price
		p.Bookmaker = match.Bookmaker
	}
}

// persist stores the run record, picks and team snapshots atomically
func (s *PickService) persist(ctx context.Context, engine *picks.Engine, result *CycleResult) error {
	run := &models.AnalysisRun{
		CycleID:          result.CycleID,
		Market:           result.Market,
		Source:           result.Source,
		Threshold:        engine.Threshold(),
		WindowSize:       engine.WindowSize(),
		FixturesAnalyzed: len(result.Fixtures),
		TeamsWithoutData: result.TeamsWithoutData,
		PicksSelected:    len(result.Picks),
		StartedAt:        result.StartedAt,
		Duration:         result.Duration,
	}

	stats := make([]*models.TeamStats, 0, len(result.Rates))
	if result.Source == models.PickSourceLive {
		for _, t := range distinctTeams(result.Fixtures) {
			r := result.Rates[t.key()]
			stats = append(stats, &models.TeamStats{
				Team:       t.Name,
				League:     t.League,
				Market:     result.Market,
				WindowSize: engine.WindowSize(),
				Rate:       r.Rate,
				SampleSize: r.SampleSize,
				ComputedAt: result.StartedAt,
			})
		}
	}

	return s.repos.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repos.AnalysisRun.Record(txCtx, run); err != nil {
			return err
		}
		if err := s.repos.Pick.SavePicks(txCtx, result.CycleID, result.Picks); err != nil {
			return err
		}
		return s.repos.TeamStats.SaveTeamStats(txCtx, stats)
	})
}

func (s *PickService) recordMetrics(result *CycleResult, persistErr error) {
	market := string(result.Market)
	outcome := "success"
	if persistErr != nil {
		outcome = "persist_failed"
	}
	metrics.RecordCycle(market, outcome, result.Duration.Seconds())
	metrics.RecordFixturesScored(market, len(result.Scores))
	metrics.UpdateLatestPicks(market, len(result.Picks))
	metrics.UpdateTeamsWithoutData(market, result.TeamsWithoutData)
	for _, p := range result.Picks {
		metrics.RecordPick(market, p.Probability)
	}
}
