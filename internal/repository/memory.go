package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/yourusername/smart-picks/internal/models"
)

// MemoryPickRepository keeps picks in process memory
type MemoryPickRepository struct {
	mu      sync.RWMutex
	byCycle map[uuid.UUID][]*models.PickRecord
	latest  map[models.Market]uuid.UUID
	runs    AnalysisRunRepository
}

// NewMemoryPickRepository creates an in-memory pick repository. When runs is
// non-nil the latest cycle is taken from it so cycles without picks still count.
func NewMemoryPickRepository(runs AnalysisRunRepository) *MemoryPickRepository {
	return &MemoryPickRepository{
		byCycle: make(map[uuid.UUID][]*models.PickRecord),
		latest:  make(map[models.Market]uuid.UUID),
		runs:    runs,
	}
}

// SavePicks stores copies of the picks under cycleID
func (r *MemoryPickRepository) SavePicks(ctx context.Context, cycleID uuid.UUID, picks []*models.PickRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := make([]*models.PickRecord, 0, len(picks))
	for _, p := range picks {
		cp := *p
		stored = append(stored, &cp)
		r.latest[p.Market] = cycleID
	}
	r.byCycle[cycleID] = append(r.byCycle[cycleID], stored...)
	return nil
}

// LoadPicks returns the latest cycle's picks ordered by rank
func (r *MemoryPickRepository) LoadPicks(ctx context.Context, market models.Market, limit int) ([]*models.PickRecord, error) {
	cycleID, err := r.LatestCycle(ctx, market)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	picks := make([]*models.PickRecord, 0)
	for _, p := range r.byCycle[cycleID] {
		if p.Market != market {
			continue
		}
		cp := *p
		picks = append(picks, &cp)
	}
	sort.SliceStable(picks, func(i, j int) bool { return picks[i].Rank < picks[j].Rank })
	if limit > 0 && len(picks) > limit {
		picks = picks[:limit]
	}
	return picks, nil
}

// LatestCycle returns the most recent cycle for market
func (r *MemoryPickRepository) LatestCycle(ctx context.Context, market models.Market) (uuid.UUID, error) {
	if r.runs != nil {
		run, err := r.runs.Latest(ctx, market)
		if err != nil {
			return uuid.Nil, err
		}
		return run.CycleID, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	cycleID, ok := r.latest[market]
	if !ok {
		return uuid.Nil, models.ErrNotFound
	}
	return cycleID, nil
}

type teamStatsKey struct {
	team, league string
	market       models.Market
}

// MemoryTeamStatsRepository keeps the latest team snapshots in memory
type MemoryTeamStatsRepository struct {
	mu    sync.RWMutex
	stats map[teamStatsKey]models.TeamStats
}

// NewMemoryTeamStatsRepository creates an in-memory team stats repository
func NewMemoryTeamStatsRepository() *MemoryTeamStatsRepository {
	return &MemoryTeamStatsRepository{stats: make(map[teamStatsKey]models.TeamStats)}
}

// SaveTeamStats replaces the snapshot per team, league and market
func (r *MemoryTeamStatsRepository) SaveTeamStats(ctx context.Context, stats []*models.TeamStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range stats {
		key := teamStatsKey{team: strings.ToLower(s.Team), league: s.League, market: s.Market}
		r.stats[key] = *s
	}
	return nil
}

// LoadTeamStats returns the snapshots for a league and market ordered by team
func (r *MemoryTeamStatsRepository) LoadTeamStats(ctx context.Context, league string, market models.Market) ([]*models.TeamStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.TeamStats, 0)
	for key, s := range r.stats {
		if key.league != league || key.market != market {
			continue
		}
		cp := s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Team < out[j].Team })
	return out, nil
}

// MemoryAnalysisRunRepository keeps cycle records in memory
type MemoryAnalysisRunRepository struct {
	mu   sync.RWMutex
	runs []models.AnalysisRun
}

// NewMemoryAnalysisRunRepository creates an in-memory analysis run repository
func NewMemoryAnalysisRunRepository() *MemoryAnalysisRunRepository {
	return &MemoryAnalysisRunRepository{}
}

// Record appends a cycle
func (r *MemoryAnalysisRunRepository) Record(ctx context.Context, run *models.AnalysisRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.runs {
		if existing.CycleID == run.CycleID {
			return models.ErrDuplicateKey
		}
	}
	r.runs = append(r.runs, *run)
	return nil
}

// Latest returns the cycle with the newest start time for market
func (r *MemoryAnalysisRunRepository) Latest(ctx context.Context, market models.Market) (*models.AnalysisRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *models.AnalysisRun
	for i := range r.runs {
		run := r.runs[i]
		if run.Market != market {
			continue
		}
		if latest == nil || !run.StartedAt.Before(latest.StartedAt) {
			latest = &run
		}
	}
	if latest == nil {
		return nil, models.ErrNotFound
	}
	return latest, nil
}
