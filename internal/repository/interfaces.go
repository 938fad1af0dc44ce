package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/yourusername/smart-picks/internal/models"
)

// PickRepository defines the interface for pick data access
type PickRepository interface {
	// SavePicks stores the picks produced by one cycle
	SavePicks(ctx context.Context, cycleID uuid.UUID, picks []*models.PickRecord) error
	// LoadPicks returns up to limit picks from the market's latest cycle, ordered by rank
	LoadPicks(ctx context.Context, market models.Market, limit int) ([]*models.PickRecord, error)
	// LatestCycle returns the most recent cycle ID for market, or models.ErrNotFound
	LatestCycle(ctx context.Context, market models.Market) (uuid.UUID, error)
}

// TeamStatsRepository defines the interface for team rate snapshots
type TeamStatsRepository interface {
	SaveTeamStats(ctx context.Context, stats []*models.TeamStats) error
	LoadTeamStats(ctx context.Context, league string, market models.Market) ([]*models.TeamStats, error)
}

// AnalysisRunRepository defines the interface for cycle bookkeeping
type AnalysisRunRepository interface {
	Record(ctx context.Context, run *models.AnalysisRun) error
	Latest(ctx context.Context, market models.Market) (*models.AnalysisRun, error)
}
