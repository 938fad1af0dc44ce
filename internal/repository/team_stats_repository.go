package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/smart-picks/internal/database"
	"github.com/yourusername/smart-picks/internal/models"
)

// PostgresTeamStatsRepository implements TeamStatsRepository for PostgreSQL
type PostgresTeamStatsRepository struct {
	db *database.DB
}

// NewPostgresTeamStatsRepository creates a new team stats repository
func NewPostgresTeamStatsRepository(db *database.DB) TeamStatsRepository {
	return &PostgresTeamStatsRepository{db: db}
}

// SaveTeamStats upserts the latest snapshot per team, league and market
func (r *PostgresTeamStatsRepository) SaveTeamStats(ctx context.Context, stats []*models.TeamStats) error {
	if len(stats) == 0 {
		return nil
	}

	query := `
		INSERT INTO team_stats (team, league, market, window_size, rate, sample_size, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (team, league, market) DO UPDATE SET
			window_size = EXCLUDED.window_size,
			rate = EXCLUDED.rate,
			sample_size = EXCLUDED.sample_size,
			computed_at = EXCLUDED.computed_at
	`

	batch := &pgx.Batch{}
	for _, s := range stats {
		batch.Queue(query, s.Team, s.League, string(s.Market), s.WindowSize, s.Rate, s.SampleSize, s.ComputedAt)
	}

	results := r.db.Querier(ctx).SendBatch(ctx, batch)
	defer results.Close()

	for range stats {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to save team stats: %w", err)
		}
	}
	return nil
}

// LoadTeamStats retrieves the snapshots for a league and market ordered by team
func (r *PostgresTeamStatsRepository) LoadTeamStats(ctx context.Context, league string, market models.Market) ([]*models.TeamStats, error) {
	query := `
		SELECT team, league, market, window_size, rate, sample_size, computed_at
		FROM team_stats
		WHERE league = $1 AND market = $2
		ORDER BY team
	`

	rows, err := r.db.Querier(ctx).Query(ctx, query, league, string(market))
	if err != nil {
		return nil, fmt.Errorf("failed to query team stats: %w", err)
	}
	defer rows.Close()

	stats := make([]*models.TeamStats, 0)
	for rows.Next() {
		var (
			s          models.TeamStats
			marketName string
		)
		if err := rows.Scan(&s.Team, &s.League, &marketName, &s.WindowSize, &s.Rate, &s.SampleSize, &s.ComputedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team stats: %w", err)
		}
		s.Market = models.Market(marketName)
		stats = append(stats, &s)
	}

	return stats, rows.Err()
}
