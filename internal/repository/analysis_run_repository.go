package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/smart-picks/internal/database"
	"github.com/yourusername/smart-picks/internal/models"
)

// PostgresAnalysisRunRepository implements AnalysisRunRepository for PostgreSQL
type PostgresAnalysisRunRepository struct {
	db *database.DB
}

// NewPostgresAnalysisRunRepository creates a new analysis run repository
func NewPostgresAnalysisRunRepository(db *database.DB) AnalysisRunRepository {
	return &PostgresAnalysisRunRepository{db: db}
}

// Record inserts a completed cycle
func (r *PostgresAnalysisRunRepository) Record(ctx context.Context, run *models.AnalysisRun) error {
	query := `
		INSERT INTO analysis_runs (cycle_id, market, source, threshold, window_size, fixtures_analyzed,
		                           teams_without_data, picks_selected, started_at, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Querier(ctx).Exec(ctx, query,
		run.CycleID, string(run.Market), string(run.Source), run.Threshold, run.WindowSize, run.FixturesAnalyzed,
		run.TeamsWithoutData, run.PicksSelected, run.StartedAt, run.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to record analysis run: %w", err)
	}
	return nil
}

// Latest retrieves the most recent cycle for a market
func (r *PostgresAnalysisRunRepository) Latest(ctx context.Context, market models.Market) (*models.AnalysisRun, error) {
	query := `
		SELECT cycle_id, market, source, threshold, window_size, fixtures_analyzed,
		       teams_without_data, picks_selected, started_at, duration_ms
		FROM analysis_runs
		WHERE market = $1
		ORDER BY started_at DESC
		LIMIT 1
	`

	var (
		run                models.AnalysisRun
		marketName, source string
		durationMS         int64
	)
	err := r.db.Querier(ctx).QueryRow(ctx, query, string(market)).Scan(
		&run.CycleID, &marketName, &source, &run.Threshold, &run.WindowSize, &run.FixturesAnalyzed,
		&run.TeamsWithoutData, &run.PicksSelected, &run.StartedAt, &durationMS,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest analysis run: %w", err)
	}

	run.Market = models.Market(marketName)
	run.Source = models.PickSource(source)
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return &run, nil
}
