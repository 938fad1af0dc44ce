package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/yourusername/smart-picks/internal/database"
	"github.com/yourusername/smart-picks/internal/models"
)

// PostgresPickRepository implements PickRepository for PostgreSQL
type PostgresPickRepository struct {
	db *database.DB
}

// NewPostgresPickRepository creates a new pick repository
func NewPostgresPickRepository(db *database.DB) PickRepository {
	return &PostgresPickRepository{db: db}
}

// SavePicks inserts a cycle's picks in a single batch
func (r *PostgresPickRepository) SavePicks(ctx context.Context, cycleID uuid.UUID, picks []*models.PickRecord) error {
	if len(picks) == 0 {
		return nil
	}

	query := `
		INSERT INTO picks (id, cycle_id, fixture_id, external_id, market, league, home_team, away_team,
		                   start_time, rank, probability, confidence_percent, home_rate, away_rate,
		                   home_sample_size, away_sample_size, best_odds, bookmaker, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	batch := &pgx.Batch{}
	for _, p := range picks {
		if p.CycleID != cycleID {
			return fmt.Errorf("pick %s belongs to cycle %s, not %s", p.ID, p.CycleID, cycleID)
		}
		batch.Queue(query,
			p.ID, p.CycleID, p.FixtureID, p.ExternalID, string(p.Market), p.League, p.HomeTeam, p.AwayTeam,
			p.StartTime, p.Rank, p.Probability, p.ConfidencePercent, p.HomeRate, p.AwayRate,
			p.HomeSampleSize, p.AwaySampleSize, p.BestOdds, p.Bookmaker, string(p.Source), p.CreatedAt,
		)
	}

	results := r.db.Querier(ctx).SendBatch(ctx, batch)
	defer results.Close()

	for range picks {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to save pick: %w", err)
		}
	}
	return nil
}

// LoadPicks retrieves the latest cycle's picks for a market
func (r *PostgresPickRepository) LoadPicks(ctx context.Context, market models.Market, limit int) ([]*models.PickRecord, error) {
	cycleID, err := r.LatestCycle(ctx, market)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, cycle_id, fixture_id, external_id, market, league, home_team, away_team,
		       start_time, rank, probability, confidence_percent, home_rate, away_rate,
		       home_sample_size, away_sample_size, best_odds, bookmaker, source, created_at
		FROM picks
		WHERE cycle_id = $1
		ORDER BY rank ASC
		LIMIT $2
	`

	// LIMIT NULL returns every row
	var rowLimit *int
	if limit > 0 {
		rowLimit = &limit
	}

	rows, err := r.db.Querier(ctx).Query(ctx, query, cycleID, rowLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query picks: %w", err)
	}
	defer rows.Close()

	picks := make([]*models.PickRecord, 0)
	for rows.Next() {
		var (
			p                  models.PickRecord
			marketName, source string
			odds               decimal.NullDecimal
		)
		err := rows.Scan(
			&p.ID, &p.CycleID, &p.FixtureID, &p.ExternalID, &marketName, &p.League, &p.HomeTeam, &p.AwayTeam,
			&p.StartTime, &p.Rank, &p.Probability, &p.ConfidencePercent, &p.HomeRate, &p.AwayRate,
			&p.HomeSampleSize, &p.AwaySampleSize, &odds, &p.Bookmaker, &source, &p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pick: %w", err)
		}
		p.Market = models.Market(marketName)
		p.Source = models.PickSource(source)
		if odds.Valid {
			v := odds.Decimal
			p.BestOdds = &v
		}
		picks = append(picks, &p)
	}

	return picks, rows.Err()
}

// LatestCycle returns the most recent cycle recorded for a market
func (r *PostgresPickRepository) LatestCycle(ctx context.Context, market models.Market) (uuid.UUID, error) {
	query := `SELECT cycle_id FROM analysis_runs WHERE market = $1 ORDER BY started_at DESC LIMIT 1`

	var cycleID uuid.UUID
	err := r.db.Querier(ctx).QueryRow(ctx, query, string(market)).Scan(&cycleID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, models.ErrNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to get latest cycle: %w", err)
	}
	return cycleID, nil
}
