package database

import (
	"context"
	"fmt"

	"github.com/yourusername/smart-picks/internal/config"
)

// schema is applied idempotently at startup
var schema = []string{
	`CREATE TABLE IF NOT EXISTS analysis_runs (
		cycle_id          UUID PRIMARY KEY,
		market            TEXT NOT NULL,
		source            TEXT NOT NULL,
		threshold         DOUBLE PRECISION NOT NULL,
		window_size       INTEGER NOT NULL,
		fixtures_analyzed INTEGER NOT NULL,
		teams_without_data INTEGER NOT NULL,
		picks_selected    INTEGER NOT NULL,
		started_at        TIMESTAMPTZ NOT NULL,
		duration_ms       BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_analysis_runs_market_started ON analysis_runs (market, started_at DESC)`,
	`CREATE TABLE IF NOT EXISTS picks (
		id                 UUID PRIMARY KEY,
		cycle_id           UUID NOT NULL REFERENCES analysis_runs (cycle_id) ON DELETE CASCADE,
		fixture_id         UUID NOT NULL,
		external_id        TEXT NOT NULL,
		market             TEXT NOT NULL,
		league             TEXT NOT NULL,
		home_team          TEXT NOT NULL,
		away_team          TEXT NOT NULL,
		start_time         TIMESTAMPTZ NOT NULL,
		rank               INTEGER NOT NULL,
		probability        DOUBLE PRECISION NOT NULL,
		confidence_percent INTEGER NOT NULL,
		home_rate          DOUBLE PRECISION NOT NULL,
		away_rate          DOUBLE PRECISION NOT NULL,
		home_sample_size   INTEGER NOT NULL,
		away_sample_size   INTEGER NOT NULL,
		best_odds          NUMERIC(10, 4),
		bookmaker          TEXT NOT NULL DEFAULT '',
		source             TEXT NOT NULL,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (cycle_id, fixture_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_picks_market_cycle ON picks (market, cycle_id, rank)`,
	`CREATE TABLE IF NOT EXISTS team_stats (
		team        TEXT NOT NULL,
		league      TEXT NOT NULL,
		market      TEXT NOT NULL,
		window_size INTEGER NOT NULL,
		rate        DOUBLE PRECISION NOT NULL,
		sample_size INTEGER NOT NULL,
		computed_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (team, league, market)
	)`,
}

// Initialize creates a database connection pool and applies the schema
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := InitSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// InitSchema creates the pick tables if they do not exist
func InitSchema(ctx context.Context, db *DB) error {
	return db.WithTransaction(ctx, func(txCtx context.Context) error {
		q := db.Querier(txCtx)
		for _, stmt := range schema {
			if _, err := q.Exec(txCtx, stmt); err != nil {
				return fmt.Errorf("failed to apply schema: %w", err)
			}
		}
		return nil
	})
}
