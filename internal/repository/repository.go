package repository

import (
	"context"
	"fmt"

	"github.com/yourusername/smart-picks/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Pick        PickRepository
	TeamStats   TeamStatsRepository
	AnalysisRun AnalysisRunRepository

	tx func(ctx context.Context, fn func(context.Context) error) error
}

// NewRepositories creates and returns the PostgreSQL repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Pick:        NewPostgresPickRepository(db),
		TeamStats:   NewPostgresTeamStatsRepository(db),
		AnalysisRun: NewPostgresAnalysisRunRepository(db),
		tx:          db.WithTransaction,
	}, nil
}

// NewMemoryRepositories creates process-local repositories for running without a database
func NewMemoryRepositories() *Repositories {
	runs := NewMemoryAnalysisRunRepository()
	return &Repositories{
		Pick:        NewMemoryPickRepository(runs),
		TeamStats:   NewMemoryTeamStatsRepository(),
		AnalysisRun: runs,
	}
}

// WithTransaction runs fn atomically when the backing store supports it
func (r *Repositories) WithTransaction(ctx context.Context, fn func(context.Context) error) error {
	if r.tx == nil {
		return fn(ctx)
	}
	return r.tx(ctx, fn)
}
