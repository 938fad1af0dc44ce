// Package scheduler triggers pick refresh cycles on cron schedules.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/smart-picks/internal/models"
	"github.com/yourusername/smart-picks/internal/service"
)

// CycleRunner runs one analysis cycle for a market
type CycleRunner interface {
	RunCycle(ctx context.Context, market models.Market) (*service.CycleResult, error)
}

// Scheduler manages scheduled pick refresh jobs
type Scheduler struct {
	cron            *cron.Cron
	runner          CycleRunner
	logger          *logrus.Entry
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          map[models.Market]cron.EntryID
	jobTimeout      time.Duration
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler. jobTimeout bounds each refresh run.
func NewScheduler(runner CycleRunner, jobTimeout time.Duration, logger *logrus.Logger) *Scheduler {
	entry := logger.WithField("component", "scheduler")
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(cronLogger{entry}), cron.SkipIfStillRunning(cronLogger{entry})),
		),
		runner:          runner,
		logger:          entry,
		jobIDs:          make(map[models.Market]cron.EntryID),
		jobTimeout:      jobTimeout,
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleRefresh schedules a pick refresh for market on a standard 5-field cron expression
func (s *Scheduler) ScheduleRefresh(market models.Market, cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if _, exists := s.jobIDs[market]; exists {
		return fmt.Errorf("refresh for market %s is already scheduled", market)
	}

	entryID, err := s.cron.AddFunc(cronExpression, func() { s.runRefresh(market) })
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs[market] = entryID
	s.logger.WithFields(logrus.Fields{
		"market":   market,
		"schedule": cronExpression,
	}).Info("Scheduled pick refresh")

	return nil
}

func (s *Scheduler) runRefresh(market models.Market) {
	ctx := context.Background()
	if s.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.jobTimeout)
		defer cancel()
	}

	result, err := s.runner.RunCycle(ctx, market)
	switch {
	case errors.Is(err, service.ErrCycleInProgress):
		s.logger.WithField("market", market).Debug("Skipping refresh, cycle already running")
	case err != nil:
		s.logger.WithError(err).WithField("market", market).Error("Scheduled refresh failed")
	default:
		s.logger.WithFields(logrus.Fields{
			"market":   market,
			"cycle_id": result.CycleID,
			"picks":    len(result.Picks),
		}).Debug("Scheduled refresh completed")
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop stops the scheduler, waiting up to the graceful timeout for running jobs
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	s.isRunning = false
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-time.After(s.gracefulTimeout):
		return fmt.Errorf("timed out waiting for running jobs after %s", s.gracefulTimeout)
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() && (nextRun.IsZero() || entry.Next.Before(nextRun)) {
			nextRun = entry.Next
		}
	}

	return nextRun
}

// NextRuns returns the next run time per scheduled market
func (s *Scheduler) NextRuns() map[models.Market]time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[models.Market]time.Time, len(s.jobIDs))
	for market, jobID := range s.jobIDs {
		if entry := s.cron.Entry(jobID); entry.Valid() {
			out[market] = entry.Next
		}
	}
	return out
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		if entry := s.cron.Entry(jobID); entry.Valid() {
			entries = append(entries, entry)
		}
	}

	return entries
}

// RemoveJob removes the refresh job for market
func (s *Scheduler) RemoveJob(market models.Market) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot remove job while scheduler is running")
	}

	jobID, ok := s.jobIDs[market]
	if !ok {
		return fmt.Errorf("no refresh scheduled for market %s", market)
	}
	s.cron.Remove(jobID)
	delete(s.jobIDs, market)
	s.logger.WithField("market", market).Info("Removed refresh job")

	return nil
}

// cronLogger adapts logrus to cron.Logger
type cronLogger struct {
	entry *logrus.Entry
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(toFields(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.entry.WithError(err).WithFields(toFields(keysAndValues)).Error(msg)
}

func toFields(keysAndValues []interface{}) logrus.Fields {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}
