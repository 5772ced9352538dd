package database

import (
	"context"
	"time"

	"github.com/linelab/linelab/pkg/logger"
)

// Janitor periodically deletes runs older than the retention window
type Janitor struct {
	repo      *RunRepository
	logger    *logger.Logger
	retention time.Duration
	interval  time.Duration
}

// NewJanitor creates a retention sweeper. A retention of 0 disables
// deletion; the janitor then only logs the run count on each sweep.
func NewJanitor(repo *RunRepository, log *logger.Logger, retention, interval time.Duration) *Janitor {
	return &Janitor{
		repo:      repo,
		logger:    log,
		retention: retention,
		interval:  interval,
	}
}

// Start begins the periodic sweep and blocks until ctx is cancelled
func (j *Janitor) Start(ctx context.Context) {
	// Sweep immediately on startup
	j.sweep()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("Run janitor stopped")
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *Janitor) sweep() {
	if j.retention <= 0 {
		return
	}
	cutoff := time.Now().Add(-j.retention)
	deleted, err := j.repo.DeleteOlderThan(cutoff)
	if err != nil {
		j.logger.Error("Failed to delete expired runs", logger.Error(err))
		return
	}
	if deleted > 0 {
		j.logger.Info("Deleted expired runs",
			logger.Int64("deleted", deleted),
			logger.String("cutoff", cutoff.Format(time.RFC3339)))
	}
}
