package database

import (
	"time"

	"gorm.io/gorm"
)

// RunRepository handles signal run database operations
type RunRepository struct {
	db *gorm.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create adds a new run record
func (r *RunRepository) Create(run *SignalRun) error {
	return r.db.Create(run).Error
}

// GetRecent retrieves the most recent N runs
func (r *RunRepository) GetRecent(limit int) ([]SignalRun, error) {
	var runs []SignalRun
	err := r.db.Order("created_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

// GetRecentPaginated retrieves runs with pagination
func (r *RunRepository) GetRecentPaginated(page, perPage int) ([]SignalRun, int64, error) {
	var runs []SignalRun
	var total int64

	if err := r.db.Model(&SignalRun{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	err := r.db.Order("created_at DESC").
		Offset(offset).
		Limit(perPage).
		Find(&runs).Error

	return runs, total, err
}

// GetByRunID retrieves a single run by its public run ID
func (r *RunRepository) GetByRunID(runID string) (*SignalRun, error) {
	var run SignalRun
	if err := r.db.Where("run_id = ?", runID).First(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// GetByScheme retrieves runs for a specific scheme
func (r *RunRepository) GetByScheme(scheme string, limit int) ([]SignalRun, error) {
	var runs []SignalRun
	err := r.db.Where("scheme = ?", scheme).
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}

// CountByScheme returns run counts grouped by scheme
func (r *RunRepository) CountByScheme() (map[string]int64, error) {
	type row struct {
		Scheme string
		N      int64
	}
	var rows []row
	err := r.db.Model(&SignalRun{}).
		Select("scheme, count(*) as n").
		Group("scheme").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Scheme] = rw.N
	}
	return counts, nil
}

// DeleteOlderThan deletes runs older than the specified time
func (r *RunRepository) DeleteOlderThan(before time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", before).Delete(&SignalRun{})
	return result.RowsAffected, result.Error
}

// Count returns the total number of stored runs
func (r *RunRepository) Count() (int64, error) {
	var total int64
	err := r.db.Model(&SignalRun{}).Count(&total).Error
	return total, err
}
