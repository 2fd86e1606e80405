package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joshu-sajeev/notifyqueue/common"
	"github.com/joshu-sajeev/notifyqueue/internal/config"
	"github.com/joshu-sajeev/notifyqueue/internal/models"
	"github.com/joshu-sajeev/notifyqueue/internal/queue"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// JobStore persists notification jobs in any database GORM can talk to.
type JobStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewJobStore(db *gorm.DB) *JobStore {
	return &JobStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

var _ queue.JobStore = (*JobStore)(nil)

// Append inserts a new job record. A record with the same id yields
// common.ErrDuplicateJob.
func (s *JobStore) Append(ctx context.Context, job *models.NotificationJob) error {
	if err := s.db.WithContext(ctx).Create(job).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("append job %s: %w", job.ID, common.ErrDuplicateJob)
		}
		return common.StoreError("append job", err)
	}
	return nil
}

// LoadAll returns every job ordered by creation time. Jobs left in
// processing are moved back to pending and made due now, with the cut-off
// attempt given back, in the same transaction as the read.
func (s *JobStore) LoadAll(ctx context.Context) ([]models.NotificationJob, error) {
	now := s.now()
	var jobs []models.NotificationJob

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.NotificationJob{}).
			Where("status = ?", config.JobStatusProcessing).
			Updates(map[string]any{
				"status":       config.JobStatusPending,
				"attempts":     gorm.Expr("CASE WHEN attempts > 0 THEN attempts - 1 ELSE 0 END"),
				"scheduled_at": now,
				"updated_at":   now,
			}).Error; err != nil {
			return fmt.Errorf("recover processing jobs: %w", err)
		}

		return tx.Order("created_at ASC, id ASC").Find(&jobs).Error
	})
	if err != nil {
		return nil, common.StoreError("load jobs", err)
	}
	return jobs, nil
}

// Save overwrites the mutable fields of an existing job.
func (s *JobStore) Save(ctx context.Context, job *models.NotificationJob) error {
	res := s.db.WithContext(ctx).Model(&models.NotificationJob{}).
		Where("id = ?", job.ID).
		Updates(map[string]any{
			"status":          job.Status,
			"attempts":        job.Attempts,
			"max_attempts":    job.MaxAttempts,
			"error":           job.Error,
			"scheduled_at":    job.ScheduledAt,
			"last_attempt_at": job.LastAttemptAt,
			"updated_at":      job.UpdatedAt,
		})
	if res.Error != nil {
		return common.StoreError("save job", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("save job %s: %w", job.ID, common.ErrJobNotFound)
	}
	return nil
}

// Delete removes the listed jobs that are completed and reports how many
// rows went away.
func (s *JobStore) Delete(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Where("id IN ? AND status = ?", ids, config.JobStatusCompleted).
		Delete(&models.NotificationJob{})
	if res.Error != nil {
		return 0, common.StoreError("delete jobs", res.Error)
	}
	return res.RowsAffected, nil
}

// ParseLogLevel converts a DB_LOG_LEVEL value to a GORM log level.
func ParseLogLevel(levelStr string) logger.LogLevel {
	switch strings.ToLower(levelStr) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
