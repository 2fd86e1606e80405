package gormstore

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/joshu-sajeev/notifyqueue/common"
	"github.com/joshu-sajeev/notifyqueue/internal/config"
	"github.com/joshu-sajeev/notifyqueue/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newJob(id string, status config.JobStatus, created time.Time) *models.NotificationJob {
	return &models.NotificationJob{
		ID:          id,
		Type:        config.JobTypeWelcome,
		Payload:     datatypes.JSON(`{"email":"test@example.com","name":"Ann"}`),
		Status:      status,
		MaxAttempts: 3,
		CreatedAt:   created,
		ScheduledAt: created,
		UpdatedAt:   created,
	}
}

func closeDB(db *gorm.DB) {
	sqlDB, _ := db.DB()
	_ = sqlDB.Close()
}

func TestJobStore_Append(t *testing.T) {
	tests := []struct {
		name      string
		job       *models.NotificationJob
		setup     func(db *gorm.DB)
		wantErr   bool
		wantErrIs error
	}{
		{
			name: "success case",
			job:  newJob("a", config.JobStatusPending, base),
		},
		{
			name: "duplicate id",
			job:  newJob("b", config.JobStatusPending, base),
			setup: func(db *gorm.DB) {
				_ = db.Create(newJob("b", config.JobStatusCompleted, base)).Error
			},
			wantErr: true,
		},
		{
			name:      "error when db connection is closed",
			job:       newJob("c", config.JobStatusPending, base),
			setup:     closeDB,
			wantErr:   true,
			wantErrIs: common.ErrStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := SetupTestDB(t)
			store := NewJobStore(db)

			if tt.setup != nil {
				tt.setup(db)
			}

			err := store.Append(context.Background(), tt.job)

			if tt.wantErr {
				require.Error(t, err)
				if tt.wantErrIs != nil {
					assert.ErrorIs(t, err, tt.wantErrIs)
				}
				return
			}
			require.NoError(t, err)

			var saved models.NotificationJob
			require.NoError(t, db.First(&saved, "id = ?", tt.job.ID).Error)
			assert.Equal(t, tt.job.Type, saved.Type)
			assert.Equal(t, tt.job.Status, saved.Status)
			assert.Equal(t, tt.job.MaxAttempts, saved.MaxAttempts)
			assert.True(t, tt.job.CreatedAt.Equal(saved.CreatedAt))
			assert.Nil(t, saved.LastAttemptAt)

			var payload map[string]any
			require.NoError(t, json.Unmarshal(saved.Payload, &payload))
			assert.Equal(t, "test@example.com", payload["email"])
		})
	}
}

func TestJobStore_LoadAll(t *testing.T) {
	db := SetupTestDB(t)
	store := NewJobStore(db)
	now := base.Add(time.Hour)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	crashed := newJob("crashed", config.JobStatusProcessing, base.Add(2*time.Minute))
	crashed.Attempts = 3
	last := base.Add(3 * time.Minute)
	crashed.LastAttemptAt = &last

	for _, j := range []*models.NotificationJob{
		newJob("third", config.JobStatusFailed, base.Add(3*time.Minute)),
		crashed,
		newJob("first", config.JobStatusPending, base),
		newJob("done", config.JobStatusCompleted, base.Add(time.Minute)),
	} {
		require.NoError(t, store.Append(ctx, j))
	}

	jobs, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 4)

	var ids []string
	for _, j := range jobs {
		ids = append(ids, j.ID)
	}
	assert.Equal(t, []string{"first", "done", "crashed", "third"}, ids)

	recovered := jobs[2]
	assert.Equal(t, config.JobStatusPending, recovered.Status)
	assert.True(t, now.Equal(recovered.ScheduledAt))
	assert.Equal(t, 2, recovered.Attempts, "the interrupted attempt is given back")
	assert.LessOrEqual(t, recovered.Attempts, recovered.MaxAttempts)
	require.NotNil(t, recovered.LastAttemptAt)
	assert.True(t, last.Equal(*recovered.LastAttemptAt))

	var persisted models.NotificationJob
	require.NoError(t, db.First(&persisted, "id = ?", "crashed").Error)
	assert.Equal(t, config.JobStatusPending, persisted.Status, "recovery must be persisted")
	assert.Equal(t, 2, persisted.Attempts)

	assert.Equal(t, config.JobStatusFailed, jobs[3].Status)
	assert.Equal(t, config.JobStatusCompleted, jobs[1].Status)
}

func TestJobStore_LoadAllEmpty(t *testing.T) {
	jobs, err := NewJobStore(SetupTestDB(t)).LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestJobStore_Save(t *testing.T) {
	db := SetupTestDB(t)
	store := NewJobStore(db)
	ctx := context.Background()

	job := newJob("a", config.JobStatusPending, base)
	require.NoError(t, store.Append(ctx, job))

	attemptAt := base.Add(time.Second)
	job.Status = config.JobStatusPending
	job.Attempts = 1
	job.Error = "transient send failure: 421"
	job.LastAttemptAt = &attemptAt
	job.ScheduledAt = attemptAt.Add(2 * time.Second)
	job.UpdatedAt = attemptAt
	require.NoError(t, store.Save(ctx, job))

	var saved models.NotificationJob
	require.NoError(t, db.First(&saved, "id = ?", "a").Error)
	assert.Equal(t, 1, saved.Attempts)
	assert.Equal(t, job.Error, saved.Error)
	assert.True(t, job.ScheduledAt.Equal(saved.ScheduledAt))
	require.NotNil(t, saved.LastAttemptAt)
	assert.True(t, attemptAt.Equal(*saved.LastAttemptAt))
	assert.True(t, base.Equal(saved.CreatedAt), "created_at is immutable")

	job.Status = config.JobStatusCompleted
	job.Error = ""
	require.NoError(t, store.Save(ctx, job))
	require.NoError(t, db.First(&saved, "id = ?", "a").Error)
	assert.Equal(t, config.JobStatusCompleted, saved.Status)
	assert.Empty(t, saved.Error)

	t.Run("unknown id", func(t *testing.T) {
		err := store.Save(ctx, newJob("missing", config.JobStatusPending, base))
		assert.ErrorIs(t, err, common.ErrJobNotFound)
		assert.NotErrorIs(t, err, common.ErrStoreUnavailable)
	})

	t.Run("closed connection", func(t *testing.T) {
		closeDB(db)
		err := store.Save(ctx, job)
		assert.ErrorIs(t, err, common.ErrStoreUnavailable)
	})
}

func TestJobStore_Delete(t *testing.T) {
	db := SetupTestDB(t)
	store := NewJobStore(db)
	ctx := context.Background()

	old := base.Add(-2 * time.Hour)
	for _, j := range []*models.NotificationJob{
		newJob("c1", config.JobStatusCompleted, old),
		newJob("c2", config.JobStatusCompleted, old),
		newJob("p1", config.JobStatusPending, old),
		newJob("r1", config.JobStatusProcessing, old),
		newJob("f1", config.JobStatusFailed, old),
	} {
		require.NoError(t, store.Append(ctx, j))
	}

	n, err := store.Delete(ctx, []string{"c1", "p1", "r1", "f1", "unknown"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var remaining []string
	require.NoError(t, db.Model(&models.NotificationJob{}).Order("id").Pluck("id", &remaining).Error)
	assert.Equal(t, []string{"c2", "f1", "p1", "r1"}, remaining)

	n, err = store.Delete(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected logger.LogLevel
	}{
		{input: "silent", expected: logger.Silent},
		{input: "ERROR", expected: logger.Error},
		{input: "warn", expected: logger.Warn},
		{input: "info", expected: logger.Info},
		{input: "verbose", expected: logger.Warn},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLogLevel(tt.input))
		})
	}
}
