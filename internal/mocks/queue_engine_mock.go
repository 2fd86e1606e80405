package mocks

import (
	"context"
	"time"

	"github.com/joshu-sajeev/notifyqueue/internal/config"
	"github.com/joshu-sajeev/notifyqueue/internal/models"
	"github.com/stretchr/testify/mock"
	"gorm.io/datatypes"
)

type QueueEngineMock struct {
	mock.Mock
}

func (m *QueueEngineMock) Enqueue(ctx context.Context, jobType config.JobType, payload datatypes.JSON, maxAttempts int) (*models.NotificationJob, error) {
	args := m.Called(ctx, jobType, payload, maxAttempts)

	job, _ := args.Get(0).(*models.NotificationJob)
	return job, args.Error(1)
}

func (m *QueueEngineMock) Get(ctx context.Context, id string) (*models.NotificationJob, error) {
	args := m.Called(ctx, id)

	job, _ := args.Get(0).(*models.NotificationJob)
	return job, args.Error(1)
}

func (m *QueueEngineMock) Summary(ctx context.Context, limit int) (map[config.JobStatus]int, []models.NotificationJob, error) {
	args := m.Called(ctx, limit)

	counts, _ := args.Get(0).(map[config.JobStatus]int)
	jobs, _ := args.Get(1).([]models.NotificationJob)
	return counts, jobs, args.Error(2)
}

func (m *QueueEngineMock) Retry(ctx context.Context, id string) (*models.NotificationJob, error) {
	args := m.Called(ctx, id)

	job, _ := args.Get(0).(*models.NotificationJob)
	return job, args.Error(1)
}

func (m *QueueEngineMock) Cleanup(ctx context.Context, retention time.Duration) (int, error) {
	args := m.Called(ctx, retention)
	return args.Int(0), args.Error(1)
}
