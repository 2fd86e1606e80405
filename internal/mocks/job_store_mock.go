package mocks

import (
	"context"

	"github.com/joshu-sajeev/notifyqueue/internal/models"
	"github.com/stretchr/testify/mock"
)

type JobStoreMock struct {
	mock.Mock
}

func (m *JobStoreMock) Append(ctx context.Context, job *models.NotificationJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *JobStoreMock) LoadAll(ctx context.Context) ([]models.NotificationJob, error) {
	args := m.Called(ctx)

	jobs, _ := args.Get(0).([]models.NotificationJob)
	return jobs, args.Error(1)
}

func (m *JobStoreMock) Save(ctx context.Context, job *models.NotificationJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *JobStoreMock) Delete(ctx context.Context, ids []string) (int64, error) {
	args := m.Called(ctx, ids)

	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}
