package mocks

import (
	"context"
	"time"

	"github.com/joshu-sajeev/notifyqueue/internal/dto"
	"github.com/stretchr/testify/mock"
)

type JobServiceMock struct {
	mock.Mock
}

func (m *JobServiceMock) Enqueue(ctx context.Context, req *dto.EnqueueRequest) (*dto.JobResponseDTO, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.JobResponseDTO), args.Error(1)
}

func (m *JobServiceMock) Notify(ctx context.Context, payload dto.Payload, maxAttempts int) (string, error) {
	args := m.Called(ctx, payload, maxAttempts)
	return args.String(0), args.Error(1)
}

func (m *JobServiceMock) GetStatus(ctx context.Context, id string) (*dto.JobResponseDTO, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.JobResponseDTO), args.Error(1)
}

func (m *JobServiceMock) Summary(ctx context.Context, limit int) (*dto.SummaryDTO, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SummaryDTO), args.Error(1)
}

func (m *JobServiceMock) RetryFailed(ctx context.Context, id string) (*dto.JobResponseDTO, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.JobResponseDTO), args.Error(1)
}

func (m *JobServiceMock) Cleanup(ctx context.Context, retention time.Duration) (*dto.CleanupResponseDTO, error) {
	args := m.Called(ctx, retention)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CleanupResponseDTO), args.Error(1)
}
