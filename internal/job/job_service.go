package job

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/joshu-sajeev/notifyqueue/common"
	"github.com/joshu-sajeev/notifyqueue/internal/config"
	"github.com/joshu-sajeev/notifyqueue/internal/dto"
	"gorm.io/datatypes"
)

type JobService struct {
	engine             QueueEngine
	defaultMaxAttempts int
	retention          time.Duration
}

// NewJobService builds the control API. Zero defaults fall back to
// config.DefaultMaxAttempts and config.DefaultRetention.
func NewJobService(engine QueueEngine, defaultMaxAttempts int, retention time.Duration) *JobService {
	if defaultMaxAttempts <= 0 {
		defaultMaxAttempts = config.DefaultMaxAttempts
	}
	if retention <= 0 {
		retention = config.DefaultRetention
	}
	return &JobService{engine: engine, defaultMaxAttempts: defaultMaxAttempts, retention: retention}
}

var _ JobServiceInterface = (*JobService)(nil)

// Enqueue validates the request, records a pending job and returns it
// without waiting for delivery.
func (s *JobService) Enqueue(ctx context.Context, req *dto.EnqueueRequest) (*dto.JobResponseDTO, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Wrap(http.StatusRequestTimeout, err, "request canceled or timed out")
	}

	if !req.Type.Valid() {
		return nil, common.APIError{
			Status:  http.StatusBadRequest,
			Message: "invalid job type",
			Fields: map[string]any{
				"provided": req.Type,
				"allowed":  config.AllowedJobTypes,
			},
			Err: common.ErrUnknownJobType,
		}
	}

	if len(req.Payload) == 0 || !json.Valid(req.Payload) {
		return nil, common.Errf(http.StatusBadRequest, "payload must be valid JSON")
	}

	if err := validatePayload(req.Type, req.Payload); err != nil {
		return nil, err
	}

	maxAttempts, err := s.maxAttempts(req.MaxAttempts)
	if err != nil {
		return nil, err
	}

	job, err := s.engine.Enqueue(ctx, req.Type, datatypes.JSON(req.Payload), maxAttempts)
	if err != nil {
		return nil, toAPIError(err, "failed to enqueue job")
	}
	return dto.NewJobResponse(job), nil
}

// Notify enqueues a typed payload and returns the job id. maxAttempts of
// zero applies the default.
func (s *JobService) Notify(ctx context.Context, payload dto.Payload, maxAttempts int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", common.Wrap(http.StatusRequestTimeout, err, "request canceled or timed out")
	}

	if err := validateStruct(payload); err != nil {
		return "", err
	}

	var override *int
	if maxAttempts != 0 {
		override = &maxAttempts
	}
	attempts, err := s.maxAttempts(override)
	if err != nil {
		return "", err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", common.Wrap(http.StatusBadRequest, err, "payload cannot be encoded")
	}

	job, err := s.engine.Enqueue(ctx, payload.JobType(), datatypes.JSON(raw), attempts)
	if err != nil {
		return "", toAPIError(err, "failed to enqueue job")
	}
	return job.ID, nil
}

func (s *JobService) GetStatus(ctx context.Context, id string) (*dto.JobResponseDTO, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Wrap(http.StatusRequestTimeout, err, "request timed out")
	}

	job, err := s.engine.Get(ctx, id)
	if err != nil {
		return nil, toAPIError(err, "failed to get job")
	}
	return dto.NewJobResponse(job), nil
}

// Summary reports job counts per status and the most recent jobs.
func (s *JobService) Summary(ctx context.Context, limit int) (*dto.SummaryDTO, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Wrap(http.StatusRequestTimeout, err, "request timed out")
	}

	switch {
	case limit <= 0:
		limit = config.DefaultSummaryLimit
	case limit > config.MaxSummaryLimit:
		limit = config.MaxSummaryLimit
	}

	counts, recent, err := s.engine.Summary(ctx, limit)
	if err != nil {
		return nil, toAPIError(err, "failed to summarize jobs")
	}

	summary := &dto.SummaryDTO{
		Counts: counts,
		Recent: make([]dto.JobResponseDTO, len(recent)),
	}
	for _, n := range counts {
		summary.Total += n
	}
	for i := range recent {
		summary.Recent[i] = *dto.NewJobResponse(&recent[i])
	}
	return summary, nil
}

// RetryFailed resets a failed job so it is delivered again.
func (s *JobService) RetryFailed(ctx context.Context, id string) (*dto.JobResponseDTO, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Wrap(http.StatusRequestTimeout, err, "request timed out")
	}

	job, err := s.engine.Retry(ctx, id)
	if err != nil {
		return nil, toAPIError(err, "failed to retry job")
	}
	return dto.NewJobResponse(job), nil
}

// Cleanup removes completed jobs older than retention. A zero retention
// uses the configured window.
func (s *JobService) Cleanup(ctx context.Context, retention time.Duration) (*dto.CleanupResponseDTO, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.Wrap(http.StatusRequestTimeout, err, "request timed out")
	}

	if retention < 0 {
		return nil, common.Errf(http.StatusBadRequest, "retention must not be negative")
	}
	if retention == 0 {
		retention = s.retention
	}

	removed, err := s.engine.Cleanup(ctx, retention)
	if err != nil {
		return nil, toAPIError(err, "failed to clean up jobs")
	}
	return &dto.CleanupResponseDTO{Removed: removed, Retention: retention.String()}, nil
}

func (s *JobService) maxAttempts(requested *int) (int, error) {
	if requested == nil {
		return s.defaultMaxAttempts, nil
	}
	n := *requested
	if n < 1 || n > config.MaxAllowedAttempts {
		return 0, common.NewAPIError(
			http.StatusBadRequest,
			"invalid max_attempts",
			map[string]any{
				"provided": n,
				"min":      1,
				"max":      config.MaxAllowedAttempts,
			},
		)
	}
	return n, nil
}

// toAPIError maps engine and store errors to HTTP statuses, keeping the
// cause reachable through errors.Is.
func toAPIError(err error, fallback string) error {
	var apiErr common.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return common.Wrap(http.StatusRequestTimeout, err, "request timed out")
	case errors.Is(err, common.ErrJobNotFound):
		return common.Wrap(http.StatusNotFound, err, "job not found")
	case errors.Is(err, common.ErrInvalidState):
		return common.Wrap(http.StatusConflict, err, "only failed jobs can be retried")
	case errors.Is(err, common.ErrDuplicateJob):
		return common.Wrap(http.StatusConflict, err, "job already exists")
	case errors.Is(err, common.ErrUnknownJobType):
		return common.Wrap(http.StatusBadRequest, err, "invalid job type")
	case errors.Is(err, common.ErrStoreUnavailable):
		return common.Wrap(http.StatusServiceUnavailable, err, "job store unavailable")
	default:
		return common.Wrap(http.StatusInternalServerError, err, fallback)
	}
}
