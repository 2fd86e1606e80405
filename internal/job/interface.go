package job

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joshu-sajeev/notifyqueue/internal/config"
	"github.com/joshu-sajeev/notifyqueue/internal/dto"
	"github.com/joshu-sajeev/notifyqueue/internal/models"
	"gorm.io/datatypes"
)

// QueueEngine is the part of the queue engine the control API drives.
type QueueEngine interface {
	Enqueue(ctx context.Context, jobType config.JobType, payload datatypes.JSON, maxAttempts int) (*models.NotificationJob, error)
	Get(ctx context.Context, id string) (*models.NotificationJob, error)
	Summary(ctx context.Context, limit int) (map[config.JobStatus]int, []models.NotificationJob, error)
	Retry(ctx context.Context, id string) (*models.NotificationJob, error)
	Cleanup(ctx context.Context, retention time.Duration) (int, error)
}

// JobServiceInterface is the control API used by application code and the
// HTTP handler.
type JobServiceInterface interface {
	Enqueue(ctx context.Context, req *dto.EnqueueRequest) (*dto.JobResponseDTO, error)
	Notify(ctx context.Context, payload dto.Payload, maxAttempts int) (string, error)
	GetStatus(ctx context.Context, id string) (*dto.JobResponseDTO, error)
	Summary(ctx context.Context, limit int) (*dto.SummaryDTO, error)
	RetryFailed(ctx context.Context, id string) (*dto.JobResponseDTO, error)
	Cleanup(ctx context.Context, retention time.Duration) (*dto.CleanupResponseDTO, error)
}

// JobHandlerInterface defines the contract for HTTP request handlers.
type JobHandlerInterface interface {
	Enqueue(c *gin.Context)
	Get(c *gin.Context)
	Retry(c *gin.Context)
	Summary(c *gin.Context)
	Cleanup(c *gin.Context)
}
