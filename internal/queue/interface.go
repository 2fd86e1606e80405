package queue

import (
	"context"

	"github.com/joshu-sajeev/notifyqueue/internal/models"
)

// JobStore defines the durable persistence contract for notification jobs.
// Every I/O failure must satisfy errors.Is(err, common.ErrStoreUnavailable).
type JobStore interface {
	// Append persists a new record atomically.
	Append(ctx context.Context, job *models.NotificationJob) error
	// LoadAll returns every record ordered by creation time. Records left in
	// processing by a crash come back as pending and due immediately.
	LoadAll(ctx context.Context) ([]models.NotificationJob, error)
	// Save persists a mutation of an existing record.
	Save(ctx context.Context, job *models.NotificationJob) error
	// Delete removes the given records if they are completed and reports how
	// many were removed.
	Delete(ctx context.Context, ids []string) (int64, error)
}

// Dispatcher delivers a job through the sender registered for its type.
type Dispatcher interface {
	Dispatch(ctx context.Context, job *models.NotificationJob) error
}
