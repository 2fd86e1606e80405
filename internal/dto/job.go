package dto

import (
	"encoding/json"
	"time"

	"github.com/joshu-sajeev/notifyqueue/internal/config"
	"github.com/joshu-sajeev/notifyqueue/internal/models"
)

type EnqueueRequest struct {
	Type        config.JobType  `json:"type" validate:"required"`
	Payload     json.RawMessage `json:"payload" validate:"required"`
	MaxAttempts *int            `json:"max_attempts,omitempty" validate:"omitempty,gte=1,lte=20"`
}

type JobResponseDTO struct {
	ID            string           `json:"id"`
	Type          config.JobType   `json:"type"`
	Payload       json.RawMessage  `json:"payload"`
	Status        config.JobStatus `json:"status"`
	Attempts      int              `json:"attempts"`
	MaxAttempts   int              `json:"max_attempts"`
	Error         string           `json:"error,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	ScheduledAt   time.Time        `json:"scheduled_at"`
	LastAttemptAt *time.Time       `json:"last_attempt_at,omitempty"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

type SummaryDTO struct {
	Counts map[config.JobStatus]int `json:"counts"`
	Total  int                      `json:"total"`
	Recent []JobResponseDTO         `json:"recent"`
}

type CleanupResponseDTO struct {
	Removed   int    `json:"removed"`
	Retention string `json:"retention"`
}

func NewJobResponse(job *models.NotificationJob) *JobResponseDTO {
	return &JobResponseDTO{
		ID:            job.ID,
		Type:          job.Type,
		Payload:       json.RawMessage(job.Payload),
		Status:        job.Status,
		Attempts:      job.Attempts,
		MaxAttempts:   job.MaxAttempts,
		Error:         job.Error,
		CreatedAt:     job.CreatedAt,
		ScheduledAt:   job.ScheduledAt,
		LastAttemptAt: job.LastAttemptAt,
		UpdatedAt:     job.UpdatedAt,
	}
}
