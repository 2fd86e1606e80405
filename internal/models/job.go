package models

import (
	"time"

	"github.com/joshu-sajeev/notifyqueue/internal/config"
	"gorm.io/datatypes"
)

// NotificationJob is the durable unit of notification work.
type NotificationJob struct {
	ID            string           `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Type          config.JobType   `gorm:"type:varchar(64);not null" json:"type"`
	Payload       datatypes.JSON   `json:"payload"`
	Status        config.JobStatus `gorm:"type:varchar(32);not null;index:idx_notification_jobs_status_scheduled,priority:1" json:"status"`
	Attempts      int              `gorm:"not null;default:0" json:"attempts"`
	MaxAttempts   int              `gorm:"not null;default:3" json:"max_attempts"`
	Error         string           `gorm:"type:text" json:"error,omitempty"`
	CreatedAt     time.Time        `gorm:"not null;autoCreateTime:false" json:"created_at"`
	ScheduledAt   time.Time        `gorm:"not null;index:idx_notification_jobs_status_scheduled,priority:2" json:"scheduled_at"`
	LastAttemptAt *time.Time       `json:"last_attempt_at,omitempty"`
	UpdatedAt     time.Time        `gorm:"not null;autoUpdateTime:false" json:"updated_at"`
}

func (NotificationJob) TableName() string {
	return "notification_jobs"
}

// Due reports whether the job may be attempted at now.
func (j *NotificationJob) Due(now time.Time) bool {
	return j.Status == config.JobStatusPending && !j.ScheduledAt.After(now)
}

// Clone returns a deep copy so callers can mutate it without touching the
// engine's index.
func (j *NotificationJob) Clone() *NotificationJob {
	c := *j
	if j.Payload != nil {
		c.Payload = append(datatypes.JSON(nil), j.Payload...)
	}
	if j.LastAttemptAt != nil {
		t := *j.LastAttemptAt
		c.LastAttemptAt = &t
	}
	return &c
}
