package config

import "time"

type JobStatus string

type JobType string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

const (
	JobTypeVerification      JobType = "verification"
	JobTypeWelcome           JobType = "welcome"
	JobTypePasswordReset     JobType = "password_reset"
	JobTypeOrderConfirmation JobType = "order_confirmation"
	JobTypeOrderStatusUpdate JobType = "order_status_update"
	JobTypeAdminNewOrder     JobType = "admin_new_order"
)

const (
	DefaultMaxAttempts  = 3
	MaxAllowedAttempts  = 20
	DefaultRetention    = time.Hour
	DefaultSummaryLimit = 20
	MaxSummaryLimit     = 200
)

var (
	AllowedJobTypes = []JobType{
		JobTypeVerification,
		JobTypeWelcome,
		JobTypePasswordReset,
		JobTypeOrderConfirmation,
		JobTypeOrderStatusUpdate,
		JobTypeAdminNewOrder,
	}
	AllJobStatuses = []JobStatus{
		JobStatusPending,
		JobStatusProcessing,
		JobStatusCompleted,
		JobStatusFailed,
	}
)

// Valid reports whether t is one of the known notification kinds.
func (t JobType) Valid() bool {
	for _, known := range AllowedJobTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Terminal reports whether the drain loop must leave a job in status s alone.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}
