package dto

import "github.com/joshu-sajeev/notifyqueue/internal/config"

// Payload is implemented by every notification payload. The job type is
// fixed by the Go type, so internal callers cannot enqueue an unknown kind.
type Payload interface {
	JobType() config.JobType
	Recipient() string
}

type VerificationPayload struct {
	Email           string `json:"email" validate:"required,email"`
	Name            string `json:"name" validate:"required"`
	VerificationURL string `json:"verification_url" validate:"required,url"`
}

func (VerificationPayload) JobType() config.JobType { return config.JobTypeVerification }
func (p VerificationPayload) Recipient() string    { return p.Email }

type WelcomePayload struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required"`
}

func (WelcomePayload) JobType() config.JobType { return config.JobTypeWelcome }
func (p WelcomePayload) Recipient() string    { return p.Email }

type PasswordResetPayload struct {
	Email            string `json:"email" validate:"required,email"`
	Name             string `json:"name" validate:"required"`
	ResetURL         string `json:"reset_url" validate:"required,url"`
	ExpiresInMinutes int    `json:"expires_in_minutes" validate:"gte=1,lte=1440"`
}

func (PasswordResetPayload) JobType() config.JobType { return config.JobTypePasswordReset }
func (p PasswordResetPayload) Recipient() string    { return p.Email }
