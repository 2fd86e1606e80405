package dto

import (
	"encoding/json"
	"fmt"

	"github.com/joshu-sajeev/notifyqueue/internal/config"
)

// NewPayload returns an empty payload of the Go type registered for t.
func NewPayload(t config.JobType) (Payload, error) {
	switch t {
	case config.JobTypeVerification:
		return &VerificationPayload{}, nil
	case config.JobTypeWelcome:
		return &WelcomePayload{}, nil
	case config.JobTypePasswordReset:
		return &PasswordResetPayload{}, nil
	case config.JobTypeOrderConfirmation:
		return &OrderConfirmationPayload{}, nil
	case config.JobTypeOrderStatusUpdate:
		return &OrderStatusUpdatePayload{}, nil
	case config.JobTypeAdminNewOrder:
		return &AdminNewOrderPayload{}, nil
	default:
		return nil, fmt.Errorf("no payload for job type %q", t)
	}
}

// DecodePayload unmarshals raw into the payload type for t.
func DecodePayload(t config.JobType, raw []byte) (Payload, error) {
	p, err := NewPayload(t)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("unmarshal %s payload: %w", t, err)
	}
	return p, nil
}
