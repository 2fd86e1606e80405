package sender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/joshu-sajeev/notifyqueue/common"
	"github.com/joshu-sajeev/notifyqueue/internal/config"
	"github.com/joshu-sajeev/notifyqueue/internal/models"
)

type webhookEnvelope struct {
	ID        string          `json:"id"`
	Type      config.JobType  `json:"type"`
	Attempt   int             `json:"attempt"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// WebhookSender posts the job to an HTTP endpoint, used for back-office
// alerts.
type WebhookSender struct {
	url    string
	client *http.Client
}

func NewWebhookSender(url string, client *http.Client) *WebhookSender {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &WebhookSender{url: url, client: client}
}

func (s *WebhookSender) Send(ctx context.Context, job *models.NotificationJob) error {
	body, err := json.Marshal(webhookEnvelope{
		ID:        job.ID,
		Type:      job.Type,
		Attempt:   job.Attempts,
		Payload:   json.RawMessage(job.Payload),
		CreatedAt: job.CreatedAt,
	})
	if err != nil {
		return common.Permanent(fmt.Errorf("marshal webhook body: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return common.Permanent(fmt.Errorf("build webhook request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", job.ID)

	resp, err := s.client.Do(req)
	if err != nil {
		return common.Transient(fmt.Errorf("post webhook: %w", err))
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500 &&
		resp.StatusCode != http.StatusRequestTimeout && resp.StatusCode != http.StatusTooManyRequests:
		return common.Permanent(fmt.Errorf("webhook responded %d", resp.StatusCode))
	default:
		return common.Transient(fmt.Errorf("webhook responded %d", resp.StatusCode))
	}
}
