package sender

import (
	"context"
	"errors"
	"fmt"

	"github.com/joshu-sajeev/notifyqueue/common"
	"github.com/joshu-sajeev/notifyqueue/internal/dto"
	"github.com/joshu-sajeev/notifyqueue/internal/models"
)

// EmailSender delivers any email job type: it decodes the payload, renders
// it and hands the message to the Mailer.
type EmailSender struct {
	mailer     Mailer
	renderer   Renderer
	from       string
	adminEmail string
}

// NewEmailSender builds a sender. adminEmail is the recipient for admin
// alerts that do not carry their own address.
func NewEmailSender(mailer Mailer, renderer Renderer, from, adminEmail string) *EmailSender {
	return &EmailSender{mailer: mailer, renderer: renderer, from: from, adminEmail: adminEmail}
}

func (s *EmailSender) Send(ctx context.Context, job *models.NotificationJob) error {
	payload, err := dto.DecodePayload(job.Type, job.Payload)
	if err != nil {
		return common.Permanent(err)
	}

	to := payload.Recipient()
	if to == "" {
		to = s.adminEmail
	}
	if to == "" {
		return common.Permanent(fmt.Errorf("no recipient for %s job", job.Type))
	}

	subject, body, err := s.renderer.Render(job.Type, payload)
	if err != nil {
		return common.Permanent(err)
	}

	err = s.mailer.Send(ctx, Message{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Body:    body,
	})
	if err == nil {
		return nil
	}

	var se *common.SendError
	if errors.As(err, &se) {
		return err
	}
	return common.Transient(err)
}
