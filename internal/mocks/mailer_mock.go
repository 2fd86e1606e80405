package mocks

import (
	"context"

	"github.com/joshu-sajeev/notifyqueue/internal/sender"
	"github.com/stretchr/testify/mock"
)

type MailerMock struct {
	mock.Mock
}

func (m *MailerMock) Send(ctx context.Context, msg sender.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
