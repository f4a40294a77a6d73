package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"facturo/internal/port"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendDocumentEmail(ctx context.Context, msg port.DocumentEmail) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
