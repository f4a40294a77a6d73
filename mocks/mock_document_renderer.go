package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"facturo/internal/domain"
)

// MockDocumentRenderer is a mock implementation of port.DocumentRenderer.
type MockDocumentRenderer struct {
	mock.Mock
}

func (m *MockDocumentRenderer) RenderDocumentPDF(ctx context.Context, doc *domain.RenderableDocument, tenant *domain.Tenant) ([]byte, error) {
	args := m.Called(ctx, doc, tenant)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
