package port

import (
	"context"

	"facturo/internal/domain"
)

// DocumentRenderer turns a document into printable PDF bytes. It has no side effects.
type DocumentRenderer interface {
	RenderDocumentPDF(ctx context.Context, doc *domain.RenderableDocument, tenant *domain.Tenant) ([]byte, error)
}
