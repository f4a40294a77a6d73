package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"facturo/internal/domain"
	"facturo/internal/port"
)

// FormatDocumentNumber renders a sequence value in the legal format of docType.
// Credit notes share the invoice prefix but draw from their own counter.
func FormatDocumentNumber(docType domain.DocType, year, seq int) string {
	switch docType {
	case domain.DocTypeInvoice, domain.DocTypeCreditNote:
		return fmt.Sprintf("F%02d/%02d", year%100, seq)
	case domain.DocTypeQuote:
		return fmt.Sprintf("PRE-%04d-%04d", year, seq)
	case domain.DocTypePurchaseInvoice:
		return fmt.Sprintf("FP-%04d-%04d", year, seq)
	default:
		return fmt.Sprintf("%s-%04d-%04d", docType, year, seq)
	}
}

// NextDocumentNumber draws the next value for (tenant, year, docType). repo must
// be bound to the transaction that also writes the number onto the document.
func NextDocumentNumber(ctx context.Context, repo port.SequenceRepository, tenantID uuid.UUID, year int, docType domain.DocType) (domain.DocumentNumber, error) {
	seq, err := repo.Next(ctx, tenantID, year, docType)
	if err != nil {
		return domain.DocumentNumber{}, err
	}
	return domain.DocumentNumber{
		Sequence:  seq,
		Year:      year,
		Formatted: FormatDocumentNumber(docType, year, seq),
	}, nil
}
