package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"facturo/internal/domain"
	"facturo/internal/service"
)

func TestSequenceService_Reset_ReportsConflicts(t *testing.T) {
	f := newFixture(t)
	svc := service.NewSequenceService(f.sequences, f.audit, zap.NewNop())

	f.sequences.On("Get", mock.Anything, f.tenant.ID, 2026, domain.DocTypeInvoice).
		Return(&domain.SequenceCounter{TenantID: f.tenant.ID, Year: 2026, DocType: domain.DocTypeInvoice, CurrentNumber: 12}, nil)
	f.sequences.On("CountIssuedAbove", mock.Anything, f.tenant.ID, 2026, domain.DocTypeInvoice, 9).Return(3, nil)
	f.sequences.On("Set", mock.Anything, f.tenant.ID, 2026, domain.DocTypeInvoice, 9).Return(nil)

	res, err := svc.Reset(context.Background(), f.tenant, f.actorID, service.ResetSequenceInput{
		Year: 2026, DocType: domain.DocTypeInvoice, Value: intPtr(9),
	})

	require.NoError(t, err)
	assert.Equal(t, 12, res.Previous)
	assert.Equal(t, 9, res.Value)
	assert.Equal(t, 3, res.ConflictingDocuments)
	assert.Contains(t, res.Warning, "duplicate document numbers")
	assert.Contains(t, res.Warning, "3 issued document(s)")
	f.audit.AssertCalled(t, "Record", mock.Anything, mock.MatchedBy(func(e domain.AuditEvent) bool {
		return e.Action == domain.AuditSequenceReset
	}))
	f.assertExpectations(t)
}

func TestSequenceService_Reset_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input service.ResetSequenceInput
		field string
	}{
		{name: "missing value", input: service.ResetSequenceInput{Year: 2026, DocType: domain.DocTypeQuote}, field: "value"},
		{name: "negative value", input: service.ResetSequenceInput{Year: 2026, DocType: domain.DocTypeQuote, Value: intPtr(-1)}, field: "value"},
		{name: "unknown type", input: service.ResetSequenceInput{Year: 2026, DocType: "RECEIPT", Value: intPtr(0)}, field: "doc_type"},
		{name: "year out of range", input: service.ResetSequenceInput{Year: 26, DocType: domain.DocTypeQuote, Value: intPtr(0)}, field: "year"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			svc := service.NewSequenceService(f.sequences, f.audit, zap.NewNop())

			_, err := svc.Reset(context.Background(), f.tenant, f.actorID, tt.input)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			f.sequences.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestFormatDocumentNumber(t *testing.T) {
	tests := []struct {
		docType domain.DocType
		year    int
		seq     int
		want    string
	}{
		{docType: domain.DocTypeInvoice, year: 2026, seq: 7, want: "F26/07"},
		{docType: domain.DocTypeInvoice, year: 2026, seq: 123, want: "F26/123"},
		{docType: domain.DocTypeCreditNote, year: 2030, seq: 1, want: "F30/01"},
		{docType: domain.DocTypeQuote, year: 2026, seq: 12, want: "PRE-2026-0012"},
		{docType: domain.DocTypePurchaseInvoice, year: 2026, seq: 41, want: "FP-2026-0041"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, service.FormatDocumentNumber(tt.docType, tt.year, tt.seq))
		})
	}
}

func TestSequenceService_List(t *testing.T) {
	f := newFixture(t)
	svc := service.NewSequenceService(f.sequences, f.audit, zap.NewNop())
	counters := []domain.SequenceCounter{
		{TenantID: f.tenant.ID, Year: 2026, DocType: domain.DocTypeInvoice, CurrentNumber: 41},
		{TenantID: f.tenant.ID, Year: 2026, DocType: domain.DocTypeQuote, CurrentNumber: 7},
	}
	f.sequences.On("ListByYear", mock.Anything, f.tenant.ID, 2026).Return(counters, nil)

	got, err := svc.List(context.Background(), f.tenant, 2026)

	require.NoError(t, err)
	assert.Equal(t, counters, got)
	f.assertExpectations(t)
}
