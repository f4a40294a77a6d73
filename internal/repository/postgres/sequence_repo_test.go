package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturo/internal/domain"
)

func TestSequenceRepo_Next_Upserts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSequenceRepo(db)
	tenantID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO sequence_counters")+".*ON CONFLICT \\(tenant_id, year, doc_type\\)").
		WithArgs(tenantID, 2026, domain.DocTypeInvoice).
		WillReturnRows(sqlmock.NewRows([]string{"current_number"}).AddRow(8))

	next, err := repo.Next(context.Background(), tenantID, 2026, domain.DocTypeInvoice)

	require.NoError(t, err)
	assert.Equal(t, 8, next)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSequenceRepo_Next_Error(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSequenceRepo(db)

	mock.ExpectQuery("INSERT INTO sequence_counters").WillReturnError(errors.New("connection reset"))

	_, err := repo.Next(context.Background(), uuid.New(), 2026, domain.DocTypeQuote)

	assert.ErrorContains(t, err, "sequenceRepo.Next")
}

func TestSequenceRepo_Get_MissingIsZero(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSequenceRepo(db)
	tenantID := uuid.New()

	mock.ExpectQuery("SELECT \\* FROM sequence_counters").
		WithArgs(tenantID, 2027, domain.DocTypeCreditNote).
		WillReturnRows(sqlmock.NewRows([]string{"tenant_id", "year", "doc_type", "current_number", "updated_at"}))

	counter, err := repo.Get(context.Background(), tenantID, 2027, domain.DocTypeCreditNote)

	require.NoError(t, err)
	assert.Equal(t, 0, counter.CurrentNumber)
	assert.Equal(t, domain.DocTypeCreditNote, counter.DocType)
}

func TestSequenceRepo_CountIssuedAbove_FiltersCreditNotes(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSequenceRepo(db)
	tenantID := uuid.New()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM invoices").
		WithArgs(tenantID, 2026, 4, domain.DocTypeCreditNote).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	n, err := repo.CountIssuedAbove(context.Background(), tenantID, 2026, domain.DocTypeCreditNote, 4)

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
