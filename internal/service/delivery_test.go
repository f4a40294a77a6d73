package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"facturo/internal/domain"
	"facturo/internal/port"
	"facturo/internal/service"
	"facturo/mocks"
)

func withArchive(f *fixture, storage *mocks.MockObjectStorage) {
	f.delivery = service.NewDocumentDelivery(f.renderer, f.mailer, storage,
		service.DeliveryConfig{Bucket: "facturo-docs", PresignExpiry: 600}, zap.NewNop())
}

func TestInvoiceService_Send_ArchivesAndMails(t *testing.T) {
	f := newFixture(t)
	storage := new(mocks.MockObjectStorage)
	withArchive(f, storage)
	svc := newInvoiceService(f)
	inv := issuedInvoice(f)
	client := &domain.Client{Counterparty: domain.Counterparty{ID: inv.ClientID, Name: "Globex", Email: "ap@globex.test"}}
	key := "documents/invoice/" + inv.ID.String() + ".pdf"

	f.invoices.On("GetByID", mock.Anything, f.tenant.ID, inv.ID).Return(inv, nil)
	f.clients.On("GetByID", mock.Anything, f.tenant.ID, inv.ClientID).Return(client, nil)
	f.renderer.On("RenderDocumentPDF", mock.Anything, mock.Anything, f.tenant).Return([]byte("%PDF-1.4"), nil)
	storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "facturo-docs" && in.Key == key && in.ContentType == "application/pdf" && in.Size == 8
	})).Return(&port.UploadOutput{Location: "s3://facturo-docs/" + key}, nil)
	f.mailer.On("SendDocumentEmail", mock.Anything, mock.MatchedBy(func(msg port.DocumentEmail) bool {
		return msg.To == "ap@globex.test" &&
			msg.Filename == "F26-01.pdf" &&
			msg.Subject == "Invoice F26/01 from Acme SL" &&
			assert.ObjectsAreEqual([]byte("%PDF-1.4"), msg.Attachment)
	})).Return(nil)

	err := svc.Send(context.Background(), f.tenant, f.actorID, inv.ID)

	require.NoError(t, err)
	f.assertExpectations(t)
	storage.AssertExpectations(t)
}

func TestInvoiceService_Send_ArchiveFailureDoesNotBlockEmail(t *testing.T) {
	f := newFixture(t)
	storage := new(mocks.MockObjectStorage)
	withArchive(f, storage)
	svc := newInvoiceService(f)
	inv := issuedInvoice(f)
	client := &domain.Client{Counterparty: domain.Counterparty{ID: inv.ClientID, Name: "Globex", Email: "ap@globex.test"}}

	f.invoices.On("GetByID", mock.Anything, f.tenant.ID, inv.ID).Return(inv, nil)
	f.clients.On("GetByID", mock.Anything, f.tenant.ID, inv.ClientID).Return(client, nil)
	f.renderer.On("RenderDocumentPDF", mock.Anything, mock.Anything, f.tenant).Return([]byte("%PDF-1.4"), nil)
	storage.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))
	f.mailer.On("SendDocumentEmail", mock.Anything, mock.Anything).Return(nil)

	err := svc.Send(context.Background(), f.tenant, f.actorID, inv.ID)

	require.NoError(t, err)
	f.mailer.AssertNumberOfCalls(t, "SendDocumentEmail", 1)
}

func TestInvoiceService_Send_RenderFailure(t *testing.T) {
	f := newFixture(t)
	svc := newInvoiceService(f)
	inv := issuedInvoice(f)
	client := &domain.Client{Counterparty: domain.Counterparty{ID: inv.ClientID, Name: "Globex", Email: "ap@globex.test"}}

	f.invoices.On("GetByID", mock.Anything, f.tenant.ID, inv.ID).Return(inv, nil)
	f.clients.On("GetByID", mock.Anything, f.tenant.ID, inv.ClientID).Return(client, nil)
	f.renderer.On("RenderDocumentPDF", mock.Anything, mock.Anything, f.tenant).Return(nil, errors.New("font missing"))

	err := svc.Send(context.Background(), f.tenant, f.actorID, inv.ID)

	var xerr *domain.ExternalServiceError
	require.ErrorAs(t, err, &xerr)
	assert.Equal(t, "pdf renderer", xerr.Service)
	f.mailer.AssertNotCalled(t, "SendDocumentEmail", mock.Anything, mock.Anything)
}

func TestInvoiceService_ArchivedPDFURL(t *testing.T) {
	f := newFixture(t)
	storage := new(mocks.MockObjectStorage)
	withArchive(f, storage)
	svc := newInvoiceService(f)
	inv := issuedInvoice(f)
	key := "documents/invoice/" + inv.ID.String() + ".pdf"

	f.invoices.On("GetByID", mock.Anything, f.tenant.ID, inv.ID).Return(inv, nil)
	storage.On("GetPresignedURL", mock.Anything, "facturo-docs", key, int64(600)).Return("https://signed.example/x", nil)

	url, err := svc.ArchivedPDFURL(context.Background(), f.tenant, inv.ID)

	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/x", url)
	storage.AssertExpectations(t)
}

func TestInvoiceService_ArchivedPDFURL_NotConfigured(t *testing.T) {
	f := newFixture(t)
	svc := newInvoiceService(f)
	inv := issuedInvoice(f)

	f.invoices.On("GetByID", mock.Anything, f.tenant.ID, inv.ID).Return(inv, nil)

	_, err := svc.ArchivedPDFURL(context.Background(), f.tenant, inv.ID)

	assert.ErrorIs(t, err, domain.ErrValidation)
}
