package service

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"

	"facturo/internal/domain"
	"facturo/internal/port"
)

// DeliveryConfig configures where rendered documents are archived.
// An empty Bucket disables archiving.
type DeliveryConfig struct {
	Bucket        string
	PresignExpiry int64
}

// DocumentDelivery renders, archives and mails documents. Every failure is
// returned as a *domain.ExternalServiceError and never touches stored state.
type DocumentDelivery struct {
	renderer port.DocumentRenderer
	mailer   port.EmailSender
	storage  port.ObjectStorage
	cfg      DeliveryConfig
	log      *zap.Logger
}

// NewDocumentDelivery creates a DocumentDelivery. storage may be nil.
func NewDocumentDelivery(renderer port.DocumentRenderer, mailer port.EmailSender, storage port.ObjectStorage, cfg DeliveryConfig, log *zap.Logger) *DocumentDelivery {
	return &DocumentDelivery{renderer: renderer, mailer: mailer, storage: storage, cfg: cfg, log: log}
}

func (d *DocumentDelivery) render(ctx context.Context, tenant *domain.Tenant, doc *domain.RenderableDocument) ([]byte, error) {
	pdf, err := d.renderer.RenderDocumentPDF(ctx, doc, tenant)
	if err != nil {
		return nil, &domain.ExternalServiceError{Service: "pdf renderer", Err: err}
	}
	return pdf, nil
}

// archive stores the PDF when object storage is configured. Archive failures
// are logged only; they never block sending.
func (d *DocumentDelivery) archive(ctx context.Context, kind domain.DocType, id string, pdf []byte) {
	if d.storage == nil || d.cfg.Bucket == "" {
		return
	}
	_, err := d.storage.Upload(ctx, port.UploadInput{
		Bucket:      d.cfg.Bucket,
		Key:         archiveKey(kind, id),
		Body:        bytes.NewReader(pdf),
		ContentType: "application/pdf",
		Size:        int64(len(pdf)),
	})
	if err != nil {
		d.log.Warn("failed to archive rendered document",
			zap.String("kind", string(kind)), zap.String("document_id", id), zap.Error(err))
	}
}

// send renders doc and mails it to to.
func (d *DocumentDelivery) send(ctx context.Context, tenant *domain.Tenant, doc *domain.RenderableDocument, id, to string) error {
	pdf, err := d.render(ctx, tenant, doc)
	if err != nil {
		return err
	}
	d.archive(ctx, doc.Kind, id, pdf)

	msg := port.DocumentEmail{
		To:         to,
		Subject:    fmt.Sprintf("%s %s from %s", documentLabel(doc.Kind), doc.Number, tenant.Name),
		HTMLBody:   documentEmailBody(tenant, doc),
		Attachment: pdf,
		Filename:   documentFilename(doc),
	}
	if err := d.mailer.SendDocumentEmail(ctx, msg); err != nil {
		return &domain.ExternalServiceError{Service: "email", Err: err}
	}
	return nil
}

func archiveKey(kind domain.DocType, id string) string {
	return fmt.Sprintf("documents/%s/%s.pdf", strings.ToLower(string(kind)), id)
}

func documentLabel(kind domain.DocType) string {
	switch kind {
	case domain.DocTypeQuote:
		return "Quote"
	case domain.DocTypeCreditNote:
		return "Credit note"
	case domain.DocTypePurchaseInvoice:
		return "Purchase invoice"
	default:
		return "Invoice"
	}
}

func documentFilename(doc *domain.RenderableDocument) string {
	name := doc.Number
	if name == "" {
		name = "draft"
	}
	return strings.NewReplacer("/", "-", " ", "_").Replace(name) + ".pdf"
}

func documentEmailBody(tenant *domain.Tenant, doc *domain.RenderableDocument) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p>Hello %s,</p>", html.EscapeString(doc.Counterparty.Name))
	fmt.Fprintf(&b, "<p>Please find attached %s <strong>%s</strong> for a total of %s %s.</p>",
		strings.ToLower(documentLabel(doc.Kind)), html.EscapeString(doc.Number),
		doc.Totals.TotalCents.String(), html.EscapeString(doc.Currency))
	if doc.DueDate != nil {
		fmt.Fprintf(&b, "<p>Due date: %s</p>", doc.DueDate.Format("2006-01-02"))
	}
	fmt.Fprintf(&b, "<p>Kind regards,<br>%s</p>", html.EscapeString(tenant.Name))
	return b.String()
}

func renderableInvoice(inv *domain.Invoice, client *domain.Client) *domain.RenderableDocument {
	doc := &domain.RenderableDocument{
		Kind:         inv.Kind,
		DueDate:      inv.DueDate,
		Currency:     inv.Currency,
		Notes:        inv.Notes,
		Counterparty: client.Counterparty,
		Lines:        inv.Lines,
		Totals:       inv.Totals,
	}
	if inv.Number != nil {
		doc.Number = *inv.Number
	}
	if inv.IssueDate != nil {
		doc.IssueDate = *inv.IssueDate
	}
	return doc
}

func renderableQuote(q *domain.Quote, client *domain.Client) *domain.RenderableDocument {
	doc := &domain.RenderableDocument{
		Kind:         domain.DocTypeQuote,
		DueDate:      q.ValidUntil,
		Currency:     q.Currency,
		Notes:        q.Notes,
		Counterparty: client.Counterparty,
		Lines:        q.Lines,
		Totals:       q.Totals,
	}
	if q.Number != nil {
		doc.Number = *q.Number
	}
	if q.IssueDate != nil {
		doc.IssueDate = *q.IssueDate
	}
	return doc
}

// archivedURL presigns a download link for a previously archived PDF.
func (d *DocumentDelivery) archivedURL(ctx context.Context, kind domain.DocType, id string) (string, error) {
	if d.storage == nil || d.cfg.Bucket == "" {
		return "", domain.NewValidationError("", "document archiving is not configured")
	}
	url, err := d.storage.GetPresignedURL(ctx, d.cfg.Bucket, archiveKey(kind, id), d.cfg.PresignExpiry)
	if err != nil {
		return "", &domain.ExternalServiceError{Service: "object storage", Err: err}
	}
	return url, nil
}
