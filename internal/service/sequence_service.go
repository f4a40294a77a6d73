package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"facturo/internal/domain"
	"facturo/internal/port"
)

// ResetSequenceInput is the DTO for the administrative counter reset.
type ResetSequenceInput struct {
	Year    int            `json:"year" binding:"required,gte=2000,lte=9999"`
	DocType domain.DocType `json:"doc_type" binding:"required,oneof=QUOTE INVOICE CREDIT_NOTE PURCHASE_INVOICE"`
	Value   *int           `json:"value" binding:"required,gte=0"`
}

// ResetResult reports what a reset changed and what it endangers.
type ResetResult struct {
	DocType              domain.DocType `json:"doc_type"`
	Year                 int            `json:"year"`
	Previous             int            `json:"previous"`
	Value                int            `json:"value"`
	ConflictingDocuments int            `json:"conflicting_documents"`
	Warning              string         `json:"warning"`
}

// SequenceService exposes counter inspection and the dangerous reset.
type SequenceService interface {
	// Reset sets the counter to value. Numbers above value that were already
	// issued will be issued again, and the result says how many.
	Reset(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, input ResetSequenceInput) (*ResetResult, error)
	List(ctx context.Context, tenant *domain.Tenant, year int) ([]domain.SequenceCounter, error)
}

type sequenceService struct {
	repo  port.SequenceRepository
	audit port.AuditRecorder
	log   *zap.Logger
}

// NewSequenceService creates a new SequenceService implementation.
func NewSequenceService(repo port.SequenceRepository, audit port.AuditRecorder, log *zap.Logger) SequenceService {
	return &sequenceService{repo: repo, audit: audit, log: log.Named("sequence")}
}

func (s *sequenceService) Reset(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, input ResetSequenceInput) (*ResetResult, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	value := *input.Value

	current, err := s.repo.Get(ctx, tenant.ID, input.Year, input.DocType)
	if err != nil {
		return nil, fmt.Errorf("sequenceService.Reset: %w", err)
	}
	conflicts, err := s.repo.CountIssuedAbove(ctx, tenant.ID, input.Year, input.DocType, value)
	if err != nil {
		return nil, fmt.Errorf("sequenceService.Reset: %w", err)
	}
	if err := s.repo.Set(ctx, tenant.ID, input.Year, input.DocType, value); err != nil {
		return nil, fmt.Errorf("sequenceService.Reset: %w", err)
	}

	result := &ResetResult{
		DocType:              input.DocType,
		Year:                 input.Year,
		Previous:             current.CurrentNumber,
		Value:                value,
		ConflictingDocuments: conflicts,
		Warning:              resetWarning(input.DocType, input.Year, value, conflicts),
	}

	s.log.Warn("sequence counter reset",
		zap.String("doc_type", string(input.DocType)),
		zap.Int("year", input.Year),
		zap.Int("previous", result.Previous),
		zap.Int("value", value),
		zap.Int("conflicting_documents", conflicts))

	s.audit.Record(ctx, newAuditEvent(tenant.ID, actorID, domain.EntitySequenceCounter, uuid.Nil,
		domain.AuditSequenceReset, map[string]any{
			"doc_type":              input.DocType,
			"year":                  input.Year,
			"previous":              result.Previous,
			"value":                 value,
			"conflicting_documents": conflicts,
		}))
	return result, nil
}

func resetWarning(docType domain.DocType, year, value, conflicts int) string {
	base := fmt.Sprintf("Resetting %s %d to %d can produce duplicate document numbers.", docType, year, value)
	if conflicts == 0 {
		return base + " No issued document currently has a higher sequence."
	}
	return fmt.Sprintf("%s %d issued document(s) already use a higher sequence and their numbers will be issued again.",
		base, conflicts)
}

func (s *sequenceService) List(ctx context.Context, tenant *domain.Tenant, year int) ([]domain.SequenceCounter, error) {
	return s.repo.ListByYear(ctx, tenant.ID, year)
}
