package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"

	"facturo/internal/config"
	"facturo/internal/domain"
	"facturo/internal/port"
)

// RecurringTemplateInput is the DTO for creating or replacing a recurring template.
type RecurringTemplateInput struct {
	ClientID    uuid.UUID             `json:"client_id" binding:"required"`
	Name        string                `json:"name" binding:"required,max=200"`
	DayOfMonth  int                   `json:"day_of_month" binding:"required,gte=1,lte=28"`
	Mode        domain.RecurringMode  `json:"mode" binding:"required,oneof=GENERATE_ONLY GENERATE_AND_SEND"`
	Status      domain.TemplateStatus `json:"status" binding:"omitempty,oneof=ACTIVE PAUSED"`
	NextRunDate *time.Time            `json:"next_run_date"`
	Currency    string                `json:"currency" binding:"omitempty,len=3"`
	Notes       string                `json:"notes" binding:"max=2000"`
	Lines       []LineInput           `json:"lines" binding:"required,min=1,dive"`
}

// TemplateRunResult is the outcome of one template execution. ErrorMessage is
// set when the invoice was generated but emitting or mailing it failed.
type TemplateRunResult struct {
	TemplateID     uuid.UUID        `json:"template_id"`
	RunID          uuid.UUID        `json:"run_id"`
	Status         domain.RunStatus `json:"status"`
	InvoiceID      *uuid.UUID       `json:"invoice_id,omitempty"`
	IdempotencyKey string           `json:"idempotency_key"`
	ErrorMessage   string           `json:"error_message,omitempty"`
	NextRunDate    *time.Time       `json:"next_run_date,omitempty"`
}

// TickResult summarises one scheduler tick.
type TickResult struct {
	ProcessedCount int                 `json:"processed_count"`
	Results        []TemplateRunResult `json:"results"`
}

// RecurringService manages recurring templates and turns due templates into invoices.
type RecurringService interface {
	Create(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, input RecurringTemplateInput) (*domain.RecurringTemplate, error)
	GetByID(ctx context.Context, tenant *domain.Tenant, id uuid.UUID) (*domain.RecurringTemplate, error)
	List(ctx context.Context, tenant *domain.Tenant, offset, limit int) ([]domain.RecurringTemplate, int, error)
	Update(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID, input RecurringTemplateInput) (*domain.RecurringTemplate, error)
	Pause(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID) (*domain.RecurringTemplate, error)
	Resume(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID) (*domain.RecurringTemplate, error)
	ListRuns(ctx context.Context, tenant *domain.Tenant, id uuid.UUID, offset, limit int) ([]domain.RecurringRun, int, error)

	// RunTick processes every ACTIVE template due at now. A failing template
	// is recorded as a FAILED run and does not stop the batch.
	RunTick(ctx context.Context, tenant *domain.Tenant, now time.Time) (*TickResult, error)
	// RunNow executes one ACTIVE template immediately, regardless of its next run date.
	RunNow(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID, now time.Time) (*TemplateRunResult, error)
}

type recurringService struct {
	tx       port.TxRunner
	repos    port.Repos
	delivery *DocumentDelivery
	audit    port.AuditRecorder
	docs     config.DocumentsConfig
	cfg      config.RecurringConfig
	log      *zap.Logger
	now      func() time.Time
}

// NewRecurringService creates a new RecurringService implementation.
func NewRecurringService(
	tx port.TxRunner,
	repos port.Repos,
	delivery *DocumentDelivery,
	audit port.AuditRecorder,
	docs config.DocumentsConfig,
	cfg config.RecurringConfig,
	log *zap.Logger,
) RecurringService {
	return &recurringService{
		tx:       tx,
		repos:    repos,
		delivery: delivery,
		audit:    audit,
		docs:     docs,
		cfg:      cfg,
		log:      log.Named("recurring"),
		now:      time.Now,
	}
}

func (s *recurringService) Create(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, input RecurringTemplateInput) (*domain.RecurringTemplate, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	tpl := &domain.RecurringTemplate{
		TenantID:   tenant.ID,
		ClientID:   input.ClientID,
		Name:       input.Name,
		DayOfMonth: input.DayOfMonth,
		Mode:       input.Mode,
		Status:     lo.Ternary(input.Status == "", domain.TemplateStatusActive, input.Status),
		Currency:   currencyOrDefault(input.Currency, tenant),
		Notes:      input.Notes,
		Lines:      templateLines(input.Lines),
	}
	tpl.NextRunDate = nextOccurrence(utcDate(s.now()), input.DayOfMonth)
	if input.NextRunDate != nil {
		tpl.NextRunDate = utcDate(*input.NextRunDate)
	}

	err := s.tx.Run(ctx, func(r port.Repos) error {
		if err := s.checkTemplate(ctx, r, tenant, input); err != nil {
			return err
		}
		return r.Templates.Create(ctx, tpl)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, newAuditEvent(tenant.ID, actorID, domain.EntityRecurringTemplate, tpl.ID, domain.AuditCreated,
		map[string]any{"mode": tpl.Mode, "next_run_date": tpl.NextRunDate.Format(time.DateOnly)}))
	return tpl, nil
}

// checkTemplate validates references a binding tag cannot: the client and
// every tax rate must exist. Lines are priced and discarded.
func (s *recurringService) checkTemplate(ctx context.Context, r port.Repos, tenant *domain.Tenant, input RecurringTemplateInput) error {
	if err := requireClient(ctx, r.Clients, tenant.ID, input.ClientID); err != nil {
		return err
	}
	_, err := priceLines(ctx, r.TaxRates, tenant.ID, input.Lines)
	return err
}

func (s *recurringService) GetByID(ctx context.Context, tenant *domain.Tenant, id uuid.UUID) (*domain.RecurringTemplate, error) {
	return s.repos.Templates.GetByID(ctx, tenant.ID, id)
}

func (s *recurringService) List(ctx context.Context, tenant *domain.Tenant, offset, limit int) ([]domain.RecurringTemplate, int, error) {
	return s.repos.Templates.List(ctx, tenant.ID, offset, limit)
}

func (s *recurringService) Update(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID, input RecurringTemplateInput) (*domain.RecurringTemplate, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	var tpl *domain.RecurringTemplate
	err := s.tx.Run(ctx, func(r port.Repos) error {
		var err error
		tpl, err = r.Templates.GetByID(ctx, tenant.ID, id)
		if err != nil {
			return err
		}
		if err := s.checkTemplate(ctx, r, tenant, input); err != nil {
			return err
		}
		switch {
		case input.NextRunDate != nil:
			tpl.NextRunDate = utcDate(*input.NextRunDate)
		case input.DayOfMonth != tpl.DayOfMonth:
			tpl.NextRunDate = nextOccurrence(utcDate(s.now()), input.DayOfMonth)
		}
		tpl.ClientID = input.ClientID
		tpl.Name = input.Name
		tpl.DayOfMonth = input.DayOfMonth
		tpl.Mode = input.Mode
		tpl.Currency = currencyOrDefault(input.Currency, tenant)
		tpl.Notes = input.Notes
		tpl.Lines = templateLines(input.Lines)
		return r.Templates.Update(ctx, tpl)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, newAuditEvent(tenant.ID, actorID, domain.EntityRecurringTemplate, tpl.ID, domain.AuditUpdated,
		map[string]any{"next_run_date": tpl.NextRunDate.Format(time.DateOnly), "lines": len(tpl.Lines)}))
	return tpl, nil
}

func (s *recurringService) Pause(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID) (*domain.RecurringTemplate, error) {
	return s.setStatus(ctx, tenant, actorID, id, domain.ActionPause, domain.TemplateStatusPaused, domain.AuditPaused)
}

// Resume keeps a past next_run_date, so the next tick catches the template up once.
func (s *recurringService) Resume(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID) (*domain.RecurringTemplate, error) {
	return s.setStatus(ctx, tenant, actorID, id, domain.ActionResume, domain.TemplateStatusActive, domain.AuditResumed)
}

func (s *recurringService) setStatus(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID, action domain.Action, to domain.TemplateStatus, auditAction domain.AuditAction) (*domain.RecurringTemplate, error) {
	tpl, err := s.repos.Templates.GetByID(ctx, tenant.ID, id)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckTemplateTransition(tpl.Status, action); err != nil {
		return nil, err
	}
	if err := s.repos.Templates.SetStatus(ctx, tenant.ID, id, to); err != nil {
		return nil, err
	}
	tpl.Status = to
	s.audit.Record(ctx, newAuditEvent(tenant.ID, actorID, domain.EntityRecurringTemplate, id, auditAction, nil))
	return tpl, nil
}

func (s *recurringService) ListRuns(ctx context.Context, tenant *domain.Tenant, id uuid.UUID, offset, limit int) ([]domain.RecurringRun, int, error) {
	if _, err := s.repos.Templates.GetByID(ctx, tenant.ID, id); err != nil {
		return nil, 0, err
	}
	return s.repos.Runs.ListByTemplate(ctx, tenant.ID, id, offset, limit)
}

func (s *recurringService) RunTick(ctx context.Context, tenant *domain.Tenant, now time.Time) (*TickResult, error) {
	due, err := s.repos.Templates.ListDue(ctx, tenant.ID, now)
	if err != nil {
		return nil, err
	}

	result := &TickResult{Results: make([]TemplateRunResult, 0, len(due))}
	for i := range due {
		tpl := due[i]
		res := s.runTemplate(ctx, tenant, &tpl, periodKey(tpl.ID, now), nil)
		result.Results = append(result.Results, res)
	}
	result.ProcessedCount = len(result.Results)

	s.log.Info("recurring tick finished",
		zap.Int("due", len(due)),
		zap.Int("generated", lo.CountBy(result.Results, func(r TemplateRunResult) bool { return r.InvoiceID != nil })),
		zap.Int("failed", lo.CountBy(result.Results, func(r TemplateRunResult) bool { return r.Status == domain.RunStatusFailed })))
	return result, nil
}

func (s *recurringService) RunNow(ctx context.Context, tenant *domain.Tenant, actorID *uuid.UUID, id uuid.UUID, now time.Time) (*TemplateRunResult, error) {
	tpl, err := s.repos.Templates.GetByID(ctx, tenant.ID, id)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckTemplateTransition(tpl.Status, domain.ActionRun); err != nil {
		return nil, err
	}
	res := s.runTemplate(ctx, tenant, tpl, s.manualKey(tpl.ID, now), actorID)
	return &res, nil
}

// periodKey is the scheduled idempotency key: one run per template per calendar month.
func periodKey(templateID uuid.UUID, now time.Time) string {
	return fmt.Sprintf("%s:%s", templateID, now.UTC().Format("2006-01"))
}

func (s *recurringService) manualKey(templateID uuid.UUID, now time.Time) string {
	if s.cfg.ManualDedupeScope == config.ManualDedupePeriod {
		return periodKey(templateID, now)
	}
	return fmt.Sprintf("%s:manual:%s", templateID, now.UTC().Format(time.RFC3339Nano))
}

// runTemplate executes tpl under key. Errors and panics become a FAILED run.
func (s *recurringService) runTemplate(ctx context.Context, tenant *domain.Tenant, tpl *domain.RecurringTemplate, key string, actorID *uuid.UUID) TemplateRunResult {
	var (
		res       TemplateRunResult
		committed *domain.RecurringRun
		err       error
		pc        panics.Catcher
	)
	pc.Try(func() { res, err = s.execute(ctx, tenant, tpl, key, &committed) })
	if r := pc.Recovered(); r != nil {
		s.log.Error("recurring template panicked",
			zap.String("template_id", tpl.ID.String()),
			zap.Any("panic", r.Value),
			zap.ByteString("stack", r.Stack))
		err = fmt.Errorf("panic: %v", r.Value)
	}
	if err != nil {
		s.log.Error("recurring template failed",
			zap.String("template_id", tpl.ID.String()),
			zap.String("idempotency_key", key),
			zap.Error(err))
		if committed != nil {
			res = s.failCommitted(ctx, tenant, tpl, committed, err)
		} else {
			res = s.recordFailure(ctx, tenant, tpl, key, err)
		}
	}

	s.audit.Record(ctx, newAuditEvent(tenant.ID, actorID, domain.EntityRecurringTemplate, tpl.ID, domain.AuditRecurringRun,
		map[string]any{"status": res.Status, "idempotency_key": res.IdempotencyKey, "invoice_id": res.InvoiceID}))
	return res
}

// execute returns an error only when nothing was committed for key. Once the
// claim and the draft invoice commit, the run is published through committed.
func (s *recurringService) execute(ctx context.Context, tenant *domain.Tenant, tpl *domain.RecurringTemplate, key string, committed **domain.RecurringRun) (TemplateRunResult, error) {
	exists, err := s.repos.Runs.ExistsByKey(ctx, key)
	if err != nil {
		return TemplateRunResult{}, err
	}
	if exists {
		return s.skip(ctx, tenant, tpl, key)
	}

	run := &domain.RecurringRun{
		ID:             uuid.New(),
		TenantID:       tenant.ID,
		TemplateID:     tpl.ID,
		RunDate:        tpl.NextRunDate,
		Status:         domain.RunStatusGenerated,
		IdempotencyKey: key,
	}
	var (
		inv     *domain.Invoice
		claimed bool
	)
	err = s.tx.Run(ctx, func(r port.Repos) error {
		var err error
		claimed, err = r.Runs.Claim(ctx, run)
		if err != nil || !claimed {
			return err
		}
		inv, err = s.generateInvoice(ctx, r, tenant, tpl)
		if err != nil {
			return err
		}
		run.GeneratedInvoiceID = &inv.ID
		return r.Runs.Finish(ctx, run)
	})
	if err != nil {
		return TemplateRunResult{}, err
	}
	if !claimed {
		// Lost the race to a concurrent tick for the same key.
		return s.skip(ctx, tenant, tpl, key)
	}
	*committed = run
	s.log.Info("recurring invoice generated",
		zap.String("template_id", tpl.ID.String()),
		zap.String("invoice_id", inv.ID.String()),
		zap.String("idempotency_key", key))

	if tpl.Mode == domain.RecurringModeGenerateAndSend {
		run.Status = domain.RunStatusSuccess
		if err := s.emitAndSend(ctx, tenant, inv); err != nil {
			run.Status = domain.RunStatusFailed
			run.ErrorMessage = err.Error()
			s.log.Warn("recurring invoice generated but not delivered",
				zap.String("template_id", tpl.ID.String()),
				zap.String("invoice_id", inv.ID.String()),
				zap.Error(err))
		}
		if err := s.repos.Runs.Finish(ctx, run); err != nil {
			s.log.Error("failed to finalise recurring run", zap.String("run_id", run.ID.String()), zap.Error(err))
		}
	}

	res := resultFromRun(run)
	res.NextRunDate = s.advance(ctx, tenant, tpl)
	return res, nil
}

// generateInvoice prices the template lines with the tax rates in force now
// and stores a DRAFT invoice linked to the template.
func (s *recurringService) generateInvoice(ctx context.Context, r port.Repos, tenant *domain.Tenant, tpl *domain.RecurringTemplate) (*domain.Invoice, error) {
	inputs := lo.Map(tpl.Lines, func(l domain.RecurringTemplateLine, _ int) LineInput {
		return LineInput{
			Description:    l.Description,
			Quantity:       l.Quantity,
			UnitPriceCents: l.UnitPriceCents,
			TaxRateID:      l.TaxRateID,
		}
	})
	lines, err := priceLines(ctx, r.TaxRates, tenant.ID, inputs)
	if err != nil {
		return nil, err
	}
	if err := requireLines(len(lines)); err != nil {
		return nil, err
	}
	inv := &domain.Invoice{
		TenantID:            tenant.ID,
		Kind:                domain.DocTypeInvoice,
		ClientID:            tpl.ClientID,
		Status:              domain.InvoiceStatusDraft,
		Currency:            currencyOrDefault(tpl.Currency, tenant),
		Notes:               tpl.Notes,
		Lines:               lines,
		Totals:              domain.SumLines(lines),
		RecurringTemplateID: &tpl.ID,
	}
	if err := r.Invoices.Create(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// emitAndSend issues the generated invoice and mails it when the client has an
// address. The generated invoice stays committed whatever happens here.
func (s *recurringService) emitAndSend(ctx context.Context, tenant *domain.Tenant, inv *domain.Invoice) error {
	var issued *domain.Invoice
	err := s.tx.Run(ctx, func(r port.Repos) error {
		var err error
		issued, err = emitInvoice(ctx, r, tenant, inv.ID, nil, s.docs.DefaultPaymentTermsDays, s.now())
		return err
	})
	if err != nil {
		return fmt.Errorf("emit: %w", err)
	}
	*inv = *issued
	s.audit.Record(ctx, newAuditEvent(tenant.ID, nil, domain.EntityInvoice, inv.ID, domain.AuditEmitted,
		map[string]any{"number": *inv.Number}))

	client, err := s.repos.Clients.GetByID(ctx, tenant.ID, inv.ClientID)
	if err != nil {
		return fmt.Errorf("load client: %w", err)
	}
	if client.Email == "" {
		s.log.Info("client has no email, recurring invoice not sent",
			zap.String("invoice_id", inv.ID.String()))
		return nil
	}
	if err := s.delivery.send(ctx, tenant, renderableInvoice(inv, client), inv.ID.String(), client.Email); err != nil {
		return err
	}
	s.audit.Record(ctx, newAuditEvent(tenant.ID, nil, domain.EntityInvoice, inv.ID, domain.AuditSent,
		map[string]any{"to": client.Email}))
	return nil
}

// skip records a SKIPPED run under its own derived key and releases the template.
func (s *recurringService) skip(ctx context.Context, tenant *domain.Tenant, tpl *domain.RecurringTemplate, key string) (TemplateRunResult, error) {
	run := &domain.RecurringRun{
		ID:         uuid.New(),
		TenantID:   tenant.ID,
		TemplateID: tpl.ID,
		RunDate:    tpl.NextRunDate,
		Status:     domain.RunStatusSkipped,
	}
	run.IdempotencyKey = fmt.Sprintf("%s#skipped:%s", key, run.ID)
	if _, err := s.repos.Runs.Claim(ctx, run); err != nil {
		return TemplateRunResult{}, err
	}
	s.log.Info("recurring period already processed",
		zap.String("template_id", tpl.ID.String()),
		zap.String("idempotency_key", key))

	res := resultFromRun(run)
	res.NextRunDate = s.advance(ctx, tenant, tpl)
	return res, nil
}

// recordFailure stores a FAILED run under key. If a run already holds the key
// the existing row is kept.
func (s *recurringService) recordFailure(ctx context.Context, tenant *domain.Tenant, tpl *domain.RecurringTemplate, key string, cause error) TemplateRunResult {
	run := &domain.RecurringRun{
		ID:             uuid.New(),
		TenantID:       tenant.ID,
		TemplateID:     tpl.ID,
		RunDate:        tpl.NextRunDate,
		Status:         domain.RunStatusFailed,
		ErrorMessage:   cause.Error(),
		IdempotencyKey: key,
	}
	inserted, err := s.repos.Runs.Claim(ctx, run)
	if err != nil {
		s.log.Error("failed to record failed recurring run", zap.String("template_id", tpl.ID.String()), zap.Error(err))
	}
	res := resultFromRun(run)
	if !inserted {
		res.RunID = uuid.Nil
	}
	res.NextRunDate = s.advance(ctx, tenant, tpl)
	return res
}

// failCommitted marks an already committed run FAILED, keeping its invoice link.
func (s *recurringService) failCommitted(ctx context.Context, tenant *domain.Tenant, tpl *domain.RecurringTemplate, run *domain.RecurringRun, cause error) TemplateRunResult {
	run.Status = domain.RunStatusFailed
	run.ErrorMessage = cause.Error()
	if err := s.repos.Runs.Finish(ctx, run); err != nil {
		s.log.Error("failed to finalise recurring run", zap.String("run_id", run.ID.String()), zap.Error(err))
	}
	res := resultFromRun(run)
	res.NextRunDate = s.advance(ctx, tenant, tpl)
	return res
}

// advance moves next_run_date one month forward unless another tick already did.
func (s *recurringService) advance(ctx context.Context, tenant *domain.Tenant, tpl *domain.RecurringTemplate) *time.Time {
	next := tpl.FollowingRunDate()
	ok, err := s.repos.Templates.AdvanceNextRunDate(ctx, tenant.ID, tpl.ID, tpl.NextRunDate, next)
	if err != nil {
		s.log.Error("failed to advance recurring template",
			zap.String("template_id", tpl.ID.String()), zap.Error(err))
		return nil
	}
	if !ok {
		s.log.Debug("recurring template already advanced", zap.String("template_id", tpl.ID.String()))
		return nil
	}
	tpl.NextRunDate = next
	return &next
}

func resultFromRun(run *domain.RecurringRun) TemplateRunResult {
	return TemplateRunResult{
		TemplateID:     run.TemplateID,
		RunID:          run.ID,
		Status:         run.Status,
		InvoiceID:      run.GeneratedInvoiceID,
		IdempotencyKey: run.IdempotencyKey,
		ErrorMessage:   run.ErrorMessage,
	}
}

func templateLines(in []LineInput) []domain.RecurringTemplateLine {
	return lo.Map(in, func(l LineInput, i int) domain.RecurringTemplateLine {
		return domain.RecurringTemplateLine{
			Position:       i + 1,
			Description:    l.Description,
			Quantity:       l.Quantity,
			UnitPriceCents: l.UnitPriceCents,
			TaxRateID:      l.TaxRateID,
		}
	})
}

// nextOccurrence is the first date on or after today falling on day.
func nextOccurrence(today time.Time, day int) time.Time {
	y, m, d := today.Date()
	if d > day {
		m++
	}
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}
