//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"facturo/internal/config"
	"facturo/internal/domain"
	"facturo/internal/port"
	"facturo/internal/repository/postgres"
	"facturo/internal/service"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("facturo_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	m, err := migrate.New("file://../../../db/migrations", dsn)
	require.NoError(t, err)
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		require.NoError(t, err)
	}
	_, _ = m.Close()

	db, err := sqlx.Connect("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedTenant(t *testing.T, db *sqlx.DB) *domain.Tenant {
	t.Helper()
	tenant := &domain.Tenant{Name: "Acme SL", TaxID: "B12345678", Currency: "EUR"}
	require.NoError(t, postgres.NewTenantRepo(db).Create(context.Background(), tenant))
	return tenant
}

func TestSequence_ConcurrentNextIsGapless(t *testing.T) {
	db := newTestDB(t)
	tenant := seedTenant(t, db)
	runner := postgres.NewTxRunner(db)

	const workers = 20
	var (
		mu   sync.Mutex
		got  []int
		wg   sync.WaitGroup
		errs = make(chan error, workers)
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := runner.Run(context.Background(), func(r port.Repos) error {
				n, err := r.Sequences.Next(context.Background(), tenant.ID, 2026, domain.DocTypeInvoice)
				if err != nil {
					return err
				}
				mu.Lock()
				got = append(got, n)
				mu.Unlock()
				return nil
			})
			if err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	sort.Ints(got)
	want := make([]int, workers)
	for i := range want {
		want[i] = i + 1
	}
	assert.Equal(t, want, got)
}

func TestSequence_RollbackReturnsNumber(t *testing.T) {
	db := newTestDB(t)
	tenant := seedTenant(t, db)
	runner := postgres.NewTxRunner(db)
	ctx := context.Background()
	boom := errors.New("write failed")

	err := runner.Run(ctx, func(r port.Repos) error {
		n, err := r.Sequences.Next(ctx, tenant.ID, 2026, domain.DocTypeQuote)
		require.NoError(t, err)
		require.Equal(t, 1, n)
		return boom
	})
	require.ErrorIs(t, err, boom)

	var n int
	err = runner.Run(ctx, func(r port.Repos) error {
		var err error
		n, err = r.Sequences.Next(ctx, tenant.ID, 2026, domain.DocTypeQuote)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestInvoiceLifecycle_EmitAndPay(t *testing.T) {
	db := newTestDB(t)
	tenant := seedTenant(t, db)
	ctx := context.Background()
	log := zap.NewNop()

	repos := postgres.NewRepos(db)
	runner := postgres.NewTxRunner(db)
	audit := service.NewAuditService(postgres.NewAuditRepo(db), log)
	delivery := service.NewDocumentDelivery(nil, nil, nil, service.DeliveryConfig{}, log)
	docs := config.DocumentsConfig{DefaultPaymentTermsDays: 30, QuoteValidityDays: 30}

	rate := &domain.TaxRate{TenantID: tenant.ID, Name: "General", RatePercent: decimal.NewFromInt(21), IsActive: true}
	require.NoError(t, repos.TaxRates.Create(ctx, rate))
	client, err := service.NewClientService(repos.Clients, audit).Create(ctx, tenant, nil, service.CounterpartyInput{
		Name:  "Globex",
		Email: "ap@globex.test",
	})
	require.NoError(t, err)

	invoices := service.NewInvoiceService(runner, repos, delivery, audit, docs, log)
	draft, err := invoices.Create(ctx, tenant, nil, service.CreateInvoiceInput{
		ClientID: client.ID,
		Lines: []service.LineInput{{
			Description:    "Consulting",
			Quantity:       decimal.NewFromInt(1),
			UnitPriceCents: 999,
			TaxRateID:      rate.ID,
		}},
	})
	require.NoError(t, err)
	assert.Nil(t, draft.Number)

	issueDate := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	issued, err := invoices.Emit(ctx, tenant, nil, draft.ID, service.EmitInput{IssueDate: &issueDate})
	require.NoError(t, err)
	assert.Equal(t, "F26/01", *issued.Number)

	_, err = invoices.Emit(ctx, tenant, nil, draft.ID, service.EmitInput{IssueDate: &issueDate})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	paid, err := invoices.RecordPayment(ctx, tenant, nil, draft.ID, service.RecordPaymentInput{AmountCents: 1209})
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, paid.Status)

	stored, err := repos.Invoices.GetByID(ctx, tenant.ID, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, stored.Status)
	require.Len(t, stored.Lines, 1)
	assert.EqualValues(t, 1209, stored.TotalCents)

	trail, total, err := audit.ListByEntity(ctx, tenant, domain.EntityInvoice, draft.ID, 0, 50)
	require.NoError(t, err)
	assert.Equal(t, len(trail), total)
	assert.GreaterOrEqual(t, total, 3)
}

func TestRecurring_OneInvoicePerPeriod(t *testing.T) {
	db := newTestDB(t)
	tenant := seedTenant(t, db)
	ctx := context.Background()
	log := zap.NewNop()

	repos := postgres.NewRepos(db)
	runner := postgres.NewTxRunner(db)
	audit := service.NewAuditService(postgres.NewAuditRepo(db), log)
	delivery := service.NewDocumentDelivery(nil, nil, nil, service.DeliveryConfig{}, log)
	docs := config.DocumentsConfig{DefaultPaymentTermsDays: 30, QuoteValidityDays: 30}
	recurringCfg := config.RecurringConfig{ManualDedupeScope: config.ManualDedupePeriod}

	rate := &domain.TaxRate{TenantID: tenant.ID, Name: "General", RatePercent: decimal.NewFromInt(21), IsActive: true}
	require.NoError(t, repos.TaxRates.Create(ctx, rate))
	client, err := service.NewClientService(repos.Clients, audit).Create(ctx, tenant, nil, service.CounterpartyInput{Name: "Globex"})
	require.NoError(t, err)

	svc := service.NewRecurringService(runner, repos, delivery, audit, docs, recurringCfg, log)
	firstRun := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)
	tpl, err := svc.Create(ctx, tenant, nil, service.RecurringTemplateInput{
		ClientID:    client.ID,
		Name:        "Hosting",
		DayOfMonth:  5,
		Mode:        domain.RecurringModeGenerateOnly,
		NextRunDate: &firstRun,
		Lines: []service.LineInput{{
			Description:    "Monthly hosting",
			Quantity:       decimal.NewFromInt(1),
			UnitPriceCents: 5000,
			TaxRateID:      rate.ID,
		}},
	})
	require.NoError(t, err)

	now := time.Date(2026, 9, 5, 8, 0, 0, 0, time.UTC)
	tick, err := svc.RunTick(ctx, tenant, now)
	require.NoError(t, err)
	require.Equal(t, 1, tick.ProcessedCount)
	assert.Equal(t, domain.RunStatusGenerated, tick.Results[0].Status)
	require.NotNil(t, tick.Results[0].InvoiceID)

	// the template moved to October, so the same tick finds nothing due
	again, err := svc.RunTick(ctx, tenant, now)
	require.NoError(t, err)
	assert.Zero(t, again.ProcessedCount)

	// a tick that committed the run but died before advancing leaves the template due
	october := time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)
	moved, err := repos.Templates.AdvanceNextRunDate(ctx, tenant.ID, tpl.ID, october, firstRun)
	require.NoError(t, err)
	require.True(t, moved)
	replay, err := svc.RunTick(ctx, tenant, now)
	require.NoError(t, err)
	require.Equal(t, 1, replay.ProcessedCount)
	assert.Equal(t, domain.RunStatusSkipped, replay.Results[0].Status)
	assert.Nil(t, replay.Results[0].InvoiceID)

	manual, err := svc.RunNow(ctx, tenant, nil, tpl.ID, now)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusSkipped, manual.Status)

	runs, _, err := repos.Runs.ListByTemplate(ctx, tenant.ID, tpl.ID, 0, 10)
	require.NoError(t, err)
	statuses := lo.CountValues(lo.Map(runs, func(r domain.RecurringRun, _ int) domain.RunStatus { return r.Status }))
	assert.Equal(t, map[domain.RunStatus]int{domain.RunStatusGenerated: 1, domain.RunStatusSkipped: 2}, statuses)

	list, total, err := repos.Invoices.List(ctx, tenant.ID, port.ListFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, *tick.Results[0].InvoiceID, list[0].ID)
}
