package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"

	"facturo/internal/port"
)

// NewRepos binds every transactional repository to q, which may be a *sqlx.DB or a *sqlx.Tx.
func NewRepos(q sqlx.ExtContext) port.Repos {
	return port.Repos{
		Sequences:      NewSequenceRepo(q),
		Counterparties: NewCounterpartyDirectory(q),
		Clients:        NewClientRepo(q),
		TaxRates:       NewTaxRateRepo(q),
		Quotes:         NewQuoteRepo(q),
		Invoices:       NewInvoiceRepo(q),
		Purchases:      NewPurchaseInvoiceRepo(q),
		Templates:      NewRecurringTemplateRepo(q),
		Runs:           NewRecurringRunRepo(q),
	}
}

type txRunner struct {
	db         *sqlx.DB
	maxRetries uint64
	newBackOff func() backoff.BackOff
}

// NewTxRunner creates a TxRunner that replays the whole transaction on
// serialization failures and deadlocks.
func NewTxRunner(db *sqlx.DB) port.TxRunner {
	return &txRunner{
		db:         db,
		maxRetries: 4,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 20 * time.Millisecond
			b.MaxInterval = 500 * time.Millisecond
			return b
		},
	}
}

func (t *txRunner) Run(ctx context.Context, fn func(r port.Repos) error) error {
	// An HTTP client going away must not abort a transaction after BEGIN.
	ctx = context.WithoutCancel(ctx)

	op := func() error {
		err := t.runOnce(ctx, fn)
		if err != nil && !isRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	return backoff.Retry(op, backoff.WithMaxRetries(t.newBackOff(), t.maxRetries))
}

func (t *txRunner) runOnce(ctx context.Context, fn func(r port.Repos) error) error {
	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("txRunner.Begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("txRunner.Commit: %w", err)
	}
	return nil
}
