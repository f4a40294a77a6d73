package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RecurringWorkerConfig holds settings for the in-process scheduler.
type RecurringWorkerConfig struct {
	PollInterval time.Duration
	TickTimeout  time.Duration
}

// RecurringWorker periodically runs the recurring tick and quote expiry for
// the tenant. At most one tick is in flight at a time.
type RecurringWorker struct {
	tenants   TenantService
	recurring RecurringService
	quotes    QuoteService
	cfg       RecurringWorkerConfig
	log       *zap.Logger
	now       func() time.Time
	wg        sync.WaitGroup
}

// NewRecurringWorker creates a new RecurringWorker.
func NewRecurringWorker(tenants TenantService, recurring RecurringService, quotes QuoteService, cfg RecurringWorkerConfig, log *zap.Logger) *RecurringWorker {
	return &RecurringWorker{
		tenants:   tenants,
		recurring: recurring,
		quotes:    quotes,
		cfg:       cfg,
		log:       log.Named("recurring_worker"),
		now:       time.Now,
	}
}

// Start runs the polling loop until ctx is canceled. It blocks until the
// in-flight tick has finished.
func (w *RecurringWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, 1)

	w.log.Info("started",
		zap.Duration("poll_interval", w.cfg.PollInterval),
		zap.Duration("tick_timeout", w.cfg.TickTimeout))

	for {
		select {
		case <-ctx.Done():
			w.log.Info("shutting down, waiting for in-flight tick")
			w.wg.Wait()
			w.log.Info("shutdown complete")
			return
		case <-ticker.C:
			select {
			case sem <- struct{}{}:
			default:
				w.log.Warn("previous tick still running, skipping")
				continue
			}
			w.wg.Add(1)
			go func() {
				defer w.wg.Done()
				defer func() { <-sem }()

				// A tick started before shutdown runs to completion.
				tickCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.cfg.TickTimeout)
				defer cancel()
				w.Tick(tickCtx)
			}()
		}
	}
}

// Tick runs one scheduler pass synchronously.
func (w *RecurringWorker) Tick(ctx context.Context) {
	tenant, err := w.tenants.Current(ctx)
	if err != nil {
		w.log.Error("failed to load tenant", zap.Error(err))
		return
	}
	now := w.now()

	result, err := w.recurring.RunTick(ctx, tenant, now)
	if err != nil {
		w.log.Error("recurring tick failed", zap.Error(err))
	} else if result.ProcessedCount > 0 {
		w.log.Info("recurring tick processed templates", zap.Int("processed", result.ProcessedCount))
	}

	if _, err := w.quotes.ExpireOverdue(ctx, tenant, now); err != nil {
		w.log.Error("quote expiry failed", zap.Error(err))
	}
}
