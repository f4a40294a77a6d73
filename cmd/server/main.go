// @title Facturo API
// @version 1.0
// @description Quotes, invoices, purchase invoices and recurring billing for a single business.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"facturo/internal/config"
	"facturo/internal/email/noop"
	"facturo/internal/email/ses"
	"facturo/internal/handler"
	"facturo/internal/logger"
	"facturo/internal/pdf"
	"facturo/internal/port"
	"facturo/internal/repository/postgres"
	"facturo/internal/router"
	"facturo/internal/service"
	s3storage "facturo/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	zlog := logger.New(cfg.Log)
	defer func() { _ = zlog.Sync() }()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	repos := postgres.NewRepos(db)
	txRunner := postgres.NewTxRunner(db)
	tenantRepo := postgres.NewTenantRepo(db)
	auditRepo := postgres.NewAuditRepo(db)
	providerRepo := postgres.NewProviderRepo(db)

	// Initialize external adapters
	mailer, err := newEmailSender(cfg, zlog)
	if err != nil {
		return fmt.Errorf("failed to initialize email sender: %w", err)
	}
	var storage port.ObjectStorage
	if cfg.S3.Bucket != "" {
		storage, err = s3storage.NewS3Client(&cfg.S3, zlog)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	}
	delivery := service.NewDocumentDelivery(
		pdf.NewMarotoRenderer(),
		mailer,
		storage,
		service.DeliveryConfig{Bucket: cfg.S3.Bucket, PresignExpiry: cfg.S3.PresignExpiry},
		zlog.Named("delivery"),
	)

	// Initialize services
	tenantSvc, err := service.NewTenantService(tenantRepo, cfg.Tenant)
	if err != nil {
		return fmt.Errorf("invalid tenant configuration: %w", err)
	}
	auditSvc := service.NewAuditService(auditRepo, zlog)
	authSvc := service.NewAuthService(cfg.JWT)
	clientSvc := service.NewClientService(repos.Clients, auditSvc)
	providerSvc := service.NewProviderService(providerRepo, auditSvc)
	taxRateSvc := service.NewTaxRateService(repos.TaxRates, auditSvc)
	sequenceSvc := service.NewSequenceService(repos.Sequences, auditSvc, zlog)
	quoteSvc := service.NewQuoteService(txRunner, repos, delivery, auditSvc, cfg.Documents, zlog)
	invoiceSvc := service.NewInvoiceService(txRunner, repos, delivery, auditSvc, cfg.Documents, zlog)
	purchaseSvc := service.NewPurchaseInvoiceService(txRunner, repos, auditSvc, cfg.Documents, zlog)
	recurringSvc := service.NewRecurringService(txRunner, repos, delivery, auditSvc, cfg.Documents, cfg.Recurring, zlog)

	// Setup router
	r := router.Setup(router.Options{
		Auth:           authSvc,
		Tenants:        tenantSvc,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		CronSecret:     cfg.Recurring.CronSecret,
		Logger:         zlog,
	}, router.Handlers{
		Health:    handler.NewHealthHandler(db, tenantSvc),
		Client:    handler.NewClientHandler(clientSvc, zlog),
		Provider:  handler.NewProviderHandler(providerSvc, zlog),
		TaxRate:   handler.NewTaxRateHandler(taxRateSvc, zlog),
		Quote:     handler.NewQuoteHandler(quoteSvc, zlog),
		Invoice:   handler.NewInvoiceHandler(invoiceSvc, zlog),
		Purchase:  handler.NewPurchaseInvoiceHandler(purchaseSvc, zlog),
		Recurring: handler.NewRecurringHandler(recurringSvc, quoteSvc, zlog),
		Sequence:  handler.NewSequenceHandler(sequenceSvc, zlog),
		Audit:     handler.NewAuditHandler(auditSvc, zlog),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	if cfg.Recurring.WorkerEnabled {
		worker := service.NewRecurringWorker(tenantSvc, recurringSvc, quoteSvc, service.RecurringWorkerConfig{
			PollInterval: cfg.Recurring.PollInterval,
			TickTimeout:  cfg.Recurring.TickTimeout,
		}, zlog)
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.Start(ctx)
		}()
	}

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		zlog.Info("server starting", zap.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			stop()
			wg.Wait()
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
	wg.Wait()
	return nil
}

func newEmailSender(cfg *config.Config, zlog *zap.Logger) (port.EmailSender, error) {
	switch cfg.Email.Provider {
	case "ses":
		return ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName)
	case "noop", "":
		zlog.Info("email provider is noop; documents will not be mailed")
		return noop.NewNoopSender(zlog), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Email.Provider)
	}
}
