package router

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "facturo/docs"
	"facturo/internal/domain"
	"facturo/internal/handler"
	"facturo/internal/middleware"
	"facturo/internal/service"
)

// Handlers bundles every HTTP handler mounted by Setup.
type Handlers struct {
	Health    *handler.HealthHandler
	Client    *handler.ClientHandler
	Provider  *handler.ProviderHandler
	TaxRate   *handler.TaxRateHandler
	Quote     *handler.QuoteHandler
	Invoice   *handler.InvoiceHandler
	Purchase  *handler.PurchaseInvoiceHandler
	Recurring *handler.RecurringHandler
	Sequence  *handler.SequenceHandler
	Audit     *handler.AuditHandler
}

// Options carries the non-handler dependencies of the router.
type Options struct {
	Auth           service.AuthService
	Tenants        service.TenantService
	AllowedOrigins []string
	CronSecret     string
	Logger         *zap.Logger
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(opts Options, h Handlers) *gin.Engine {
	// Binding and service validation share one engine so messages match.
	binding.Validator = service.BindingValidator{}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(opts.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(opts.Logger))
	r.Use(middleware.CORS(opts.AllowedOrigins))

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.TenantContext(opts.Tenants, opts.Logger))

	// External scheduler trigger
	cron := v1.Group("/cron")
	cron.Use(middleware.CronSecret(opts.CronSecret))
	cron.POST("/recurring", h.Recurring.Tick)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(opts.Auth))

	clients := protected.Group("/clients")
	clients.POST("", h.Client.Create)
	clients.GET("", h.Client.List)
	clients.GET("/:id", h.Client.GetByID)
	clients.PUT("/:id", h.Client.Update)

	providers := protected.Group("/providers")
	providers.POST("", h.Provider.Create)
	providers.GET("", h.Provider.List)
	providers.GET("/:id", h.Provider.GetByID)
	providers.PUT("/:id", h.Provider.Update)

	taxRates := protected.Group("/tax-rates")
	taxRates.POST("", middleware.RequireRole(domain.RoleAdmin), h.TaxRate.Create)
	taxRates.GET("", h.TaxRate.List)
	taxRates.GET("/:id", h.TaxRate.GetByID)

	quotes := protected.Group("/quotes")
	quotes.POST("", h.Quote.Create)
	quotes.GET("", h.Quote.List)
	quotes.GET("/:id", h.Quote.GetByID)
	quotes.PUT("/:id", h.Quote.Update)
	quotes.DELETE("/:id", h.Quote.Delete)
	quotes.POST("/:id/emit", h.Quote.Emit)
	quotes.POST("/:id/accept", h.Quote.Accept)
	quotes.POST("/:id/reject", h.Quote.Reject)
	quotes.POST("/:id/convert", h.Quote.Convert)
	quotes.GET("/:id/pdf", h.Quote.PDF)

	invoices := protected.Group("/invoices")
	invoices.POST("", h.Invoice.Create)
	invoices.GET("", h.Invoice.List)
	invoices.GET("/:id", h.Invoice.GetByID)
	invoices.PUT("/:id", h.Invoice.Update)
	invoices.DELETE("/:id", h.Invoice.Delete)
	invoices.POST("/:id/emit", h.Invoice.Emit)
	invoices.POST("/:id/payments", h.Invoice.RecordPayment)
	invoices.GET("/:id/payments", h.Invoice.ListPayments)
	invoices.POST("/:id/send", h.Invoice.Send)
	invoices.GET("/:id/pdf", h.Invoice.PDF)
	invoices.GET("/:id/pdf-url", h.Invoice.ArchivedPDFURL)

	purchases := protected.Group("/purchase-invoices")
	purchases.POST("", h.Purchase.Create)
	purchases.GET("", h.Purchase.List)
	purchases.GET("/:id", h.Purchase.GetByID)
	purchases.PUT("/:id", h.Purchase.Update)
	purchases.DELETE("/:id", h.Purchase.Delete)
	purchases.POST("/:id/book", h.Purchase.Book)
	purchases.POST("/:id/pay", h.Purchase.Pay)

	templates := protected.Group("/recurring-templates")
	templates.POST("", h.Recurring.Create)
	templates.GET("", h.Recurring.List)
	templates.GET("/:id", h.Recurring.GetByID)
	templates.PUT("/:id", h.Recurring.Update)
	templates.POST("/:id/pause", h.Recurring.Pause)
	templates.POST("/:id/resume", h.Recurring.Resume)
	templates.POST("/:id/run", h.Recurring.RunNow)
	templates.GET("/:id/runs", h.Recurring.ListRuns)

	protected.GET("/audit/:entity_type/:id", h.Audit.List)

	// Admin routes - numbering maintenance
	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRole(domain.RoleAdmin))
	admin.POST("/sequences/reset", h.Sequence.Reset)
	admin.GET("/sequences", h.Sequence.List)

	return r
}
