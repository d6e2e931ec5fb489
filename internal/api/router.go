package api

import (
	"github.com/fleetcore/fleetcore/internal/api/cron"
	v1 "github.com/fleetcore/fleetcore/internal/api/v1"
	"github.com/fleetcore/fleetcore/internal/config"
	"github.com/fleetcore/fleetcore/internal/rest/middleware"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Health     *v1.HealthHandler
	Invoice    *v1.InvoiceHandler
	Payment    *v1.PaymentHandler
	Webhook    *v1.WebhookHandler
	Plan       *v1.PlanHandler
	DueBalance *v1.DueBalanceHandler
	Reconciler *cron.ReconcilerHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration) *gin.Engine {
	router := gin.New()

	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)

	// Gateway callbacks carry no tenant header; the reference inside the
	// payload establishes scope
	router.POST("/webhooks/paynow", handlers.Webhook.HandlePaynow)

	// Reconciliation trigger for external schedulers
	cronGroup := router.Group("/cron", middleware.CronAuthMiddleware(cfg))
	cronGroup.POST("/reconcile", handlers.Reconciler.Run)

	v1Group := router.Group("/v1", middleware.TenantMiddleware)
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	invoices := router.Group("/invoices")
	{
		invoices.POST("", handlers.Invoice.CreateInvoice)
		invoices.GET("", handlers.Invoice.ListInvoices)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)
		invoices.POST("/:id/cancel", handlers.Invoice.CancelInvoice)
	}

	payments := router.Group("/payments")
	{
		payments.POST("", handlers.Payment.InitiatePayment)
		payments.GET("/:id", handlers.Payment.GetPayment)
		payments.POST("/:id/verify", handlers.Payment.VerifyPayment)
	}

	tenants := router.Group("/tenants")
	{
		tenants.POST("/:id/plan", handlers.Plan.ChangePlan)
	}

	router.GET("/due-balances", handlers.DueBalance.GetFeed)
}
