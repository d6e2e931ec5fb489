package main

import (
	"context"
	"time"

	"github.com/fleetcore/fleetcore/internal/api"
	"github.com/fleetcore/fleetcore/internal/api/cron"
	v1 "github.com/fleetcore/fleetcore/internal/api/v1"
	"github.com/fleetcore/fleetcore/internal/config"
	"github.com/fleetcore/fleetcore/internal/email"
	"github.com/fleetcore/fleetcore/internal/gateway"
	"github.com/fleetcore/fleetcore/internal/gateway/paynow"
	"github.com/fleetcore/fleetcore/internal/logger"
	"github.com/fleetcore/fleetcore/internal/postgres"
	"github.com/fleetcore/fleetcore/internal/repository"
	"github.com/fleetcore/fleetcore/internal/scheduler"
	"github.com/fleetcore/fleetcore/internal/service"
	"github.com/fleetcore/fleetcore/internal/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// @title FleetCore Billing API
// @version 1.0
// @description Multi-tenant fleet billing and subscription lifecycle engine
// @BasePath /v1
// @schemes http https

func init() {
	// Billing arithmetic assumes UTC everywhere
	time.Local = time.UTC
}

func main() {
	app := fx.New(
		fx.Provide(
			validator.NewValidator,
			config.NewConfig,
			logger.NewLogger,

			// Postgres
			postgres.NewDB,

			// Repositories
			repository.NewTenantRepository,
			repository.NewUserRepository,
			repository.NewInvoiceRepository,
			repository.NewPaymentRepository,
			repository.NewRemittanceRepository,
			repository.NewVehicleRepository,
			repository.NewAssignmentRepository,
			repository.NewAuditLogRepository,

			// External collaborators
			provideGateway,
			provideEmailSender,

			// Services
			service.NewServiceParams,
			service.NewInvoiceService,
			service.NewPaymentService,
			service.NewPlanService,
			service.NewRemittanceService,
			service.NewDueBalanceService,
			service.NewReconcilerService,

			// API
			provideHandlers,
			provideRouter,
			scheduler.New,
		),
		fx.Invoke(
			startServer,
			startScheduler,
		),
	)

	app.Run()
}

func provideGateway(cfg *config.Configuration, log *logger.Logger) gateway.Provider {
	return paynow.New(cfg.Paynow, log)
}

func provideEmailSender(log *logger.Logger) email.Sender {
	return email.NewLogSender(log)
}

func provideHandlers(
	logger *logger.Logger,
	invoiceService service.InvoiceService,
	paymentService service.PaymentService,
	planService service.PlanService,
	dueBalanceService service.DueBalanceService,
	reconcilerService service.ReconcilerService,
) api.Handlers {
	return api.Handlers{
		Health:     v1.NewHealthHandler(logger),
		Invoice:    v1.NewInvoiceHandler(invoiceService, logger),
		Payment:    v1.NewPaymentHandler(paymentService, logger),
		Webhook:    v1.NewWebhookHandler(paymentService, logger),
		Plan:       v1.NewPlanHandler(planService, logger),
		DueBalance: v1.NewDueBalanceHandler(dueBalanceService, logger),
		Reconciler: cron.NewReconcilerHandler(reconcilerService, logger),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration) *gin.Engine {
	return api.NewRouter(handlers, cfg)
}

func startServer(lc fx.Lifecycle, r *gin.Engine, cfg *config.Configuration, db *postgres.DB, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting api server", "address", cfg.Server.Address)
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			db.Close()
			return nil
		},
	})
}

func startScheduler(lc fx.Lifecycle, s *scheduler.Scheduler, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return s.Start()
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Stopping scheduler...")
			return s.Stop(ctx)
		},
	})
}
