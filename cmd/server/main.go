package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hirelane/billing/internal/api"
	"github.com/hirelane/billing/internal/cache"
	v1 "github.com/hirelane/billing/internal/api/v1"
	"github.com/hirelane/billing/internal/config"
	"github.com/hirelane/billing/internal/gateway"
	"github.com/hirelane/billing/internal/logger"
	"github.com/hirelane/billing/internal/postgres"
	"github.com/hirelane/billing/internal/repository"
	"github.com/hirelane/billing/internal/service"
	"go.uber.org/fx"
)

// @title HireLane Billing API
// @version 1.0
// @description Subscription credit ledger and billing service
// @BasePath /v1
// @schemes http https

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	app := fx.New(
		fx.Provide(
			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Postgres
			postgres.NewDB,
			postgres.NewClient,

			// Cache
			cache.NewInMemoryCache,

			// Payment gateway
			gateway.NewStripeGateway,

			// Repositories
			repository.NewPlanRepository,
			repository.NewSubscriptionRepository,
			repository.NewCreditUsageRepository,
			repository.NewReferralRepository,
			repository.NewInvoiceRepository,
			repository.NewAuditLogRepository,

			// Services
			service.NewServiceParams,
			service.NewPlanService,
			service.NewSubscriptionService,
			service.NewCreditService,
			service.NewReferralService,
			service.NewInvoiceService,

			// API
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(startServer),
	)
	app.Run()
}

func provideHandlers(
	logger *logger.Logger,
	paymentGateway gateway.PaymentGateway,
	planService service.PlanService,
	subscriptionService service.SubscriptionService,
	creditService service.CreditService,
	referralService service.ReferralService,
	invoiceService service.InvoiceService,
) api.Handlers {
	return api.Handlers{
		Health:       v1.NewHealthHandler(logger),
		Plan:         v1.NewPlanHandler(planService, logger),
		Subscription: v1.NewSubscriptionHandler(subscriptionService, creditService, logger),
		Referral:     v1.NewReferralHandler(referralService, logger),
		Invoice:      v1.NewInvoiceHandler(invoiceService, logger),
		Webhook:      v1.NewWebhookHandler(invoiceService, paymentGateway, logger),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	return api.NewRouter(handlers, cfg, logger)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	db *postgres.DB,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting API server", "address", cfg.Server.Address)
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
