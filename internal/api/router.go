package api

import (
	"github.com/gin-gonic/gin"
	v1 "github.com/hirelane/billing/internal/api/v1"
	"github.com/hirelane/billing/internal/config"
	"github.com/hirelane/billing/internal/logger"
	"github.com/hirelane/billing/internal/rest/middleware"
	"github.com/hirelane/billing/internal/types"
)

type Handlers struct {
	Health       *v1.HealthHandler
	Plan         *v1.PlanHandler
	Subscription *v1.SubscriptionHandler
	Referral     *v1.ReferralHandler
	Invoice      *v1.InvoiceHandler
	Webhook      *v1.WebhookHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	if cfg.Deployment.Mode != types.ModeLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.ErrorHandler(),
		middleware.TenantMiddleware,
	)

	router.GET("/health", handlers.Health.Health)

	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	// Plan catalog routes
	plans := router.Group("/plans")
	{
		plans.POST("", handlers.Plan.CreatePlan)
		plans.GET("", handlers.Plan.ListPlans)
		plans.GET("/:id", handlers.Plan.GetPlan)
	}

	// Subscription and ledger routes
	subscriptions := router.Group("/subscriptions")
	{
		subscriptions.POST("", handlers.Subscription.CreateSubscription)
		subscriptions.GET("/:id", handlers.Subscription.GetSubscription)
		subscriptions.POST("/:id/cancel", handlers.Subscription.CancelSubscription)
		subscriptions.POST("/:id/consume", handlers.Subscription.ConsumeCredits)
		subscriptions.GET("/:id/usage", handlers.Subscription.ListCreditUsage)
	}

	// Referral routes
	referrals := router.Group("/referrals")
	{
		referrals.POST("", handlers.Referral.CreateReferral)
		referrals.GET("/:id", handlers.Referral.GetReferral)
	}

	// Invoice routes
	invoices := router.Group("/invoices")
	{
		invoices.GET("", handlers.Invoice.ListInvoices)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)
		invoices.POST("/:id/pay", handlers.Invoice.PayInvoice)
	}

	// Payment provider webhooks
	webhooks := router.Group("/webhooks")
	{
		webhooks.POST("/stripe", handlers.Webhook.HandleStripeWebhook)
	}
}
