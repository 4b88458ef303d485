package service

import (
	"github.com/hirelane/billing/internal/config"
	"github.com/hirelane/billing/internal/domain/auditlog"
	"github.com/hirelane/billing/internal/domain/creditusage"
	"github.com/hirelane/billing/internal/domain/invoice"
	"github.com/hirelane/billing/internal/domain/plan"
	"github.com/hirelane/billing/internal/domain/referral"
	"github.com/hirelane/billing/internal/domain/subscription"
	"github.com/hirelane/billing/internal/gateway"
	"github.com/hirelane/billing/internal/logger"
	"github.com/hirelane/billing/internal/postgres"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient

	// Repositories
	PlanRepo        plan.Repository
	SubRepo         subscription.Repository
	CreditUsageRepo creditusage.Repository
	ReferralRepo    referral.Repository
	InvoiceRepo     invoice.Repository
	AuditRepo       auditlog.Repository

	// Payment provider
	Gateway gateway.PaymentGateway
}

// NewServiceParams assembles the common service dependencies
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	planRepo plan.Repository,
	subRepo subscription.Repository,
	creditUsageRepo creditusage.Repository,
	referralRepo referral.Repository,
	invoiceRepo invoice.Repository,
	auditRepo auditlog.Repository,
	paymentGateway gateway.PaymentGateway,
) ServiceParams {
	return ServiceParams{
		Logger:          logger,
		Config:          config,
		DB:              db,
		PlanRepo:        planRepo,
		SubRepo:         subRepo,
		CreditUsageRepo: creditUsageRepo,
		ReferralRepo:    referralRepo,
		InvoiceRepo:     invoiceRepo,
		AuditRepo:       auditRepo,
		Gateway:         paymentGateway,
	}
}
