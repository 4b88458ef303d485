package repository

import (
	"github.com/hirelane/billing/internal/cache"
	"github.com/hirelane/billing/internal/domain/auditlog"
	"github.com/hirelane/billing/internal/domain/creditusage"
	"github.com/hirelane/billing/internal/domain/invoice"
	"github.com/hirelane/billing/internal/domain/plan"
	"github.com/hirelane/billing/internal/domain/referral"
	"github.com/hirelane/billing/internal/domain/subscription"
	"github.com/hirelane/billing/internal/logger"
	"github.com/hirelane/billing/internal/postgres"
	pgRepo "github.com/hirelane/billing/internal/repository/postgres"
)

func NewPlanRepository(db *postgres.DB, logger *logger.Logger, cache cache.Cache) plan.Repository {
	return pgRepo.NewPlanRepository(db, logger, cache)
}

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return pgRepo.NewSubscriptionRepository(db, logger)
}

func NewCreditUsageRepository(db *postgres.DB, logger *logger.Logger) creditusage.Repository {
	return pgRepo.NewCreditUsageRepository(db, logger)
}

func NewReferralRepository(db *postgres.DB, logger *logger.Logger) referral.Repository {
	return pgRepo.NewReferralRepository(db, logger)
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return pgRepo.NewInvoiceRepository(db, logger)
}

func NewAuditLogRepository(db *postgres.DB, logger *logger.Logger) auditlog.Repository {
	return pgRepo.NewAuditLogRepository(db, logger)
}
