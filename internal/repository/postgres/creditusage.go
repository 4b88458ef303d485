package postgres

import (
	"context"

	"github.com/hirelane/billing/internal/domain/creditusage"
	ierr "github.com/hirelane/billing/internal/errors"
	"github.com/hirelane/billing/internal/logger"
	"github.com/hirelane/billing/internal/postgres"
	"github.com/hirelane/billing/internal/types"
)

type creditUsageRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewCreditUsageRepository(db *postgres.DB, logger *logger.Logger) creditusage.Repository {
	return &creditUsageRepository{db: db, logger: logger}
}

func (r *creditUsageRepository) Create(ctx context.Context, usage *creditusage.CreditUsage) error {
	if err := usage.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO credit_usages (
			id,
			subscription_id,
			amount,
			reason,
			used_at,
			tenant_id,
			status,
			created_at,
			updated_at,
			created_by,
			updated_by
		) VALUES (
			:id,
			:subscription_id,
			:amount,
			:reason,
			:used_at,
			:tenant_id,
			:status,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)`

	r.logger.Debugw("recording credit usage",
		"usage_id", usage.ID,
		"subscription_id", usage.SubscriptionID,
		"amount", usage.Amount,
	)

	_, err := r.db.NamedExecContext(ctx, query, usage)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to record credit usage").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *creditUsageRepository) ListBySubscription(ctx context.Context, subscriptionID string, filter types.Filter) ([]*creditusage.CreditUsage, error) {
	filter.Sanitize()

	query := `
		SELECT * FROM credit_usages
		WHERE subscription_id = :subscription_id
		AND tenant_id = :tenant_id
		AND status = :status
		ORDER BY used_at DESC
		LIMIT :limit OFFSET :offset`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"subscription_id": subscriptionID,
		"tenant_id":       types.GetTenantID(ctx),
		"status":          types.StatusPublished,
		"limit":           filter.Limit,
		"offset":          filter.Offset,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list credit usage").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var usages []*creditusage.CreditUsage
	for rows.Next() {
		var u creditusage.CreditUsage
		if err := rows.StructScan(&u); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan credit usage").
				Mark(ierr.ErrDatabase)
		}
		usages = append(usages, &u)
	}

	if err = rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Error iterating credit usage rows").
			Mark(ierr.ErrDatabase)
	}

	return usages, nil
}
