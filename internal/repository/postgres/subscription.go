package postgres

import (
	"context"

	"github.com/hirelane/billing/internal/domain/subscription"
	ierr "github.com/hirelane/billing/internal/errors"
	"github.com/hirelane/billing/internal/logger"
	"github.com/hirelane/billing/internal/postgres"
	"github.com/hirelane/billing/internal/types"
)

type subscriptionRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return &subscriptionRepository{db: db, logger: logger}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		INSERT INTO subscriptions (
			id,
			plan_id,
			payment_method,
			payment_id,
			sub_status,
			start_date,
			end_date,
			auto_renew,
			daily_credits,
			referral_credits,
			last_reset,
			tenant_id,
			status,
			created_at,
			updated_at,
			created_by,
			updated_by
		) VALUES (
			:id,
			:plan_id,
			:payment_method,
			:payment_id,
			:sub_status,
			:start_date,
			:end_date,
			:auto_renew,
			:daily_credits,
			:referral_credits,
			:last_reset,
			:tenant_id,
			:status,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)`

	r.logger.Debugw("creating subscription",
		"subscription_id", sub.ID,
		"tenant_id", sub.TenantID,
		"plan_id", sub.PlanID,
	)

	_, err := r.db.NamedExecContext(ctx, query, sub)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create subscription").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *subscriptionRepository) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	query := `
		SELECT * FROM subscriptions
		WHERE id = :id
		AND tenant_id = :tenant_id
		AND status = :status`

	return r.querySingle(ctx, query, map[string]interface{}{
		"id":        id,
		"tenant_id": types.GetTenantID(ctx),
		"status":    types.StatusPublished,
	})
}

func (r *subscriptionRepository) GetByID(ctx context.Context, id string) (*subscription.Subscription, error) {
	query := `
		SELECT * FROM subscriptions
		WHERE id = :id
		AND status = :status`

	return r.querySingle(ctx, query, map[string]interface{}{
		"id":     id,
		"status": types.StatusPublished,
	})
}

// GetForUpdate reads the subscription row under a FOR UPDATE lock so the
// read-reset-deduct-persist sequence is serialized per subscription. Only
// meaningful inside a transaction started with WithTx.
func (r *subscriptionRepository) GetForUpdate(ctx context.Context, id string) (*subscription.Subscription, error) {
	if _, ok := postgres.GetTx(ctx); !ok {
		return nil, ierr.NewError("row lock requested outside a transaction").
			WithHint("Internal error").
			Mark(ierr.ErrSystem)
	}

	query := `
		SELECT * FROM subscriptions
		WHERE id = :id
		AND tenant_id = :tenant_id
		AND status = :status
		FOR UPDATE`

	r.logger.Debugw("locking subscription row",
		"subscription_id", id,
		"tenant_id", types.GetTenantID(ctx),
	)

	return r.querySingle(ctx, query, map[string]interface{}{
		"id":        id,
		"tenant_id": types.GetTenantID(ctx),
		"status":    types.StatusPublished,
	})
}

func (r *subscriptionRepository) FindByTenant(ctx context.Context, tenantID string) (*subscription.Subscription, error) {
	query := `
		SELECT * FROM subscriptions
		WHERE tenant_id = :tenant_id
		AND status = :status
		ORDER BY created_at DESC
		LIMIT 1`

	return r.querySingle(ctx, query, map[string]interface{}{
		"tenant_id": tenantID,
		"status":    types.StatusPublished,
	})
}

func (r *subscriptionRepository) Update(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		UPDATE subscriptions
		SET
			payment_method = :payment_method,
			payment_id = :payment_id,
			sub_status = :sub_status,
			auto_renew = :auto_renew,
			end_date = :end_date,
			updated_at = NOW(),
			updated_by = :updated_by
		WHERE id = :id
		AND tenant_id = :tenant_id
		AND status = :status`

	params := map[string]interface{}{
		"id":             sub.ID,
		"payment_method": sub.PaymentMethod,
		"payment_id":     sub.PaymentID,
		"sub_status":     sub.SubStatus,
		"auto_renew":     sub.AutoRenew,
		"end_date":       sub.EndDate,
		"updated_by":     types.GetUserID(ctx),
		"tenant_id":      sub.TenantID,
		"status":         types.StatusPublished,
	}

	result, err := r.db.NamedExecContext(ctx, query, params)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update subscription").
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to get rows affected").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return ierr.NewError("subscription not found").
			WithHint("Subscription does not exist").
			WithReportableDetails(map[string]any{
				"subscription_id": sub.ID,
			}).
			Mark(ierr.ErrNotFound)
	}

	return nil
}

func (r *subscriptionRepository) UpdateBalances(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		UPDATE subscriptions
		SET
			daily_credits = :daily_credits,
			referral_credits = :referral_credits,
			last_reset = :last_reset,
			updated_at = NOW(),
			updated_by = :updated_by
		WHERE id = :id
		AND status = :status`

	params := map[string]interface{}{
		"id":               sub.ID,
		"daily_credits":    sub.DailyCredits,
		"referral_credits": sub.ReferralCredits,
		"last_reset":       sub.LastReset,
		"updated_by":       types.GetUserID(ctx),
		"status":           types.StatusPublished,
	}

	r.logger.Debugw("updating subscription balances",
		"subscription_id", sub.ID,
		"daily_credits", sub.DailyCredits,
		"referral_credits", sub.ReferralCredits,
	)

	result, err := r.db.NamedExecContext(ctx, query, params)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update subscription balances").
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to get rows affected").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return ierr.NewError("subscription not found").
			WithHint("Subscription does not exist").
			WithReportableDetails(map[string]any{
				"subscription_id": sub.ID,
			}).
			Mark(ierr.ErrNotFound)
	}

	return nil
}

// IncrementReferralCredits relies on a storage-level increment rather than a
// read-modify-write so concurrent reward grants for the same referrer cannot
// lose updates.
func (r *subscriptionRepository) IncrementReferralCredits(ctx context.Context, id string, amount int) error {
	query := `
		UPDATE subscriptions
		SET
			referral_credits = referral_credits + :amount,
			updated_at = NOW(),
			updated_by = :updated_by
		WHERE id = :id
		AND status = :status`

	params := map[string]interface{}{
		"id":         id,
		"amount":     amount,
		"updated_by": types.GetUserID(ctx),
		"status":     types.StatusPublished,
	}

	r.logger.Debugw("incrementing referral credits",
		"subscription_id", id,
		"amount", amount,
	)

	result, err := r.db.NamedExecContext(ctx, query, params)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to increment referral credits").
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to get rows affected").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return ierr.NewError("subscription not found").
			WithHint("Subscription does not exist").
			WithReportableDetails(map[string]any{
				"subscription_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}

	return nil
}

func (r *subscriptionRepository) List(ctx context.Context, filter types.Filter) ([]*subscription.Subscription, error) {
	filter.Sanitize()

	query := `
		SELECT * FROM subscriptions
		WHERE tenant_id = :tenant_id
		AND status = :status
		ORDER BY created_at DESC
		LIMIT :limit OFFSET :offset`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"tenant_id": types.GetTenantID(ctx),
		"status":    types.StatusPublished,
		"limit":     filter.Limit,
		"offset":    filter.Offset,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list subscriptions").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var subs []*subscription.Subscription
	for rows.Next() {
		var sub subscription.Subscription
		if err := rows.StructScan(&sub); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan subscription").
				Mark(ierr.ErrDatabase)
		}
		subs = append(subs, &sub)
	}

	if err = rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Error iterating subscription rows").
			Mark(ierr.ErrDatabase)
	}

	return subs, nil
}

func (r *subscriptionRepository) querySingle(ctx context.Context, query string, params map[string]interface{}) (*subscription.Subscription, error) {
	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query subscription").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("subscription not found").
			WithHint("Subscription does not exist").
			Mark(ierr.ErrNotFound)
	}

	var sub subscription.Subscription
	if err := rows.StructScan(&sub); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan subscription").
			Mark(ierr.ErrDatabase)
	}
	return &sub, nil
}
