package postgres

import (
	"context"

	"github.com/hirelane/billing/internal/domain/referral"
	ierr "github.com/hirelane/billing/internal/errors"
	"github.com/hirelane/billing/internal/logger"
	"github.com/hirelane/billing/internal/postgres"
	"github.com/hirelane/billing/internal/types"
)

type referralRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewReferralRepository(db *postgres.DB, logger *logger.Logger) referral.Repository {
	return &referralRepository{db: db, logger: logger}
}

func (r *referralRepository) Create(ctx context.Context, ref *referral.Referral) error {
	if err := ref.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO referrals (
			id,
			referrer_subscription_id,
			referred_subscription_id,
			interviews_completed,
			reward_granted,
			tenant_id,
			status,
			created_at,
			updated_at,
			created_by,
			updated_by
		) VALUES (
			:id,
			:referrer_subscription_id,
			:referred_subscription_id,
			:interviews_completed,
			:reward_granted,
			:tenant_id,
			:status,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)`

	r.logger.Debugw("creating referral",
		"referral_id", ref.ID,
		"referrer_subscription_id", ref.ReferrerSubscriptionID,
		"referred_subscription_id", ref.ReferredSubscriptionID,
	)

	_, err := r.db.NamedExecContext(ctx, query, ref)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create referral").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *referralRepository) Get(ctx context.Context, id string) (*referral.Referral, error) {
	query := `
		SELECT * FROM referrals
		WHERE id = :id
		AND status = :status`

	return r.querySingle(ctx, query, map[string]interface{}{
		"id":     id,
		"status": types.StatusPublished,
	})
}

func (r *referralRepository) GetByPair(ctx context.Context, referrerID, referredID string) (*referral.Referral, error) {
	query := `
		SELECT * FROM referrals
		WHERE referrer_subscription_id = :referrer_subscription_id
		AND referred_subscription_id = :referred_subscription_id
		AND status = :status`

	return r.querySingle(ctx, query, map[string]interface{}{
		"referrer_subscription_id": referrerID,
		"referred_subscription_id": referredID,
		"status":                   types.StatusPublished,
	})
}

func (r *referralRepository) ListByReferred(ctx context.Context, referredSubscriptionID string) ([]*referral.Referral, error) {
	query := `
		SELECT * FROM referrals
		WHERE referred_subscription_id = :referred_subscription_id
		AND status = :status
		ORDER BY created_at ASC`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"referred_subscription_id": referredSubscriptionID,
		"status":                   types.StatusPublished,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list referrals").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var refs []*referral.Referral
	for rows.Next() {
		var ref referral.Referral
		if err := rows.StructScan(&ref); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan referral").
				Mark(ierr.ErrDatabase)
		}
		refs = append(refs, &ref)
	}

	if err = rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Error iterating referral rows").
			Mark(ierr.ErrDatabase)
	}

	return refs, nil
}

// IncrementInterviews adds amount to the completion counter at the storage
// layer and returns the updated row so the caller can evaluate the reward
// threshold against fresh state.
func (r *referralRepository) IncrementInterviews(ctx context.Context, id string, amount int) (*referral.Referral, error) {
	query := `
		UPDATE referrals
		SET
			interviews_completed = interviews_completed + :amount,
			updated_at = NOW(),
			updated_by = :updated_by
		WHERE id = :id
		AND status = :status
		RETURNING *`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"id":         id,
		"amount":     amount,
		"updated_by": types.GetUserID(ctx),
		"status":     types.StatusPublished,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to increment referral counter").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("referral not found").
			WithHint("Referral does not exist").
			WithReportableDetails(map[string]any{
				"referral_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}

	var ref referral.Referral
	if err := rows.StructScan(&ref); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan referral").
			Mark(ierr.ErrDatabase)
	}
	return &ref, nil
}

// MarkRewardGranted performs the one-way pending->rewarded transition. The
// reward_granted = false guard makes the transition first-writer-wins under
// concurrency; losers observe zero affected rows.
func (r *referralRepository) MarkRewardGranted(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE referrals
		SET
			reward_granted = TRUE,
			updated_at = NOW(),
			updated_by = :updated_by
		WHERE id = :id
		AND reward_granted = FALSE
		AND status = :status`

	result, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":         id,
		"updated_by": types.GetUserID(ctx),
		"status":     types.StatusPublished,
	})
	if err != nil {
		return false, ierr.WithError(err).
			WithHint("Failed to mark referral reward granted").
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, ierr.WithError(err).
			WithHint("Failed to get rows affected").
			Mark(ierr.ErrDatabase)
	}

	return rows > 0, nil
}

func (r *referralRepository) querySingle(ctx context.Context, query string, params map[string]interface{}) (*referral.Referral, error) {
	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query referral").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("referral not found").
			WithHint("Referral does not exist").
			Mark(ierr.ErrNotFound)
	}

	var ref referral.Referral
	if err := rows.StructScan(&ref); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan referral").
			Mark(ierr.ErrDatabase)
	}
	return &ref, nil
}
