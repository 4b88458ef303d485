package subscription

import (
	"context"

	"github.com/hirelane/billing/internal/types"
)

// Repository defines the interface for subscription persistence
type Repository interface {
	Create(ctx context.Context, sub *Subscription) error
	Get(ctx context.Context, id string) (*Subscription, error)

	// GetByID fetches a subscription without tenant scoping. Reserved for
	// referral validation and webhook processing, which act across tenant
	// boundaries.
	GetByID(ctx context.Context, id string) (*Subscription, error)

	// GetForUpdate locks the subscription row for the duration of the
	// surrounding transaction. Must be called inside WithTx.
	GetForUpdate(ctx context.Context, id string) (*Subscription, error)

	// FindByTenant returns the most recent subscription of a tenant,
	// ErrNotFound when the tenant has none.
	FindByTenant(ctx context.Context, tenantID string) (*Subscription, error)

	Update(ctx context.Context, sub *Subscription) error

	// UpdateBalances persists daily_credits, referral_credits and last_reset
	UpdateBalances(ctx context.Context, sub *Subscription) error

	// IncrementReferralCredits atomically adds amount to referral_credits at
	// the storage layer. Safe against concurrent increments for the same
	// subscription; deliberately not tenant-scoped because the referrer may
	// belong to a different tenant than the caller.
	IncrementReferralCredits(ctx context.Context, id string, amount int) error

	List(ctx context.Context, filter types.Filter) ([]*Subscription, error)
}
