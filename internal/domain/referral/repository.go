package referral

import (
	"context"
)

// Repository defines the interface for referral persistence
type Repository interface {
	Create(ctx context.Context, ref *Referral) error
	Get(ctx context.Context, id string) (*Referral, error)

	// GetByPair returns the referral for a (referrer, referred) pair,
	// ErrNotFound when none exists.
	GetByPair(ctx context.Context, referrerID, referredID string) (*Referral, error)

	// ListByReferred returns all referrals where the given subscription is
	// the referred party.
	ListByReferred(ctx context.Context, referredSubscriptionID string) ([]*Referral, error)

	// IncrementInterviews atomically adds amount to interviews_completed and
	// returns the updated row.
	IncrementInterviews(ctx context.Context, id string, amount int) (*Referral, error)

	// MarkRewardGranted flips reward_granted false->true. Returns true when
	// this call performed the transition, false when the reward was already
	// granted. The compare-and-set makes concurrent grant attempts safe.
	MarkRewardGranted(ctx context.Context, id string) (bool, error)
}
