package referral

import (
	ierr "github.com/hirelane/billing/internal/errors"
	"github.com/hirelane/billing/internal/types"
)

// Referral links a referrer subscription to a referred subscription and
// accumulates the referred tenant's completed interviews. RewardGranted is
// one-way: once true it never resets, so the reward fires at most once per
// referral however far the counter climbs afterwards.
type Referral struct {
	ID                     string `db:"id" json:"id"`
	ReferrerSubscriptionID string `db:"referrer_subscription_id" json:"referrer_subscription_id"`
	ReferredSubscriptionID string `db:"referred_subscription_id" json:"referred_subscription_id"`
	InterviewsCompleted    int    `db:"interviews_completed" json:"interviews_completed"`
	RewardGranted          bool   `db:"reward_granted" json:"reward_granted"`
	types.BaseModel
}

func (r *Referral) TableName() string {
	return "referrals"
}

func (r *Referral) Validate() error {
	if r.ReferrerSubscriptionID == "" || r.ReferredSubscriptionID == "" {
		return ierr.NewError("referrer and referred subscription ids are required").
			WithHint("Both referrer and referred subscriptions must be set").
			Mark(ierr.ErrValidation)
	}
	if r.ReferrerSubscriptionID == r.ReferredSubscriptionID {
		return ierr.NewError("a subscription cannot refer itself").
			WithHint("Referrer and referred subscriptions must differ").
			WithReportableDetails(map[string]any{
				"subscription_id": r.ReferrerSubscriptionID,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// RewardDue reports whether the referral has crossed the reward threshold
// without having been rewarded yet
func (r *Referral) RewardDue() bool {
	return r.InterviewsCompleted >= types.ReferralRewardThreshold && !r.RewardGranted
}
