package types

import (
	"time"

	ierr "github.com/hirelane/billing/internal/errors"
	"github.com/samber/lo"
)

// SubscriptionStatus is the status of a subscription
type SubscriptionStatus string

const (
	SubscriptionStatusPending   SubscriptionStatus = "pending"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
)

func (s SubscriptionStatus) String() string {
	return string(s)
}

func (s SubscriptionStatus) Validate() error {
	allowed := []SubscriptionStatus{
		SubscriptionStatusPending,
		SubscriptionStatusActive,
		SubscriptionStatusCancelled,
		SubscriptionStatusExpired,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid subscription status").
			WithHint("Invalid subscription status").
			WithReportableDetails(map[string]any{
				"status":         s,
				"allowed_status": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

const (
	// CreditResetInterval is the rolling window after which daily credits are
	// replenished. The window is anchored to the subscription's last reset,
	// not to a calendar day.
	CreditResetInterval = 24 * time.Hour

	// FreeTierDailyCredits is the daily allotment applied to the free tier on
	// every reset, regardless of what the plan catalog stores for it.
	FreeTierDailyCredits = 5

	// ReferralRewardThreshold is the number of completed interviews a referred
	// subscription must accumulate before the referrer is rewarded.
	ReferralRewardThreshold = 5

	// ReferralRewardCredits is the number of referral credits granted to the
	// referrer when the threshold is crossed.
	ReferralRewardCredits = 1

	// DefaultSubscriptionPeriodDays is the length of a subscription period
	// created at signup.
	DefaultSubscriptionPeriodDays = 30
)
