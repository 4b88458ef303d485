package subscription

import (
	"time"

	"github.com/hirelane/billing/internal/types"
)

// Subscription is the per-tenant credit ledger record. The balance is split
// into two buckets: daily credits expire on a rolling 24h window anchored to
// LastReset, referral credits carry forward indefinitely and only grow
// through referral rewards.
type Subscription struct {
	ID            string                   `db:"id" json:"id"`
	PlanID        string                   `db:"plan_id" json:"plan_id"`
	PaymentMethod *types.PaymentMethod     `db:"payment_method" json:"payment_method,omitempty"`
	PaymentID     *string                  `db:"payment_id" json:"payment_id,omitempty"`
	SubStatus     types.SubscriptionStatus `db:"sub_status" json:"sub_status"`
	StartDate     time.Time                `db:"start_date" json:"start_date"`
	EndDate       time.Time                `db:"end_date" json:"end_date"`
	AutoRenew     bool                     `db:"auto_renew" json:"auto_renew"`

	DailyCredits    int       `db:"daily_credits" json:"daily_credits"`
	ReferralCredits int       `db:"referral_credits" json:"referral_credits"`
	LastReset       time.Time `db:"last_reset" json:"last_reset"`

	types.BaseModel
}

func (s *Subscription) TableName() string {
	return "subscriptions"
}

// IsActive reports whether the subscription can consume credits
func (s *Subscription) IsActive() bool {
	return s.SubStatus == types.SubscriptionStatusActive
}

// ResetDailyCredits applies the lazy daily reset: when at least one full
// reset interval has elapsed since LastReset, the daily bucket is set to the
// plan allotment and the window re-anchored to now. Idempotent within a
// window. Returns true when a reset was applied.
func (s *Subscription) ResetDailyCredits(now time.Time, allotment int) bool {
	if now.Sub(s.LastReset) < types.CreditResetInterval {
		return false
	}
	s.DailyCredits = allotment
	s.LastReset = now
	return true
}

// AvailableCredits returns the total spendable balance. Callers must apply
// ResetDailyCredits first; the model itself performs no clock reads.
func (s *Subscription) AvailableCredits() int {
	return s.DailyCredits + s.ReferralCredits
}

// DeductCredits attempts to deduct amount from the balance with
// daily-credits-first precedence: the expiring bucket is drained before any
// carried-forward referral credits are touched. Returns false and mutates
// nothing when the balance is insufficient. Insufficiency is a normal
// outcome, not an error.
func (s *Subscription) DeductCredits(amount int) bool {
	if amount > s.AvailableCredits() {
		return false
	}
	if s.DailyCredits >= amount {
		s.DailyCredits -= amount
	} else {
		remaining := amount - s.DailyCredits
		s.DailyCredits = 0
		s.ReferralCredits -= remaining
	}
	return true
}
