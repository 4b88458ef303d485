package subscription

import (
	"testing"
	"time"

	"github.com/hirelane/billing/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestResetDailyCredits(t *testing.T) {
	now := time.Now().UTC()

	t.Run("resets after a full interval", func(t *testing.T) {
		sub := &Subscription{
			DailyCredits:    1,
			ReferralCredits: 3,
			LastReset:       now.Add(-25 * time.Hour),
		}

		applied := sub.ResetDailyCredits(now, 10)

		assert.True(t, applied)
		assert.Equal(t, 10, sub.DailyCredits)
		assert.Equal(t, 3, sub.ReferralCredits, "referral credits carry forward")
		assert.Equal(t, now, sub.LastReset)
	})

	t.Run("no reset within the window", func(t *testing.T) {
		lastReset := now.Add(-23 * time.Hour)
		sub := &Subscription{
			DailyCredits: 2,
			LastReset:    lastReset,
		}

		applied := sub.ResetDailyCredits(now, 10)

		assert.False(t, applied)
		assert.Equal(t, 2, sub.DailyCredits)
		assert.Equal(t, lastReset, sub.LastReset)
	})

	t.Run("idempotent within a window", func(t *testing.T) {
		sub := &Subscription{
			DailyCredits: 0,
			LastReset:    now.Add(-types.CreditResetInterval),
		}

		assert.True(t, sub.ResetDailyCredits(now, 5))
		sub.DailyCredits = 2 // spend some

		assert.False(t, sub.ResetDailyCredits(now, 5))
		assert.Equal(t, 2, sub.DailyCredits)
	})

	t.Run("exactly at the boundary resets", func(t *testing.T) {
		sub := &Subscription{
			LastReset: now.Add(-types.CreditResetInterval),
		}

		assert.True(t, sub.ResetDailyCredits(now, 7))
		assert.Equal(t, 7, sub.DailyCredits)
	})
}

func TestDeductCredits(t *testing.T) {
	tests := []struct {
		name         string
		daily        int
		referral     int
		amount       int
		wantOK       bool
		wantDaily    int
		wantReferral int
	}{
		{
			name:  "daily bucket covers the amount",
			daily: 5, referral: 3, amount: 4,
			wantOK: true, wantDaily: 1, wantReferral: 3,
		},
		{
			name:  "daily drained before referral is touched",
			daily: 2, referral: 4, amount: 5,
			wantOK: true, wantDaily: 0, wantReferral: 1,
		},
		{
			name:  "exact total balance",
			daily: 2, referral: 3, amount: 5,
			wantOK: true, wantDaily: 0, wantReferral: 0,
		},
		{
			name:  "insufficient leaves balances untouched",
			daily: 2, referral: 2, amount: 5,
			wantOK: false, wantDaily: 2, wantReferral: 2,
		},
		{
			name:  "zero daily spends referral only",
			daily: 0, referral: 3, amount: 2,
			wantOK: true, wantDaily: 0, wantReferral: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &Subscription{
				DailyCredits:    tt.daily,
				ReferralCredits: tt.referral,
			}

			ok := sub.DeductCredits(tt.amount)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantDaily, sub.DailyCredits)
			assert.Equal(t, tt.wantReferral, sub.ReferralCredits)
		})
	}
}

func TestAvailableCredits(t *testing.T) {
	sub := &Subscription{DailyCredits: 4, ReferralCredits: 2}
	assert.Equal(t, 6, sub.AvailableCredits())
}

func TestIsActive(t *testing.T) {
	sub := &Subscription{SubStatus: types.SubscriptionStatusActive}
	assert.True(t, sub.IsActive())

	sub.SubStatus = types.SubscriptionStatusCancelled
	assert.False(t, sub.IsActive())

	sub.SubStatus = types.SubscriptionStatusPending
	assert.False(t, sub.IsActive())
}
