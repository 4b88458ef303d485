package dto

import (
	"github.com/hirelane/billing/internal/domain/referral"
	ierr "github.com/hirelane/billing/internal/errors"
)

type CreateReferralRequest struct {
	ReferrerSubscriptionID string `json:"referrer_subscription_id" binding:"required"`
}

func (r *CreateReferralRequest) Validate() error {
	if r.ReferrerSubscriptionID == "" {
		return ierr.NewError("referrer_subscription_id is required").
			WithHint("referrer_subscription_id is required").
			Mark(ierr.ErrValidation)
	}
	return nil
}

type ReferralResponse struct {
	*referral.Referral

	// ReferredSubscription is set when accepting the referral provisioned a
	// fresh free-tier subscription for the caller
	ReferredSubscription *SubscriptionResponse `json:"referred_subscription,omitempty"`
}
