package dto

import (
	"github.com/hirelane/billing/internal/domain/subscription"
	ierr "github.com/hirelane/billing/internal/errors"
	"github.com/hirelane/billing/internal/types"
)

type CreateSubscriptionRequest struct {
	PlanTier      types.PlanTier       `json:"plan" binding:"required"`
	PaymentMethod *types.PaymentMethod `json:"payment_method,omitempty"`
	AutoRenew     bool                 `json:"auto_renew"`
}

func (r *CreateSubscriptionRequest) Validate() error {
	if err := r.PlanTier.Validate(); err != nil {
		return err
	}
	if !r.PlanTier.IsFree() && r.PaymentMethod == nil {
		return ierr.NewError("payment_method is required for paid plans").
			WithHint("Paid plans require a payment method").
			WithReportableDetails(map[string]any{
				"plan": r.PlanTier,
			}).
			Mark(ierr.ErrValidation)
	}
	if r.PaymentMethod != nil {
		return r.PaymentMethod.Validate()
	}
	return nil
}

type SubscriptionResponse struct {
	*subscription.Subscription
	PlanName types.PlanTier `json:"plan_name,omitempty"`

	// AvailableCredits is the spendable total after any lazy reset applied
	// on the read path
	AvailableCredits int `json:"available_credits"`
}

func NewSubscriptionResponse(sub *subscription.Subscription) *SubscriptionResponse {
	return &SubscriptionResponse{
		Subscription:     sub,
		AvailableCredits: sub.AvailableCredits(),
	}
}

type ListSubscriptionsResponse struct {
	Items []*SubscriptionResponse `json:"items"`
	Total int                     `json:"total"`
}
