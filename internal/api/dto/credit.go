package dto

import (
	ierr "github.com/hirelane/billing/internal/errors"
)

type ConsumeCreditsRequest struct {
	Credits int `json:"credits" binding:"required"`

	// IsCandidate marks candidate-initiated activity. On the free tier it is
	// never charged against the balance.
	IsCandidate bool `json:"is_candidate"`

	Reason string `json:"reason"`
}

func (r *ConsumeCreditsRequest) Validate() error {
	if r.Credits <= 0 {
		return ierr.NewError("credits must be a positive integer").
			WithHint("Credits must be a positive integer").
			WithReportableDetails(map[string]any{
				"credits": r.Credits,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

type ConsumeCreditsResponse struct {
	Success bool `json:"success"`

	// CreditsDeducted is zero when the request was honored without charge
	CreditsDeducted  int `json:"credits_deducted"`
	DailyCredits     int `json:"daily_credits"`
	ReferralCredits  int `json:"referral_credits"`
	AvailableCredits int `json:"available_credits"`
}
