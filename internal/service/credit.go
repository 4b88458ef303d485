package service

import (
	"context"
	"strconv"
	"time"

	"github.com/hirelane/billing/internal/api/dto"
	"github.com/hirelane/billing/internal/domain/auditlog"
	"github.com/hirelane/billing/internal/domain/creditusage"
	ierr "github.com/hirelane/billing/internal/errors"
	"github.com/hirelane/billing/internal/types"
)

type CreditService interface {
	// ConsumeCredits deducts credits from the subscription ledger. The whole
	// sequence runs inside one transaction under a row lock on the
	// subscription so concurrent consumers cannot double-spend.
	ConsumeCredits(ctx context.Context, subscriptionID string, req dto.ConsumeCreditsRequest) (*dto.ConsumeCreditsResponse, error)

	ListCreditUsage(ctx context.Context, subscriptionID string, filter types.Filter) ([]*creditusage.CreditUsage, error)
}

type creditService struct {
	ServiceParams
}

func NewCreditService(params ServiceParams) CreditService {
	return &creditService{ServiceParams: params}
}

func (s *creditService) ConsumeCredits(ctx context.Context, subscriptionID string, req dto.ConsumeCreditsRequest) (*dto.ConsumeCreditsResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var resp *dto.ConsumeCreditsResponse

	err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
		sub, err := s.SubRepo.GetForUpdate(txCtx, subscriptionID)
		if err != nil {
			return err
		}

		if !sub.IsActive() {
			return ierr.NewError("subscription is not active").
				WithHint("Credits can only be consumed on an active subscription").
				WithReportableDetails(map[string]any{
					"subscription_id": sub.ID,
					"sub_status":      sub.SubStatus,
				}).
				Mark(ierr.ErrInvalidOperation)
		}

		p, err := s.PlanRepo.Get(txCtx, sub.PlanID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		sub.ResetDailyCredits(now, p.DailyCreditAllotment())

		// Candidate activity on the free tier is never charged. The usage
		// entry is still recorded below so the activity stays visible.
		bypass := req.IsCandidate && p.Name.IsFree()

		deducted := 0
		if !bypass {
			if !sub.DeductCredits(req.Credits) {
				return ierr.NewError("insufficient credits").
					WithHint("Not enough credits to complete this action").
					WithReportableDetails(map[string]any{
						"subscription_id":   sub.ID,
						"requested":         req.Credits,
						"available_credits": sub.AvailableCredits(),
					}).
					Mark(ierr.ErrInsufficientCredits)
			}
			deducted = req.Credits
		}

		if err := s.SubRepo.UpdateBalances(txCtx, sub); err != nil {
			return err
		}

		reason := req.Reason
		if reason == "" {
			reason = creditusage.DefaultReason
		}
		usage := &creditusage.CreditUsage{
			ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CREDIT_USAGE),
			SubscriptionID: sub.ID,
			Amount:         req.Credits,
			Reason:         reason,
			UsedAt:         now,
			BaseModel:      types.GetDefaultBaseModel(txCtx),
		}
		if err := s.CreditUsageRepo.Create(txCtx, usage); err != nil {
			return err
		}

		// Employer-side activity advances any referral this subscription was
		// signed up through.
		if !req.IsCandidate {
			if err := s.advanceReferrals(txCtx, sub.ID, req.Credits); err != nil {
				return err
			}
		}

		entry := &auditlog.AuditLog{
			ID:     types.GenerateUUIDWithPrefix(types.UUID_PREFIX_AUDIT_LOG),
			UserID: types.GetUserID(txCtx),
			Action: auditlog.ActionConsumeCredits,
			Details: types.Metadata{
				"subscription_id": sub.ID,
				"credits":         strconv.Itoa(req.Credits),
				"deducted":        strconv.Itoa(deducted),
				"reason":          reason,
			},
			BaseModel: types.GetDefaultBaseModel(txCtx),
		}
		if err := s.AuditRepo.Create(txCtx, entry); err != nil {
			return err
		}

		resp = &dto.ConsumeCreditsResponse{
			Success:          true,
			CreditsDeducted:  deducted,
			DailyCredits:     sub.DailyCredits,
			ReferralCredits:  sub.ReferralCredits,
			AvailableCredits: sub.AvailableCredits(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("consumed credits",
		"subscription_id", subscriptionID,
		"credits", req.Credits,
		"deducted", resp.CreditsDeducted,
	)

	return resp, nil
}

// advanceReferrals bumps the interview counter on every referral where the
// consuming subscription is the referred party, and grants the referrer
// reward when a counter crosses the threshold. The reward_granted
// compare-and-set guarantees at most one grant per referral even under
// concurrent consumes.
func (s *creditService) advanceReferrals(ctx context.Context, subscriptionID string, amount int) error {
	refs, err := s.ReferralRepo.ListByReferred(ctx, subscriptionID)
	if err != nil {
		return err
	}

	for _, ref := range refs {
		updated, err := s.ReferralRepo.IncrementInterviews(ctx, ref.ID, amount)
		if err != nil {
			return err
		}
		if !updated.RewardDue() {
			continue
		}

		granted, err := s.ReferralRepo.MarkRewardGranted(ctx, updated.ID)
		if err != nil {
			return err
		}
		if !granted {
			continue
		}

		if err := s.SubRepo.IncrementReferralCredits(ctx, updated.ReferrerSubscriptionID, types.ReferralRewardCredits); err != nil {
			return err
		}

		s.Logger.Infow("granted referral reward",
			"referral_id", updated.ID,
			"referrer_subscription_id", updated.ReferrerSubscriptionID,
			"interviews_completed", updated.InterviewsCompleted,
		)
	}

	return nil
}

func (s *creditService) ListCreditUsage(ctx context.Context, subscriptionID string, filter types.Filter) ([]*creditusage.CreditUsage, error) {
	// Ownership check before listing; Get is tenant-scoped
	if _, err := s.SubRepo.Get(ctx, subscriptionID); err != nil {
		return nil, err
	}
	return s.CreditUsageRepo.ListBySubscription(ctx, subscriptionID, filter)
}
