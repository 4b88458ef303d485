package service

import (
	"context"
	"time"

	"github.com/hirelane/billing/internal/api/dto"
	"github.com/hirelane/billing/internal/domain/auditlog"
	"github.com/hirelane/billing/internal/domain/referral"
	"github.com/hirelane/billing/internal/domain/subscription"
	ierr "github.com/hirelane/billing/internal/errors"
	"github.com/hirelane/billing/internal/types"
)

type ReferralService interface {
	// CreateReferral records that the calling tenant signed up through the
	// given referrer subscription. Tenants without a subscription get a
	// free-tier one provisioned as part of accepting the referral.
	CreateReferral(ctx context.Context, req dto.CreateReferralRequest) (*dto.ReferralResponse, error)

	GetReferral(ctx context.Context, id string) (*dto.ReferralResponse, error)
}

type referralService struct {
	ServiceParams
}

func NewReferralService(params ServiceParams) ReferralService {
	return &referralService{ServiceParams: params}
}

func (s *referralService) CreateReferral(ctx context.Context, req dto.CreateReferralRequest) (*dto.ReferralResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Referrers routinely belong to a different tenant, so the lookup is
	// unscoped.
	referrer, err := s.SubRepo.GetByID(ctx, req.ReferrerSubscriptionID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.NewError("referrer subscription not found").
				WithHint("Referrer subscription does not exist").
				WithReportableDetails(map[string]any{
					"referrer_subscription_id": req.ReferrerSubscriptionID,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, err
	}

	tenantID := types.GetTenantID(ctx)
	if referrer.TenantID == tenantID {
		return nil, ierr.NewError("cannot accept a referral from your own tenant").
			WithHint("Self-referrals are not allowed").
			WithReportableDetails(map[string]any{
				"referrer_subscription_id": referrer.ID,
			}).
			Mark(ierr.ErrValidation)
	}

	referred, err := s.SubRepo.FindByTenant(ctx, tenantID)
	provisioned := false
	if err != nil {
		if !ierr.IsNotFound(err) {
			return nil, err
		}
		referred = s.newFreeTierSubscription(ctx)
		if referred == nil {
			return nil, ierr.NewError("free tier plan is not configured").
				WithHint("The free tier plan is missing from the catalog").
				Mark(ierr.ErrSystem)
		}
		provisioned = true
	}

	if _, err := s.ReferralRepo.GetByPair(ctx, referrer.ID, referred.ID); err == nil {
		return nil, ierr.NewError("referral already exists for this pair").
			WithHint("This referral has already been recorded").
			WithReportableDetails(map[string]any{
				"referrer_subscription_id": referrer.ID,
				"referred_subscription_id": referred.ID,
			}).
			Mark(ierr.ErrAlreadyExists)
	} else if !ierr.IsNotFound(err) {
		return nil, err
	}

	ref := &referral.Referral{
		ID:                     types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REFERRAL),
		ReferrerSubscriptionID: referrer.ID,
		ReferredSubscriptionID: referred.ID,
		BaseModel:              types.GetDefaultBaseModel(ctx),
	}

	err = s.DB.WithTx(ctx, func(txCtx context.Context) error {
		if provisioned {
			if err := s.SubRepo.Create(txCtx, referred); err != nil {
				return err
			}
		}
		if err := s.ReferralRepo.Create(txCtx, ref); err != nil {
			return err
		}

		entry := &auditlog.AuditLog{
			ID:     types.GenerateUUIDWithPrefix(types.UUID_PREFIX_AUDIT_LOG),
			UserID: types.GetUserID(txCtx),
			Action: auditlog.ActionCreateReferral,
			Details: types.Metadata{
				"referral_id":              ref.ID,
				"referrer_subscription_id": referrer.ID,
				"referred_subscription_id": referred.ID,
			},
			BaseModel: types.GetDefaultBaseModel(txCtx),
		}
		return s.AuditRepo.Create(txCtx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("created referral",
		"referral_id", ref.ID,
		"referrer_subscription_id", referrer.ID,
		"referred_subscription_id", referred.ID,
		"provisioned_subscription", provisioned,
	)

	resp := &dto.ReferralResponse{Referral: ref}
	if provisioned {
		resp.ReferredSubscription = dto.NewSubscriptionResponse(referred)
	}
	return resp, nil
}

func (s *referralService) GetReferral(ctx context.Context, id string) (*dto.ReferralResponse, error) {
	ref, err := s.ReferralRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.ReferralResponse{Referral: ref}, nil
}

// newFreeTierSubscription builds an active free-tier subscription for the
// calling tenant, or nil when the free plan is missing from the catalog.
func (s *referralService) newFreeTierSubscription(ctx context.Context) *subscription.Subscription {
	p, err := s.PlanRepo.GetByTier(ctx, types.PlanTierTACopilot)
	if err != nil {
		s.Logger.Errorw("free tier plan lookup failed", "error", err)
		return nil
	}

	now := time.Now().UTC()
	return &subscription.Subscription{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		PlanID:       p.ID,
		SubStatus:    types.SubscriptionStatusActive,
		StartDate:    now,
		EndDate:      now.AddDate(0, 0, types.DefaultSubscriptionPeriodDays),
		DailyCredits: p.DailyCreditAllotment(),
		LastReset:    now,
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}
}
