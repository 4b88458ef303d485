package service

import (
	"testing"
	"time"

	"github.com/hirelane/billing/internal/api/dto"
	"github.com/hirelane/billing/internal/domain/plan"
	"github.com/hirelane/billing/internal/domain/subscription"
	ierr "github.com/hirelane/billing/internal/errors"
	"github.com/hirelane/billing/internal/testutil"
	"github.com/hirelane/billing/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ReferralServiceTestSuite struct {
	testutil.BaseServiceTestSuite
	referralService ReferralService
	testData        struct {
		freePlan *plan.Plan
		referrer *subscription.Subscription
	}
}

func TestReferralService(t *testing.T) {
	suite.Run(t, new(ReferralServiceTestSuite))
}

func (s *ReferralServiceTestSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.referralService = NewReferralService(s.serviceParams())
	s.setupTestData()
}

func (s *ReferralServiceTestSuite) serviceParams() ServiceParams {
	return ServiceParams{
		Logger:          s.GetLogger(),
		Config:          s.GetConfig(),
		DB:              s.GetDB(),
		PlanRepo:        s.GetStores().PlanRepo,
		SubRepo:         s.GetStores().SubscriptionRepo,
		CreditUsageRepo: s.GetStores().CreditUsageRepo,
		ReferralRepo:    s.GetStores().ReferralRepo,
		InvoiceRepo:     s.GetStores().InvoiceRepo,
		AuditRepo:       s.GetStores().AuditLogRepo,
		Gateway:         s.GetGateway(),
	}
}

func (s *ReferralServiceTestSuite) setupTestData() {
	s.testData.freePlan = &plan.Plan{
		ID:           "plan_free",
		Name:         types.PlanTierTACopilot,
		Price:        decimal.Zero,
		BillingCycle: types.BillingCycleMonthly,
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().PlanRepo.Create(s.GetContext(), s.testData.freePlan))

	// Referrer lives in a different tenant
	now := time.Now().UTC()
	referrerCtx := testutil.SetupContextForTenant("tenant_referrer", "user_referrer")
	s.testData.referrer = &subscription.Subscription{
		ID:           "subs_referrer",
		PlanID:       s.testData.freePlan.ID,
		SubStatus:    types.SubscriptionStatusActive,
		StartDate:    now,
		EndDate:      now.AddDate(0, 0, 30),
		DailyCredits: types.FreeTierDailyCredits,
		LastReset:    now,
		BaseModel:    types.GetDefaultBaseModel(referrerCtx),
	}
	s.NoError(s.GetStores().SubscriptionRepo.Create(referrerCtx, s.testData.referrer))
}

func (s *ReferralServiceTestSuite) TestCreateReferralProvisionsSubscription() {
	resp, err := s.referralService.CreateReferral(s.GetContext(), dto.CreateReferralRequest{
		ReferrerSubscriptionID: s.testData.referrer.ID,
	})

	s.NoError(err)
	s.Equal(s.testData.referrer.ID, resp.ReferrerSubscriptionID)
	s.Equal(0, resp.InterviewsCompleted)
	s.False(resp.RewardGranted)

	// The calling tenant had no subscription, so one was provisioned
	s.NotNil(resp.ReferredSubscription)
	s.Equal(types.SubscriptionStatusActive, resp.ReferredSubscription.SubStatus)
	s.Equal(types.FreeTierDailyCredits, resp.ReferredSubscription.DailyCredits)

	stored, err := s.GetStores().SubscriptionRepo.FindByTenant(s.GetContext(), types.DefaultTenantID)
	s.NoError(err)
	s.Equal(resp.ReferredSubscription.ID, stored.ID)
}

func (s *ReferralServiceTestSuite) TestCreateReferralWithExistingSubscription() {
	now := time.Now().UTC()
	existing := &subscription.Subscription{
		ID:           "subs_existing",
		PlanID:       s.testData.freePlan.ID,
		SubStatus:    types.SubscriptionStatusActive,
		StartDate:    now,
		EndDate:      now.AddDate(0, 0, 30),
		DailyCredits: types.FreeTierDailyCredits,
		LastReset:    now,
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().SubscriptionRepo.Create(s.GetContext(), existing))

	resp, err := s.referralService.CreateReferral(s.GetContext(), dto.CreateReferralRequest{
		ReferrerSubscriptionID: s.testData.referrer.ID,
	})

	s.NoError(err)
	s.Equal(existing.ID, resp.ReferredSubscriptionID)
	s.Nil(resp.ReferredSubscription, "nothing provisioned when a subscription exists")
}

func (s *ReferralServiceTestSuite) TestDuplicateReferralRejected() {
	_, err := s.referralService.CreateReferral(s.GetContext(), dto.CreateReferralRequest{
		ReferrerSubscriptionID: s.testData.referrer.ID,
	})
	s.NoError(err)

	_, err = s.referralService.CreateReferral(s.GetContext(), dto.CreateReferralRequest{
		ReferrerSubscriptionID: s.testData.referrer.ID,
	})
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *ReferralServiceTestSuite) TestSelfReferralRejected() {
	now := time.Now().UTC()
	own := &subscription.Subscription{
		ID:           "subs_own",
		PlanID:       s.testData.freePlan.ID,
		SubStatus:    types.SubscriptionStatusActive,
		StartDate:    now,
		EndDate:      now.AddDate(0, 0, 30),
		DailyCredits: types.FreeTierDailyCredits,
		LastReset:    now,
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().SubscriptionRepo.Create(s.GetContext(), own))

	_, err := s.referralService.CreateReferral(s.GetContext(), dto.CreateReferralRequest{
		ReferrerSubscriptionID: own.ID,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *ReferralServiceTestSuite) TestUnknownReferrerRejected() {
	_, err := s.referralService.CreateReferral(s.GetContext(), dto.CreateReferralRequest{
		ReferrerSubscriptionID: "subs_missing",
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}
