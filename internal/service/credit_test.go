package service

import (
	"sync"
	"testing"
	"time"

	"github.com/hirelane/billing/internal/api/dto"
	"github.com/hirelane/billing/internal/domain/plan"
	"github.com/hirelane/billing/internal/domain/referral"
	"github.com/hirelane/billing/internal/domain/subscription"
	ierr "github.com/hirelane/billing/internal/errors"
	"github.com/hirelane/billing/internal/testutil"
	"github.com/hirelane/billing/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type CreditServiceTestSuite struct {
	testutil.BaseServiceTestSuite
	creditService CreditService
	testData      struct {
		freePlan *plan.Plan
		paidPlan *plan.Plan
	}
}

func TestCreditService(t *testing.T) {
	suite.Run(t, new(CreditServiceTestSuite))
}

func (s *CreditServiceTestSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.setupServices()
	s.setupTestData()
}

func (s *CreditServiceTestSuite) setupServices() {
	s.creditService = NewCreditService(s.serviceParams())
}

func (s *CreditServiceTestSuite) serviceParams() ServiceParams {
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

func (s *CreditServiceTestSuite) setupTestData() {
	s.testData.freePlan = &plan.Plan{
		ID:           "plan_free",
		Name:         types.PlanTierTACopilot,
		Price:        decimal.Zero,
		BillingCycle: types.BillingCycleMonthly,
		Credits:      0,
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().PlanRepo.Create(s.GetContext(), s.testData.freePlan))

	s.testData.paidPlan = &plan.Plan{
		ID:           "plan_pro",
		Name:         types.PlanTierHumanPro,
		Price:        decimal.NewFromInt(99),
		BillingCycle: types.BillingCycleMonthly,
		Credits:      50,
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().PlanRepo.Create(s.GetContext(), s.testData.paidPlan))
}

func (s *CreditServiceTestSuite) createSubscription(id, planID string, daily, referralCredits int, lastReset time.Time, status types.SubscriptionStatus) *subscription.Subscription {
	now := time.Now().UTC()
	sub := &subscription.Subscription{
		ID:              id,
		PlanID:          planID,
		SubStatus:       status,
		StartDate:       now.AddDate(0, 0, -1),
		EndDate:         now.AddDate(0, 0, 29),
		DailyCredits:    daily,
		ReferralCredits: referralCredits,
		LastReset:       lastReset,
		BaseModel:       types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().SubscriptionRepo.Create(s.GetContext(), sub))
	return sub
}

func (s *CreditServiceTestSuite) TestConsumeFromDailyBucket() {
	sub := s.createSubscription("subs_1", s.testData.paidPlan.ID, 10, 2, time.Now().UTC(), types.SubscriptionStatusActive)

	resp, err := s.creditService.ConsumeCredits(s.GetContext(), sub.ID, dto.ConsumeCreditsRequest{Credits: 3})

	s.NoError(err)
	s.True(resp.Success)
	s.Equal(3, resp.CreditsDeducted)
	s.Equal(7, resp.DailyCredits)
	s.Equal(2, resp.ReferralCredits, "referral credits untouched while daily covers the amount")

	usages, err := s.GetStores().CreditUsageRepo.ListBySubscription(s.GetContext(), sub.ID, types.Filter{})
	s.NoError(err)
	s.Len(usages, 1)
	s.Equal(3, usages[0].Amount)
}

func (s *CreditServiceTestSuite) TestConsumeSpillsIntoReferralCredits() {
	sub := s.createSubscription("subs_2", s.testData.paidPlan.ID, 2, 4, time.Now().UTC(), types.SubscriptionStatusActive)

	resp, err := s.creditService.ConsumeCredits(s.GetContext(), sub.ID, dto.ConsumeCreditsRequest{Credits: 5})

	s.NoError(err)
	s.Equal(0, resp.DailyCredits)
	s.Equal(1, resp.ReferralCredits)
}

func (s *CreditServiceTestSuite) TestInsufficientCredits() {
	sub := s.createSubscription("subs_3", s.testData.paidPlan.ID, 2, 1, time.Now().UTC(), types.SubscriptionStatusActive)

	resp, err := s.creditService.ConsumeCredits(s.GetContext(), sub.ID, dto.ConsumeCreditsRequest{Credits: 4})

	s.Error(err)
	s.Nil(resp)
	s.True(ierr.IsInsufficientCredits(err))

	// Balances unchanged
	stored, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Equal(2, stored.DailyCredits)
	s.Equal(1, stored.ReferralCredits)

	// No usage recorded
	usages, err := s.GetStores().CreditUsageRepo.ListBySubscription(s.GetContext(), sub.ID, types.Filter{})
	s.NoError(err)
	s.Empty(usages)
}

func (s *CreditServiceTestSuite) TestCandidateBypassOnFreeTier() {
	sub := s.createSubscription("subs_4", s.testData.freePlan.ID, 5, 0, time.Now().UTC(), types.SubscriptionStatusActive)

	resp, err := s.creditService.ConsumeCredits(s.GetContext(), sub.ID, dto.ConsumeCreditsRequest{
		Credits:     2,
		IsCandidate: true,
	})

	s.NoError(err)
	s.True(resp.Success)
	s.Equal(0, resp.CreditsDeducted)
	s.Equal(5, resp.DailyCredits, "candidate activity on the free tier is never charged")

	// The activity is still recorded
	usages, err := s.GetStores().CreditUsageRepo.ListBySubscription(s.GetContext(), sub.ID, types.Filter{})
	s.NoError(err)
	s.Len(usages, 1)
}

func (s *CreditServiceTestSuite) TestCandidateOnPaidTierIsCharged() {
	sub := s.createSubscription("subs_5", s.testData.paidPlan.ID, 10, 0, time.Now().UTC(), types.SubscriptionStatusActive)

	resp, err := s.creditService.ConsumeCredits(s.GetContext(), sub.ID, dto.ConsumeCreditsRequest{
		Credits:     2,
		IsCandidate: true,
	})

	s.NoError(err)
	s.Equal(2, resp.CreditsDeducted)
	s.Equal(8, resp.DailyCredits)
}

func (s *CreditServiceTestSuite) TestInactiveSubscriptionRejected() {
	sub := s.createSubscription("subs_6", s.testData.paidPlan.ID, 10, 0, time.Now().UTC(), types.SubscriptionStatusCancelled)

	_, err := s.creditService.ConsumeCredits(s.GetContext(), sub.ID, dto.ConsumeCreditsRequest{Credits: 1})

	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *CreditServiceTestSuite) TestInvalidAmountRejected() {
	_, err := s.creditService.ConsumeCredits(s.GetContext(), "subs_any", dto.ConsumeCreditsRequest{Credits: 0})
	s.Error(err)
	s.True(ierr.IsValidation(err))

	_, err = s.creditService.ConsumeCredits(s.GetContext(), "subs_any", dto.ConsumeCreditsRequest{Credits: -2})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *CreditServiceTestSuite) TestLazyResetBeforeDeduction() {
	staleReset := time.Now().UTC().Add(-25 * time.Hour)
	sub := s.createSubscription("subs_7", s.testData.paidPlan.ID, 0, 0, staleReset, types.SubscriptionStatusActive)

	resp, err := s.creditService.ConsumeCredits(s.GetContext(), sub.ID, dto.ConsumeCreditsRequest{Credits: 10})

	s.NoError(err)
	s.Equal(40, resp.DailyCredits, "allotment replenished before deduction")

	stored, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Equal(40, stored.DailyCredits)
	s.True(stored.LastReset.After(staleReset))
}

func (s *CreditServiceTestSuite) TestFreeTierResetFloor() {
	staleReset := time.Now().UTC().Add(-48 * time.Hour)
	sub := s.createSubscription("subs_8", s.testData.freePlan.ID, 0, 0, staleReset, types.SubscriptionStatusActive)

	resp, err := s.creditService.ConsumeCredits(s.GetContext(), sub.ID, dto.ConsumeCreditsRequest{Credits: 1})

	s.NoError(err)
	s.Equal(types.FreeTierDailyCredits-1, resp.DailyCredits, "free tier resets to the fixed floor despite catalog credits of 0")
}

func (s *CreditServiceTestSuite) TestReferralRewardGrantedExactlyOnce() {
	referrer := s.createSubscription("subs_referrer", s.testData.paidPlan.ID, 10, 0, time.Now().UTC(), types.SubscriptionStatusActive)
	referred := s.createSubscription("subs_referred", s.testData.freePlan.ID, 5, 0, time.Now().UTC(), types.SubscriptionStatusActive)

	ref := &referral.Referral{
		ID:                     "ref_1",
		ReferrerSubscriptionID: referrer.ID,
		ReferredSubscriptionID: referred.ID,
		BaseModel:              types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().ReferralRepo.Create(s.GetContext(), ref))

	// Four consumes: below the threshold, no reward yet
	for i := 0; i < types.ReferralRewardThreshold-1; i++ {
		_, err := s.creditService.ConsumeCredits(s.GetContext(), referred.ID, dto.ConsumeCreditsRequest{Credits: 1})
		s.NoError(err)
	}

	storedRef, err := s.GetStores().ReferralRepo.Get(s.GetContext(), ref.ID)
	s.NoError(err)
	s.Equal(types.ReferralRewardThreshold-1, storedRef.InterviewsCompleted)
	s.False(storedRef.RewardGranted)

	storedReferrer, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), referrer.ID)
	s.NoError(err)
	s.Equal(0, storedReferrer.ReferralCredits)

	// Fifth consume crosses the threshold
	_, err = s.creditService.ConsumeCredits(s.GetContext(), referred.ID, dto.ConsumeCreditsRequest{Credits: 1})
	s.NoError(err)

	storedRef, err = s.GetStores().ReferralRepo.Get(s.GetContext(), ref.ID)
	s.NoError(err)
	s.True(storedRef.RewardGranted)

	storedReferrer, err = s.GetStores().SubscriptionRepo.Get(s.GetContext(), referrer.ID)
	s.NoError(err)
	s.Equal(types.ReferralRewardCredits, storedReferrer.ReferralCredits)

	// Further activity never grants again. Daily credits were reduced to 0
	// by the five consumes, so replenish before continuing.
	s.NoError(s.GetStores().SubscriptionRepo.UpdateBalances(s.GetContext(), &subscription.Subscription{
		ID:           referred.ID,
		DailyCredits: 5,
		LastReset:    time.Now().UTC(),
	}))

	_, err = s.creditService.ConsumeCredits(s.GetContext(), referred.ID, dto.ConsumeCreditsRequest{Credits: 1})
	s.NoError(err)

	storedReferrer, err = s.GetStores().SubscriptionRepo.Get(s.GetContext(), referrer.ID)
	s.NoError(err)
	s.Equal(types.ReferralRewardCredits, storedReferrer.ReferralCredits, "reward is one-shot")
}

func (s *CreditServiceTestSuite) TestCandidateActivityDoesNotAdvanceReferral() {
	referrer := s.createSubscription("subs_referrer2", s.testData.paidPlan.ID, 10, 0, time.Now().UTC(), types.SubscriptionStatusActive)
	referred := s.createSubscription("subs_referred2", s.testData.freePlan.ID, 5, 0, time.Now().UTC(), types.SubscriptionStatusActive)

	ref := &referral.Referral{
		ID:                     "ref_2",
		ReferrerSubscriptionID: referrer.ID,
		ReferredSubscriptionID: referred.ID,
		BaseModel:              types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().ReferralRepo.Create(s.GetContext(), ref))

	_, err := s.creditService.ConsumeCredits(s.GetContext(), referred.ID, dto.ConsumeCreditsRequest{
		Credits:     1,
		IsCandidate: true,
	})
	s.NoError(err)

	storedRef, err := s.GetStores().ReferralRepo.Get(s.GetContext(), ref.ID)
	s.NoError(err)
	s.Equal(0, storedRef.InterviewsCompleted)
}

func (s *CreditServiceTestSuite) TestConcurrentConsumesCannotOverspend() {
	sub := s.createSubscription("subs_conc", s.testData.paidPlan.ID, 5, 0, time.Now().UTC(), types.SubscriptionStatusActive)

	const attempts = 10
	var wg sync.WaitGroup
	results := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.creditService.ConsumeCredits(s.GetContext(), sub.ID, dto.ConsumeCreditsRequest{Credits: 1})
			results[i] = err
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			s.True(ierr.IsInsufficientCredits(err))
		}
	}
	s.Equal(5, succeeded, "exactly the available balance can be spent")

	stored, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Equal(0, stored.DailyCredits)
	s.Equal(0, stored.ReferralCredits)
}

func (s *CreditServiceTestSuite) TestListCreditUsage() {
	sub := s.createSubscription("subs_list", s.testData.paidPlan.ID, 10, 0, time.Now().UTC(), types.SubscriptionStatusActive)

	for i := 0; i < 3; i++ {
		_, err := s.creditService.ConsumeCredits(s.GetContext(), sub.ID, dto.ConsumeCreditsRequest{Credits: 1})
		s.NoError(err)
	}

	usages, err := s.creditService.ListCreditUsage(s.GetContext(), sub.ID, types.Filter{})
	s.NoError(err)
	s.Len(usages, 3)
}
