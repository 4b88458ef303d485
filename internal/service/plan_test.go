package service

import (
	"testing"

	"github.com/hirelane/billing/internal/api/dto"
	ierr "github.com/hirelane/billing/internal/errors"
	"github.com/hirelane/billing/internal/testutil"
	"github.com/hirelane/billing/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type PlanServiceTestSuite struct {
	testutil.BaseServiceTestSuite
	planService PlanService
}

func TestPlanService(t *testing.T) {
	suite.Run(t, new(PlanServiceTestSuite))
}

func (s *PlanServiceTestSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.planService = NewPlanService(ServiceParams{
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
	})
}

func (s *PlanServiceTestSuite) TestCreateAndGetPlan() {
	resp, err := s.planService.CreatePlan(s.GetContext(), dto.CreatePlanRequest{
		Name:         types.PlanTierHumanAdv,
		Description:  "Advanced tier",
		Price:        decimal.NewFromInt(49),
		BillingCycle: types.BillingCycleMonthly,
		Credits:      25,
	})

	s.NoError(err)
	s.NotEmpty(resp.ID)
	s.Equal(types.PlanTierHumanAdv, resp.Name)

	got, err := s.planService.GetPlan(s.GetContext(), resp.ID)
	s.NoError(err)
	s.Equal(25, got.Credits)
}

func (s *PlanServiceTestSuite) TestCreatePlanInvalidTier() {
	_, err := s.planService.CreatePlan(s.GetContext(), dto.CreatePlanRequest{
		Name:         "enterprise",
		BillingCycle: types.BillingCycleMonthly,
	})

	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *PlanServiceTestSuite) TestListPlans() {
	tiers := []types.PlanTier{
		types.PlanTierTACopilot,
		types.PlanTierHumanAdv,
		types.PlanTierHumanPro,
	}
	for _, tier := range tiers {
		_, err := s.planService.CreatePlan(s.GetContext(), dto.CreatePlanRequest{
			Name:         tier,
			BillingCycle: types.BillingCycleMonthly,
		})
		s.NoError(err)
	}

	resp, err := s.planService.ListPlans(s.GetContext(), types.Filter{})
	s.NoError(err)
	s.Equal(3, resp.Total)
}

func (s *PlanServiceTestSuite) TestGetPlanNotFound() {
	_, err := s.planService.GetPlan(s.GetContext(), "plan_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *PlanServiceTestSuite) TestFreeTierDailyAllotment() {
	resp, err := s.planService.CreatePlan(s.GetContext(), dto.CreatePlanRequest{
		Name:         types.PlanTierTACopilot,
		BillingCycle: types.BillingCycleMonthly,
		Credits:      0,
	})
	s.NoError(err)
	s.Equal(types.FreeTierDailyCredits, resp.DailyCreditAllotment())

	paid, err := s.planService.CreatePlan(s.GetContext(), dto.CreatePlanRequest{
		Name:         types.PlanTierHumanPro,
		BillingCycle: types.BillingCycleMonthly,
		Credits:      50,
	})
	s.NoError(err)
	s.Equal(50, paid.DailyCreditAllotment())
}
