package service

import (
	"testing"

	"github.com/hirelane/billing/internal/api/dto"
	"github.com/hirelane/billing/internal/domain/plan"
	ierr "github.com/hirelane/billing/internal/errors"
	"github.com/hirelane/billing/internal/gateway"
	"github.com/hirelane/billing/internal/testutil"
	"github.com/hirelane/billing/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type InvoiceServiceTestSuite struct {
	testutil.BaseServiceTestSuite
	invoiceService      InvoiceService
	subscriptionService SubscriptionService
	testData            struct {
		paidPlan *plan.Plan
	}
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceTestSuite))
}

func (s *InvoiceServiceTestSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := s.serviceParams()
	s.invoiceService = NewInvoiceService(params)
	s.subscriptionService = NewSubscriptionService(params)
	s.setupTestData()
}

func (s *InvoiceServiceTestSuite) serviceParams() ServiceParams {
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

func (s *InvoiceServiceTestSuite) setupTestData() {
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

// createPendingSubscription signs up for the paid plan and returns the
// subscription and invoice IDs.
func (s *InvoiceServiceTestSuite) createPendingSubscription() (string, string) {
	resp, err := s.subscriptionService.CreateSubscription(s.GetContext(), dto.CreateSubscriptionRequest{
		PlanTier:      types.PlanTierHumanPro,
		PaymentMethod: lo.ToPtr(types.PaymentMethodStripe),
	})
	s.NoError(err)

	invoices, err := s.GetStores().InvoiceRepo.List(s.GetContext(), types.Filter{})
	s.NoError(err)
	s.Len(invoices, 1)

	return resp.ID, invoices[0].ID
}

func (s *InvoiceServiceTestSuite) TestPaymentSucceededActivatesSubscription() {
	subID, invID := s.createPendingSubscription()

	err := s.invoiceService.HandleWebhookEvent(s.GetContext(), &gateway.WebhookEvent{
		Type:           gateway.EventPaymentSucceeded,
		PaymentID:      "pi_confirmed",
		SubscriptionID: subID,
	})
	s.NoError(err)

	inv, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), invID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusPaid, inv.InvoiceStatus)
	s.Equal("pi_confirmed", *inv.PaymentID)

	sub, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), subID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, sub.SubStatus)
	s.Equal(50, sub.DailyCredits, "activation loads the first daily allotment")
}

func (s *InvoiceServiceTestSuite) TestPaymentFailedMarksInvoice() {
	subID, invID := s.createPendingSubscription()

	err := s.invoiceService.HandleWebhookEvent(s.GetContext(), &gateway.WebhookEvent{
		Type:           gateway.EventPaymentFailed,
		PaymentID:      "pi_declined",
		SubscriptionID: subID,
	})
	s.NoError(err)

	inv, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), invID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusFailed, inv.InvoiceStatus)

	sub, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), subID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusPending, sub.SubStatus, "subscription stays pending after a failed payment")
}

func (s *InvoiceServiceTestSuite) TestUnknownEventIgnored() {
	err := s.invoiceService.HandleWebhookEvent(s.GetContext(), &gateway.WebhookEvent{
		Type: "charge.refunded",
	})
	s.NoError(err)
}

func (s *InvoiceServiceTestSuite) TestEventWithoutSubscriptionRejected() {
	err := s.invoiceService.HandleWebhookEvent(s.GetContext(), &gateway.WebhookEvent{
		Type:      gateway.EventPaymentSucceeded,
		PaymentID: "pi_orphan",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *InvoiceServiceTestSuite) TestPayInvoiceActivatesSubscription() {
	subID, invID := s.createPendingSubscription()

	resp, err := s.invoiceService.PayInvoice(s.GetContext(), invID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusPaid, resp.InvoiceStatus)
	s.NotNil(resp.PaymentID)

	sub, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), subID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusActive, sub.SubStatus)
	s.Equal(50, sub.DailyCredits, "activation loads the first daily allotment")
	s.NotNil(sub.PaymentID)
}

func (s *InvoiceServiceTestSuite) TestPayInvoiceGatewayFailure() {
	subID, invID := s.createPendingSubscription()
	s.GetGateway().Fail = true

	_, err := s.invoiceService.PayInvoice(s.GetContext(), invID)
	s.Error(err)

	inv, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), invID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusUnpaid, inv.InvoiceStatus, "invoice stays payable after a gateway failure")

	sub, err := s.GetStores().SubscriptionRepo.Get(s.GetContext(), subID)
	s.NoError(err)
	s.Equal(types.SubscriptionStatusPending, sub.SubStatus)
}

func (s *InvoiceServiceTestSuite) TestWebhookAfterPayInvoiceIsIgnored() {
	subID, invID := s.createPendingSubscription()

	_, err := s.invoiceService.PayInvoice(s.GetContext(), invID)
	s.NoError(err)

	// Stripe still delivers the confirmation for the intent created by
	// PayInvoice; with no open invoice left it must be a no-op.
	err = s.invoiceService.HandleWebhookEvent(s.GetContext(), &gateway.WebhookEvent{
		Type:           gateway.EventPaymentSucceeded,
		PaymentID:      "pi_late_confirmation",
		SubscriptionID: subID,
	})
	s.NoError(err)

	inv, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), invID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusPaid, inv.InvoiceStatus)
	s.NotEqual("pi_late_confirmation", *inv.PaymentID, "settled invoice keeps its original payment reference")
}

func (s *InvoiceServiceTestSuite) TestPayAlreadyPaidInvoiceRejected() {
	subID, invID := s.createPendingSubscription()

	err := s.invoiceService.HandleWebhookEvent(s.GetContext(), &gateway.WebhookEvent{
		Type:           gateway.EventPaymentSucceeded,
		PaymentID:      "pi_confirmed",
		SubscriptionID: subID,
	})
	s.NoError(err)

	_, err = s.invoiceService.PayInvoice(s.GetContext(), invID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *InvoiceServiceTestSuite) TestListInvoices() {
	s.createPendingSubscription()

	resp, err := s.invoiceService.ListInvoices(s.GetContext(), types.Filter{})
	s.NoError(err)
	s.Equal(1, resp.Total)
}
