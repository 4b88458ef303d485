package service

import (
	"context"
	"time"

	"github.com/hirelane/billing/internal/api/dto"
	"github.com/hirelane/billing/internal/domain/auditlog"
	"github.com/hirelane/billing/internal/domain/invoice"
	"github.com/hirelane/billing/internal/domain/subscription"
	ierr "github.com/hirelane/billing/internal/errors"
	"github.com/hirelane/billing/internal/types"
)

type SubscriptionService interface {
	CreateSubscription(ctx context.Context, req dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error)
	GetSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
	CancelSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
}

type subscriptionService struct {
	ServiceParams
}

func NewSubscriptionService(params ServiceParams) SubscriptionService {
	return &subscriptionService{ServiceParams: params}
}

// CreateSubscription signs the tenant up for a plan. Free-tier subscriptions
// activate immediately with the daily allotment loaded. Paid subscriptions
// start pending with an unpaid invoice; activation happens when the payment
// provider confirms the charge via webhook.
func (s *subscriptionService) CreateSubscription(ctx context.Context, req dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.PlanRepo.GetByTier(ctx, req.PlanTier)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sub := &subscription.Subscription{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		PlanID:        p.ID,
		PaymentMethod: req.PaymentMethod,
		SubStatus:     types.SubscriptionStatusActive,
		StartDate:     now,
		EndDate:       now.AddDate(0, 0, types.DefaultSubscriptionPeriodDays),
		AutoRenew:     req.AutoRenew,
		DailyCredits:  p.DailyCreditAllotment(),
		LastReset:     now,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}

	var inv *invoice.Invoice
	if !p.Name.IsFree() {
		sub.SubStatus = types.SubscriptionStatusPending
		inv = &invoice.Invoice{
			ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
			SubscriptionID: sub.ID,
			Amount:         p.Price,
			InvoiceStatus:  types.InvoiceStatusUnpaid,
			InvoiceDate:    now,
			DueDate:        now.AddDate(0, 0, 7),
			BaseModel:      types.GetDefaultBaseModel(ctx),
		}
	}

	err = s.DB.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.SubRepo.Create(txCtx, sub); err != nil {
			return err
		}
		if inv != nil {
			if err := s.InvoiceRepo.Create(txCtx, inv); err != nil {
				return err
			}
		}

		entry := &auditlog.AuditLog{
			ID:     types.GenerateUUIDWithPrefix(types.UUID_PREFIX_AUDIT_LOG),
			UserID: types.GetUserID(txCtx),
			Action: auditlog.ActionCreateSubscription,
			Details: types.Metadata{
				"subscription_id": sub.ID,
				"plan":            p.Name.String(),
				"sub_status":      sub.SubStatus.String(),
			},
			BaseModel: types.GetDefaultBaseModel(txCtx),
		}
		return s.AuditRepo.Create(txCtx, entry)
	})
	if err != nil {
		return nil, err
	}

	// Provider calls stay outside the transaction. A gateway failure leaves
	// the subscription pending with its unpaid invoice; payment can be
	// retried through the pay-invoice endpoint.
	if inv != nil {
		paymentID, err := s.Gateway.CreatePaymentIntent(ctx, inv)
		if err != nil {
			s.Logger.Errorw("payment intent creation failed at signup",
				"subscription_id", sub.ID,
				"invoice_id", inv.ID,
				"error", err,
			)
			resp := dto.NewSubscriptionResponse(sub)
			resp.PlanName = p.Name
			return resp, nil
		}

		inv.PaymentID = &paymentID
		if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
			return nil, err
		}
		sub.PaymentID = &paymentID
		if err := s.SubRepo.Update(ctx, sub); err != nil {
			return nil, err
		}
	}

	s.Logger.Infow("created subscription",
		"subscription_id", sub.ID,
		"plan", p.Name,
		"sub_status", sub.SubStatus,
	)

	resp := dto.NewSubscriptionResponse(sub)
	resp.PlanName = p.Name
	return resp, nil
}

// GetSubscription returns the subscription with the lazy daily reset
// applied. A reset triggered by the read is persisted so the reported
// balance matches what a subsequent consume would see.
func (s *subscriptionService) GetSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	sub, err := s.SubRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	p, err := s.PlanRepo.Get(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}

	if sub.IsActive() && sub.ResetDailyCredits(time.Now().UTC(), p.DailyCreditAllotment()) {
		if err := s.SubRepo.UpdateBalances(ctx, sub); err != nil {
			return nil, err
		}
	}

	resp := dto.NewSubscriptionResponse(sub)
	resp.PlanName = p.Name
	return resp, nil
}

func (s *subscriptionService) CancelSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	sub, err := s.SubRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if sub.SubStatus == types.SubscriptionStatusCancelled {
		return nil, ierr.NewError("subscription is already cancelled").
			WithHint("Subscription is already cancelled").
			WithReportableDetails(map[string]any{
				"subscription_id": sub.ID,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	sub.SubStatus = types.SubscriptionStatusCancelled
	sub.AutoRenew = false

	if err := s.SubRepo.Update(ctx, sub); err != nil {
		return nil, err
	}

	entry := &auditlog.AuditLog{
		ID:     types.GenerateUUIDWithPrefix(types.UUID_PREFIX_AUDIT_LOG),
		UserID: types.GetUserID(ctx),
		Action: auditlog.ActionCancelSubscription,
		Details: types.Metadata{
			"subscription_id": sub.ID,
		},
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	if err := s.AuditRepo.Create(ctx, entry); err != nil {
		s.Logger.Errorw("failed to write audit log",
			"action", auditlog.ActionCancelSubscription,
			"error", err,
		)
	}

	s.Logger.Infow("cancelled subscription", "subscription_id", sub.ID)

	return dto.NewSubscriptionResponse(sub), nil
}
