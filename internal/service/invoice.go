package service

import (
	"context"
	"time"

	"github.com/hirelane/billing/internal/api/dto"
	"github.com/hirelane/billing/internal/domain/auditlog"
	"github.com/hirelane/billing/internal/domain/invoice"
	ierr "github.com/hirelane/billing/internal/errors"
	"github.com/hirelane/billing/internal/gateway"
	"github.com/hirelane/billing/internal/types"
	"github.com/samber/lo"
)

type InvoiceService interface {
	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter types.Filter) (*dto.ListInvoicesResponse, error)

	// PayInvoice charges an unpaid invoice through the gateway. On success
	// the invoice is marked paid and a pending subscription is activated
	// with its first daily allotment.
	PayInvoice(ctx context.Context, id string) (*dto.PayInvoiceResponse, error)

	// HandleWebhookEvent applies a verified provider notification: a success
	// marks the open invoice paid and activates the pending subscription, a
	// failure marks the invoice failed. Events for invoices already settled
	// through PayInvoice are ignored, as are unknown event types.
	HandleWebhookEvent(ctx context.Context, event *gateway.WebhookEvent) error
}

type invoiceService struct {
	ServiceParams
}

func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{ServiceParams: params}
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.InvoiceResponse{Invoice: inv}, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter types.Filter) (*dto.ListInvoicesResponse, error) {
	invoices, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := lo.Map(invoices, func(inv *invoice.Invoice, _ int) *dto.InvoiceResponse {
		return &dto.InvoiceResponse{Invoice: inv}
	})

	return &dto.ListInvoicesResponse{
		Items: items,
		Total: len(items),
	}, nil
}

func (s *invoiceService) PayInvoice(ctx context.Context, id string) (*dto.PayInvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if inv.InvoiceStatus == types.InvoiceStatusPaid {
		return nil, ierr.NewError("invoice is already paid").
			WithHint("Cannot pay an already paid invoice").
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	paymentID, err := s.Gateway.CreatePaymentIntent(ctx, inv)
	if err != nil {
		return nil, err
	}

	err = s.DB.WithTx(ctx, func(txCtx context.Context) error {
		inv.InvoiceStatus = types.InvoiceStatusPaid
		inv.PaymentID = &paymentID
		if err := s.InvoiceRepo.Update(txCtx, inv); err != nil {
			return err
		}

		if err := s.activateSubscription(txCtx, inv.SubscriptionID, paymentID); err != nil {
			return err
		}

		entry := &auditlog.AuditLog{
			ID:     types.GenerateUUIDWithPrefix(types.UUID_PREFIX_AUDIT_LOG),
			UserID: types.GetUserID(txCtx),
			Action: auditlog.ActionPayInvoice,
			Details: types.Metadata{
				"invoice_id": inv.ID,
				"payment_id": paymentID,
			},
			BaseModel: types.GetDefaultBaseModel(txCtx),
		}
		return s.AuditRepo.Create(txCtx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("paid invoice",
		"invoice_id", inv.ID,
		"subscription_id", inv.SubscriptionID,
		"payment_id", paymentID,
	)

	return &dto.PayInvoiceResponse{Invoice: inv}, nil
}

// activateSubscription promotes a pending subscription to active after its
// invoice was paid, loading the first daily allotment and anchoring the
// rolling reset window. Already-active subscriptions are left untouched.
func (s *invoiceService) activateSubscription(ctx context.Context, subscriptionID, paymentID string) error {
	sub, err := s.SubRepo.GetByID(ctx, subscriptionID)
	if err != nil {
		return err
	}

	if sub.SubStatus != types.SubscriptionStatusPending {
		return nil
	}

	p, err := s.PlanRepo.Get(ctx, sub.PlanID)
	if err != nil {
		return err
	}

	sub.SubStatus = types.SubscriptionStatusActive
	sub.PaymentID = &paymentID
	if err := s.SubRepo.Update(ctx, sub); err != nil {
		return err
	}

	sub.DailyCredits = p.DailyCreditAllotment()
	sub.LastReset = time.Now().UTC()
	return s.SubRepo.UpdateBalances(ctx, sub)
}

func (s *invoiceService) HandleWebhookEvent(ctx context.Context, event *gateway.WebhookEvent) error {
	switch event.Type {
	case gateway.EventPaymentSucceeded:
		return s.handlePaymentSucceeded(ctx, event)
	case gateway.EventPaymentFailed:
		return s.handlePaymentFailed(ctx, event)
	default:
		s.Logger.Debugw("ignoring webhook event", "type", event.Type)
		return nil
	}
}

func (s *invoiceService) handlePaymentSucceeded(ctx context.Context, event *gateway.WebhookEvent) error {
	if event.SubscriptionID == "" {
		return ierr.NewError("webhook event missing subscription reference").
			WithHint("Payment metadata does not reference a subscription").
			Mark(ierr.ErrValidation)
	}

	return s.DB.WithTx(ctx, func(txCtx context.Context) error {
		inv, err := s.InvoiceRepo.GetUnpaidBySubscription(txCtx, event.SubscriptionID)
		if err != nil {
			// The invoice was already settled through PayInvoice; the
			// provider confirmation carries no new information.
			if ierr.IsNotFound(err) {
				s.Logger.Debugw("no open invoice for webhook event",
					"subscription_id", event.SubscriptionID,
					"payment_id", event.PaymentID,
				)
				return nil
			}
			return err
		}

		inv.InvoiceStatus = types.InvoiceStatusPaid
		inv.PaymentID = &event.PaymentID
		if err := s.InvoiceRepo.Update(txCtx, inv); err != nil {
			return err
		}

		if err := s.activateSubscription(txCtx, event.SubscriptionID, event.PaymentID); err != nil {
			return err
		}

		entry := &auditlog.AuditLog{
			ID:     types.GenerateUUIDWithPrefix(types.UUID_PREFIX_AUDIT_LOG),
			UserID: types.GetUserID(txCtx),
			Action: auditlog.ActionStripeWebhook,
			Details: types.Metadata{
				"event_type":      event.Type,
				"invoice_id":      inv.ID,
				"subscription_id": event.SubscriptionID,
				"payment_id":      event.PaymentID,
			},
			BaseModel: types.GetDefaultBaseModel(txCtx),
		}
		// Webhook requests carry no tenant header; attribute the entry to the
		// invoice's tenant.
		entry.TenantID = inv.TenantID
		if err := s.AuditRepo.Create(txCtx, entry); err != nil {
			return err
		}

		s.Logger.Infow("payment succeeded",
			"invoice_id", inv.ID,
			"subscription_id", event.SubscriptionID,
			"payment_id", event.PaymentID,
		)
		return nil
	})
}

func (s *invoiceService) handlePaymentFailed(ctx context.Context, event *gateway.WebhookEvent) error {
	if event.SubscriptionID == "" {
		return ierr.NewError("webhook event missing subscription reference").
			WithHint("Payment metadata does not reference a subscription").
			Mark(ierr.ErrValidation)
	}

	inv, err := s.InvoiceRepo.GetUnpaidBySubscription(ctx, event.SubscriptionID)
	if err != nil {
		return err
	}

	inv.InvoiceStatus = types.InvoiceStatusFailed
	inv.PaymentID = &event.PaymentID
	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return err
	}

	s.Logger.Warnw("payment failed",
		"invoice_id", inv.ID,
		"subscription_id", event.SubscriptionID,
		"payment_id", event.PaymentID,
	)
	return nil
}
