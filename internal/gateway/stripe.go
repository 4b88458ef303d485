package gateway

import (
	"context"
	"encoding/json"

	"github.com/hirelane/billing/internal/config"
	"github.com/hirelane/billing/internal/domain/invoice"
	ierr "github.com/hirelane/billing/internal/errors"
	"github.com/hirelane/billing/internal/logger"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

type stripeGateway struct {
	client        *stripe.Client
	webhookSecret string
	logger        *logger.Logger
}

// NewStripeGateway builds a gateway backed by the Stripe API. The secret
// key and webhook secret come from configuration.
func NewStripeGateway(cfg *config.Configuration, logger *logger.Logger) PaymentGateway {
	return &stripeGateway{
		client:        stripe.NewClient(cfg.Stripe.SecretKey, nil),
		webhookSecret: cfg.Stripe.WebhookSecret,
		logger:        logger,
	}
}

func (g *stripeGateway) CreatePaymentIntent(ctx context.Context, inv *invoice.Invoice) (string, error) {
	// Stripe expects amounts in the smallest currency unit
	amountCents := inv.Amount.Mul(decimal.NewFromInt(100)).IntPart()

	params := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String("usd"),
		Metadata: map[string]string{
			"invoice_id":      inv.ID,
			"subscription_id": inv.SubscriptionID,
		},
	}

	paymentIntent, err := g.client.V1PaymentIntents.Create(ctx, params)
	if err != nil {
		g.logger.Errorw("failed to create payment intent",
			"error", err,
			"invoice_id", inv.ID,
			"amount", inv.Amount.String(),
		)
		return "", ierr.WithError(err).
			WithHint("Unable to initiate payment with Stripe").
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
			}).
			Mark(ierr.ErrGateway)
	}

	g.logger.Infow("created payment intent",
		"payment_intent_id", paymentIntent.ID,
		"invoice_id", inv.ID,
		"amount_cents", amountCents,
	)

	return paymentIntent.ID, nil
}

func (g *stripeGateway) VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	options := webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, options)
	if err != nil {
		g.logger.Errorw("stripe webhook verification failed", "error", err)
		return nil, ierr.NewError("failed to verify webhook signature").
			WithHint("Invalid webhook signature or payload").
			Mark(ierr.ErrValidation)
	}

	parsed := &WebhookEvent{Type: string(event.Type)}

	switch parsed.Type {
	case EventPaymentSucceeded, EventPaymentFailed:
		var paymentIntent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &paymentIntent); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Malformed payment intent payload").
				Mark(ierr.ErrValidation)
		}
		parsed.PaymentID = paymentIntent.ID
		parsed.SubscriptionID = paymentIntent.Metadata["subscription_id"]
	}

	return parsed, nil
}
