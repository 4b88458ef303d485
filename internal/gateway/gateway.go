package gateway

import (
	"context"

	"github.com/hirelane/billing/internal/domain/invoice"
)

// Event types surfaced by VerifyWebhook. Only the success event drives
// state changes; everything else is acknowledged and dropped.
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

// WebhookEvent is the provider-neutral view of a payment notification.
type WebhookEvent struct {
	Type           string
	PaymentID      string
	SubscriptionID string
}

// PaymentGateway abstracts the payment provider so services and tests
// never touch provider SDK types directly.
type PaymentGateway interface {
	// CreatePaymentIntent registers a charge for the invoice with the
	// provider and returns the provider-side payment ID.
	CreatePaymentIntent(ctx context.Context, inv *invoice.Invoice) (string, error)

	// VerifyWebhook checks the payload signature and parses it into a
	// WebhookEvent.
	VerifyWebhook(payload []byte, signature string) (*WebhookEvent, error)
}
