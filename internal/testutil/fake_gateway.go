package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/hirelane/billing/internal/domain/invoice"
	ierr "github.com/hirelane/billing/internal/errors"
	"github.com/hirelane/billing/internal/gateway"
)

// FakeGateway is an in-memory PaymentGateway that records payment intents
// instead of calling a provider.
type FakeGateway struct {
	mu      sync.Mutex
	counter int

	// Fail makes CreatePaymentIntent return a gateway error
	Fail bool

	// CreatedIntents maps payment IDs to the invoice they were created for
	CreatedIntents map[string]string

	// Event is returned by VerifyWebhook
	Event *gateway.WebhookEvent
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		CreatedIntents: make(map[string]string),
	}
}

func (g *FakeGateway) CreatePaymentIntent(ctx context.Context, inv *invoice.Invoice) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Fail {
		return "", ierr.NewError("payment provider unavailable").
			WithHint("Unable to initiate payment").
			Mark(ierr.ErrGateway)
	}

	g.counter++
	paymentID := fmt.Sprintf("pi_test_%03d", g.counter)
	g.CreatedIntents[paymentID] = inv.ID
	return paymentID, nil
}

func (g *FakeGateway) VerifyWebhook(payload []byte, signature string) (*gateway.WebhookEvent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Event == nil {
		return nil, ierr.NewError("failed to verify webhook signature").
			WithHint("Invalid webhook signature or payload").
			Mark(ierr.ErrValidation)
	}
	return g.Event, nil
}
