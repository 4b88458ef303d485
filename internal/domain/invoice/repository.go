package invoice

import (
	"context"

	"github.com/hirelane/billing/internal/types"
)

// Repository defines the interface for invoice persistence
type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	Get(ctx context.Context, id string) (*Invoice, error)

	// GetUnpaidBySubscription returns the oldest unpaid invoice of a
	// subscription, ErrNotFound when there is none. Not tenant-scoped
	// because webhook callers act outside a tenant context.
	GetUnpaidBySubscription(ctx context.Context, subscriptionID string) (*Invoice, error)

	Update(ctx context.Context, inv *Invoice) error
	List(ctx context.Context, filter types.Filter) ([]*Invoice, error)
}
