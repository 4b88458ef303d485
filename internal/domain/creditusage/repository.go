package creditusage

import (
	"context"

	"github.com/hirelane/billing/internal/types"
)

// Repository defines the interface for credit usage persistence
type Repository interface {
	Create(ctx context.Context, usage *CreditUsage) error
	ListBySubscription(ctx context.Context, subscriptionID string, filter types.Filter) ([]*CreditUsage, error)
}
