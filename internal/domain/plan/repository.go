package plan

import (
	"context"

	"github.com/hirelane/billing/internal/types"
)

// Repository defines the interface for plan persistence
type Repository interface {
	Create(ctx context.Context, plan *Plan) error
	Get(ctx context.Context, id string) (*Plan, error)
	GetByTier(ctx context.Context, tier types.PlanTier) (*Plan, error)
	List(ctx context.Context, filter types.Filter) ([]*Plan, error)
}
