package dto

import (
	"context"

	"github.com/hirelane/billing/internal/domain/plan"
	"github.com/hirelane/billing/internal/types"
	"github.com/shopspring/decimal"
)

type CreatePlanRequest struct {
	Name         types.PlanTier     `json:"name" binding:"required"`
	Description  string             `json:"description"`
	Price        decimal.Decimal    `json:"price"`
	BillingCycle types.BillingCycle `json:"billing_cycle" binding:"required"`
	Credits      int                `json:"credits"`
}

func (r *CreatePlanRequest) Validate() error {
	if err := r.Name.Validate(); err != nil {
		return err
	}
	return r.BillingCycle.Validate()
}

func (r *CreatePlanRequest) ToPlan(ctx context.Context) *plan.Plan {
	return &plan.Plan{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PLAN),
		Name:         r.Name,
		Description:  r.Description,
		Price:        r.Price,
		BillingCycle: r.BillingCycle,
		Credits:      r.Credits,
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}
}

type PlanResponse struct {
	*plan.Plan
}

// ListPlansResponse represents the catalog listing
type ListPlansResponse struct {
	Items []*PlanResponse `json:"items"`
	Total int             `json:"total"`
}
