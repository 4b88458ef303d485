package plan

import (
	ierr "github.com/hirelane/billing/internal/errors"
	"github.com/hirelane/billing/internal/types"
	"github.com/shopspring/decimal"
)

// Plan is a catalog entry describing a subscription tier. Catalog rows are
// created by an administrative process and never mutated during normal
// operation.
type Plan struct {
	ID           string             `db:"id" json:"id"`
	Name         types.PlanTier     `db:"name" json:"name"`
	Description  string             `db:"description" json:"description"`
	Price        decimal.Decimal    `db:"price" json:"price"`
	BillingCycle types.BillingCycle `db:"billing_cycle" json:"billing_cycle"`
	// Credits is the base daily credit allotment provided by this plan
	Credits int `db:"credits" json:"credits"`
	types.BaseModel
}

func (p *Plan) TableName() string {
	return "plans"
}

func (p *Plan) Validate() error {
	if err := p.Name.Validate(); err != nil {
		return err
	}
	if err := p.BillingCycle.Validate(); err != nil {
		return err
	}
	if p.Credits < 0 {
		return ierr.NewError("credits must be non-negative").
			WithHint("Plan credits cannot be negative").
			WithReportableDetails(map[string]any{
				"credits": p.Credits,
			}).
			Mark(ierr.ErrValidation)
	}
	if p.Price.IsNegative() {
		return ierr.NewError("price must be non-negative").
			WithHint("Plan price cannot be negative").
			WithReportableDetails(map[string]any{
				"price": p.Price,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// DailyCreditAllotment returns the daily credits replenished on each reset.
// The free tier always resets to the fixed floor, whatever the catalog says.
func (p *Plan) DailyCreditAllotment() int {
	if p.Name.IsFree() {
		return types.FreeTierDailyCredits
	}
	return p.Credits
}
