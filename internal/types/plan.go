package types

import (
	ierr "github.com/hirelane/billing/internal/errors"
	"github.com/samber/lo"
)

// PlanTier is the catalog tier of a plan. TA-Copilot is the free tier:
// employer-side usage draws from the rolling daily allotment, while
// candidate-initiated actions on it are never charged.
type PlanTier string

const (
	PlanTierTACopilot PlanTier = "TA-Copilot"
	PlanTierHumanAdv  PlanTier = "humanadv"
	PlanTierHumanPro  PlanTier = "humanpro"
)

func (t PlanTier) String() string {
	return string(t)
}

// IsFree reports whether the tier is the free tier
func (t PlanTier) IsFree() bool {
	return t == PlanTierTACopilot
}

func (t PlanTier) Validate() error {
	allowed := []PlanTier{
		PlanTierTACopilot,
		PlanTierHumanAdv,
		PlanTierHumanPro,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid plan tier").
			WithHint("Invalid plan tier").
			WithReportableDetails(map[string]any{
				"tier":          t,
				"allowed_tiers": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// BillingCycle is the invoicing cadence of a plan
type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleYearly  BillingCycle = "yearly"
)

func (c BillingCycle) String() string {
	return string(c)
}

func (c BillingCycle) Validate() error {
	allowed := []BillingCycle{
		BillingCycleMonthly,
		BillingCycleYearly,
	}
	if !lo.Contains(allowed, c) {
		return ierr.NewError("invalid billing cycle").
			WithHint("Invalid billing cycle").
			WithReportableDetails(map[string]any{
				"billing_cycle":  c,
				"allowed_cycles": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
