package creditusage

import (
	"time"

	ierr "github.com/hirelane/billing/internal/errors"
	"github.com/hirelane/billing/internal/types"
)

// DefaultReason tags usage entries created by the consume-credits path
const DefaultReason = "Interview scheduled"

// CreditUsage is an append-only record of a single consumption event.
// Entries are never mutated after creation.
type CreditUsage struct {
	ID             string    `db:"id" json:"id"`
	SubscriptionID string    `db:"subscription_id" json:"subscription_id"`
	Amount         int       `db:"amount" json:"amount"`
	Reason         string    `db:"reason" json:"reason"`
	UsedAt         time.Time `db:"used_at" json:"used_at"`
	types.BaseModel
}

func (u *CreditUsage) TableName() string {
	return "credit_usages"
}

func (u *CreditUsage) Validate() error {
	if u.Amount <= 0 {
		return ierr.NewError("usage amount must be positive").
			WithHint("Credits must be a positive integer").
			WithReportableDetails(map[string]any{
				"amount": u.Amount,
			}).
			Mark(ierr.ErrValidation)
	}
	if u.SubscriptionID == "" {
		return ierr.NewError("subscription_id is required").
			WithHint("subscription_id is required").
			Mark(ierr.ErrValidation)
	}
	return nil
}
