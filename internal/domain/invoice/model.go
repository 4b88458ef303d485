package invoice

import (
	"time"

	ierr "github.com/hirelane/billing/internal/errors"
	"github.com/hirelane/billing/internal/types"
	"github.com/shopspring/decimal"
)

// Invoice records a charge for a paid-tier subscription period
type Invoice struct {
	ID             string              `db:"id" json:"id"`
	SubscriptionID string              `db:"subscription_id" json:"subscription_id"`
	Amount         decimal.Decimal     `db:"amount" json:"amount"`
	InvoiceStatus  types.InvoiceStatus `db:"invoice_status" json:"invoice_status"`
	InvoiceDate    time.Time           `db:"invoice_date" json:"invoice_date"`
	DueDate        time.Time           `db:"due_date" json:"due_date"`
	PaymentID      *string             `db:"payment_id" json:"payment_id,omitempty"`
	types.BaseModel
}

func (i *Invoice) TableName() string {
	return "invoices"
}

func (i *Invoice) Validate() error {
	if i.SubscriptionID == "" {
		return ierr.NewError("subscription_id is required").
			WithHint("subscription_id is required").
			Mark(ierr.ErrValidation)
	}
	if i.Amount.IsNegative() {
		return ierr.NewError("invoice amount must be non-negative").
			WithHint("Invoice amount cannot be negative").
			WithReportableDetails(map[string]any{
				"amount": i.Amount,
			}).
			Mark(ierr.ErrValidation)
	}
	return i.InvoiceStatus.Validate()
}
