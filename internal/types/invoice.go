package types

import (
	ierr "github.com/hirelane/billing/internal/errors"
	"github.com/samber/lo"
)

// InvoiceStatus is the payment status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusUnpaid InvoiceStatus = "unpaid"
	InvoiceStatusPaid   InvoiceStatus = "paid"
	InvoiceStatusFailed InvoiceStatus = "failed"
)

func (s InvoiceStatus) String() string {
	return string(s)
}

func (s InvoiceStatus) Validate() error {
	allowed := []InvoiceStatus{
		InvoiceStatusUnpaid,
		InvoiceStatusPaid,
		InvoiceStatusFailed,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid invoice status").
			WithHint("Invalid invoice status").
			WithReportableDetails(map[string]any{
				"status":         s,
				"allowed_status": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PaymentMethod identifies the payment provider backing a subscription
type PaymentMethod string

const (
	PaymentMethodStripe PaymentMethod = "stripe"
)

func (m PaymentMethod) String() string {
	return string(m)
}

func (m PaymentMethod) Validate() error {
	allowed := []PaymentMethod{
		PaymentMethodStripe,
	}
	if !lo.Contains(allowed, m) {
		return ierr.NewError("invalid payment method").
			WithHint("Unsupported payment method").
			WithReportableDetails(map[string]any{
				"payment_method":  m,
				"allowed_methods": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
