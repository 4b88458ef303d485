package dto

import (
	"github.com/hirelane/billing/internal/domain/invoice"
)

type InvoiceResponse struct {
	*invoice.Invoice
}

type ListInvoicesResponse struct {
	Items []*InvoiceResponse `json:"items"`
	Total int                `json:"total"`
}

// PayInvoiceResponse returns the invoice with its provider payment
// reference populated by the payment attempt
type PayInvoiceResponse struct {
	*invoice.Invoice
}
