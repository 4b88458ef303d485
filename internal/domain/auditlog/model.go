package auditlog

import (
	"github.com/hirelane/billing/internal/types"
)

// Audit action names emitted by the billing endpoints
const (
	ActionListPlans          = "List Plans"
	ActionCreatePlan         = "Create Plan"
	ActionCreateSubscription = "Create Subscription"
	ActionGetSubscription    = "Get Subscription"
	ActionCancelSubscription = "Cancel Subscription"
	ActionConsumeCredits     = "Consume Credits"
	ActionCreateReferral     = "Create Referral"
	ActionListInvoices       = "List Invoices"
	ActionPayInvoice         = "Pay Invoice"
	ActionStripeWebhook      = "Stripe Webhook"
)

// AuditLog is an append-only record of who did what. Entries are written in
// the same transaction as the state change they describe where the change is
// credit-affecting, best-effort elsewhere.
type AuditLog struct {
	ID      string         `db:"id" json:"id"`
	UserID  string         `db:"user_id" json:"user_id"`
	Action  string         `db:"action" json:"action"`
	Details types.Metadata `db:"details" json:"details"`
	types.BaseModel
}

func (a *AuditLog) TableName() string {
	return "audit_logs"
}
