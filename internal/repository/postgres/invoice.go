package postgres

import (
	"context"

	"github.com/hirelane/billing/internal/domain/invoice"
	ierr "github.com/hirelane/billing/internal/errors"
	"github.com/hirelane/billing/internal/logger"
	"github.com/hirelane/billing/internal/postgres"
	"github.com/hirelane/billing/internal/types"
)

type invoiceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return &invoiceRepository{db: db, logger: logger}
}

func (r *invoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	if err := inv.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO invoices (
			id,
			subscription_id,
			amount,
			invoice_status,
			invoice_date,
			due_date,
			payment_id,
			tenant_id,
			status,
			created_at,
			updated_at,
			created_by,
			updated_by
		) VALUES (
			:id,
			:subscription_id,
			:amount,
			:invoice_status,
			:invoice_date,
			:due_date,
			:payment_id,
			:tenant_id,
			:status,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)`

	r.logger.Debugw("creating invoice",
		"invoice_id", inv.ID,
		"subscription_id", inv.SubscriptionID,
		"amount", inv.Amount,
	)

	_, err := r.db.NamedExecContext(ctx, query, inv)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create invoice").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	query := `
		SELECT * FROM invoices
		WHERE id = :id
		AND tenant_id = :tenant_id
		AND status = :status`

	return r.querySingle(ctx, query, map[string]interface{}{
		"id":        id,
		"tenant_id": types.GetTenantID(ctx),
		"status":    types.StatusPublished,
	})
}

func (r *invoiceRepository) GetUnpaidBySubscription(ctx context.Context, subscriptionID string) (*invoice.Invoice, error) {
	query := `
		SELECT * FROM invoices
		WHERE subscription_id = :subscription_id
		AND invoice_status = :invoice_status
		AND status = :status
		ORDER BY invoice_date ASC
		LIMIT 1`

	return r.querySingle(ctx, query, map[string]interface{}{
		"subscription_id": subscriptionID,
		"invoice_status":  types.InvoiceStatusUnpaid,
		"status":          types.StatusPublished,
	})
}

func (r *invoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		UPDATE invoices
		SET
			invoice_status = :invoice_status,
			payment_id = :payment_id,
			updated_at = NOW(),
			updated_by = :updated_by
		WHERE id = :id
		AND status = :status`

	params := map[string]interface{}{
		"id":             inv.ID,
		"invoice_status": inv.InvoiceStatus,
		"payment_id":     inv.PaymentID,
		"updated_by":     types.GetUserID(ctx),
		"status":         types.StatusPublished,
	}

	result, err := r.db.NamedExecContext(ctx, query, params)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update invoice").
			Mark(ierr.ErrDatabase)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to get rows affected").
			Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return ierr.NewError("invoice not found").
			WithHint("Invoice does not exist").
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
			}).
			Mark(ierr.ErrNotFound)
	}

	return nil
}

func (r *invoiceRepository) List(ctx context.Context, filter types.Filter) ([]*invoice.Invoice, error) {
	filter.Sanitize()

	query := `
		SELECT * FROM invoices
		WHERE tenant_id = :tenant_id
		AND status = :status
		ORDER BY invoice_date DESC
		LIMIT :limit OFFSET :offset`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"tenant_id": types.GetTenantID(ctx),
		"status":    types.StatusPublished,
		"limit":     filter.Limit,
		"offset":    filter.Offset,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list invoices").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var invoices []*invoice.Invoice
	for rows.Next() {
		var inv invoice.Invoice
		if err := rows.StructScan(&inv); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan invoice").
				Mark(ierr.ErrDatabase)
		}
		invoices = append(invoices, &inv)
	}

	if err = rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Error iterating invoice rows").
			Mark(ierr.ErrDatabase)
	}

	return invoices, nil
}

func (r *invoiceRepository) querySingle(ctx context.Context, query string, params map[string]interface{}) (*invoice.Invoice, error) {
	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query invoice").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("invoice not found").
			WithHint("Invoice does not exist").
			Mark(ierr.ErrNotFound)
	}

	var inv invoice.Invoice
	if err := rows.StructScan(&inv); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan invoice").
			Mark(ierr.ErrDatabase)
	}
	return &inv, nil
}
