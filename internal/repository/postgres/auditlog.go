package postgres

import (
	"context"

	"github.com/hirelane/billing/internal/domain/auditlog"
	ierr "github.com/hirelane/billing/internal/errors"
	"github.com/hirelane/billing/internal/logger"
	"github.com/hirelane/billing/internal/postgres"
	"github.com/hirelane/billing/internal/types"
)

type auditLogRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewAuditLogRepository(db *postgres.DB, logger *logger.Logger) auditlog.Repository {
	return &auditLogRepository{db: db, logger: logger}
}

func (r *auditLogRepository) Create(ctx context.Context, entry *auditlog.AuditLog) error {
	query := `
		INSERT INTO audit_logs (
			id,
			user_id,
			action,
			details,
			tenant_id,
			status,
			created_at,
			updated_at,
			created_by,
			updated_by
		) VALUES (
			:id,
			:user_id,
			:action,
			:details,
			:tenant_id,
			:status,
			:created_at,
			:updated_at,
			:created_by,
			:updated_by
		)`

	_, err := r.db.NamedExecContext(ctx, query, entry)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to write audit log").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *auditLogRepository) List(ctx context.Context, filter types.Filter) ([]*auditlog.AuditLog, error) {
	filter.Sanitize()

	query := `
		SELECT * FROM audit_logs
		WHERE tenant_id = :tenant_id
		AND status = :status
		ORDER BY created_at DESC
		LIMIT :limit OFFSET :offset`

	rows, err := r.db.NamedQueryContext(ctx, query, map[string]interface{}{
		"tenant_id": types.GetTenantID(ctx),
		"status":    types.StatusPublished,
		"limit":     filter.Limit,
		"offset":    filter.Offset,
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list audit logs").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var entries []*auditlog.AuditLog
	for rows.Next() {
		var entry auditlog.AuditLog
		if err := rows.StructScan(&entry); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan audit log").
				Mark(ierr.ErrDatabase)
		}
		entries = append(entries, &entry)
	}

	if err = rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Error iterating audit log rows").
			Mark(ierr.ErrDatabase)
	}

	return entries, nil
}
