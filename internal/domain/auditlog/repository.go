package auditlog

import (
	"context"

	"github.com/hirelane/billing/internal/types"
)

// Repository defines the interface for audit log persistence
type Repository interface {
	Create(ctx context.Context, entry *AuditLog) error
	List(ctx context.Context, filter types.Filter) ([]*AuditLog, error)
}
