package auditlog

import (
	"context"
)

// Repository defines the append-only interface for audit records
type Repository interface {
	// Create appends a new audit record
	Create(ctx context.Context, log *AuditLog) error

	// ListByEntity retrieves records for one entity, oldest first
	ListByEntity(ctx context.Context, entityType string, entityID string) ([]*AuditLog, error)
}
