package service

import (
	"context"
	"time"

	"github.com/fleetcore/fleetcore/internal/domain/auditlog"
	"github.com/fleetcore/fleetcore/internal/types"
)

// recordAudit appends one audit record for a completed state transition.
// Audit is best-effort history, not a transactional guard: the business
// transition stands even when the write fails, but the failure is logged at
// error level so operators can reconstruct the gap.
func (s ServiceParams) recordAudit(ctx context.Context, entry *auditlog.AuditLog) {
	if entry.ID == "" {
		entry.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_AUDIT_LOG)
	}
	if entry.TenantID == "" {
		entry.TenantID = types.GetTenantID(ctx)
	}
	if entry.Actor == "" {
		entry.Actor = types.GetUserID(ctx)
		if entry.Actor == "" {
			entry.Actor = "system"
		}
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	if err := s.AuditLogRepo.Create(ctx, entry); err != nil {
		s.Logger.Errorw("audit write failed for completed transition",
			"action", entry.Action,
			"entity_type", entry.EntityType,
			"entity_id", entry.EntityID,
			"tenant_id", entry.TenantID,
			"error", err,
		)
	}
}
