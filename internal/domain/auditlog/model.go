package auditlog

import (
	"time"

	"github.com/fleetcore/fleetcore/internal/types"
)

// AuditLog is one append-only record of a state transition. Every transition
// the billing core performs emits exactly one of these; the log is the
// durable answer to "why did this status change".
type AuditLog struct {
	ID         string                `db:"id" json:"id"`
	TenantID   string                `db:"tenant_id" json:"tenant_id"`
	Action     types.AuditAction     `db:"action" json:"action"`
	EntityType types.AuditEntityType `db:"entity_type" json:"entity_type"`
	EntityID   string                `db:"entity_id" json:"entity_id"`
	// OldValues and NewValues hold JSON snapshots of the fields that changed
	OldValues map[string]any `db:"old_values" json:"old_values,omitempty"`
	NewValues map[string]any `db:"new_values" json:"new_values,omitempty"`
	Actor     string         `db:"actor" json:"actor"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// TableName returns the table name for the audit log
func (a *AuditLog) TableName() string {
	return "audit_logs"
}
