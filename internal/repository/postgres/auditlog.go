package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fleetcore/fleetcore/internal/domain/auditlog"
	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/fleetcore/fleetcore/internal/logger"
	"github.com/fleetcore/fleetcore/internal/postgres"
	"github.com/fleetcore/fleetcore/internal/types"
)

type auditLogRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewAuditLogRepository(db *postgres.DB, logger *logger.Logger) auditlog.Repository {
	return &auditLogRepository{db: db, logger: logger}
}

// auditLogRow carries the value snapshots as raw JSONB
type auditLogRow struct {
	ID         string                `db:"id"`
	TenantID   string                `db:"tenant_id"`
	Action     types.AuditAction     `db:"action"`
	EntityType types.AuditEntityType `db:"entity_type"`
	EntityID   string                `db:"entity_id"`
	OldValues  []byte                `db:"old_values"`
	NewValues  []byte                `db:"new_values"`
	Actor      string                `db:"actor"`
	CreatedAt  time.Time             `db:"created_at"`
}

func (row *auditLogRow) toDomain() (*auditlog.AuditLog, error) {
	log := &auditlog.AuditLog{
		ID:         row.ID,
		TenantID:   row.TenantID,
		Action:     row.Action,
		EntityType: row.EntityType,
		EntityID:   row.EntityID,
		Actor:      row.Actor,
		CreatedAt:  row.CreatedAt,
	}
	if len(row.OldValues) > 0 {
		if err := json.Unmarshal(row.OldValues, &log.OldValues); err != nil {
			return nil, err
		}
	}
	if len(row.NewValues) > 0 {
		if err := json.Unmarshal(row.NewValues, &log.NewValues); err != nil {
			return nil, err
		}
	}
	return log, nil
}

func (r *auditLogRepository) Create(ctx context.Context, log *auditlog.AuditLog) error {
	row := &auditLogRow{
		ID:         log.ID,
		TenantID:   log.TenantID,
		Action:     log.Action,
		EntityType: log.EntityType,
		EntityID:   log.EntityID,
		Actor:      log.Actor,
		CreatedAt:  log.CreatedAt,
	}

	var err error
	if log.OldValues != nil {
		if row.OldValues, err = json.Marshal(log.OldValues); err != nil {
			return ierr.WithError(err).
				WithHint("Failed to encode audit snapshot").
				Mark(ierr.ErrSystem)
		}
	}
	if log.NewValues != nil {
		if row.NewValues, err = json.Marshal(log.NewValues); err != nil {
			return ierr.WithError(err).
				WithHint("Failed to encode audit snapshot").
				Mark(ierr.ErrSystem)
		}
	}

	query := `
	INSERT INTO audit_logs (
		id, tenant_id, action, entity_type, entity_id,
		old_values, new_values, actor, created_at
	) VALUES (
		:id, :tenant_id, :action, :entity_type, :entity_id,
		:old_values, :new_values, :actor, :created_at
	)`

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to append audit record").
			WithReportableDetails(map[string]any{"audit_log_id": log.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *auditLogRepository) ListByEntity(ctx context.Context, entityType string, entityID string) ([]*auditlog.AuditLog, error) {
	query := `
	SELECT * FROM audit_logs
	WHERE tenant_id = $1 AND entity_type = $2 AND entity_id = $3
	ORDER BY created_at ASC`

	var rows []*auditLogRow
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &rows, query,
		types.GetTenantID(ctx), entityType, entityID)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list audit records").
			Mark(ierr.ErrDatabase)
	}

	logs := make([]*auditlog.AuditLog, 0, len(rows))
	for _, row := range rows {
		log, err := row.toDomain()
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to decode audit snapshot").
				Mark(ierr.ErrSystem)
		}
		logs = append(logs, log)
	}
	return logs, nil
}
