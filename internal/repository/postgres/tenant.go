package postgres

import (
	"context"
	"time"

	"github.com/fleetcore/fleetcore/internal/domain/tenant"
	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/fleetcore/fleetcore/internal/logger"
	"github.com/fleetcore/fleetcore/internal/postgres"
)

type tenantRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewTenantRepository(db *postgres.DB, logger *logger.Logger) tenant.Repository {
	return &tenantRepository{db: db, logger: logger}
}

func (r *tenantRepository) Create(ctx context.Context, t *tenant.Tenant) error {
	query := `
	INSERT INTO tenants (
		id, name, plan, account_status, is_in_trial, trial_ends_at,
		subscription_starts_at, subscription_ends_at, auto_renew,
		monthly_revenue, suspended_at, suspension_reason, created_at, updated_at
	) VALUES (
		:id, :name, :plan, :account_status, :is_in_trial, :trial_ends_at,
		:subscription_starts_at, :subscription_ends_at, :auto_renew,
		:monthly_revenue, :suspended_at, :suspension_reason, :created_at, :updated_at
	)`

	_, err := r.db.NamedExecContext(ctx, query, t)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create tenant").
			WithReportableDetails(map[string]any{"tenant_id": t.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *tenantRepository) Get(ctx context.Context, id string) (*tenant.Tenant, error) {
	query := `SELECT * FROM tenants WHERE id = $1`

	var t tenant.Tenant
	err := r.db.GetQuerier(ctx).GetContext(ctx, &t, query, id)
	if err != nil {
		if isNoRows(err) {
			return nil, ierr.WithError(err).
				WithHintf("Tenant with ID %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get tenant").
			Mark(ierr.ErrDatabase)
	}
	return &t, nil
}

func (r *tenantRepository) Update(ctx context.Context, t *tenant.Tenant) error {
	t.UpdatedAt = time.Now().UTC()

	query := `
	UPDATE tenants SET
		name = :name,
		plan = :plan,
		account_status = :account_status,
		is_in_trial = :is_in_trial,
		trial_ends_at = :trial_ends_at,
		subscription_starts_at = :subscription_starts_at,
		subscription_ends_at = :subscription_ends_at,
		auto_renew = :auto_renew,
		monthly_revenue = :monthly_revenue,
		suspended_at = :suspended_at,
		suspension_reason = :suspension_reason,
		updated_at = :updated_at
	WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, t)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update tenant").
			WithReportableDetails(map[string]any{"tenant_id": t.ID}).
			Mark(ierr.ErrDatabase)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return ierr.NewError("tenant not found").
			WithHintf("Tenant with ID %s was not found", t.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *tenantRepository) ListExpiredAcrossTenants(ctx context.Context, now time.Time) ([]*tenant.Tenant, error) {
	query := `
	SELECT * FROM tenants
	WHERE account_status = 'ACTIVE'
	  AND (
		(subscription_ends_at IS NOT NULL AND subscription_ends_at <= $1)
		OR (is_in_trial AND trial_ends_at IS NOT NULL AND trial_ends_at <= $1)
	  )
	ORDER BY id`

	var tenants []*tenant.Tenant
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &tenants, query, now); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list expired tenants").
			Mark(ierr.ErrDatabase)
	}
	return tenants, nil
}

func (r *tenantRepository) ListActiveAcrossTenants(ctx context.Context) ([]*tenant.Tenant, error) {
	query := `SELECT * FROM tenants WHERE account_status = 'ACTIVE' ORDER BY id`

	var tenants []*tenant.Tenant
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &tenants, query); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list active tenants").
			Mark(ierr.ErrDatabase)
	}
	return tenants, nil
}
