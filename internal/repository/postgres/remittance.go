package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fleetcore/fleetcore/internal/domain/remittance"
	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/fleetcore/fleetcore/internal/logger"
	"github.com/fleetcore/fleetcore/internal/postgres"
	"github.com/fleetcore/fleetcore/internal/types"
	"github.com/shopspring/decimal"
)

type remittanceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewRemittanceRepository(db *postgres.DB, logger *logger.Logger) remittance.Repository {
	return &remittanceRepository{db: db, logger: logger}
}

func (r *remittanceRepository) Create(ctx context.Context, rem *remittance.Remittance) error {
	query := `
	INSERT INTO remittances (
		id, driver_id, vehicle_id, amount, date, remittance_status, notes,
		tenant_id, status, created_at, updated_at, created_by, updated_by
	) VALUES (
		:id, :driver_id, :vehicle_id, :amount, :date, :remittance_status, :notes,
		:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
	)`

	_, err := r.db.NamedExecContext(ctx, query, rem)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create remittance").
			WithReportableDetails(map[string]any{"remittance_id": rem.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *remittanceRepository) Get(ctx context.Context, id string) (*remittance.Remittance, error) {
	query := `SELECT * FROM remittances WHERE id = $1 AND tenant_id = $2`

	var rem remittance.Remittance
	err := r.db.GetQuerier(ctx).GetContext(ctx, &rem, query, id, types.GetTenantID(ctx))
	if err != nil {
		if isNoRows(err) {
			return nil, ierr.WithError(err).
				WithHintf("Remittance with ID %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get remittance").
			Mark(ierr.ErrDatabase)
	}
	return &rem, nil
}

func (r *remittanceRepository) Update(ctx context.Context, rem *remittance.Remittance) error {
	rem.UpdatedAt = time.Now().UTC()

	query := `
	UPDATE remittances SET
		amount = :amount,
		date = :date,
		remittance_status = :remittance_status,
		notes = :notes,
		updated_at = :updated_at,
		updated_by = :updated_by
	WHERE id = :id AND tenant_id = :tenant_id`

	result, err := r.db.NamedExecContext(ctx, query, rem)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update remittance").
			WithReportableDetails(map[string]any{"remittance_id": rem.ID}).
			Mark(ierr.ErrDatabase)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return ierr.NewError("remittance not found").
			WithHintf("Remittance with ID %s was not found", rem.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *remittanceRepository) SumApproved(ctx context.Context, driverID, vehicleID string, period types.Period) (decimal.Decimal, error) {
	query := `
	SELECT COALESCE(SUM(amount), 0)
	FROM remittances
	WHERE tenant_id = $1 AND driver_id = $2 AND vehicle_id = $3
	  AND remittance_status = $4
	  AND date >= $5 AND date <= $6`

	var sum decimal.Decimal
	err := r.db.GetQuerier(ctx).GetContext(ctx, &sum, query,
		types.GetTenantID(ctx), driverID, vehicleID,
		types.RemittanceStatusApproved, period.Start, period.End)
	if err != nil {
		return decimal.Zero, ierr.WithError(err).
			WithHint("Failed to sum remittances").
			Mark(ierr.ErrDatabase)
	}
	return sum, nil
}

// SumApprovedByAssignment joins the remittance table against an inline VALUES
// list so the whole fleet is summed in one round trip. Each tuple carries its
// own period bounds since vehicles remit on different frequencies.
func (r *remittanceRepository) SumApprovedByAssignment(ctx context.Context, tuples []remittance.AssignmentPeriod) (map[remittance.AssignmentKey]decimal.Decimal, error) {
	result := make(map[remittance.AssignmentKey]decimal.Decimal, len(tuples))
	if len(tuples) == 0 {
		return result, nil
	}

	values := make([]string, 0, len(tuples))
	args := []interface{}{types.GetTenantID(ctx), types.RemittanceStatusApproved}
	for _, t := range tuples {
		values = append(values, fmt.Sprintf("($%d, $%d, $%d::timestamptz, $%d::timestamptz)",
			len(args)+1, len(args)+2, len(args)+3, len(args)+4))
		args = append(args, t.DriverID, t.VehicleID, t.Period.Start, t.Period.End)
	}

	query := fmt.Sprintf(`
	SELECT r.driver_id, r.vehicle_id, COALESCE(SUM(r.amount), 0) AS total
	FROM remittances r
	JOIN (VALUES %s) AS a(driver_id, vehicle_id, period_start, period_end)
	  ON r.driver_id = a.driver_id AND r.vehicle_id = a.vehicle_id
	WHERE r.tenant_id = $1 AND r.remittance_status = $2
	  AND r.date >= a.period_start AND r.date <= a.period_end
	GROUP BY r.driver_id, r.vehicle_id`, strings.Join(values, ", "))

	var rows []struct {
		DriverID  string          `db:"driver_id"`
		VehicleID string          `db:"vehicle_id"`
		Total     decimal.Decimal `db:"total"`
	}
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to sum remittances by assignment").
			Mark(ierr.ErrDatabase)
	}

	for _, row := range rows {
		result[remittance.AssignmentKey{DriverID: row.DriverID, VehicleID: row.VehicleID}] = row.Total
	}
	return result, nil
}
