package postgres

import (
	"context"
	"time"

	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/fleetcore/fleetcore/internal/domain/vehicle"
	"github.com/fleetcore/fleetcore/internal/logger"
	"github.com/fleetcore/fleetcore/internal/postgres"
	"github.com/fleetcore/fleetcore/internal/types"
	"github.com/shopspring/decimal"
)

type vehicleRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewVehicleRepository(db *postgres.DB, logger *logger.Logger) vehicle.Repository {
	return &vehicleRepository{db: db, logger: logger}
}

// vehicleRow flattens the nested payment config for sqlx scanning
type vehicleRow struct {
	ID                   string                    `db:"id"`
	RegistrationNumber   string                    `db:"registration_number"`
	PaymentModel         types.VehiclePaymentModel `db:"payment_model"`
	RemitFrequency       types.BillingFrequency    `db:"remit_frequency"`
	RemitFixedAmount     decimal.Decimal           `db:"remit_fixed_amount"`
	RemitRevenuePercent  decimal.Decimal           `db:"remit_revenue_percent"`
	RemitExpectedRevenue decimal.Decimal           `db:"remit_expected_revenue"`
	LicenseExpiresAt     *time.Time                `db:"license_expires_at"`
	InsuranceExpiresAt   *time.Time                `db:"insurance_expires_at"`

	types.BaseModel
}

func toVehicleRow(v *vehicle.Vehicle) *vehicleRow {
	return &vehicleRow{
		ID:                   v.ID,
		RegistrationNumber:   v.RegistrationNumber,
		PaymentModel:         v.PaymentModel,
		RemitFrequency:       v.PaymentConfig.Frequency,
		RemitFixedAmount:     v.PaymentConfig.FixedAmount,
		RemitRevenuePercent:  v.PaymentConfig.RevenuePercent,
		RemitExpectedRevenue: v.PaymentConfig.ExpectedRevenue,
		LicenseExpiresAt:     v.LicenseExpiresAt,
		InsuranceExpiresAt:   v.InsuranceExpiresAt,
		BaseModel:            v.BaseModel,
	}
}

func (row *vehicleRow) toDomain() *vehicle.Vehicle {
	return &vehicle.Vehicle{
		ID:                 row.ID,
		RegistrationNumber: row.RegistrationNumber,
		PaymentModel:       row.PaymentModel,
		PaymentConfig: vehicle.PaymentConfig{
			Frequency:       row.RemitFrequency,
			FixedAmount:     row.RemitFixedAmount,
			RevenuePercent:  row.RemitRevenuePercent,
			ExpectedRevenue: row.RemitExpectedRevenue,
		},
		LicenseExpiresAt:   row.LicenseExpiresAt,
		InsuranceExpiresAt: row.InsuranceExpiresAt,
		BaseModel:          row.BaseModel,
	}
}

func (r *vehicleRepository) Create(ctx context.Context, v *vehicle.Vehicle) error {
	query := `
	INSERT INTO vehicles (
		id, registration_number, payment_model,
		remit_frequency, remit_fixed_amount, remit_revenue_percent, remit_expected_revenue,
		license_expires_at, insurance_expires_at,
		tenant_id, status, created_at, updated_at, created_by, updated_by
	) VALUES (
		:id, :registration_number, :payment_model,
		:remit_frequency, :remit_fixed_amount, :remit_revenue_percent, :remit_expected_revenue,
		:license_expires_at, :insurance_expires_at,
		:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
	)`

	_, err := r.db.NamedExecContext(ctx, query, toVehicleRow(v))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create vehicle").
			WithReportableDetails(map[string]any{"vehicle_id": v.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *vehicleRepository) Get(ctx context.Context, id string) (*vehicle.Vehicle, error) {
	query := `SELECT * FROM vehicles WHERE id = $1 AND tenant_id = $2`

	var row vehicleRow
	err := r.db.GetQuerier(ctx).GetContext(ctx, &row, query, id, types.GetTenantID(ctx))
	if err != nil {
		if isNoRows(err) {
			return nil, ierr.WithError(err).
				WithHintf("Vehicle with ID %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get vehicle").
			Mark(ierr.ErrDatabase)
	}
	return row.toDomain(), nil
}

func (r *vehicleRepository) Update(ctx context.Context, v *vehicle.Vehicle) error {
	v.UpdatedAt = time.Now().UTC()

	query := `
	UPDATE vehicles SET
		registration_number = :registration_number,
		payment_model = :payment_model,
		remit_frequency = :remit_frequency,
		remit_fixed_amount = :remit_fixed_amount,
		remit_revenue_percent = :remit_revenue_percent,
		remit_expected_revenue = :remit_expected_revenue,
		license_expires_at = :license_expires_at,
		insurance_expires_at = :insurance_expires_at,
		updated_at = :updated_at,
		updated_by = :updated_by
	WHERE id = :id AND tenant_id = :tenant_id`

	result, err := r.db.NamedExecContext(ctx, query, toVehicleRow(v))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update vehicle").
			WithReportableDetails(map[string]any{"vehicle_id": v.ID}).
			Mark(ierr.ErrDatabase)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return ierr.NewError("vehicle not found").
			WithHintf("Vehicle with ID %s was not found", v.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *vehicleRepository) ListExpiringDocuments(ctx context.Context, cutoff time.Time) ([]*vehicle.Vehicle, error) {
	query := `
	SELECT * FROM vehicles
	WHERE tenant_id = $1
	  AND (
		(license_expires_at IS NOT NULL AND license_expires_at <= $2)
		OR (insurance_expires_at IS NOT NULL AND insurance_expires_at <= $2)
	  )
	ORDER BY registration_number`

	var rows []*vehicleRow
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &rows, query, types.GetTenantID(ctx), cutoff)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list vehicles with expiring documents").
			Mark(ierr.ErrDatabase)
	}

	vehicles := make([]*vehicle.Vehicle, 0, len(rows))
	for _, row := range rows {
		vehicles = append(vehicles, row.toDomain())
	}
	return vehicles, nil
}

type assignmentRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewAssignmentRepository(db *postgres.DB, logger *logger.Logger) vehicle.AssignmentRepository {
	return &assignmentRepository{db: db, logger: logger}
}

func (r *assignmentRepository) Create(ctx context.Context, a *vehicle.Assignment) error {
	query := `
	INSERT INTO driver_vehicle_assignments (
		id, driver_id, vehicle_id, start_date, end_date,
		tenant_id, status, created_at, updated_at, created_by, updated_by
	) VALUES (
		:id, :driver_id, :vehicle_id, :start_date, :end_date,
		:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
	)`

	_, err := r.db.NamedExecContext(ctx, query, a)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create assignment").
			WithReportableDetails(map[string]any{"assignment_id": a.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *assignmentRepository) Get(ctx context.Context, id string) (*vehicle.Assignment, error) {
	query := `SELECT * FROM driver_vehicle_assignments WHERE id = $1 AND tenant_id = $2`

	var a vehicle.Assignment
	err := r.db.GetQuerier(ctx).GetContext(ctx, &a, query, id, types.GetTenantID(ctx))
	if err != nil {
		if isNoRows(err) {
			return nil, ierr.WithError(err).
				WithHintf("Assignment with ID %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get assignment").
			Mark(ierr.ErrDatabase)
	}
	return &a, nil
}

func (r *assignmentRepository) Update(ctx context.Context, a *vehicle.Assignment) error {
	a.UpdatedAt = time.Now().UTC()

	query := `
	UPDATE driver_vehicle_assignments SET
		start_date = :start_date,
		end_date = :end_date,
		updated_at = :updated_at,
		updated_by = :updated_by
	WHERE id = :id AND tenant_id = :tenant_id`

	result, err := r.db.NamedExecContext(ctx, query, a)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update assignment").
			WithReportableDetails(map[string]any{"assignment_id": a.ID}).
			Mark(ierr.ErrDatabase)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return ierr.NewError("assignment not found").
			WithHintf("Assignment with ID %s was not found", a.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *assignmentRepository) ListActive(ctx context.Context) ([]*vehicle.Assignment, error) {
	query := `
	SELECT * FROM driver_vehicle_assignments
	WHERE tenant_id = $1 AND end_date IS NULL
	ORDER BY start_date`

	var assignments []*vehicle.Assignment
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &assignments, query, types.GetTenantID(ctx))
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list active assignments").
			Mark(ierr.ErrDatabase)
	}
	return assignments, nil
}
