package remittance

import (
	"context"

	"github.com/fleetcore/fleetcore/internal/types"
	"github.com/shopspring/decimal"
)

// AssignmentPeriod identifies one (driver, vehicle) pair and the period its
// remittances are summed over. Periods may differ per tuple since vehicles
// carry their own remittance frequency.
type AssignmentPeriod struct {
	DriverID  string
	VehicleID string
	Period    types.Period
}

// AssignmentKey is the map key for bulk sum results
type AssignmentKey struct {
	DriverID  string
	VehicleID string
}

// Repository defines the interface for remittance persistence operations
type Repository interface {
	// Create persists a new remittance entry
	Create(ctx context.Context, remittance *Remittance) error

	// Get retrieves a remittance by ID
	Get(ctx context.Context, id string) (*Remittance, error)

	// Update updates an existing remittance
	Update(ctx context.Context, remittance *Remittance) error

	// SumApproved sums APPROVED remittance amounts for one (driver, vehicle)
	// pair with dates inside the period, boundaries included
	SumApproved(ctx context.Context, driverID, vehicleID string, period types.Period) (decimal.Decimal, error)

	// SumApprovedByAssignment is the bulk variant: one query over all tuples.
	// Results must be identical to calling SumApproved per tuple. Tuples
	// absent from the result map summed to zero.
	SumApprovedByAssignment(ctx context.Context, tuples []AssignmentPeriod) (map[AssignmentKey]decimal.Decimal, error)
}
