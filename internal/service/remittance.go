package service

import (
	"context"
	"time"

	"github.com/fleetcore/fleetcore/internal/domain/remittance"
	"github.com/fleetcore/fleetcore/internal/domain/vehicle"
	"github.com/fleetcore/fleetcore/internal/types"
	"github.com/shopspring/decimal"
)

// RemainingBalance is the outcome of one remittance target evaluation.
// A nil result (not a zero one) means the vehicle carries no target at all.
type RemainingBalance struct {
	DriverID   string
	VehicleID  string
	Period     types.Period
	FullTarget decimal.Decimal
	Remitted   decimal.Decimal
	Remaining  decimal.Decimal
	// Due is true while any balance is outstanding; Overdue additionally
	// requires the period to have ended
	Due     bool
	Overdue bool
}

// RemittanceService computes how much a driver owes an operator for the
// current period and whether that obligation is delinquent.
type RemittanceService interface {
	// ComputeRemainingBalance evaluates one (driver, vehicle) pair over the
	// given period. Returns nil for OWNER_PAYS vehicles and for unconfigured
	// or non-positive targets. Passing a past period is how callers check
	// for overdue balances.
	ComputeRemainingBalance(ctx context.Context, driverID string, v *vehicle.Vehicle, period types.Period, now time.Time) (*RemainingBalance, error)

	// ComputeRemainingBalances is the bulk variant over active assignments,
	// each evaluated over the period containing now for its vehicle's
	// frequency: one repository query for all tuples, results identical to
	// calling ComputeRemainingBalance per assignment.
	ComputeRemainingBalances(ctx context.Context, assignments []*vehicle.Assignment, now time.Time) ([]*RemainingBalance, error)
}

type remittanceService struct {
	ServiceParams
}

// NewRemittanceService creates a new remittance target service
func NewRemittanceService(params ServiceParams) RemittanceService {
	return &remittanceService{ServiceParams: params}
}

// fullTarget derives the period target from the vehicle's payment config.
// Nil means not applicable, which is different from a fully satisfied zero.
func fullTarget(v *vehicle.Vehicle) *decimal.Decimal {
	if v.PaymentModel == types.VehiclePaymentModelOwnerPays {
		return nil
	}

	// Flat amount and revenue share stack: DRIVER_REMITS is usually one or
	// the other, HYBRID carries both. A percentage-only config still counts.
	share := v.PaymentConfig.ExpectedRevenue.Mul(v.PaymentConfig.RevenuePercent)
	target := v.PaymentConfig.FixedAmount.Add(share)

	if !target.IsPositive() {
		return nil
	}
	return &target
}

// ComputeRemainingBalance evaluates one (driver, vehicle) pair
func (s *remittanceService) ComputeRemainingBalance(ctx context.Context, driverID string, v *vehicle.Vehicle, period types.Period, now time.Time) (*RemainingBalance, error) {
	target := fullTarget(v)
	if target == nil {
		return nil, nil
	}

	sum, err := s.RemittanceRepo.SumApproved(ctx, driverID, v.ID, period)
	if err != nil {
		return nil, err
	}

	return newRemainingBalance(driverID, v.ID, period, *target, sum, now), nil
}

// ComputeRemainingBalances evaluates all assignments with one bulk query
func (s *remittanceService) ComputeRemainingBalances(ctx context.Context, assignments []*vehicle.Assignment, now time.Time) ([]*RemainingBalance, error) {
	type pending struct {
		driverID  string
		vehicleID string
		period    types.Period
		target    decimal.Decimal
	}

	tuples := make([]remittance.AssignmentPeriod, 0, len(assignments))
	evaluable := make([]pending, 0, len(assignments))

	for _, a := range assignments {
		v, err := s.VehicleRepo.Get(ctx, a.VehicleID)
		if err != nil {
			return nil, err
		}

		target := fullTarget(v)
		if target == nil {
			continue
		}

		period := types.CalculatePeriod(v.PaymentConfig.Frequency, now)
		tuples = append(tuples, remittance.AssignmentPeriod{
			DriverID:  a.DriverID,
			VehicleID: a.VehicleID,
			Period:    period,
		})
		evaluable = append(evaluable, pending{
			driverID:  a.DriverID,
			vehicleID: a.VehicleID,
			period:    period,
			target:    *target,
		})
	}

	if len(evaluable) == 0 {
		return nil, nil
	}

	sums, err := s.RemittanceRepo.SumApprovedByAssignment(ctx, tuples)
	if err != nil {
		return nil, err
	}

	results := make([]*RemainingBalance, 0, len(evaluable))
	for _, e := range evaluable {
		sum := sums[remittance.AssignmentKey{DriverID: e.driverID, VehicleID: e.vehicleID}]
		results = append(results, newRemainingBalance(e.driverID, e.vehicleID, e.period, e.target, sum, now))
	}
	return results, nil
}

func newRemainingBalance(driverID, vehicleID string, period types.Period, target, sum decimal.Decimal, now time.Time) *RemainingBalance {
	remaining := target.Sub(sum)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	due := remaining.IsPositive()
	return &RemainingBalance{
		DriverID:   driverID,
		VehicleID:  vehicleID,
		Period:     period,
		FullTarget: target,
		Remitted:   sum,
		Remaining:  remaining,
		Due:        due,
		Overdue:    due && now.UTC().After(period.End),
	}
}
