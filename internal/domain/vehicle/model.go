package vehicle

import (
	"time"

	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/fleetcore/fleetcore/internal/types"
	"github.com/shopspring/decimal"
)

// PaymentConfig describes how a vehicle's remittance target is computed.
// FixedAmount applies to DRIVER_REMITS and HYBRID; the revenue share applies
// to HYBRID (ExpectedRevenue x RevenuePercent).
type PaymentConfig struct {
	Frequency       types.BillingFrequency `db:"remit_frequency" json:"frequency"`
	FixedAmount     decimal.Decimal        `db:"remit_fixed_amount" json:"fixed_amount"`
	RevenuePercent  decimal.Decimal        `db:"remit_revenue_percent" json:"revenue_percent"`
	ExpectedRevenue decimal.Decimal        `db:"remit_expected_revenue" json:"expected_revenue"`
}

// Vehicle represents a fleet vehicle and its remittance configuration
type Vehicle struct {
	ID                 string                    `db:"id" json:"id"`
	RegistrationNumber string                    `db:"registration_number" json:"registration_number"`
	PaymentModel       types.VehiclePaymentModel `db:"payment_model" json:"payment_model"`
	PaymentConfig      PaymentConfig             `db:"payment_config" json:"payment_config"`

	LicenseExpiresAt   *time.Time `db:"license_expires_at" json:"license_expires_at,omitempty"`
	InsuranceExpiresAt *time.Time `db:"insurance_expires_at" json:"insurance_expires_at,omitempty"`

	types.BaseModel
}

// TableName returns the table name for the vehicle
func (v *Vehicle) TableName() string {
	return "vehicles"
}

// Validate validates the vehicle
func (v *Vehicle) Validate() error {
	if v.RegistrationNumber == "" {
		return ierr.NewError("missing registration number").
			WithHint("Registration number is required").
			Mark(ierr.ErrValidation)
	}
	if err := v.PaymentModel.Validate(); err != nil {
		return err
	}
	if v.PaymentModel != types.VehiclePaymentModelOwnerPays {
		if err := v.PaymentConfig.Frequency.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Assignment links an active driver to a vehicle. EndDate nil means the
// assignment is current; remittance targets are evaluated over active
// assignments only.
type Assignment struct {
	ID        string     `db:"id" json:"id"`
	DriverID  string     `db:"driver_id" json:"driver_id"`
	VehicleID string     `db:"vehicle_id" json:"vehicle_id"`
	StartDate time.Time  `db:"start_date" json:"start_date"`
	EndDate   *time.Time `db:"end_date" json:"end_date,omitempty"`

	types.BaseModel
}

// TableName returns the table name for the assignment
func (a *Assignment) TableName() string {
	return "driver_vehicle_assignments"
}

// IsActive reports whether the assignment is current
func (a *Assignment) IsActive() bool {
	return a.EndDate == nil
}
