package remittance

import (
	"time"

	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/fleetcore/fleetcore/internal/types"
	"github.com/shopspring/decimal"
)

// Remittance is one cash hand-over from a driver toward their period target.
// Rows are never mutated after approval except by explicit correction.
type Remittance struct {
	ID        string `db:"id" json:"id"`
	DriverID  string `db:"driver_id" json:"driver_id"`
	VehicleID string `db:"vehicle_id" json:"vehicle_id"`

	Amount decimal.Decimal `db:"amount" json:"amount"`
	// Date is the business date the cash was handed over, which may lag the
	// row's creation timestamp
	Date             time.Time              `db:"date" json:"date"`
	RemittanceStatus types.RemittanceStatus `db:"remittance_status" json:"remittance_status"`
	Notes            string                 `db:"notes" json:"notes,omitempty"`

	types.BaseModel
}

// TableName returns the table name for the remittance
func (r *Remittance) TableName() string {
	return "remittances"
}

// Validate validates the remittance
func (r *Remittance) Validate() error {
	if r.Amount.IsZero() || r.Amount.IsNegative() {
		return ierr.NewError("invalid amount").
			WithHint("Amount must be greater than 0").
			Mark(ierr.ErrValidation)
	}
	if r.DriverID == "" || r.VehicleID == "" {
		return ierr.NewError("missing driver or vehicle").
			WithHint("Remittances must reference a driver and a vehicle").
			Mark(ierr.ErrValidation)
	}
	if r.Date.IsZero() {
		return ierr.NewError("invalid date").
			WithHint("Remittance date is required").
			Mark(ierr.ErrValidation)
	}
	return nil
}
