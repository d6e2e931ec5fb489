package types

import (
	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/samber/lo"
)

// VehiclePaymentModel describes who settles a vehicle's earnings with the
// operator. Only DRIVER_REMITS and HYBRID carry a remittance target;
// OWNER_PAYS vehicles have no target at all (nil, not zero).
type VehiclePaymentModel string

const (
	// VehiclePaymentModelOwnerPays means the owner settles directly, no driver target
	VehiclePaymentModelOwnerPays VehiclePaymentModel = "OWNER_PAYS"
	// VehiclePaymentModelDriverRemits means the driver owes a fixed amount per period
	VehiclePaymentModelDriverRemits VehiclePaymentModel = "DRIVER_REMITS"
	// VehiclePaymentModelHybrid combines a fixed amount with a revenue share
	VehiclePaymentModelHybrid VehiclePaymentModel = "HYBRID"
)

func (m VehiclePaymentModel) String() string {
	return string(m)
}

func (m VehiclePaymentModel) Validate() error {
	allowed := []VehiclePaymentModel{
		VehiclePaymentModelOwnerPays,
		VehiclePaymentModelDriverRemits,
		VehiclePaymentModelHybrid,
	}
	if !lo.Contains(allowed, m) {
		return ierr.NewError("invalid vehicle payment model").
			WithHint("Please provide a valid vehicle payment model").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
