package types

import (
	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/samber/lo"
)

// PaymentStatus represents the state of a payment transaction.
// Transitions: PENDING -> PROCESSING -> PAID | FAILED. Terminal rows are
// immutable; only gateway verification moves a payment forward.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "PENDING"
	PaymentStatusProcessing PaymentStatus = "PROCESSING"
	PaymentStatusPaid       PaymentStatus = "PAID"
	PaymentStatusFailed     PaymentStatus = "FAILED"
)

func (s PaymentStatus) String() string {
	return string(s)
}

func (s PaymentStatus) Validate() error {
	allowed := []PaymentStatus{
		PaymentStatusPending,
		PaymentStatusProcessing,
		PaymentStatusPaid,
		PaymentStatusFailed,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid payment status").
			WithHint("Please provide a valid payment status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsTerminal reports whether the status can never change again
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusPaid || s == PaymentStatusFailed
}

// ActivePaymentStatuses are the non-terminal statuses that count against the
// at-most-one-in-flight-payment-per-invoice invariant.
var ActivePaymentStatuses = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusProcessing,
}

// PaymentMethod is the mobile money or card channel used to pay an invoice
type PaymentMethod string

const (
	PaymentMethodEcocash  PaymentMethod = "ECOCASH"
	PaymentMethodOneMoney PaymentMethod = "ONEMONEY"
	PaymentMethodCard     PaymentMethod = "CARD"
)

func (m PaymentMethod) String() string {
	return string(m)
}

func (m PaymentMethod) Validate() error {
	allowed := []PaymentMethod{
		PaymentMethodEcocash,
		PaymentMethodOneMoney,
		PaymentMethodCard,
	}
	if !lo.Contains(allowed, m) {
		return ierr.NewError("invalid payment method").
			WithHint("Please provide a valid payment method").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// GatewayPaymentStatus is the status vocabulary of the mobile money gateway
type GatewayPaymentStatus string

const (
	GatewayPaymentStatusPending GatewayPaymentStatus = "PENDING"
	GatewayPaymentStatusPaid    GatewayPaymentStatus = "PAID"
	GatewayPaymentStatusFailed  GatewayPaymentStatus = "FAILED"
)
