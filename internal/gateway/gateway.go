package gateway

import (
	"context"

	"github.com/fleetcore/fleetcore/internal/types"
	"github.com/shopspring/decimal"
)

// CreatePaymentRequest is the narrow contract the billing core holds against
// the mobile money provider.
type CreatePaymentRequest struct {
	// Reference is the invoice number; it correlates gateway transactions
	// back to the ledger
	Reference   string
	Amount      decimal.Decimal
	PhoneNumber string
	Method      types.PaymentMethod
	Description string
	AuthEmail   string
}

// CreatePaymentResponse carries the provider metadata persisted on the
// payment row. PollURL is the handle for all later verification.
type CreatePaymentResponse struct {
	PollURL     string
	RedirectURL string
	Hash        string
}

// Provider is the external payment gateway. Both operations block on the
// network and honor ctx cancellation; implementations must carry an explicit
// timeout so a hung gateway can never wedge a request.
type Provider interface {
	// CreatePayment registers a payment intent with the gateway. On any
	// failure the caller persists nothing.
	CreatePayment(ctx context.Context, req *CreatePaymentRequest) (*CreatePaymentResponse, error)

	// PollPayment fetches the current transaction status by poll URL
	PollPayment(ctx context.Context, pollURL string) (types.GatewayPaymentStatus, error)
}
