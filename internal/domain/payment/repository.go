package payment

import (
	"context"
)

// Repository defines the interface for payment persistence operations.
// Implementations must enforce the one-in-flight-payment-per-invoice
// invariant at the data layer (a partial unique index over non-terminal
// rows), not only via the application pre-check: two concurrent Create calls
// for the same invoice must collapse to one row, with the loser receiving
// ErrDuplicatePayment.
type Repository interface {
	// Create persists a new payment
	Create(ctx context.Context, payment *Payment) error

	// Get retrieves a payment by ID
	Get(ctx context.Context, id string) (*Payment, error)

	// Update updates an existing payment
	Update(ctx context.Context, payment *Payment) error

	// ListByInvoice retrieves all payments for an invoice, newest first
	ListByInvoice(ctx context.Context, invoiceID string) ([]*Payment, error)

	// GetActiveForInvoice returns the PENDING or PROCESSING payment for the
	// invoice, or ErrNotFound when none is in flight
	GetActiveForInvoice(ctx context.Context, invoiceID string) (*Payment, error)
}
