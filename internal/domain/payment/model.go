package payment

import (
	"time"

	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/fleetcore/fleetcore/internal/types"
	"github.com/shopspring/decimal"
)

// Payment represents a payment transaction against an invoice
type Payment struct {
	ID string `db:"id" json:"id"`
	// Unique key used to prevent duplicate payment processing on retries
	IdempotencyKey string `db:"idempotency_key" json:"idempotency_key"`
	InvoiceID      string `db:"invoice_id" json:"invoice_id"`

	Amount        decimal.Decimal     `db:"amount" json:"amount"`
	Currency      string              `db:"currency" json:"currency"`
	PaymentMethod types.PaymentMethod `db:"payment_method" json:"payment_method"`
	PaymentStatus types.PaymentStatus `db:"payment_status" json:"payment_status"`

	// PhoneNumber is the payer's mobile money account
	PhoneNumber string `db:"phone_number" json:"phone_number"`

	// Gateway metadata captured at initiation. PollURL is the handle used for
	// all later status verification.
	PollURL     string `db:"poll_url" json:"poll_url,omitempty"`
	RedirectURL string `db:"redirect_url" json:"redirect_url,omitempty"`
	GatewayHash string `db:"gateway_hash" json:"gateway_hash,omitempty"`

	ErrorMessage *string    `db:"error_message" json:"error_message,omitempty"`
	SucceededAt  *time.Time `db:"succeeded_at" json:"succeeded_at,omitempty"`
	FailedAt     *time.Time `db:"failed_at" json:"failed_at,omitempty"`

	types.BaseModel
}

// TableName returns the table name for the payment
func (p *Payment) TableName() string {
	return "payments"
}

// Validate validates the payment
func (p *Payment) Validate() error {
	if p.Amount.IsZero() || p.Amount.IsNegative() {
		return ierr.NewError("invalid amount").
			WithHint("Amount must be greater than 0").
			Mark(ierr.ErrValidation)
	}
	if p.InvoiceID == "" {
		return ierr.NewError("invalid invoice id").
			WithHint("Invoice id is required").
			Mark(ierr.ErrValidation)
	}
	if p.Currency == "" {
		return ierr.NewError("invalid currency").
			WithHint("Currency is required").
			Mark(ierr.ErrValidation)
	}
	if err := p.PaymentMethod.Validate(); err != nil {
		return err
	}
	if p.PaymentMethod != types.PaymentMethodCard && p.PhoneNumber == "" {
		return ierr.NewError("missing phone number").
			WithHint("Mobile money payments require the payer's phone number").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsTerminal reports whether the payment reached a final state
func (p *Payment) IsTerminal() bool {
	return p.PaymentStatus.IsTerminal()
}
