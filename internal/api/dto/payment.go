package dto

import (
	"time"

	"github.com/fleetcore/fleetcore/internal/domain/payment"
	"github.com/fleetcore/fleetcore/internal/types"
	"github.com/shopspring/decimal"
)

// InitiatePaymentRequest represents a request to start paying an invoice
type InitiatePaymentRequest struct {
	InvoiceID     string              `json:"invoice_id" binding:"required"`
	PaymentMethod types.PaymentMethod `json:"payment_method" binding:"required"`
	PhoneNumber   string              `json:"phone_number"`
	AuthEmail     string              `json:"auth_email"`
}

// PaymentResponse represents a payment response
type PaymentResponse struct {
	ID            string              `json:"id"`
	InvoiceID     string              `json:"invoice_id"`
	Amount        decimal.Decimal     `json:"amount"`
	Currency      string              `json:"currency"`
	PaymentMethod types.PaymentMethod `json:"payment_method"`
	PaymentStatus types.PaymentStatus `json:"payment_status"`
	RedirectURL   string              `json:"redirect_url,omitempty"`
	ErrorMessage  *string             `json:"error_message,omitempty"`
	SucceededAt   *time.Time          `json:"succeeded_at,omitempty"`
	FailedAt      *time.Time          `json:"failed_at,omitempty"`
	TenantID      string              `json:"tenant_id"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// NewPaymentResponse creates a new payment response from a payment.
// The poll URL is deliberately not exposed; verification always goes through
// the service so status transitions stay in one code path.
func NewPaymentResponse(p *payment.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:            p.ID,
		InvoiceID:     p.InvoiceID,
		Amount:        p.Amount,
		Currency:      p.Currency,
		PaymentMethod: p.PaymentMethod,
		PaymentStatus: p.PaymentStatus,
		RedirectURL:   p.RedirectURL,
		ErrorMessage:  p.ErrorMessage,
		SucceededAt:   p.SucceededAt,
		FailedAt:      p.FailedAt,
		TenantID:      p.TenantID,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// PaymentWebhookRequest is the gateway's server-to-server status callback.
// Only the reference is trusted; the status is re-verified against the
// gateway before any transition.
type PaymentWebhookRequest struct {
	Reference string `form:"reference" json:"reference" binding:"required"`
	Status    string `form:"status" json:"status"`
	Hash      string `form:"hash" json:"hash"`
}
