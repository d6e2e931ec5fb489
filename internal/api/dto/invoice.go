package dto

import (
	"context"
	"time"

	"github.com/fleetcore/fleetcore/internal/domain/invoice"
	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/fleetcore/fleetcore/internal/types"
	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest represents a request to issue an invoice
type CreateInvoiceRequest struct {
	Description      string                  `json:"description" binding:"required"`
	Amount           decimal.Decimal         `json:"amount" binding:"required"`
	Currency         string                  `json:"currency" binding:"required"`
	InvoiceType      types.InvoiceType       `json:"invoice_type" binding:"required"`
	DueDate          time.Time               `json:"due_date" binding:"required"`
	SubscriptionPlan *types.SubscriptionPlan `json:"subscription_plan,omitempty"`
}

// ToInvoice converts the request into an unnumbered domain invoice; the
// ledger assigns the invoice number during creation.
func (r *CreateInvoiceRequest) ToInvoice(ctx context.Context) (*invoice.Invoice, error) {
	inv := &invoice.Invoice{
		ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		InvoiceType:      r.InvoiceType,
		InvoiceStatus:    types.InvoiceStatusPending,
		Amount:           r.Amount,
		Currency:         r.Currency,
		Description:      r.Description,
		DueDate:          r.DueDate.UTC(),
		SubscriptionPlan: r.SubscriptionPlan,
		BaseModel:        types.GetDefaultBaseModel(ctx),
	}
	if err := inv.Validate(); err != nil {
		return nil, err
	}
	return inv, nil
}

// InvoiceResponse represents an invoice response
type InvoiceResponse struct {
	ID               string                  `json:"id"`
	InvoiceNumber    string                  `json:"invoice_number"`
	InvoiceType      types.InvoiceType       `json:"invoice_type"`
	InvoiceStatus    types.InvoiceStatus     `json:"invoice_status"`
	Amount           decimal.Decimal         `json:"amount"`
	Currency         string                  `json:"currency"`
	Description      string                  `json:"description,omitempty"`
	DueDate          time.Time               `json:"due_date"`
	PaidAt           *time.Time              `json:"paid_at,omitempty"`
	SubscriptionPlan *types.SubscriptionPlan `json:"subscription_plan,omitempty"`
	TenantID         string                  `json:"tenant_id"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

// ListInvoicesResponse represents a paginated list of invoices
type ListInvoicesResponse struct {
	Items []*InvoiceResponse `json:"items"`
	Total int                `json:"total"`
}

// NewInvoiceResponse creates a new invoice response from an invoice
func NewInvoiceResponse(inv *invoice.Invoice) *InvoiceResponse {
	return &InvoiceResponse{
		ID:               inv.ID,
		InvoiceNumber:    inv.InvoiceNumber,
		InvoiceType:      inv.InvoiceType,
		InvoiceStatus:    inv.InvoiceStatus,
		Amount:           inv.Amount,
		Currency:         inv.Currency,
		Description:      inv.Description,
		DueDate:          inv.DueDate,
		PaidAt:           inv.PaidAt,
		SubscriptionPlan: inv.SubscriptionPlan,
		TenantID:         inv.TenantID,
		CreatedAt:        inv.CreatedAt,
		UpdatedAt:        inv.UpdatedAt,
	}
}

// Validate validates the create invoice request beyond binding
func (r *CreateInvoiceRequest) Validate() error {
	if r.Amount.IsZero() || r.Amount.IsNegative() {
		return ierr.NewError("invalid amount").
			WithHint("Amount must be greater than 0").
			Mark(ierr.ErrValidation)
	}
	return r.InvoiceType.Validate()
}
