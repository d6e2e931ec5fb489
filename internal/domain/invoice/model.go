package invoice

import (
	"time"

	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/fleetcore/fleetcore/internal/types"
	"github.com/shopspring/decimal"
)

// Invoice represents the invoice domain model
type Invoice struct {
	ID string `db:"id" json:"id"`
	// InvoiceNumber is the externally visible sequential identifier, format
	// INV-000042. Globally unique, strictly increasing, never reused.
	InvoiceNumber string              `db:"invoice_number" json:"invoice_number"`
	InvoiceType   types.InvoiceType   `db:"invoice_type" json:"invoice_type"`
	InvoiceStatus types.InvoiceStatus `db:"invoice_status" json:"invoice_status"`
	Amount        decimal.Decimal     `db:"amount" json:"amount"`
	Currency      string              `db:"currency" json:"currency"`
	Description   string              `db:"description" json:"description,omitempty"`
	DueDate       time.Time           `db:"due_date" json:"due_date"`
	PaidAt        *time.Time          `db:"paid_at" json:"paid_at,omitempty"`
	// SubscriptionPlan is only set on UPGRADE invoices; paying the invoice
	// activates this plan on the tenant.
	SubscriptionPlan *types.SubscriptionPlan `db:"subscription_plan" json:"subscription_plan,omitempty"`

	types.BaseModel
}

// TableName returns the table name for the invoice
func (i *Invoice) TableName() string {
	return "invoices"
}

// Validate validates the invoice
func (i *Invoice) Validate() error {
	if i.Amount.IsZero() || i.Amount.IsNegative() {
		return ierr.NewError("invalid amount").
			WithHint("Amount must be greater than 0").
			Mark(ierr.ErrValidation)
	}
	if i.Currency == "" {
		return ierr.NewError("invalid currency").
			WithHint("Currency is required").
			Mark(ierr.ErrValidation)
	}
	if i.DueDate.IsZero() {
		return ierr.NewError("invalid due date").
			WithHint("Due date is required").
			Mark(ierr.ErrValidation)
	}
	if err := i.InvoiceType.Validate(); err != nil {
		return err
	}
	if i.InvoiceType == types.InvoiceTypeUpgrade && i.SubscriptionPlan == nil {
		return ierr.NewError("upgrade invoice without target plan").
			WithHint("Upgrade invoices must carry the plan they activate").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsTerminal reports whether the invoice can no longer transition
func (i *Invoice) IsTerminal() bool {
	return i.InvoiceStatus == types.InvoiceStatusPaid ||
		i.InvoiceStatus == types.InvoiceStatusCanceled
}
