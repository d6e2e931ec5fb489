package types

import (
	"fmt"
	"strconv"
	"strings"

	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/samber/lo"
)

// InvoiceStatus represents the current state of an invoice in its lifecycle
type InvoiceStatus string

const (
	// InvoiceStatusPending indicates the invoice has been issued and awaits payment
	InvoiceStatusPending InvoiceStatus = "PENDING"
	// InvoiceStatusPaid indicates payment was received and verified
	InvoiceStatusPaid InvoiceStatus = "PAID"
	// InvoiceStatusOverdue indicates the due date passed without payment
	InvoiceStatusOverdue InvoiceStatus = "OVERDUE"
	// InvoiceStatusCanceled indicates the invoice was voided before payment
	InvoiceStatusCanceled InvoiceStatus = "CANCELED"
)

func (s InvoiceStatus) String() string {
	return string(s)
}

func (s InvoiceStatus) Validate() error {
	allowed := []InvoiceStatus{
		InvoiceStatusPending,
		InvoiceStatusPaid,
		InvoiceStatusOverdue,
		InvoiceStatusCanceled,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid invoice status").
			WithHint("Please provide a valid invoice status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// InvoiceType categorizes the purpose and nature of the invoice
type InvoiceType string

const (
	// InvoiceTypeSubscription indicates invoice is for recurring subscription charges
	InvoiceTypeSubscription InvoiceType = "SUBSCRIPTION"
	// InvoiceTypeUpgrade indicates invoice is for a pending plan upgrade;
	// paying it activates invoice.SubscriptionPlan on the tenant
	InvoiceTypeUpgrade InvoiceType = "UPGRADE"
	// InvoiceTypeOneOff indicates invoice is for one-time charges
	InvoiceTypeOneOff InvoiceType = "ONE_OFF"
)

func (t InvoiceType) String() string {
	return string(t)
}

func (t InvoiceType) Validate() error {
	allowed := []InvoiceType{
		InvoiceTypeSubscription,
		InvoiceTypeUpgrade,
		InvoiceTypeOneOff,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid invoice type").
			WithHint("Please provide a valid invoice type").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

const (
	// InvoiceNumberPrefix is the fixed prefix of every invoice number
	InvoiceNumberPrefix = "INV-"
	// InvoiceNumberPadding is the zero-padded width of the numeric suffix
	InvoiceNumberPadding = 6
)

// FormatInvoiceNumber renders a sequence value as INV-000042
func FormatInvoiceNumber(seq int64) string {
	return fmt.Sprintf("%s%0*d", InvoiceNumberPrefix, InvoiceNumberPadding, seq)
}

// ParseInvoiceNumber extracts the numeric suffix from an invoice number.
// The sequence is derived from the numerically highest existing suffix, not a
// row count, so gaps from deleted invoices never cause number reuse.
func ParseInvoiceNumber(number string) (int64, error) {
	if !strings.HasPrefix(number, InvoiceNumberPrefix) {
		return 0, ierr.NewError("invalid invoice number format").
			WithHintf("Invoice number must start with %s", InvoiceNumberPrefix).
			Mark(ierr.ErrValidation)
	}
	seq, err := strconv.ParseInt(strings.TrimPrefix(number, InvoiceNumberPrefix), 10, 64)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Invoice number suffix must be numeric").
			Mark(ierr.ErrValidation)
	}
	return seq, nil
}
