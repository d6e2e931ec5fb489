package invoice

import (
	"context"
	"time"

	"github.com/fleetcore/fleetcore/internal/types"
)

// Filter narrows List queries within the tenant scope
type Filter struct {
	InvoiceStatus *types.InvoiceStatus
	InvoiceType   *types.InvoiceType
	Limit         int
	Offset        int
}

// Repository defines the interface for invoice persistence operations
type Repository interface {
	// Create creates a new invoice. Returns ErrAlreadyExists when the invoice
	// number is already taken, so callers can retry number allocation.
	Create(ctx context.Context, invoice *Invoice) error

	// Get retrieves an invoice by ID
	Get(ctx context.Context, id string) (*Invoice, error)

	// GetByInvoiceNumber retrieves an invoice by its external number
	GetByInvoiceNumber(ctx context.Context, number string) (*Invoice, error)

	// Update updates an existing invoice
	Update(ctx context.Context, invoice *Invoice) error

	// List retrieves invoices based on filter criteria
	List(ctx context.Context, filter *Filter) ([]*Invoice, error)

	// Count returns the total count of invoices based on filter criteria
	Count(ctx context.Context, filter *Filter) (int, error)

	// MaxInvoiceSequence returns the numerically highest invoice number suffix
	// across all tenants, 0 when no invoices exist. Invoice numbers are a
	// global sequence, so this is deliberately unscoped.
	MaxInvoiceSequence(ctx context.Context) (int64, error)

	// ListPendingDueBefore retrieves PENDING invoices for the tenant in
	// context whose due date passed on or before the given instant.
	ListPendingDueBefore(ctx context.Context, now time.Time) ([]*Invoice, error)

	// ListOverdueForTenant retrieves OVERDUE invoices for the given tenant
	// with due dates on or before the cutoff. Used by the reconciler's
	// overdue sweep, which runs outside any single tenant scope.
	ListOverdueForTenant(ctx context.Context, tenantID string, cutoff time.Time) ([]*Invoice, error)
}
