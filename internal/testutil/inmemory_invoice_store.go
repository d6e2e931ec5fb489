package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fleetcore/fleetcore/internal/domain/invoice"
	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/fleetcore/fleetcore/internal/types"
)

// InMemoryInvoiceStore is an in-memory implementation of the invoice.Repository
// interface. It enforces invoice number uniqueness the way the database
// unique index does, so number allocation retries are exercised in tests.
type InMemoryInvoiceStore struct {
	mu       sync.Mutex
	invoices map[string]*invoice.Invoice
	// byNumber mirrors the unique index on invoice_number
	byNumber map[string]string
}

// NewInMemoryInvoiceStore creates a new instance of InMemoryInvoiceStore
func NewInMemoryInvoiceStore() *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		invoices: make(map[string]*invoice.Invoice),
		byNumber: make(map[string]string),
	}
}

func (s *InMemoryInvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byNumber[inv.InvoiceNumber]; taken {
		return ierr.NewError("invoice number already taken").
			WithHint("Invoice number collided with a concurrent allocation").
			WithReportableDetails(map[string]any{
				"invoice_number": inv.InvoiceNumber,
			}).
			Mark(ierr.ErrAlreadyExists)
	}

	s.invoices[inv.ID] = copyInvoice(inv)
	s.byNumber[inv.InvoiceNumber] = inv.ID
	return nil
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, exists := s.invoices[id]
	if !exists || inv.TenantID != types.GetTenantID(ctx) {
		return nil, invoiceNotFound(id)
	}
	return copyInvoice(inv), nil
}

func (s *InMemoryInvoiceStore) GetByInvoiceNumber(ctx context.Context, number string) (*invoice.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, exists := s.byNumber[number]
	if !exists {
		return nil, invoiceNotFound(number)
	}
	return copyInvoice(s.invoices[id]), nil
}

func (s *InMemoryInvoiceStore) Update(ctx context.Context, inv *invoice.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.invoices[inv.ID]; !exists {
		return invoiceNotFound(inv.ID)
	}

	inv.UpdatedAt = time.Now().UTC()
	s.invoices[inv.ID] = copyInvoice(inv)
	return nil
}

func (s *InMemoryInvoiceStore) List(ctx context.Context, filter *invoice.Filter) ([]*invoice.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := s.filter(ctx, filter)
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if filter != nil && filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return nil, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter != nil && filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (s *InMemoryInvoiceStore) Count(ctx context.Context, filter *invoice.Filter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.filter(ctx, filter)), nil
}

func (s *InMemoryInvoiceStore) MaxInvoiceSequence(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var max int64
	for number := range s.byNumber {
		seq, err := types.ParseInvoiceNumber(number)
		if err != nil {
			continue
		}
		if seq > max {
			max = seq
		}
	}
	return max, nil
}

func (s *InMemoryInvoiceStore) ListPendingDueBefore(ctx context.Context, now time.Time) ([]*invoice.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenantID := types.GetTenantID(ctx)
	var matched []*invoice.Invoice
	for _, inv := range s.invoices {
		if inv.TenantID != tenantID {
			continue
		}
		if inv.InvoiceStatus == types.InvoiceStatusPending && !inv.DueDate.After(now) {
			matched = append(matched, copyInvoice(inv))
		}
	}
	return matched, nil
}

func (s *InMemoryInvoiceStore) ListOverdueForTenant(ctx context.Context, tenantID string, cutoff time.Time) ([]*invoice.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*invoice.Invoice
	for _, inv := range s.invoices {
		if inv.TenantID != tenantID {
			continue
		}
		if inv.InvoiceStatus == types.InvoiceStatusOverdue && !inv.DueDate.After(cutoff) {
			matched = append(matched, copyInvoice(inv))
		}
	}
	return matched, nil
}

// Clear clears all invoices from the in-memory store
func (s *InMemoryInvoiceStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices = make(map[string]*invoice.Invoice)
	s.byNumber = make(map[string]string)
}

func (s *InMemoryInvoiceStore) filter(ctx context.Context, filter *invoice.Filter) []*invoice.Invoice {
	tenantID := types.GetTenantID(ctx)
	var matched []*invoice.Invoice
	for _, inv := range s.invoices {
		if inv.TenantID != tenantID {
			continue
		}
		if filter != nil {
			if filter.InvoiceStatus != nil && inv.InvoiceStatus != *filter.InvoiceStatus {
				continue
			}
			if filter.InvoiceType != nil && inv.InvoiceType != *filter.InvoiceType {
				continue
			}
		}
		matched = append(matched, copyInvoice(inv))
	}
	return matched
}

func invoiceNotFound(ref string) error {
	return ierr.NewError("invoice not found").
		WithHint("Invoice not found").
		WithReportableDetails(map[string]any{
			"invoice": ref,
		}).
		Mark(ierr.ErrNotFound)
}

func copyInvoice(inv *invoice.Invoice) *invoice.Invoice {
	c := *inv
	return &c
}
