package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fleetcore/fleetcore/internal/domain/payment"
	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/samber/lo"
)

// InMemoryPaymentStore is an in-memory implementation of the
// payment.Repository interface. Create enforces the one-in-flight-payment
// invariant the way the database's partial unique index does.
type InMemoryPaymentStore struct {
	mu       sync.Mutex
	payments map[string]*payment.Payment
}

// NewInMemoryPaymentStore creates a new instance of InMemoryPaymentStore
func NewInMemoryPaymentStore() *InMemoryPaymentStore {
	return &InMemoryPaymentStore{
		payments: make(map[string]*payment.Payment),
	}
}

func (s *InMemoryPaymentStore) Create(ctx context.Context, p *payment.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.payments {
		if existing.InvoiceID != p.InvoiceID || existing.IsTerminal() {
			continue
		}
		return ierr.NewError("payment already in flight").
			WithHint("A payment for this invoice is already in progress").
			WithReportableDetails(map[string]any{
				"invoice_id": p.InvoiceID,
				"payment_id": existing.ID,
			}).
			Mark(ierr.ErrDuplicatePayment)
	}

	s.payments[p.ID] = copyPayment(p)
	return nil
}

func (s *InMemoryPaymentStore) Get(ctx context.Context, id string) (*payment.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.payments[id]
	if !exists {
		return nil, paymentNotFound(id)
	}
	return copyPayment(p), nil
}

func (s *InMemoryPaymentStore) Update(ctx context.Context, p *payment.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.payments[p.ID]; !exists {
		return paymentNotFound(p.ID)
	}

	p.UpdatedAt = time.Now().UTC()
	s.payments[p.ID] = copyPayment(p)
	return nil
}

func (s *InMemoryPaymentStore) ListByInvoice(ctx context.Context, invoiceID string) ([]*payment.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := lo.FilterMap(lo.Values(s.payments), func(p *payment.Payment, _ int) (*payment.Payment, bool) {
		if p.InvoiceID != invoiceID {
			return nil, false
		}
		return copyPayment(p), true
	})
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched, nil
}

func (s *InMemoryPaymentStore) GetActiveForInvoice(ctx context.Context, invoiceID string) (*payment.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.payments {
		if p.InvoiceID == invoiceID && !p.IsTerminal() {
			return copyPayment(p), nil
		}
	}
	return nil, ierr.NewError("no payment in flight").
		WithHint("No active payment exists for this invoice").
		WithReportableDetails(map[string]any{
			"invoice_id": invoiceID,
		}).
		Mark(ierr.ErrNotFound)
}

// Clear clears all payments from the in-memory store
func (s *InMemoryPaymentStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments = make(map[string]*payment.Payment)
}

func paymentNotFound(id string) error {
	return ierr.NewError("payment not found").
		WithHint("Payment not found").
		WithReportableDetails(map[string]any{
			"payment_id": id,
		}).
		Mark(ierr.ErrNotFound)
}

func copyPayment(p *payment.Payment) *payment.Payment {
	c := *p
	return &c
}
