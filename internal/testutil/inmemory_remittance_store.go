package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/fleetcore/fleetcore/internal/domain/remittance"
	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/fleetcore/fleetcore/internal/types"
	"github.com/shopspring/decimal"
)

// InMemoryRemittanceStore is an in-memory implementation of the remittance.Repository interface
type InMemoryRemittanceStore struct {
	mu          sync.Mutex
	remittances map[string]*remittance.Remittance
}

// NewInMemoryRemittanceStore creates a new instance of InMemoryRemittanceStore
func NewInMemoryRemittanceStore() *InMemoryRemittanceStore {
	return &InMemoryRemittanceStore{
		remittances: make(map[string]*remittance.Remittance),
	}
}

func (s *InMemoryRemittanceStore) Create(ctx context.Context, r *remittance.Remittance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.remittances[r.ID] = r
	return nil
}

func (s *InMemoryRemittanceStore) Get(ctx context.Context, id string) (*remittance.Remittance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, exists := s.remittances[id]
	if !exists {
		return nil, ierr.NewError("remittance not found").
			WithHint("Remittance not found").
			WithReportableDetails(map[string]any{
				"remittance_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return r, nil
}

func (s *InMemoryRemittanceStore) Update(ctx context.Context, r *remittance.Remittance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.remittances[r.ID]; !exists {
		return ierr.NewError("remittance not found").
			WithHint("Remittance not found").
			WithReportableDetails(map[string]any{
				"remittance_id": r.ID,
			}).
			Mark(ierr.ErrNotFound)
	}

	r.UpdatedAt = time.Now().UTC()
	s.remittances[r.ID] = r
	return nil
}

func (s *InMemoryRemittanceStore) SumApproved(ctx context.Context, driverID, vehicleID string, period types.Period) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sumLocked(driverID, vehicleID, period), nil
}

func (s *InMemoryRemittanceStore) SumApprovedByAssignment(ctx context.Context, tuples []remittance.AssignmentPeriod) (map[remittance.AssignmentKey]decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sums := make(map[remittance.AssignmentKey]decimal.Decimal, len(tuples))
	for _, t := range tuples {
		key := remittance.AssignmentKey{DriverID: t.DriverID, VehicleID: t.VehicleID}
		sums[key] = s.sumLocked(t.DriverID, t.VehicleID, t.Period)
	}
	return sums, nil
}

func (s *InMemoryRemittanceStore) sumLocked(driverID, vehicleID string, period types.Period) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range s.remittances {
		if r.DriverID != driverID || r.VehicleID != vehicleID {
			continue
		}
		if r.RemittanceStatus != types.RemittanceStatusApproved {
			continue
		}
		if !period.Contains(r.Date) {
			continue
		}
		sum = sum.Add(r.Amount)
	}
	return sum
}

// Clear clears all remittances from the in-memory store
func (s *InMemoryRemittanceStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remittances = make(map[string]*remittance.Remittance)
}
