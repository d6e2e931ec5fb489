package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/fleetcore/fleetcore/internal/domain/vehicle"
	ierr "github.com/fleetcore/fleetcore/internal/errors"
)

// InMemoryVehicleStore is an in-memory implementation of the vehicle.Repository interface
type InMemoryVehicleStore struct {
	mu       sync.Mutex
	vehicles map[string]*vehicle.Vehicle
}

// NewInMemoryVehicleStore creates a new instance of InMemoryVehicleStore
func NewInMemoryVehicleStore() *InMemoryVehicleStore {
	return &InMemoryVehicleStore{
		vehicles: make(map[string]*vehicle.Vehicle),
	}
}

func (s *InMemoryVehicleStore) Create(ctx context.Context, v *vehicle.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.vehicles[v.ID] = v
	return nil
}

func (s *InMemoryVehicleStore) Get(ctx context.Context, id string) (*vehicle.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, exists := s.vehicles[id]
	if !exists {
		return nil, vehicleNotFound(id)
	}
	return v, nil
}

func (s *InMemoryVehicleStore) Update(ctx context.Context, v *vehicle.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.vehicles[v.ID]; !exists {
		return vehicleNotFound(v.ID)
	}

	v.UpdatedAt = time.Now().UTC()
	s.vehicles[v.ID] = v
	return nil
}

func (s *InMemoryVehicleStore) ListExpiringDocuments(ctx context.Context, cutoff time.Time) ([]*vehicle.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*vehicle.Vehicle
	for _, v := range s.vehicles {
		licenseDue := v.LicenseExpiresAt != nil && !v.LicenseExpiresAt.After(cutoff)
		insuranceDue := v.InsuranceExpiresAt != nil && !v.InsuranceExpiresAt.After(cutoff)
		if licenseDue || insuranceDue {
			matched = append(matched, v)
		}
	}
	return matched, nil
}

// Clear clears all vehicles from the in-memory store
func (s *InMemoryVehicleStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vehicles = make(map[string]*vehicle.Vehicle)
}

func vehicleNotFound(id string) error {
	return ierr.NewError("vehicle not found").
		WithHint("Vehicle not found").
		WithReportableDetails(map[string]any{
			"vehicle_id": id,
		}).
		Mark(ierr.ErrNotFound)
}
