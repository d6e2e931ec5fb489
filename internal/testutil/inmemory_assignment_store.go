package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/fleetcore/fleetcore/internal/domain/vehicle"
	ierr "github.com/fleetcore/fleetcore/internal/errors"
)

// InMemoryAssignmentStore is an in-memory implementation of the vehicle.AssignmentRepository interface
type InMemoryAssignmentStore struct {
	mu          sync.Mutex
	assignments map[string]*vehicle.Assignment
}

// NewInMemoryAssignmentStore creates a new instance of InMemoryAssignmentStore
func NewInMemoryAssignmentStore() *InMemoryAssignmentStore {
	return &InMemoryAssignmentStore{
		assignments: make(map[string]*vehicle.Assignment),
	}
}

func (s *InMemoryAssignmentStore) Create(ctx context.Context, a *vehicle.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.assignments[a.ID] = a
	return nil
}

func (s *InMemoryAssignmentStore) Get(ctx context.Context, id string) (*vehicle.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, exists := s.assignments[id]
	if !exists {
		return nil, assignmentNotFound(id)
	}
	return a, nil
}

func (s *InMemoryAssignmentStore) Update(ctx context.Context, a *vehicle.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.assignments[a.ID]; !exists {
		return assignmentNotFound(a.ID)
	}

	a.UpdatedAt = time.Now().UTC()
	s.assignments[a.ID] = a
	return nil
}

func (s *InMemoryAssignmentStore) ListActive(ctx context.Context) ([]*vehicle.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var active []*vehicle.Assignment
	for _, a := range s.assignments {
		if a.IsActive() {
			active = append(active, a)
		}
	}
	return active, nil
}

// Clear clears all assignments from the in-memory store
func (s *InMemoryAssignmentStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments = make(map[string]*vehicle.Assignment)
}

func assignmentNotFound(id string) error {
	return ierr.NewError("assignment not found").
		WithHint("Assignment not found").
		WithReportableDetails(map[string]any{
			"assignment_id": id,
		}).
		Mark(ierr.ErrNotFound)
}
