package testutil

import (
	"context"
	"sync"

	"github.com/fleetcore/fleetcore/internal/domain/user"
	ierr "github.com/fleetcore/fleetcore/internal/errors"
)

// InMemoryUserStore is an in-memory implementation of the user.Repository interface
type InMemoryUserStore struct {
	mu    sync.Mutex
	users map[string]*user.User
}

// NewInMemoryUserStore creates a new instance of InMemoryUserStore
func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{
		users: make(map[string]*user.User),
	}
}

func (s *InMemoryUserStore) Create(ctx context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[u.ID] = u
	return nil
}

func (s *InMemoryUserStore) Get(ctx context.Context, id string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.users[id]
	if !exists {
		return nil, ierr.NewError("user not found").
			WithHint("User not found").
			WithReportableDetails(map[string]any{
				"user_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return u, nil
}

func (s *InMemoryUserStore) GetFirstAdmin(ctx context.Context, tenantID string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var first *user.User
	for _, u := range s.users {
		if u.TenantID != tenantID || u.Role != user.RoleAdmin {
			continue
		}
		if first == nil || u.CreatedAt.Before(first.CreatedAt) {
			first = u
		}
	}
	if first == nil {
		return nil, ierr.NewError("no admin user found").
			WithHint("Tenant has no admin user to notify").
			WithReportableDetails(map[string]any{
				"tenant_id": tenantID,
			}).
			Mark(ierr.ErrNotFound)
	}
	return first, nil
}

// Clear clears all users from the in-memory store
func (s *InMemoryUserStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = make(map[string]*user.User)
}
