package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/fleetcore/fleetcore/internal/domain/tenant"
	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/fleetcore/fleetcore/internal/types"
)

// InMemoryTenantStore is an in-memory implementation of the tenant.Repository interface
type InMemoryTenantStore struct {
	mu      sync.Mutex
	tenants map[string]*tenant.Tenant
}

// NewInMemoryTenantStore creates a new instance of InMemoryTenantStore
func NewInMemoryTenantStore() *InMemoryTenantStore {
	return &InMemoryTenantStore{
		tenants: make(map[string]*tenant.Tenant),
	}
}

func (s *InMemoryTenantStore) Create(ctx context.Context, t *tenant.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tenants[t.ID]; exists {
		return ierr.NewError("tenant already exists").
			WithHint("A tenant with this ID already exists").
			WithReportableDetails(map[string]any{
				"tenant_id": t.ID,
			}).
			Mark(ierr.ErrAlreadyExists)
	}

	s.tenants[t.ID] = copyTenant(t)
	return nil
}

func (s *InMemoryTenantStore) Get(ctx context.Context, id string) (*tenant.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, exists := s.tenants[id]
	if !exists {
		return nil, ierr.NewError("tenant not found").
			WithHint("Tenant not found").
			WithReportableDetails(map[string]any{
				"tenant_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copyTenant(t), nil
}

func (s *InMemoryTenantStore) Update(ctx context.Context, t *tenant.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tenants[t.ID]; !exists {
		return ierr.NewError("tenant not found").
			WithHint("Tenant not found").
			WithReportableDetails(map[string]any{
				"tenant_id": t.ID,
			}).
			Mark(ierr.ErrNotFound)
	}

	t.UpdatedAt = time.Now().UTC()
	s.tenants[t.ID] = copyTenant(t)
	return nil
}

func (s *InMemoryTenantStore) ListExpiredAcrossTenants(ctx context.Context, now time.Time) ([]*tenant.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []*tenant.Tenant
	for _, t := range s.tenants {
		if t.AccountStatus != types.TenantAccountStatusActive {
			continue
		}
		if t.SubscriptionExpired(now) || t.TrialExpired(now) {
			expired = append(expired, copyTenant(t))
		}
	}
	return expired, nil
}

func (s *InMemoryTenantStore) ListActiveAcrossTenants(ctx context.Context) ([]*tenant.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var active []*tenant.Tenant
	for _, t := range s.tenants {
		if t.AccountStatus == types.TenantAccountStatusActive {
			active = append(active, copyTenant(t))
		}
	}
	return active, nil
}

// Clear clears all tenants from the in-memory store
func (s *InMemoryTenantStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenants = make(map[string]*tenant.Tenant)
}

func copyTenant(t *tenant.Tenant) *tenant.Tenant {
	c := *t
	return &c
}
