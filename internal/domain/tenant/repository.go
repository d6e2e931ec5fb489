package tenant

import (
	"context"
	"time"
)

// Repository defines the interface for tenant persistence operations.
// Get and Update are scoped to the tenant carried in the context; the
// ListExpired* methods are the reconciler's explicitly cross-tenant sweeps.
type Repository interface {
	// Create creates a new tenant
	Create(ctx context.Context, tenant *Tenant) error

	// Get retrieves a tenant by ID
	Get(ctx context.Context, id string) (*Tenant, error)

	// Update updates an existing tenant
	Update(ctx context.Context, tenant *Tenant) error

	// ListExpiredAcrossTenants retrieves ACTIVE tenants whose subscription or
	// trial lapsed on or before the given instant. Cross-tenant; reconciler only.
	ListExpiredAcrossTenants(ctx context.Context, now time.Time) ([]*Tenant, error)

	// ListActiveAcrossTenants retrieves all ACTIVE tenants. Cross-tenant;
	// reconciler only.
	ListActiveAcrossTenants(ctx context.Context) ([]*Tenant, error)
}
