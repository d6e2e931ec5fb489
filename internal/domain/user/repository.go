package user

import (
	"context"
)

// Repository defines the read interface for tenant staff accounts
type Repository interface {
	// Create persists a new user
	Create(ctx context.Context, user *User) error

	// Get retrieves a user by ID
	Get(ctx context.Context, id string) (*User, error)

	// GetFirstAdmin returns the earliest-created admin user of the given
	// tenant. Takes an explicit tenant ID because the reconciler calls it
	// while sweeping across tenants.
	GetFirstAdmin(ctx context.Context, tenantID string) (*User, error)
}
