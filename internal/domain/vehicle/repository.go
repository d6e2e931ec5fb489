package vehicle

import (
	"context"
	"time"
)

// Repository defines the interface for vehicle persistence operations
type Repository interface {
	// Create persists a new vehicle
	Create(ctx context.Context, vehicle *Vehicle) error

	// Get retrieves a vehicle by ID
	Get(ctx context.Context, id string) (*Vehicle, error)

	// Update updates an existing vehicle
	Update(ctx context.Context, vehicle *Vehicle) error

	// ListExpiringDocuments retrieves vehicles whose license or insurance
	// expires on or before the given cutoff, expired ones included
	ListExpiringDocuments(ctx context.Context, cutoff time.Time) ([]*Vehicle, error)
}

// AssignmentRepository defines the interface for driver-vehicle assignments
type AssignmentRepository interface {
	// Create persists a new assignment
	Create(ctx context.Context, assignment *Assignment) error

	// Get retrieves an assignment by ID
	Get(ctx context.Context, id string) (*Assignment, error)

	// Update updates an existing assignment (typically to set the end date)
	Update(ctx context.Context, assignment *Assignment) error

	// ListActive retrieves assignments with no end date for the tenant in context
	ListActive(ctx context.Context) ([]*Assignment, error)
}
