package types

// Status is a type for the row-level lifecycle status of a resource in the
// database. This is distinct from business statuses such as a tenant's
// account status or an invoice's payment lifecycle.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
	StatusDeleted  Status = "deleted"
)
