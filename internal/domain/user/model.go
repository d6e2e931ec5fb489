package user

import (
	"time"
)

// User is the minimal read model of a tenant's staff account the billing core
// needs: suspension and upgrade-invoice notifications go to the tenant's
// first-created admin. Account management itself lives outside this core.
type User struct {
	ID        string    `db:"id" json:"id"`
	TenantID  string    `db:"tenant_id" json:"tenant_id"`
	Email     string    `db:"email" json:"email"`
	Name      string    `db:"name" json:"name"`
	Role      string    `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// RoleAdmin is the role notifications are routed to
const RoleAdmin = "ADMIN"
