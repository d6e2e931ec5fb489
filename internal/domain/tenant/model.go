package tenant

import (
	"time"

	"github.com/fleetcore/fleetcore/internal/types"
	"github.com/shopspring/decimal"
)

// Tenant represents one fleet operator organization on the platform
type Tenant struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	// Plan is the currently active commercial plan. Upgrades only take effect
	// here after their invoice is verified paid.
	Plan          types.SubscriptionPlan    `db:"plan" json:"plan"`
	AccountStatus types.TenantAccountStatus `db:"account_status" json:"account_status"`
	IsInTrial     bool                      `db:"is_in_trial" json:"is_in_trial"`
	TrialEndsAt   *time.Time                `db:"trial_ends_at" json:"trial_ends_at,omitempty"`

	SubscriptionStartsAt *time.Time `db:"subscription_starts_at" json:"subscription_starts_at,omitempty"`
	SubscriptionEndsAt   *time.Time `db:"subscription_ends_at" json:"subscription_ends_at,omitempty"`
	AutoRenew            bool       `db:"auto_renew" json:"auto_renew"`

	// MonthlyRevenue is the recognized monthly amount for the active plan,
	// recomputed from the plan price table on every plan change.
	MonthlyRevenue decimal.Decimal `db:"monthly_revenue" json:"monthly_revenue"`

	SuspendedAt      *time.Time              `db:"suspended_at" json:"suspended_at,omitempty"`
	SuspensionReason *types.SuspensionReason `db:"suspension_reason" json:"suspension_reason,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TableName returns the table name for the tenant
func (t *Tenant) TableName() string {
	return "tenants"
}

// IsActive reports whether the tenant can use the platform
func (t *Tenant) IsActive() bool {
	return t.AccountStatus == types.TenantAccountStatusActive
}

// SubscriptionExpired reports whether the paid subscription window has lapsed
func (t *Tenant) SubscriptionExpired(now time.Time) bool {
	return t.SubscriptionEndsAt != nil && !t.SubscriptionEndsAt.After(now)
}

// TrialExpired reports whether the tenant is in trial and the trial has lapsed
func (t *Tenant) TrialExpired(now time.Time) bool {
	return t.IsInTrial && t.TrialEndsAt != nil && !t.TrialEndsAt.After(now)
}
