package types

import (
	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/samber/lo"
)

// TenantAccountStatus represents the operational state of a tenant account.
// SUSPENDED is only ever set by the expiry reconciler or an explicit admin
// action, never implicitly by read paths.
type TenantAccountStatus string

const (
	TenantAccountStatusActive    TenantAccountStatus = "ACTIVE"
	TenantAccountStatusSuspended TenantAccountStatus = "SUSPENDED"
	TenantAccountStatusCanceled  TenantAccountStatus = "CANCELED"
)

func (s TenantAccountStatus) String() string {
	return string(s)
}

func (s TenantAccountStatus) Validate() error {
	allowed := []TenantAccountStatus{
		TenantAccountStatusActive,
		TenantAccountStatusSuspended,
		TenantAccountStatusCanceled,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid tenant account status").
			WithHint("Please provide a valid tenant account status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// SuspensionReason records why the reconciler suspended a tenant
type SuspensionReason string

const (
	SuspensionReasonSubscriptionExpired SuspensionReason = "SUBSCRIPTION_EXPIRED"
	SuspensionReasonTrialExpired        SuspensionReason = "TRIAL_EXPIRED"
	SuspensionReasonOverdueInvoices     SuspensionReason = "OVERDUE_INVOICES"
)

func (r SuspensionReason) String() string {
	return string(r)
}
