package types

import (
	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/samber/lo"
)

// RemittanceStatus is the review state of a driver's remittance entry.
// Only APPROVED remittances count toward period totals.
type RemittanceStatus string

const (
	RemittanceStatusPending  RemittanceStatus = "PENDING"
	RemittanceStatusApproved RemittanceStatus = "APPROVED"
	RemittanceStatusRejected RemittanceStatus = "REJECTED"
)

func (s RemittanceStatus) String() string {
	return string(s)
}

func (s RemittanceStatus) Validate() error {
	allowed := []RemittanceStatus{
		RemittanceStatusPending,
		RemittanceStatusApproved,
		RemittanceStatusRejected,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid remittance status").
			WithHint("Please provide a valid remittance status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// DueSeverity indicates how urgent an outstanding obligation is in the
// due-balance feed. CRITICAL means the period has ended with a balance
// outstanding, or a license has already expired.
type DueSeverity string

const (
	DueSeverityWarning  DueSeverity = "WARNING"
	DueSeverityCritical DueSeverity = "CRITICAL"
)
