package dto

import (
	"time"

	"github.com/fleetcore/fleetcore/internal/types"
	"github.com/shopspring/decimal"
)

// DueBalanceItem is one outstanding remittance obligation in the feed
type DueBalanceItem struct {
	DriverID   string            `json:"driver_id"`
	VehicleID  string            `json:"vehicle_id"`
	Period     types.Period      `json:"period"`
	FullTarget decimal.Decimal   `json:"full_target"`
	Remitted   decimal.Decimal   `json:"remitted"`
	Remaining  decimal.Decimal   `json:"remaining"`
	Overdue    bool              `json:"overdue"`
	Severity   types.DueSeverity `json:"severity"`
}

// ExpiringDocument is one vehicle document nearing or past expiry
type ExpiringDocument struct {
	VehicleID          string            `json:"vehicle_id"`
	RegistrationNumber string            `json:"registration_number"`
	DocumentType       string            `json:"document_type"`
	ExpiresAt          time.Time         `json:"expires_at"`
	Severity           types.DueSeverity `json:"severity"`
}

// DueBalanceFeedResponse is the read-only feed dashboards poll
type DueBalanceFeedResponse struct {
	DueBalances       []*DueBalanceItem   `json:"due_balances"`
	ExpiringDocuments []*ExpiringDocument `json:"expiring_documents"`
	GeneratedAt       time.Time           `json:"generated_at"`
}
