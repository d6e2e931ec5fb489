package dto

import (
	"github.com/fleetcore/fleetcore/internal/types"
)

// ChangePlanRequest represents a request to move a tenant to another plan
type ChangePlanRequest struct {
	NewPlan types.SubscriptionPlan `json:"new_plan" binding:"required"`
	// SkipInvoice applies an upgrade immediately without issuing an invoice;
	// reserved for administrative overrides
	SkipInvoice bool `json:"skip_invoice"`
}

// PlanChangeResponse reports what the orchestrator decided
type PlanChangeResponse struct {
	ChangeType types.PlanChangeType `json:"change_type"`
	// Plan is the tenant's plan after the call; unchanged for deferred upgrades
	Plan types.SubscriptionPlan `json:"plan"`
	// InvoiceCreated is true when activation is deferred until the upgrade
	// invoice is paid
	InvoiceCreated bool             `json:"invoice_created"`
	Invoice        *InvoiceResponse `json:"invoice,omitempty"`
}
