package service

import (
	"context"
	"time"

	"github.com/fleetcore/fleetcore/internal/api/dto"
	"github.com/fleetcore/fleetcore/internal/domain/auditlog"
	"github.com/fleetcore/fleetcore/internal/email"
	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/fleetcore/fleetcore/internal/types"
)

// upgradeInvoiceDueDays is how long a tenant has to settle an upgrade invoice
const upgradeInvoiceDueDays = 7

// PlanService orchestrates plan changes. Upgrades issue an invoice and defer
// activation until it is paid; downgrades and lateral moves apply
// immediately. Tenants never hold paid features before paying, and losing
// features never requires a payment step.
type PlanService interface {
	ChangePlan(ctx context.Context, tenantID string, req *dto.ChangePlanRequest) (*dto.PlanChangeResponse, error)
}

type planService struct {
	ServiceParams
	invoiceService InvoiceService
}

// NewPlanService creates a new plan service
func NewPlanService(params ServiceParams) PlanService {
	return &planService{
		ServiceParams:  params,
		invoiceService: NewInvoiceService(params),
	}
}

// ChangePlan classifies and applies a plan change for a tenant
func (s *planService) ChangePlan(ctx context.Context, tenantID string, req *dto.ChangePlanRequest) (*dto.PlanChangeResponse, error) {
	if err := req.NewPlan.Validate(); err != nil {
		return nil, err
	}

	t, err := s.TenantRepo.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	changeType := types.ClassifyPlanChange(t.Plan, req.NewPlan)
	if changeType == types.PlanChangeLateral && t.Plan == req.NewPlan {
		return nil, ierr.NewError("tenant already on plan").
			WithHintf("Tenant is already on the %s plan", req.NewPlan).
			Mark(ierr.ErrInvalidOperation)
	}

	if changeType == types.PlanChangeUpgrade && !req.SkipInvoice && req.NewPlan != types.SubscriptionPlanFree {
		return s.deferredUpgrade(ctx, t.ID, t.Name, t.Plan, req.NewPlan)
	}

	return s.applyPlan(ctx, tenantID, req.NewPlan, changeType)
}

// deferredUpgrade issues the upgrade invoice and leaves the plan untouched;
// activation happens when the ledger marks the invoice paid.
func (s *planService) deferredUpgrade(ctx context.Context, tenantID, tenantName string, currentPlan, newPlan types.SubscriptionPlan) (*dto.PlanChangeResponse, error) {
	pricing, err := s.Config.Plans.PriceFor(newPlan)
	if err != nil {
		return nil, err
	}

	invResp, err := s.invoiceService.CreateInvoice(ctx, &dto.CreateInvoiceRequest{
		Description:      "Plan upgrade to " + newPlan.String(),
		Amount:           pricing.MonthlyPrice,
		Currency:         s.Config.Plans.Currency,
		InvoiceType:      types.InvoiceTypeUpgrade,
		DueDate:          time.Now().UTC().AddDate(0, 0, upgradeInvoiceDueDays),
		SubscriptionPlan: &newPlan,
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, &auditlog.AuditLog{
		TenantID:   tenantID,
		Action:     types.AuditActionCreateUpgradeInvoice,
		EntityType: types.AuditEntityTenant,
		EntityID:   tenantID,
		OldValues:  map[string]any{"plan": currentPlan},
		NewValues: map[string]any{
			"requested_plan": newPlan,
			"invoice_id":     invResp.ID,
			"invoice_number": invResp.InvoiceNumber,
			"amount":         invResp.Amount.String(),
		},
	})

	// delivery failure never blocks the upgrade flow; the invoice stays
	// visible in the tenant's billing page either way
	if admin, adminErr := s.UserRepo.GetFirstAdmin(ctx, tenantID); adminErr != nil {
		s.Logger.Warnw("no admin recipient for upgrade invoice",
			"tenant_id", tenantID, "error", adminErr)
	} else if sendErr := s.EmailSender.SendUpgradeInvoice(ctx, admin.Email, email.UpgradeInvoiceNotice{
		TenantName:    tenantName,
		InvoiceNumber: invResp.InvoiceNumber,
		Plan:          newPlan.String(),
		Amount:        invResp.Amount,
		Currency:      invResp.Currency,
		DueDate:       invResp.DueDate,
	}); sendErr != nil {
		s.Logger.Errorw("upgrade invoice email dispatch failed",
			"tenant_id", tenantID, "invoice_id", invResp.ID, "error", sendErr)
	}

	return &dto.PlanChangeResponse{
		ChangeType:     types.PlanChangeUpgrade,
		Plan:           currentPlan,
		InvoiceCreated: true,
		Invoice:        invResp,
	}, nil
}

// applyPlan immediately moves the tenant to the new plan and recomputes its
// recognized monthly revenue from the price table.
func (s *planService) applyPlan(ctx context.Context, tenantID string, newPlan types.SubscriptionPlan, changeType types.PlanChangeType) (*dto.PlanChangeResponse, error) {
	pricing, err := s.Config.Plans.PriceFor(newPlan)
	if err != nil {
		return nil, err
	}

	t, err := s.TenantRepo.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	oldPlan := t.Plan
	t.Plan = newPlan
	t.MonthlyRevenue = pricing.MonthlyPrice
	t.UpdatedAt = time.Now().UTC()

	if err := s.TenantRepo.Update(ctx, t); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, &auditlog.AuditLog{
		TenantID:   t.ID,
		Action:     types.AuditActionUpdatePlan,
		EntityType: types.AuditEntityTenant,
		EntityID:   t.ID,
		OldValues:  map[string]any{"plan": oldPlan},
		NewValues: map[string]any{
			"plan":            newPlan,
			"monthly_revenue": t.MonthlyRevenue.String(),
			"change_type":     changeType,
		},
	})

	return &dto.PlanChangeResponse{
		ChangeType: changeType,
		Plan:       newPlan,
	}, nil
}
