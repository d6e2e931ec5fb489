package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/fleetcore/fleetcore/internal/api/dto"
	"github.com/fleetcore/fleetcore/internal/domain/auditlog"
	"github.com/fleetcore/fleetcore/internal/domain/tenant"
	"github.com/fleetcore/fleetcore/internal/email"
	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/fleetcore/fleetcore/internal/types"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"
)

const notifyConcurrency = 4

// ReconcilerService is the nightly sweep that suspends tenants whose
// subscription or trial lapsed and rolls unpaid invoices to OVERDUE. It never
// reactivates anyone; reactivation is always an explicit, human action.
type ReconcilerService interface {
	// Run executes one reconciliation pass against the given instant. At most
	// one run may be in flight; a concurrent call fails with
	// ErrInvalidOperation instead of queueing.
	Run(ctx context.Context, now time.Time) (*dto.ReconcilerRunResponse, error)
}

type reconcilerService struct {
	ServiceParams
	invoiceService InvoiceService
	running        atomic.Bool
}

// NewReconcilerService creates a new subscription expiry reconciler
func NewReconcilerService(params ServiceParams) ReconcilerService {
	return &reconcilerService{
		ServiceParams:  params,
		invoiceService: NewInvoiceService(params),
	}
}

func (s *reconcilerService) Run(ctx context.Context, now time.Time) (*dto.ReconcilerRunResponse, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ierr.NewError("reconciliation already running").
			WithHint("A reconciliation run is already in progress").
			Mark(ierr.ErrInvalidOperation)
	}
	defer s.running.Store(false)

	now = now.UTC()
	s.Logger.Infow("starting reconciliation run", "now", now)

	resp := &dto.ReconcilerRunResponse{Errors: []string{}}

	// Notifications run concurrently and must all land before Run returns,
	// but a delivery failure never fails the run.
	notifier := pool.New().WithMaxGoroutines(notifyConcurrency)

	s.sweepExpired(ctx, now, resp, notifier)
	s.sweepOverdue(ctx, now, resp, notifier)

	notifier.Wait()

	s.Logger.Infow("reconciliation run complete",
		"total_suspended", resp.TotalSuspended,
		"expired_subscriptions", resp.ExpiredSubscriptions,
		"overdue_invoices", resp.OverdueInvoices,
		"errors", len(resp.Errors),
	)
	return resp, nil
}

// sweepExpired suspends ACTIVE tenants whose subscription window or trial
// lapsed on or before now.
func (s *reconcilerService) sweepExpired(ctx context.Context, now time.Time, resp *dto.ReconcilerRunResponse, notifier *pool.Pool) {
	expired, err := s.TenantRepo.ListExpiredAcrossTenants(ctx, now)
	if err != nil {
		resp.Errors = append(resp.Errors, fmt.Sprintf("list expired tenants: %v", err))
		return
	}

	for _, t := range expired {
		reason := types.SuspensionReasonSubscriptionExpired
		if !t.SubscriptionExpired(now) && t.TrialExpired(now) {
			reason = types.SuspensionReasonTrialExpired
		}

		if err := s.suspendTenant(ctx, t, reason, now, 0, decimal.Zero, notifier); err != nil {
			resp.Errors = append(resp.Errors, fmt.Sprintf("tenant %s: %v", t.ID, err))
			continue
		}
		resp.TotalSuspended++
		resp.ExpiredSubscriptions++
	}
}

// sweepOverdue rolls past-due PENDING invoices to OVERDUE, then suspends
// tenants that have carried OVERDUE invoices beyond the grace window. Tenant
// state is re-read here so tenants suspended by the expired sweep are not
// processed again.
func (s *reconcilerService) sweepOverdue(ctx context.Context, now time.Time, resp *dto.ReconcilerRunResponse, notifier *pool.Pool) {
	active, err := s.TenantRepo.ListActiveAcrossTenants(ctx)
	if err != nil {
		resp.Errors = append(resp.Errors, fmt.Sprintf("list active tenants: %v", err))
		return
	}

	cutoff := now.AddDate(0, 0, -s.Config.Billing.OverdueSuspensionDays)

	for _, t := range active {
		tctx := types.SetTenantID(ctx, t.ID)

		pending, err := s.InvoiceRepo.ListPendingDueBefore(tctx, now)
		if err != nil {
			resp.Errors = append(resp.Errors, fmt.Sprintf("tenant %s: list due invoices: %v", t.ID, err))
			continue
		}
		for _, inv := range pending {
			if _, err := s.invoiceService.MarkOverdue(tctx, inv.ID); err != nil {
				resp.Errors = append(resp.Errors, fmt.Sprintf("tenant %s: invoice %s: %v", t.ID, inv.ID, err))
				continue
			}
			resp.OverdueInvoices++
		}

		overdue, err := s.InvoiceRepo.ListOverdueForTenant(ctx, t.ID, cutoff)
		if err != nil {
			resp.Errors = append(resp.Errors, fmt.Sprintf("tenant %s: list overdue invoices: %v", t.ID, err))
			continue
		}
		if len(overdue) == 0 {
			continue
		}

		total := decimal.Zero
		for _, inv := range overdue {
			total = total.Add(inv.Amount)
		}

		if err := s.suspendTenant(tctx, t, types.SuspensionReasonOverdueInvoices, now, len(overdue), total, notifier); err != nil {
			resp.Errors = append(resp.Errors, fmt.Sprintf("tenant %s: %v", t.ID, err))
			continue
		}
		resp.TotalSuspended++
	}
}

// suspendTenant performs the ACTIVE -> SUSPENDED transition, records the
// audit entry and queues the admin notification.
func (s *reconcilerService) suspendTenant(ctx context.Context, t *tenant.Tenant, reason types.SuspensionReason, now time.Time, overdueCount int, overdueTotal decimal.Decimal, notifier *pool.Pool) error {
	oldStatus := t.AccountStatus
	t.AccountStatus = types.TenantAccountStatusSuspended
	t.SuspendedAt = &now
	t.SuspensionReason = &reason

	if err := s.TenantRepo.Update(ctx, t); err != nil {
		return err
	}

	// The audit row is the durable explanation for the suspension, so it
	// carries the triggering facts: the lapsed deadline for expiry
	// suspensions, the invoice count and sum for overdue ones.
	newValues := map[string]any{
		"account_status":    types.TenantAccountStatusSuspended,
		"suspension_reason": reason,
		"suspended_at":      now,
	}
	switch reason {
	case types.SuspensionReasonSubscriptionExpired:
		if t.SubscriptionEndsAt != nil {
			newValues["expired_at"] = *t.SubscriptionEndsAt
		}
	case types.SuspensionReasonTrialExpired:
		if t.TrialEndsAt != nil {
			newValues["expired_at"] = *t.TrialEndsAt
		}
	case types.SuspensionReasonOverdueInvoices:
		newValues["overdue_count"] = overdueCount
		newValues["overdue_total"] = overdueTotal.String()
	}

	s.recordAudit(ctx, &auditlog.AuditLog{
		TenantID:   t.ID,
		Action:     types.AuditActionAutoSuspend,
		EntityType: types.AuditEntityTenant,
		EntityID:   t.ID,
		OldValues:  map[string]any{"account_status": oldStatus},
		NewValues:  newValues,
	})

	s.Logger.Infow("tenant auto-suspended",
		"tenant_id", t.ID,
		"reason", reason,
		"overdue_count", overdueCount,
	)

	notice := email.AccountSuspendedNotice{
		TenantName:   t.Name,
		Reason:       reason.String(),
		SuspendedAt:  now,
		OverdueCount: overdueCount,
		OverdueTotal: overdueTotal,
	}
	tenantID := t.ID

	notifier.Go(func() {
		admin, err := s.UserRepo.GetFirstAdmin(ctx, tenantID)
		if err != nil {
			s.Logger.Warnw("no admin recipient for suspension notice", "tenant_id", tenantID, "error", err)
			return
		}
		if err := s.EmailSender.SendAccountSuspended(ctx, admin.Email, notice); err != nil {
			s.Logger.Errorw("failed to send suspension notice", "tenant_id", tenantID, "error", err)
		}
	})

	return nil
}
