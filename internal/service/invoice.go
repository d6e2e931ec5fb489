package service

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/fleetcore/fleetcore/internal/api/dto"
	"github.com/fleetcore/fleetcore/internal/domain/auditlog"
	"github.com/fleetcore/fleetcore/internal/domain/invoice"
	"github.com/fleetcore/fleetcore/internal/domain/payment"
	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/fleetcore/fleetcore/internal/types"
)

// numberAllocationAttempts bounds the retry loop when two creators race for
// the same invoice number; past this the caller sees a version conflict.
const numberAllocationAttempts = 5

// InvoiceService is the invoice ledger: it numbers, issues and transitions
// invoices. PAID is only ever reached through a verified payment.
type InvoiceService interface {
	CreateInvoice(ctx context.Context, req *dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)
	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter *invoice.Filter) (*dto.ListInvoicesResponse, error)
	CancelInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)

	// MarkOverdue rolls a pending invoice to OVERDUE once its due date has
	// passed. Paid invoices are never reversed.
	MarkOverdue(ctx context.Context, id string) (*invoice.Invoice, error)

	// MarkPaid finalizes an invoice against a verified payment. Idempotent:
	// marking a paid invoice again is a no-op, so duplicate verification
	// callbacks are harmless. Paying an UPGRADE invoice activates its plan
	// on the tenant.
	MarkPaid(ctx context.Context, id string, p *payment.Payment) (*invoice.Invoice, error)
}

type invoiceService struct {
	ServiceParams
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{ServiceParams: params}
}

// CreateInvoice validates, numbers and persists a new invoice
func (s *invoiceService) CreateInvoice(ctx context.Context, req *dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	// the new row is stamped with the ambient tenant
	if err := types.ValidateTenantContext(ctx); err != nil {
		return nil, err
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	inv, err := req.ToInvoice(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.createNumbered(ctx, inv); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, &auditlog.AuditLog{
		TenantID:   inv.TenantID,
		Action:     types.AuditActionInvoiceCreated,
		EntityType: types.AuditEntityInvoice,
		EntityID:   inv.ID,
		NewValues: map[string]any{
			"invoice_number": inv.InvoiceNumber,
			"amount":         inv.Amount.String(),
			"currency":       inv.Currency,
			"due_date":       inv.DueDate,
			"invoice_type":   inv.InvoiceType,
		},
	})

	return dto.NewInvoiceResponse(inv), nil
}

// createNumbered allocates the next invoice number and persists the invoice.
// The number is derived from the highest existing suffix, so gaps from
// deleted invoices never cause reuse; a unique constraint catches concurrent
// allocations of the same number and the loop re-reads and retries.
func (s *invoiceService) createNumbered(ctx context.Context, inv *invoice.Invoice) error {
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), numberAllocationAttempts), ctx)

	operation := func() error {
		seq, err := s.InvoiceRepo.MaxInvoiceSequence(ctx)
		if err != nil {
			return backoff.Permanent(err)
		}
		inv.InvoiceNumber = types.FormatInvoiceNumber(seq + 1)

		err = s.InvoiceRepo.Create(ctx, inv)
		if err == nil {
			return nil
		}
		if ierr.IsAlreadyExists(err) {
			// another creator took the number first; re-read and retry
			return err
		}
		return backoff.Permanent(err)
	}

	if err := backoff.Retry(operation, policy); err != nil {
		if ierr.IsAlreadyExists(err) {
			return ierr.WithError(err).
				WithHint("Could not allocate an invoice number, please retry").
				Mark(ierr.ErrVersionConflict)
		}
		return err
	}
	return nil
}

// GetInvoice gets an invoice by ID
func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewInvoiceResponse(inv), nil
}

// ListInvoices lists invoices based on filter
func (s *invoiceService) ListInvoices(ctx context.Context, filter *invoice.Filter) (*dto.ListInvoicesResponse, error) {
	if filter == nil {
		filter = &invoice.Filter{}
	}

	invoices, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	count, err := s.InvoiceRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		items[i] = dto.NewInvoiceResponse(inv)
	}

	return &dto.ListInvoicesResponse{Items: items, Total: count}, nil
}

// CancelInvoice voids a pending invoice
func (s *invoiceService) CancelInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if inv.InvoiceStatus != types.InvoiceStatusPending && inv.InvoiceStatus != types.InvoiceStatusOverdue {
		return nil, ierr.NewError("invoice not cancelable").
			WithHintf("Only pending or overdue invoices can be canceled, invoice is %s", inv.InvoiceStatus).
			Mark(ierr.ErrInvalidOperation)
	}

	oldStatus := inv.InvoiceStatus
	inv.InvoiceStatus = types.InvoiceStatusCanceled
	inv.UpdatedAt = time.Now().UTC()
	inv.UpdatedBy = types.GetUserID(ctx)

	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, &auditlog.AuditLog{
		TenantID:   inv.TenantID,
		Action:     types.AuditActionInvoiceCanceled,
		EntityType: types.AuditEntityInvoice,
		EntityID:   inv.ID,
		OldValues:  map[string]any{"invoice_status": oldStatus},
		NewValues:  map[string]any{"invoice_status": inv.InvoiceStatus},
	})

	return dto.NewInvoiceResponse(inv), nil
}

// MarkOverdue transitions PENDING -> OVERDUE once the due date has passed
func (s *invoiceService) MarkOverdue(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if inv.InvoiceStatus != types.InvoiceStatusPending {
		return nil, ierr.NewError("invoice not pending").
			WithHintf("Only pending invoices become overdue, invoice is %s", inv.InvoiceStatus).
			Mark(ierr.ErrInvalidOperation)
	}
	if time.Now().UTC().Before(inv.DueDate) {
		return nil, ierr.NewError("invoice not yet due").
			WithHint("Due date has not passed").
			Mark(ierr.ErrInvalidOperation)
	}

	inv.InvoiceStatus = types.InvoiceStatusOverdue
	inv.UpdatedAt = time.Now().UTC()

	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, &auditlog.AuditLog{
		TenantID:   inv.TenantID,
		Action:     types.AuditActionInvoiceOverdue,
		EntityType: types.AuditEntityInvoice,
		EntityID:   inv.ID,
		OldValues:  map[string]any{"invoice_status": types.InvoiceStatusPending},
		NewValues:  map[string]any{"invoice_status": types.InvoiceStatusOverdue, "due_date": inv.DueDate},
	})

	return inv, nil
}

// MarkPaid finalizes the invoice against a verified payment
func (s *invoiceService) MarkPaid(ctx context.Context, id string, p *payment.Payment) (*invoice.Invoice, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// duplicate verification callbacks land here; swallow them
	if inv.InvoiceStatus == types.InvoiceStatusPaid {
		return inv, nil
	}

	if inv.InvoiceStatus == types.InvoiceStatusCanceled {
		return nil, ierr.NewError("invoice canceled").
			WithHint("A canceled invoice cannot be paid").
			Mark(ierr.ErrInvalidOperation)
	}

	now := time.Now().UTC()
	oldStatus := inv.InvoiceStatus
	inv.InvoiceStatus = types.InvoiceStatusPaid
	inv.PaidAt = &now
	inv.UpdatedAt = now

	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	newValues := map[string]any{
		"invoice_status": types.InvoiceStatusPaid,
		"paid_at":        now,
	}
	if p != nil {
		newValues["payment_id"] = p.ID
	}
	s.recordAudit(ctx, &auditlog.AuditLog{
		TenantID:   inv.TenantID,
		Action:     types.AuditActionInvoicePaid,
		EntityType: types.AuditEntityInvoice,
		EntityID:   inv.ID,
		OldValues:  map[string]any{"invoice_status": oldStatus},
		NewValues:  newValues,
	})

	if inv.InvoiceType == types.InvoiceTypeUpgrade && inv.SubscriptionPlan != nil {
		if err := s.activatePlan(ctx, inv); err != nil {
			// the invoice is paid regardless; plan activation failures need
			// operator attention, not a rollback of the payment
			s.Logger.Errorw("plan activation after paid upgrade invoice failed",
				"invoice_id", inv.ID,
				"tenant_id", inv.TenantID,
				"plan", inv.SubscriptionPlan,
				"error", err,
			)
		}
	}

	return inv, nil
}

// activatePlan applies the deferred upgrade once its invoice is paid
func (s *invoiceService) activatePlan(ctx context.Context, inv *invoice.Invoice) error {
	t, err := s.TenantRepo.Get(ctx, inv.TenantID)
	if err != nil {
		return err
	}

	newPlan := *inv.SubscriptionPlan
	if t.Plan == newPlan {
		return nil
	}

	pricing, err := s.Config.Plans.PriceFor(newPlan)
	if err != nil {
		return err
	}

	oldPlan := t.Plan
	t.Plan = newPlan
	t.MonthlyRevenue = pricing.MonthlyPrice
	t.UpdatedAt = time.Now().UTC()

	if err := s.TenantRepo.Update(ctx, t); err != nil {
		return err
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
			"invoice_id":      inv.ID,
		},
	})

	return nil
}
