package service

import (
	"context"
	"time"

	"github.com/fleetcore/fleetcore/internal/api/dto"
	"github.com/fleetcore/fleetcore/internal/domain/auditlog"
	"github.com/fleetcore/fleetcore/internal/domain/payment"
	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/fleetcore/fleetcore/internal/gateway"
	"github.com/fleetcore/fleetcore/internal/idempotency"
	"github.com/fleetcore/fleetcore/internal/types"
)

// PaymentService is the payment state machine around one gateway
// integration: PENDING -> PROCESSING -> PAID | FAILED, with at most one
// non-terminal payment per invoice at any time.
type PaymentService interface {
	// InitiatePayment registers a payment intent with the gateway and
	// persists it. No row is written unless the gateway accepted the intent.
	InitiatePayment(ctx context.Context, req *dto.InitiatePaymentRequest) (*dto.PaymentResponse, error)

	// VerifyPayment polls the gateway and advances the payment. Safe to call
	// any number of times; terminal payments are returned unchanged.
	VerifyPayment(ctx context.Context, paymentID string) (*dto.PaymentResponse, error)

	// VerifyByReference resolves the payment for an invoice number and
	// verifies it; this is the webhook entry point. Gateways deliver
	// callbacks at least once, so a settled payment is returned as-is.
	VerifyByReference(ctx context.Context, invoiceNumber string) (*dto.PaymentResponse, error)

	GetPayment(ctx context.Context, id string) (*dto.PaymentResponse, error)
}

type paymentService struct {
	ServiceParams
	invoiceService InvoiceService
	idempGen       *idempotency.Generator
}

// NewPaymentService creates a new payment service
func NewPaymentService(params ServiceParams) PaymentService {
	return &paymentService{
		ServiceParams:  params,
		invoiceService: NewInvoiceService(params),
		idempGen:       idempotency.NewGenerator(),
	}
}

// InitiatePayment starts a payment against an invoice
func (s *paymentService) InitiatePayment(ctx context.Context, req *dto.InitiatePaymentRequest) (*dto.PaymentResponse, error) {
	if err := types.ValidateTenantContext(ctx); err != nil {
		return nil, err
	}

	inv, err := s.InvoiceRepo.Get(ctx, req.InvoiceID)
	if err != nil {
		return nil, err
	}

	if inv.InvoiceStatus == types.InvoiceStatusPaid {
		return nil, ierr.NewError("invoice already paid").
			WithHint("This invoice has already been settled").
			Mark(ierr.ErrAlreadyPaid)
	}
	if inv.InvoiceStatus == types.InvoiceStatusCanceled {
		return nil, ierr.NewError("invoice canceled").
			WithHint("A canceled invoice cannot be paid").
			Mark(ierr.ErrInvalidOperation)
	}

	// pre-check for a friendly error; the data layer's partial unique index
	// is what actually holds under concurrent initiations
	if existing, err := s.PaymentRepo.GetActiveForInvoice(ctx, inv.ID); err == nil && existing != nil {
		return nil, ierr.NewError("payment already in flight").
			WithHint("A payment for this invoice is already being processed").
			WithReportableDetails(map[string]any{
				"payment_id": existing.ID,
			}).
			Mark(ierr.ErrDuplicatePayment)
	} else if err != nil && !ierr.IsNotFound(err) {
		return nil, err
	}

	p := &payment.Payment{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
		InvoiceID:     inv.ID,
		Amount:        inv.Amount,
		Currency:      inv.Currency,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: types.PaymentStatusPending,
		PhoneNumber:   req.PhoneNumber,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	p.IdempotencyKey = s.idempGen.GenerateKey(idempotency.ScopePayment, map[string]interface{}{
		"invoice_id": p.InvoiceID,
		"payment_id": p.ID,
	})
	if err := p.Validate(); err != nil {
		return nil, err
	}

	// gateway first: a declined or timed-out create leaves no partial state
	gwResp, err := s.Gateway.CreatePayment(ctx, &gateway.CreatePaymentRequest{
		Reference:   inv.InvoiceNumber,
		Amount:      inv.Amount,
		PhoneNumber: req.PhoneNumber,
		Method:      req.PaymentMethod,
		Description: inv.Description,
		AuthEmail:   req.AuthEmail,
	})
	if err != nil {
		s.Logger.Errorw("gateway create payment failed",
			"invoice_id", inv.ID,
			"invoice_number", inv.InvoiceNumber,
			"error", err,
		)
		return nil, err
	}

	p.PollURL = gwResp.PollURL
	p.RedirectURL = gwResp.RedirectURL
	p.GatewayHash = gwResp.Hash

	if err := s.PaymentRepo.Create(ctx, p); err != nil {
		// the unique guard fired: a concurrent initiation won the race
		if ierr.IsDuplicatePayment(err) || ierr.IsAlreadyExists(err) {
			return nil, ierr.WithError(err).
				WithHint("A payment for this invoice is already being processed").
				Mark(ierr.ErrDuplicatePayment)
		}
		return nil, err
	}

	s.recordAudit(ctx, &auditlog.AuditLog{
		TenantID:   p.TenantID,
		Action:     types.AuditActionPaymentInitiated,
		EntityType: types.AuditEntityPayment,
		EntityID:   p.ID,
		NewValues: map[string]any{
			"invoice_id":     p.InvoiceID,
			"invoice_number": inv.InvoiceNumber,
			"amount":         p.Amount.String(),
			"payment_method": p.PaymentMethod,
		},
	})

	return dto.NewPaymentResponse(p), nil
}

// VerifyPayment polls the gateway for the payment's current status
func (s *paymentService) VerifyPayment(ctx context.Context, paymentID string) (*dto.PaymentResponse, error) {
	p, err := s.PaymentRepo.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	// terminal payments never change; duplicate callbacks end here
	if p.IsTerminal() {
		return dto.NewPaymentResponse(p), nil
	}

	gwStatus, err := s.Gateway.PollPayment(ctx, p.PollURL)
	if err != nil {
		// a poll failure tells us nothing about the transaction; leave the
		// payment untouched and let the next poll decide
		s.Logger.Warnw("gateway poll failed",
			"payment_id", p.ID,
			"invoice_id", p.InvoiceID,
			"error", err,
		)
		return nil, err
	}

	switch gwStatus {
	case types.GatewayPaymentStatusPaid:
		return s.completePayment(ctx, p)
	case types.GatewayPaymentStatusFailed:
		return s.failPayment(ctx, p)
	default:
		// money is moving but not settled; advance PENDING -> PROCESSING once
		if p.PaymentStatus == types.PaymentStatusPending {
			p.PaymentStatus = types.PaymentStatusProcessing
			p.UpdatedAt = time.Now().UTC()
			if err := s.PaymentRepo.Update(ctx, p); err != nil {
				return nil, err
			}
		}
		return dto.NewPaymentResponse(p), nil
	}
}

// VerifyByReference verifies the payment for an invoice number
func (s *paymentService) VerifyByReference(ctx context.Context, invoiceNumber string) (*dto.PaymentResponse, error) {
	inv, err := s.InvoiceRepo.GetByInvoiceNumber(ctx, invoiceNumber)
	if err != nil {
		return nil, err
	}

	// Webhooks carry no tenant header; the invoice number is globally unique
	// and establishes the scope
	ctx = types.SetTenantID(ctx, inv.TenantID)

	p, err := s.PaymentRepo.GetActiveForInvoice(ctx, inv.ID)
	if ierr.IsNotFound(err) {
		// The callback raced or trailed local polling and the payment already
		// settled. Fall back to the most recent payment so the duplicate
		// delivery resolves to the terminal result instead of erroring.
		payments, listErr := s.PaymentRepo.ListByInvoice(ctx, inv.ID)
		if listErr != nil {
			return nil, listErr
		}
		if len(payments) == 0 {
			return nil, ierr.NewError("no payment found for invoice").
				WithHint("No payment has been initiated for this invoice").
				WithReportableDetails(map[string]any{
					"invoice_number": invoiceNumber,
				}).
				Mark(ierr.ErrNotFound)
		}
		p = payments[0]
	} else if err != nil {
		return nil, err
	}

	return s.VerifyPayment(ctx, p.ID)
}

// GetPayment gets a payment by ID
func (s *paymentService) GetPayment(ctx context.Context, id string) (*dto.PaymentResponse, error) {
	p, err := s.PaymentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewPaymentResponse(p), nil
}

func (s *paymentService) completePayment(ctx context.Context, p *payment.Payment) (*dto.PaymentResponse, error) {
	now := time.Now().UTC()
	oldStatus := p.PaymentStatus
	p.PaymentStatus = types.PaymentStatusPaid
	p.SucceededAt = &now
	p.UpdatedAt = now

	if err := s.PaymentRepo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, &auditlog.AuditLog{
		TenantID:   p.TenantID,
		Action:     types.AuditActionPaymentCompleted,
		EntityType: types.AuditEntityPayment,
		EntityID:   p.ID,
		OldValues:  map[string]any{"payment_status": oldStatus},
		NewValues:  map[string]any{"payment_status": types.PaymentStatusPaid, "succeeded_at": now},
	})

	if _, err := s.invoiceService.MarkPaid(ctx, p.InvoiceID, p); err != nil {
		return nil, err
	}

	return dto.NewPaymentResponse(p), nil
}

func (s *paymentService) failPayment(ctx context.Context, p *payment.Payment) (*dto.PaymentResponse, error) {
	now := time.Now().UTC()
	oldStatus := p.PaymentStatus
	p.PaymentStatus = types.PaymentStatusFailed
	p.FailedAt = &now
	p.UpdatedAt = now
	p.ErrorMessage = types.ToNillableString("gateway reported failure")

	if err := s.PaymentRepo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, &auditlog.AuditLog{
		TenantID:   p.TenantID,
		Action:     types.AuditActionPaymentFailed,
		EntityType: types.AuditEntityPayment,
		EntityID:   p.ID,
		OldValues:  map[string]any{"payment_status": oldStatus},
		NewValues:  map[string]any{"payment_status": types.PaymentStatusFailed, "failed_at": now},
	})

	return dto.NewPaymentResponse(p), nil
}
