package postgres

import (
	"context"
	"time"

	"github.com/fleetcore/fleetcore/internal/domain/payment"
	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/fleetcore/fleetcore/internal/logger"
	"github.com/fleetcore/fleetcore/internal/postgres"
	"github.com/fleetcore/fleetcore/internal/types"
)

type paymentRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPaymentRepository(db *postgres.DB, logger *logger.Logger) payment.Repository {
	return &paymentRepository{db: db, logger: logger}
}

// Create relies on the partial unique index over non-terminal rows to enforce
// the one-in-flight-payment-per-invoice invariant under concurrency
func (r *paymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	query := `
	INSERT INTO payments (
		id, idempotency_key, invoice_id, amount, currency,
		payment_method, payment_status, phone_number,
		poll_url, redirect_url, gateway_hash,
		error_message, succeeded_at, failed_at,
		tenant_id, status, created_at, updated_at, created_by, updated_by
	) VALUES (
		:id, :idempotency_key, :invoice_id, :amount, :currency,
		:payment_method, :payment_status, :phone_number,
		:poll_url, :redirect_url, :gateway_hash,
		:error_message, :succeeded_at, :failed_at,
		:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
	)`

	_, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		if isUniqueViolation(err, constraintOneInFlight) {
			return ierr.WithError(err).
				WithHint("A payment for this invoice is already in progress").
				WithReportableDetails(map[string]any{
					"invoice_id": p.InvoiceID,
					"payment_id": p.ID,
				}).
				Mark(ierr.ErrDuplicatePayment)
		}
		if isUniqueViolation(err, constraintPaymentIdempotent) {
			return ierr.WithError(err).
				WithHint("This payment request was already processed").
				WithReportableDetails(map[string]any{
					"idempotency_key": p.IdempotencyKey,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create payment").
			WithReportableDetails(map[string]any{"payment_id": p.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *paymentRepository) Get(ctx context.Context, id string) (*payment.Payment, error) {
	query := `SELECT * FROM payments WHERE id = $1 AND tenant_id = $2`

	var p payment.Payment
	err := r.db.GetQuerier(ctx).GetContext(ctx, &p, query, id, types.GetTenantID(ctx))
	if err != nil {
		if isNoRows(err) {
			return nil, ierr.WithError(err).
				WithHintf("Payment with ID %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get payment").
			Mark(ierr.ErrDatabase)
	}
	return &p, nil
}

func (r *paymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	p.UpdatedAt = time.Now().UTC()

	query := `
	UPDATE payments SET
		payment_status = :payment_status,
		poll_url = :poll_url,
		redirect_url = :redirect_url,
		gateway_hash = :gateway_hash,
		error_message = :error_message,
		succeeded_at = :succeeded_at,
		failed_at = :failed_at,
		updated_at = :updated_at,
		updated_by = :updated_by
	WHERE id = :id AND tenant_id = :tenant_id`

	result, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update payment").
			WithReportableDetails(map[string]any{"payment_id": p.ID}).
			Mark(ierr.ErrDatabase)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return ierr.NewError("payment not found").
			WithHintf("Payment with ID %s was not found", p.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *paymentRepository) ListByInvoice(ctx context.Context, invoiceID string) ([]*payment.Payment, error) {
	query := `
	SELECT * FROM payments
	WHERE invoice_id = $1 AND tenant_id = $2
	ORDER BY created_at DESC`

	var payments []*payment.Payment
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &payments, query, invoiceID, types.GetTenantID(ctx))
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list payments").
			Mark(ierr.ErrDatabase)
	}
	return payments, nil
}

func (r *paymentRepository) GetActiveForInvoice(ctx context.Context, invoiceID string) (*payment.Payment, error) {
	query := `
	SELECT * FROM payments
	WHERE invoice_id = $1 AND tenant_id = $2
	  AND payment_status IN ($3, $4)
	LIMIT 1`

	var p payment.Payment
	err := r.db.GetQuerier(ctx).GetContext(ctx, &p, query,
		invoiceID, types.GetTenantID(ctx),
		types.PaymentStatusPending, types.PaymentStatusProcessing)
	if err != nil {
		if isNoRows(err) {
			return nil, ierr.WithError(err).
				WithHintf("Invoice %s has no payment in progress", invoiceID).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get in-flight payment").
			Mark(ierr.ErrDatabase)
	}
	return &p, nil
}
