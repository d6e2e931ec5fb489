package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/fleetcore/fleetcore/internal/domain/invoice"
	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/fleetcore/fleetcore/internal/logger"
	"github.com/fleetcore/fleetcore/internal/postgres"
	"github.com/fleetcore/fleetcore/internal/types"
)

type invoiceRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return &invoiceRepository{db: db, logger: logger}
}

func (r *invoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	query := `
	INSERT INTO invoices (
		id, invoice_number, invoice_type, invoice_status, amount, currency,
		description, due_date, paid_at, subscription_plan,
		tenant_id, status, created_at, updated_at, created_by, updated_by
	) VALUES (
		:id, :invoice_number, :invoice_type, :invoice_status, :amount, :currency,
		:description, :due_date, :paid_at, :subscription_plan,
		:tenant_id, :status, :created_at, :updated_at, :created_by, :updated_by
	)`

	_, err := r.db.NamedExecContext(ctx, query, inv)
	if err != nil {
		if isUniqueViolation(err, constraintInvoiceNumber) {
			return ierr.WithError(err).
				WithHintf("Invoice number %s is already taken", inv.InvoiceNumber).
				WithReportableDetails(map[string]any{
					"invoice_number": inv.InvoiceNumber,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create invoice").
			WithReportableDetails(map[string]any{"invoice_id": inv.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	query := `SELECT * FROM invoices WHERE id = $1 AND tenant_id = $2`

	var inv invoice.Invoice
	err := r.db.GetQuerier(ctx).GetContext(ctx, &inv, query, id, types.GetTenantID(ctx))
	if err != nil {
		if isNoRows(err) {
			return nil, ierr.WithError(err).
				WithHintf("Invoice with ID %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get invoice").
			Mark(ierr.ErrDatabase)
	}
	return &inv, nil
}

// GetByInvoiceNumber is unscoped since invoice numbers are globally unique
// and gateway webhooks arrive without a tenant context
func (r *invoiceRepository) GetByInvoiceNumber(ctx context.Context, number string) (*invoice.Invoice, error) {
	query := `SELECT * FROM invoices WHERE invoice_number = $1`

	var inv invoice.Invoice
	err := r.db.GetQuerier(ctx).GetContext(ctx, &inv, query, number)
	if err != nil {
		if isNoRows(err) {
			return nil, ierr.WithError(err).
				WithHintf("Invoice %s was not found", number).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get invoice by number").
			Mark(ierr.ErrDatabase)
	}
	return &inv, nil
}

func (r *invoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	inv.UpdatedAt = time.Now().UTC()

	query := `
	UPDATE invoices SET
		invoice_status = :invoice_status,
		description = :description,
		due_date = :due_date,
		paid_at = :paid_at,
		updated_at = :updated_at,
		updated_by = :updated_by
	WHERE id = :id AND tenant_id = :tenant_id`

	result, err := r.db.NamedExecContext(ctx, query, inv)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update invoice").
			WithReportableDetails(map[string]any{"invoice_id": inv.ID}).
			Mark(ierr.ErrDatabase)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	if rows == 0 {
		return ierr.NewError("invoice not found").
			WithHintf("Invoice with ID %s was not found", inv.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *invoiceRepository) List(ctx context.Context, filter *invoice.Filter) ([]*invoice.Invoice, error) {
	query := `SELECT * FROM invoices WHERE tenant_id = $1`
	args := []interface{}{types.GetTenantID(ctx)}

	query, args = applyInvoiceFilter(query, args, filter)
	query += ` ORDER BY created_at DESC`
	if filter != nil && filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	}

	var invoices []*invoice.Invoice
	if err := r.db.GetQuerier(ctx).SelectContext(ctx, &invoices, query, args...); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list invoices").
			Mark(ierr.ErrDatabase)
	}
	return invoices, nil
}

func (r *invoiceRepository) Count(ctx context.Context, filter *invoice.Filter) (int, error) {
	query := `SELECT COUNT(*) FROM invoices WHERE tenant_id = $1`
	args := []interface{}{types.GetTenantID(ctx)}

	query, args = applyInvoiceFilter(query, args, filter)

	var count int
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &count, query, args...); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count invoices").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

// MaxInvoiceSequence reads the global numbering high-water mark. Deliberately
// unscoped; see the repository contract.
func (r *invoiceRepository) MaxInvoiceSequence(ctx context.Context) (int64, error) {
	query := `
	SELECT COALESCE(MAX(CAST(SUBSTRING(invoice_number FROM 'INV-(\d+)') AS BIGINT)), 0)
	FROM invoices`

	var seq int64
	if err := r.db.GetQuerier(ctx).GetContext(ctx, &seq, query); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to read invoice sequence").
			Mark(ierr.ErrDatabase)
	}
	return seq, nil
}

func (r *invoiceRepository) ListPendingDueBefore(ctx context.Context, now time.Time) ([]*invoice.Invoice, error) {
	query := `
	SELECT * FROM invoices
	WHERE tenant_id = $1 AND invoice_status = $2 AND due_date <= $3
	ORDER BY due_date ASC`

	var invoices []*invoice.Invoice
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &invoices, query,
		types.GetTenantID(ctx), types.InvoiceStatusPending, now)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list past-due invoices").
			Mark(ierr.ErrDatabase)
	}
	return invoices, nil
}

func (r *invoiceRepository) ListOverdueForTenant(ctx context.Context, tenantID string, cutoff time.Time) ([]*invoice.Invoice, error) {
	query := `
	SELECT * FROM invoices
	WHERE tenant_id = $1 AND invoice_status = $2 AND due_date <= $3
	ORDER BY due_date ASC`

	var invoices []*invoice.Invoice
	err := r.db.GetQuerier(ctx).SelectContext(ctx, &invoices, query,
		tenantID, types.InvoiceStatusOverdue, cutoff)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list overdue invoices").
			Mark(ierr.ErrDatabase)
	}
	return invoices, nil
}

func applyInvoiceFilter(query string, args []interface{}, filter *invoice.Filter) (string, []interface{}) {
	if filter == nil {
		return query, args
	}
	if filter.InvoiceStatus != nil {
		args = append(args, *filter.InvoiceStatus)
		query += fmt.Sprintf(` AND invoice_status = $%d`, len(args))
	}
	if filter.InvoiceType != nil {
		args = append(args, *filter.InvoiceType)
		query += fmt.Sprintf(` AND invoice_type = $%d`, len(args))
	}
	return query, args
}
