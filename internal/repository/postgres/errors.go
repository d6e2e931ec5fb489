package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// Postgres constraint names the repositories key error translation on. They
// must match the migrations exactly.
const (
	constraintInvoiceNumber     = "idx_invoices_invoice_number"
	constraintOneInFlight       = "idx_payments_one_in_flight"
	constraintPaymentIdempotent = "idx_payments_idempotency_key"
)

// isUniqueViolation reports whether err is a postgres unique violation on the
// named constraint
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code.Name() == "unique_violation" && pqErr.Constraint == constraint
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
