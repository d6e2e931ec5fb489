package dto

// ReconcilerRunResponse is the summary a reconciliation run returns. Errors
// holds per-tenant failure messages; a non-empty list does not mean the run
// failed, only that some tenants were skipped.
type ReconcilerRunResponse struct {
	TotalSuspended       int      `json:"total_suspended"`
	ExpiredSubscriptions int      `json:"expired_subscriptions"`
	OverdueInvoices      int      `json:"overdue_invoices"`
	Errors               []string `json:"errors"`
}
