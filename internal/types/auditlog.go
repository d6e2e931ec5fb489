package types

// AuditAction names a recorded state transition. The audit log is the
// append-only history and the only source of truth for "why did this
// status change".
type AuditAction string

const (
	AuditActionInvoiceCreated       AuditAction = "INVOICE_CREATED"
	AuditActionInvoiceCanceled      AuditAction = "INVOICE_CANCELED"
	AuditActionInvoiceOverdue       AuditAction = "INVOICE_OVERDUE"
	AuditActionInvoicePaid          AuditAction = "INVOICE_PAID"
	AuditActionPaymentInitiated     AuditAction = "PAYMENT_INITIATED"
	AuditActionPaymentCompleted     AuditAction = "PAYMENT_COMPLETED"
	AuditActionPaymentFailed        AuditAction = "PAYMENT_FAILED"
	AuditActionCreateUpgradeInvoice AuditAction = "CREATE_UPGRADE_INVOICE"
	AuditActionUpdatePlan           AuditAction = "UPDATE_PLAN"
	AuditActionAutoSuspend          AuditAction = "AUTO_SUSPEND"
)

// AuditEntityType identifies the entity class an audit record refers to
type AuditEntityType string

const (
	AuditEntityInvoice AuditEntityType = "INVOICE"
	AuditEntityPayment AuditEntityType = "PAYMENT"
	AuditEntityTenant  AuditEntityType = "TENANT"
)
