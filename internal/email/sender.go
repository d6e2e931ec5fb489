package email

import (
	"context"
	"time"

	"github.com/fleetcore/fleetcore/internal/logger"
	"github.com/shopspring/decimal"
)

// AccountSuspendedNotice carries the facts the suspension email template
// needs. Template storage and HTML rendering live in the delivery service,
// not here.
type AccountSuspendedNotice struct {
	TenantName   string
	Reason       string
	SuspendedAt  time.Time
	OverdueCount int
	OverdueTotal decimal.Decimal
}

// UpgradeInvoiceNotice announces a freshly issued upgrade invoice
type UpgradeInvoiceNotice struct {
	TenantName    string
	InvoiceNumber string
	Plan          string
	Amount        decimal.Decimal
	Currency      string
	DueDate       time.Time
}

// Sender dispatches billing notifications. All call sites are
// fire-and-forget: a delivery failure is logged and never blocks the
// business transition that triggered it.
type Sender interface {
	SendAccountSuspended(ctx context.Context, recipient string, notice AccountSuspendedNotice) error
	SendUpgradeInvoice(ctx context.Context, recipient string, notice UpgradeInvoiceNotice) error
}

// LogSender is the default Sender: it records the dispatch and hands off to
// logs. Real delivery goes through the platform's email service, which is an
// external collaborator of the billing core.
type LogSender struct {
	log *logger.Logger
}

// NewLogSender creates a logging email sender
func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

var _ Sender = (*LogSender)(nil)

func (s *LogSender) SendAccountSuspended(ctx context.Context, recipient string, notice AccountSuspendedNotice) error {
	s.log.Infow("dispatching account suspended email",
		"recipient", recipient,
		"tenant_name", notice.TenantName,
		"reason", notice.Reason,
		"suspended_at", notice.SuspendedAt,
		"overdue_count", notice.OverdueCount,
		"overdue_total", notice.OverdueTotal,
	)
	return nil
}

func (s *LogSender) SendUpgradeInvoice(ctx context.Context, recipient string, notice UpgradeInvoiceNotice) error {
	s.log.Infow("dispatching upgrade invoice email",
		"recipient", recipient,
		"invoice_number", notice.InvoiceNumber,
		"plan", notice.Plan,
		"amount", notice.Amount,
		"due_date", notice.DueDate,
	)
	return nil
}
