package testutil

import (
	"context"
	"sync"

	"github.com/fleetcore/fleetcore/internal/email"
)

// SentSuspension records one SendAccountSuspended dispatch
type SentSuspension struct {
	Recipient string
	Notice    email.AccountSuspendedNotice
}

// SentUpgradeInvoice records one SendUpgradeInvoice dispatch
type SentUpgradeInvoice struct {
	Recipient string
	Notice    email.UpgradeInvoiceNotice
}

// MockEmailSender is a capturing email.Sender for service tests
type MockEmailSender struct {
	mu sync.Mutex

	// Err, when set, is returned from every Send call
	Err error

	Suspensions     []SentSuspension
	UpgradeInvoices []SentUpgradeInvoice
}

// NewMockEmailSender creates a capturing email sender
func NewMockEmailSender() *MockEmailSender {
	return &MockEmailSender{}
}

var _ email.Sender = (*MockEmailSender)(nil)

func (m *MockEmailSender) SendAccountSuspended(ctx context.Context, recipient string, notice email.AccountSuspendedNotice) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.Suspensions = append(m.Suspensions, SentSuspension{Recipient: recipient, Notice: notice})
	return nil
}

func (m *MockEmailSender) SendUpgradeInvoice(ctx context.Context, recipient string, notice email.UpgradeInvoiceNotice) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.UpgradeInvoices = append(m.UpgradeInvoices, SentUpgradeInvoice{Recipient: recipient, Notice: notice})
	return nil
}

// SentSuspensions returns a snapshot of recorded suspension dispatches
func (m *MockEmailSender) SentSuspensions() []SentSuspension {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentSuspension(nil), m.Suspensions...)
}

// Clear resets recorded dispatches
func (m *MockEmailSender) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = nil
	m.Suspensions = nil
	m.UpgradeInvoices = nil
}
