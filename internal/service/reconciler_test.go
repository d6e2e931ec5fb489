package service

import (
	"testing"
	"time"

	"github.com/fleetcore/fleetcore/internal/domain/invoice"
	"github.com/fleetcore/fleetcore/internal/domain/tenant"
	"github.com/fleetcore/fleetcore/internal/domain/user"
	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/fleetcore/fleetcore/internal/testutil"
	"github.com/fleetcore/fleetcore/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ReconcilerServiceSuite struct {
	testutil.BaseServiceTestSuite
	service ReconcilerService
	params  ServiceParams
}

func TestReconcilerService(t *testing.T) {
	suite.Run(t, new(ReconcilerServiceSuite))
}

func (s *ReconcilerServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	stores := s.GetStores()
	s.params = ServiceParams{
		Logger:         s.GetLogger(),
		Config:         s.GetConfig(),
		TenantRepo:     stores.TenantRepo,
		UserRepo:       stores.UserRepo,
		InvoiceRepo:    stores.InvoiceRepo,
		PaymentRepo:    stores.PaymentRepo,
		RemittanceRepo: stores.RemittanceRepo,
		VehicleRepo:    stores.VehicleRepo,
		AssignmentRepo: stores.AssignmentRepo,
		AuditLogRepo:   stores.AuditLogRepo,
		Gateway:        s.GetGateway(),
		EmailSender:    s.GetEmailSender(),
	}
	s.service = NewReconcilerService(s.params)
}

func (s *ReconcilerServiceSuite) seedTenant(id, name string, mutate func(*tenant.Tenant)) *tenant.Tenant {
	t := &tenant.Tenant{
		ID:            id,
		Name:          name,
		Plan:          types.SubscriptionPlanBasic,
		AccountStatus: types.TenantAccountStatusActive,
		CreatedAt:     s.GetNow(),
		UpdatedAt:     s.GetNow(),
	}
	if mutate != nil {
		mutate(t)
	}
	s.NoError(s.params.TenantRepo.Create(s.GetContext(), t))
	s.NoError(s.params.UserRepo.Create(s.GetContext(), &user.User{
		ID:        s.GetUUID(),
		TenantID:  id,
		Email:     "admin@" + id + ".test",
		Role:      user.RoleAdmin,
		CreatedAt: s.GetNow(),
	}))
	return t
}

func (s *ReconcilerServiceSuite) seedInvoice(tenantID string, status types.InvoiceStatus, dueDate time.Time, amount string) *invoice.Invoice {
	inv := &invoice.Invoice{
		ID:            s.GetUUID(),
		InvoiceNumber: types.FormatInvoiceNumber(s.nextSeq()),
		InvoiceType:   types.InvoiceTypeSubscription,
		InvoiceStatus: status,
		Amount:        decimal.RequireFromString(amount),
		Currency:      "USD",
		DueDate:       dueDate,
		BaseModel: types.BaseModel{
			TenantID:  tenantID,
			Status:    types.StatusActive,
			CreatedAt: s.GetNow(),
			UpdatedAt: s.GetNow(),
		},
	}
	s.NoError(s.params.InvoiceRepo.Create(types.SetTenantID(s.GetContext(), tenantID), inv))
	return inv
}

func (s *ReconcilerServiceSuite) nextSeq() int64 {
	seq, err := s.params.InvoiceRepo.MaxInvoiceSequence(s.GetContext())
	s.NoError(err)
	return seq + 1
}

func (s *ReconcilerServiceSuite) getTenant(id string) *tenant.Tenant {
	t, err := s.params.TenantRepo.Get(s.GetContext(), id)
	s.NoError(err)
	return t
}

func (s *ReconcilerServiceSuite) TestRunSuspendsExpiredSubscription() {
	yesterday := s.GetNow().AddDate(0, 0, -1)
	s.seedTenant("tn_expired", "Lapsed Fleet", func(t *tenant.Tenant) {
		t.SubscriptionEndsAt = &yesterday
	})

	resp, err := s.service.Run(s.GetContext(), s.GetNow())
	s.NoError(err)
	s.Equal(1, resp.TotalSuspended)
	s.Equal(1, resp.ExpiredSubscriptions)
	s.Empty(resp.Errors)

	t := s.getTenant("tn_expired")
	s.Equal(types.TenantAccountStatusSuspended, t.AccountStatus)
	s.Require().NotNil(t.SuspensionReason)
	s.Equal(types.SuspensionReasonSubscriptionExpired, *t.SuspensionReason)
	s.NotNil(t.SuspendedAt)

	entries := s.GetAuditStore().ByAction(types.AuditActionAutoSuspend)
	s.Require().Len(entries, 1)
	s.Equal(yesterday, entries[0].NewValues["expired_at"])

	sent := s.GetEmailSender().SentSuspensions()
	s.Require().Len(sent, 1)
	s.Equal("admin@tn_expired.test", sent[0].Recipient)
	s.Equal("Lapsed Fleet", sent[0].Notice.TenantName)
	s.Equal(types.SuspensionReasonSubscriptionExpired.String(), sent[0].Notice.Reason)
}

func (s *ReconcilerServiceSuite) TestRunSuspendsExpiredTrial() {
	lastWeek := s.GetNow().AddDate(0, 0, -7)
	s.seedTenant("tn_trial", "Trial Fleet", func(t *tenant.Tenant) {
		t.IsInTrial = true
		t.TrialEndsAt = &lastWeek
	})

	resp, err := s.service.Run(s.GetContext(), s.GetNow())
	s.NoError(err)
	s.Equal(1, resp.TotalSuspended)

	t := s.getTenant("tn_trial")
	s.Equal(types.TenantAccountStatusSuspended, t.AccountStatus)
	s.Equal(types.SuspensionReasonTrialExpired, *t.SuspensionReason)
}

func (s *ReconcilerServiceSuite) TestRunNeverSuspendsHealthyTenant() {
	// suspension safety: active, future end date, no overdue invoices
	nextMonth := s.GetNow().AddDate(0, 1, 0)
	s.seedTenant("tn_healthy", "Healthy Fleet", func(t *tenant.Tenant) {
		t.SubscriptionEndsAt = &nextMonth
	})
	s.seedInvoice("tn_healthy", types.InvoiceStatusPending, s.GetNow().AddDate(0, 0, 7), "29.99")

	resp, err := s.service.Run(s.GetContext(), s.GetNow())
	s.NoError(err)
	s.Equal(0, resp.TotalSuspended)
	s.Equal(0, resp.OverdueInvoices)

	s.Equal(types.TenantAccountStatusActive, s.getTenant("tn_healthy").AccountStatus)
	s.Empty(s.GetEmailSender().SentSuspensions())
}

func (s *ReconcilerServiceSuite) TestRunRollsPastDueInvoicesToOverdue() {
	nextMonth := s.GetNow().AddDate(0, 1, 0)
	s.seedTenant("tn_latepay", "Late Fleet", func(t *tenant.Tenant) {
		t.SubscriptionEndsAt = &nextMonth
	})
	inv := s.seedInvoice("tn_latepay", types.InvoiceStatusPending, s.GetNow().AddDate(0, 0, -2), "29.99")

	resp, err := s.service.Run(s.GetContext(), s.GetNow())
	s.NoError(err)
	s.Equal(1, resp.OverdueInvoices)
	// two days late is inside the grace window, no suspension yet
	s.Equal(0, resp.TotalSuspended)

	rolled, err := s.params.InvoiceRepo.Get(types.SetTenantID(s.GetContext(), "tn_latepay"), inv.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusOverdue, rolled.InvoiceStatus)
	s.Equal(types.TenantAccountStatusActive, s.getTenant("tn_latepay").AccountStatus)
}

func (s *ReconcilerServiceSuite) TestRunSuspendsTenantWithAgedOverdueInvoices() {
	nextMonth := s.GetNow().AddDate(0, 1, 0)
	s.seedTenant("tn_overdue", "Delinquent Fleet", func(t *tenant.Tenant) {
		t.SubscriptionEndsAt = &nextMonth
	})
	s.seedInvoice("tn_overdue", types.InvoiceStatusOverdue, s.GetNow().AddDate(0, 0, -40), "29.99")
	s.seedInvoice("tn_overdue", types.InvoiceStatusOverdue, s.GetNow().AddDate(0, 0, -70), "29.99")

	resp, err := s.service.Run(s.GetContext(), s.GetNow())
	s.NoError(err)
	s.Equal(1, resp.TotalSuspended)
	s.Equal(0, resp.ExpiredSubscriptions)

	t := s.getTenant("tn_overdue")
	s.Equal(types.TenantAccountStatusSuspended, t.AccountStatus)
	s.Equal(types.SuspensionReasonOverdueInvoices, *t.SuspensionReason)

	// the audit record is the durable explanation and carries the overdue
	// count and sum that triggered the suspension
	entries := s.GetAuditStore().ByAction(types.AuditActionAutoSuspend)
	s.Require().Len(entries, 1)
	s.Equal(2, entries[0].NewValues["overdue_count"])
	s.Equal("59.98", entries[0].NewValues["overdue_total"])

	// notification carries the count and sum of overdue invoices
	sent := s.GetEmailSender().SentSuspensions()
	s.Require().Len(sent, 1)
	s.Equal(2, sent[0].Notice.OverdueCount)
	s.Equal("59.98", sent[0].Notice.OverdueTotal.String())
}

func (s *ReconcilerServiceSuite) TestRunFreshOverdueInvoiceDoesNotSuspend() {
	nextMonth := s.GetNow().AddDate(0, 1, 0)
	s.seedTenant("tn_fresh", "Recently Late Fleet", func(t *tenant.Tenant) {
		t.SubscriptionEndsAt = &nextMonth
	})
	s.seedInvoice("tn_fresh", types.InvoiceStatusOverdue, s.GetNow().AddDate(0, 0, -10), "29.99")

	resp, err := s.service.Run(s.GetContext(), s.GetNow())
	s.NoError(err)
	s.Equal(0, resp.TotalSuspended)
	s.Equal(types.TenantAccountStatusActive, s.getTenant("tn_fresh").AccountStatus)
}

func (s *ReconcilerServiceSuite) TestRunHandlesMultipleTenantsIndependently() {
	yesterday := s.GetNow().AddDate(0, 0, -1)
	nextMonth := s.GetNow().AddDate(0, 1, 0)

	s.seedTenant("tn_a", "Expired A", func(t *tenant.Tenant) {
		t.SubscriptionEndsAt = &yesterday
	})
	s.seedTenant("tn_b", "Healthy B", func(t *tenant.Tenant) {
		t.SubscriptionEndsAt = &nextMonth
	})
	s.seedTenant("tn_c", "Delinquent C", func(t *tenant.Tenant) {
		t.SubscriptionEndsAt = &nextMonth
	})
	s.seedInvoice("tn_c", types.InvoiceStatusOverdue, s.GetNow().AddDate(0, 0, -45), "99.99")

	resp, err := s.service.Run(s.GetContext(), s.GetNow())
	s.NoError(err)
	s.Equal(2, resp.TotalSuspended)
	s.Equal(1, resp.ExpiredSubscriptions)
	s.Empty(resp.Errors)

	s.Equal(types.TenantAccountStatusSuspended, s.getTenant("tn_a").AccountStatus)
	s.Equal(types.TenantAccountStatusActive, s.getTenant("tn_b").AccountStatus)
	s.Equal(types.TenantAccountStatusSuspended, s.getTenant("tn_c").AccountStatus)
	s.Len(s.GetEmailSender().SentSuspensions(), 2)
}

func (s *ReconcilerServiceSuite) TestRunIsIdempotentAcrossRuns() {
	yesterday := s.GetNow().AddDate(0, 0, -1)
	s.seedTenant("tn_once", "Once Fleet", func(t *tenant.Tenant) {
		t.SubscriptionEndsAt = &yesterday
	})

	first, err := s.service.Run(s.GetContext(), s.GetNow())
	s.NoError(err)
	s.Equal(1, first.TotalSuspended)

	// already-suspended tenants are not swept again
	second, err := s.service.Run(s.GetContext(), s.GetNow())
	s.NoError(err)
	s.Equal(0, second.TotalSuspended)
	s.Len(s.GetAuditStore().ByAction(types.AuditActionAutoSuspend), 1)
}

func (s *ReconcilerServiceSuite) TestRunRejectsConcurrentInvocation() {
	svc := s.service.(*reconcilerService)
	svc.running.Store(true)

	_, err := s.service.Run(s.GetContext(), s.GetNow())
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))

	svc.running.Store(false)
	_, err = s.service.Run(s.GetContext(), s.GetNow())
	s.NoError(err)
}

func (s *ReconcilerServiceSuite) TestRunMissingAdminOnlySkipsNotification() {
	yesterday := s.GetNow().AddDate(0, 0, -1)
	t := &tenant.Tenant{
		ID:                 "tn_noadmin",
		Name:               "Headless Fleet",
		Plan:               types.SubscriptionPlanBasic,
		AccountStatus:      types.TenantAccountStatusActive,
		SubscriptionEndsAt: &yesterday,
		CreatedAt:          s.GetNow(),
		UpdatedAt:          s.GetNow(),
	}
	s.NoError(s.params.TenantRepo.Create(s.GetContext(), t))

	resp, err := s.service.Run(s.GetContext(), s.GetNow())
	s.NoError(err)
	s.Equal(1, resp.TotalSuspended)
	s.Empty(resp.Errors)
	s.Empty(s.GetEmailSender().SentSuspensions())

	s.Equal(types.TenantAccountStatusSuspended, s.getTenant("tn_noadmin").AccountStatus)
}
