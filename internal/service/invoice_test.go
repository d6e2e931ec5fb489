package service

import (
	"context"
	"testing"

	"github.com/fleetcore/fleetcore/internal/api/dto"
	"github.com/fleetcore/fleetcore/internal/domain/invoice"
	"github.com/fleetcore/fleetcore/internal/domain/payment"
	"github.com/fleetcore/fleetcore/internal/domain/tenant"
	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/fleetcore/fleetcore/internal/testutil"
	"github.com/fleetcore/fleetcore/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type InvoiceServiceSuite struct {
	testutil.BaseServiceTestSuite
	service InvoiceService
	params  ServiceParams
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceSuite))
}

func (s *InvoiceServiceSuite) SetupTest() {
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
	s.service = NewInvoiceService(s.params)
}

func (s *InvoiceServiceSuite) seedTenant(plan types.SubscriptionPlan) *tenant.Tenant {
	t := &tenant.Tenant{
		ID:            types.GetTenantID(s.GetContext()),
		Name:          "Harare Metro Fleet",
		Plan:          plan,
		AccountStatus: types.TenantAccountStatusActive,
		CreatedAt:     s.GetNow(),
		UpdatedAt:     s.GetNow(),
	}
	s.NoError(s.params.TenantRepo.Create(s.GetContext(), t))
	return t
}

func (s *InvoiceServiceSuite) createInvoice(amount string) *dto.InvoiceResponse {
	resp, err := s.service.CreateInvoice(s.GetContext(), &dto.CreateInvoiceRequest{
		Description: "Monthly subscription",
		Amount:      decimal.RequireFromString(amount),
		Currency:    "USD",
		InvoiceType: types.InvoiceTypeSubscription,
		DueDate:     s.GetNow().AddDate(0, 0, 7),
	})
	s.NoError(err)
	s.NotNil(resp)
	return resp
}

func (s *InvoiceServiceSuite) TestCreateInvoiceStartsNumberingAtOne() {
	resp := s.createInvoice("29.99")

	s.Equal("INV-000001", resp.InvoiceNumber)
	s.Equal(types.InvoiceStatusPending, resp.InvoiceStatus)
	s.Equal("29.99", resp.Amount.String())
}

func (s *InvoiceServiceSuite) TestCreateInvoiceNumbersAreSequential() {
	first := s.createInvoice("10.00")
	second := s.createInvoice("20.00")
	third := s.createInvoice("30.00")

	s.Equal("INV-000001", first.InvoiceNumber)
	s.Equal("INV-000002", second.InvoiceNumber)
	s.Equal("INV-000003", third.InvoiceNumber)
}

func (s *InvoiceServiceSuite) TestCreateInvoiceResumesAfterHighestNumber() {
	// numbers continue past existing rows rather than filling gaps
	existing := &invoice.Invoice{
		ID:            s.GetUUID(),
		InvoiceNumber: types.FormatInvoiceNumber(41),
		InvoiceType:   types.InvoiceTypeSubscription,
		InvoiceStatus: types.InvoiceStatusPaid,
		Amount:        decimal.RequireFromString("29.99"),
		Currency:      "USD",
		DueDate:       s.GetNow(),
		BaseModel:     types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.params.InvoiceRepo.Create(s.GetContext(), existing))

	resp := s.createInvoice("15.00")
	s.Equal("INV-000042", resp.InvoiceNumber)
}

func (s *InvoiceServiceSuite) TestCreateInvoiceRejectsNonPositiveAmount() {
	_, err := s.service.CreateInvoice(s.GetContext(), &dto.CreateInvoiceRequest{
		Description: "bad",
		Amount:      decimal.Zero,
		Currency:    "USD",
		InvoiceType: types.InvoiceTypeSubscription,
		DueDate:     s.GetNow().AddDate(0, 0, 7),
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *InvoiceServiceSuite) TestCreateInvoiceRejectsMissingTenantScope() {
	_, err := s.service.CreateInvoice(context.Background(), &dto.CreateInvoiceRequest{
		Description: "unscoped",
		Amount:      decimal.RequireFromString("29.99"),
		Currency:    "USD",
		InvoiceType: types.InvoiceTypeSubscription,
		DueDate:     s.GetNow().AddDate(0, 0, 7),
	})
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))
}

func (s *InvoiceServiceSuite) TestCreateInvoiceRecordsAudit() {
	resp := s.createInvoice("29.99")

	entries := s.GetAuditStore().ByAction(types.AuditActionInvoiceCreated)
	s.Len(entries, 1)
	s.Equal(resp.ID, entries[0].EntityID)
	s.Equal(types.AuditEntityInvoice, entries[0].EntityType)
}

func (s *InvoiceServiceSuite) TestCancelInvoice() {
	resp := s.createInvoice("29.99")

	canceled, err := s.service.CancelInvoice(s.GetContext(), resp.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusCanceled, canceled.InvoiceStatus)
}

func (s *InvoiceServiceSuite) TestCancelPaidInvoiceFails() {
	resp := s.createInvoice("29.99")
	_, err := s.service.MarkPaid(s.GetContext(), resp.ID, nil)
	s.NoError(err)

	_, err = s.service.CancelInvoice(s.GetContext(), resp.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *InvoiceServiceSuite) TestMarkOverdueRequiresPastDueDate() {
	resp := s.createInvoice("29.99")

	_, err := s.service.MarkOverdue(s.GetContext(), resp.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *InvoiceServiceSuite) TestMarkOverdueRollsPendingInvoice() {
	resp, err := s.service.CreateInvoice(s.GetContext(), &dto.CreateInvoiceRequest{
		Description: "past due",
		Amount:      decimal.RequireFromString("29.99"),
		Currency:    "USD",
		InvoiceType: types.InvoiceTypeSubscription,
		DueDate:     s.GetNow().AddDate(0, 0, -3),
	})
	s.NoError(err)

	inv, err := s.service.MarkOverdue(s.GetContext(), resp.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusOverdue, inv.InvoiceStatus)

	// never reverses PAID
	_, err = s.service.MarkPaid(s.GetContext(), resp.ID, nil)
	s.NoError(err)
	_, err = s.service.MarkOverdue(s.GetContext(), resp.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *InvoiceServiceSuite) TestMarkPaidIsIdempotent() {
	resp := s.createInvoice("29.99")

	first, err := s.service.MarkPaid(s.GetContext(), resp.ID, nil)
	s.NoError(err)
	s.Equal(types.InvoiceStatusPaid, first.InvoiceStatus)
	s.NotNil(first.PaidAt)

	// a duplicate verification callback must be a harmless no-op
	second, err := s.service.MarkPaid(s.GetContext(), resp.ID, nil)
	s.NoError(err)
	s.Equal(types.InvoiceStatusPaid, second.InvoiceStatus)
	s.Equal(first.PaidAt.Unix(), second.PaidAt.Unix())

	entries := s.GetAuditStore().ByAction(types.AuditActionInvoicePaid)
	s.Len(entries, 1)
}

func (s *InvoiceServiceSuite) TestMarkPaidCanceledInvoiceFails() {
	resp := s.createInvoice("29.99")
	_, err := s.service.CancelInvoice(s.GetContext(), resp.ID)
	s.NoError(err)

	_, err = s.service.MarkPaid(s.GetContext(), resp.ID, nil)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *InvoiceServiceSuite) TestMarkPaidRecordsPaymentReference() {
	resp := s.createInvoice("29.99")
	p := &payment.Payment{ID: "pay_test"}

	_, err := s.service.MarkPaid(s.GetContext(), resp.ID, p)
	s.NoError(err)

	entries := s.GetAuditStore().ByAction(types.AuditActionInvoicePaid)
	s.Len(entries, 1)
	s.Equal("pay_test", entries[0].NewValues["payment_id"])
}

func (s *InvoiceServiceSuite) TestMarkPaidUpgradeInvoiceActivatesPlan() {
	s.seedTenant(types.SubscriptionPlanFree)

	newPlan := types.SubscriptionPlanPremium
	resp, err := s.service.CreateInvoice(s.GetContext(), &dto.CreateInvoiceRequest{
		Description:      "Plan upgrade to PREMIUM",
		Amount:           decimal.RequireFromString("99.99"),
		Currency:         "USD",
		InvoiceType:      types.InvoiceTypeUpgrade,
		DueDate:          s.GetNow().AddDate(0, 0, 7),
		SubscriptionPlan: &newPlan,
	})
	s.NoError(err)

	_, err = s.service.MarkPaid(s.GetContext(), resp.ID, nil)
	s.NoError(err)

	t, err := s.params.TenantRepo.Get(s.GetContext(), types.GetTenantID(s.GetContext()))
	s.NoError(err)
	s.Equal(types.SubscriptionPlanPremium, t.Plan)
	s.Equal("99.99", t.MonthlyRevenue.String())

	entries := s.GetAuditStore().ByAction(types.AuditActionUpdatePlan)
	s.Len(entries, 1)
}

func (s *InvoiceServiceSuite) TestUpgradeInvoiceRequiresTargetPlan() {
	_, err := s.service.CreateInvoice(s.GetContext(), &dto.CreateInvoiceRequest{
		Description: "upgrade without plan",
		Amount:      decimal.RequireFromString("99.99"),
		Currency:    "USD",
		InvoiceType: types.InvoiceTypeUpgrade,
		DueDate:     s.GetNow().AddDate(0, 0, 7),
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *InvoiceServiceSuite) TestListInvoicesFiltersByStatus() {
	s.createInvoice("10.00")
	paid := s.createInvoice("20.00")
	_, err := s.service.MarkPaid(s.GetContext(), paid.ID, nil)
	s.NoError(err)

	status := types.InvoiceStatusPending
	list, err := s.service.ListInvoices(s.GetContext(), &invoice.Filter{InvoiceStatus: &status})
	s.NoError(err)
	s.Equal(1, list.Total)
	s.Len(list.Items, 1)
	s.Equal(types.InvoiceStatusPending, list.Items[0].InvoiceStatus)
}

func (s *InvoiceServiceSuite) TestGetInvoiceNotFound() {
	_, err := s.service.GetInvoice(s.GetContext(), "inv_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}
