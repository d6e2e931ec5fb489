package service

import (
	"testing"

	"github.com/fleetcore/fleetcore/internal/api/dto"
	"github.com/fleetcore/fleetcore/internal/domain/tenant"
	"github.com/fleetcore/fleetcore/internal/domain/user"
	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/fleetcore/fleetcore/internal/testutil"
	"github.com/fleetcore/fleetcore/internal/types"
	"github.com/stretchr/testify/suite"
)

type PlanServiceSuite struct {
	testutil.BaseServiceTestSuite
	service        PlanService
	paymentService PaymentService
	params         ServiceParams
	tenantID       string
}

func TestPlanService(t *testing.T) {
	suite.Run(t, new(PlanServiceSuite))
}

func (s *PlanServiceSuite) SetupTest() {
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
	s.service = NewPlanService(s.params)
	s.paymentService = NewPaymentService(s.params)
	s.tenantID = types.GetTenantID(s.GetContext())
}

func (s *PlanServiceSuite) seedTenant(plan types.SubscriptionPlan) {
	s.NoError(s.params.TenantRepo.Create(s.GetContext(), &tenant.Tenant{
		ID:            s.tenantID,
		Name:          "Harare Metro Fleet",
		Plan:          plan,
		AccountStatus: types.TenantAccountStatusActive,
		CreatedAt:     s.GetNow(),
		UpdatedAt:     s.GetNow(),
	}))
	s.NoError(s.params.UserRepo.Create(s.GetContext(), &user.User{
		ID:        s.GetUUID(),
		TenantID:  s.tenantID,
		Email:     "admin@fleet.test",
		Name:      "Fleet Admin",
		Role:      user.RoleAdmin,
		CreatedAt: s.GetNow(),
	}))
}

func (s *PlanServiceSuite) getTenant() *tenant.Tenant {
	t, err := s.params.TenantRepo.Get(s.GetContext(), s.tenantID)
	s.NoError(err)
	return t
}

func (s *PlanServiceSuite) TestUpgradeDefersActivationBehindInvoice() {
	s.seedTenant(types.SubscriptionPlanFree)

	resp, err := s.service.ChangePlan(s.GetContext(), s.tenantID, &dto.ChangePlanRequest{
		NewPlan: types.SubscriptionPlanPremium,
	})
	s.NoError(err)
	s.Equal(types.PlanChangeUpgrade, resp.ChangeType)
	s.True(resp.InvoiceCreated)
	s.Equal(types.SubscriptionPlanFree, resp.Plan)

	s.Require().NotNil(resp.Invoice)
	s.Equal(types.InvoiceTypeUpgrade, resp.Invoice.InvoiceType)
	s.Equal("99.99", resp.Invoice.Amount.String())
	s.Require().NotNil(resp.Invoice.SubscriptionPlan)
	s.Equal(types.SubscriptionPlanPremium, *resp.Invoice.SubscriptionPlan)

	// nothing changes on the tenant until the invoice is paid
	s.Equal(types.SubscriptionPlanFree, s.getTenant().Plan)

	s.Len(s.GetAuditStore().ByAction(types.AuditActionCreateUpgradeInvoice), 1)

	sent := s.GetEmailSender().UpgradeInvoices
	s.Require().Len(sent, 1)
	s.Equal("admin@fleet.test", sent[0].Recipient)
	s.Equal(resp.Invoice.InvoiceNumber, sent[0].Notice.InvoiceNumber)
}

func (s *PlanServiceSuite) TestUpgradeActivatesWhenInvoiceIsPaid() {
	s.seedTenant(types.SubscriptionPlanBasic)

	resp, err := s.service.ChangePlan(s.GetContext(), s.tenantID, &dto.ChangePlanRequest{
		NewPlan: types.SubscriptionPlanPremium,
	})
	s.NoError(err)
	s.Require().NotNil(resp.Invoice)

	p, err := s.paymentService.InitiatePayment(s.GetContext(), &dto.InitiatePaymentRequest{
		InvoiceID:     resp.Invoice.ID,
		PaymentMethod: types.PaymentMethodEcocash,
		PhoneNumber:   "0771234567",
	})
	s.NoError(err)

	s.GetGateway().PollStatus = types.GatewayPaymentStatusPaid
	verified, err := s.paymentService.VerifyPayment(s.GetContext(), p.ID)
	s.NoError(err)
	s.Equal(types.PaymentStatusPaid, verified.PaymentStatus)

	t := s.getTenant()
	s.Equal(types.SubscriptionPlanPremium, t.Plan)
	s.Equal("99.99", t.MonthlyRevenue.String())
}

func (s *PlanServiceSuite) TestUpgradeWithSkipInvoiceAppliesImmediately() {
	s.seedTenant(types.SubscriptionPlanFree)

	resp, err := s.service.ChangePlan(s.GetContext(), s.tenantID, &dto.ChangePlanRequest{
		NewPlan:     types.SubscriptionPlanBasic,
		SkipInvoice: true,
	})
	s.NoError(err)
	s.Equal(types.PlanChangeUpgrade, resp.ChangeType)
	s.False(resp.InvoiceCreated)
	s.Equal(types.SubscriptionPlanBasic, resp.Plan)

	t := s.getTenant()
	s.Equal(types.SubscriptionPlanBasic, t.Plan)
	s.Equal("29.99", t.MonthlyRevenue.String())
}

func (s *PlanServiceSuite) TestDowngradeAppliesImmediately() {
	s.seedTenant(types.SubscriptionPlanPremium)

	resp, err := s.service.ChangePlan(s.GetContext(), s.tenantID, &dto.ChangePlanRequest{
		NewPlan: types.SubscriptionPlanBasic,
	})
	s.NoError(err)
	s.Equal(types.PlanChangeDowngrade, resp.ChangeType)
	s.False(resp.InvoiceCreated)

	t := s.getTenant()
	s.Equal(types.SubscriptionPlanBasic, t.Plan)
	s.Equal("29.99", t.MonthlyRevenue.String())

	// losing features never issues an invoice
	s.Len(s.GetAuditStore().ByAction(types.AuditActionCreateUpgradeInvoice), 0)
	s.Len(s.GetAuditStore().ByAction(types.AuditActionUpdatePlan), 1)
}

func (s *PlanServiceSuite) TestDowngradeToFreeZeroesRevenue() {
	s.seedTenant(types.SubscriptionPlanPremium)

	_, err := s.service.ChangePlan(s.GetContext(), s.tenantID, &dto.ChangePlanRequest{
		NewPlan: types.SubscriptionPlanFree,
	})
	s.NoError(err)

	t := s.getTenant()
	s.Equal(types.SubscriptionPlanFree, t.Plan)
	s.True(t.MonthlyRevenue.IsZero())
}

func (s *PlanServiceSuite) TestSamePlanIsRejected() {
	s.seedTenant(types.SubscriptionPlanBasic)

	_, err := s.service.ChangePlan(s.GetContext(), s.tenantID, &dto.ChangePlanRequest{
		NewPlan: types.SubscriptionPlanBasic,
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *PlanServiceSuite) TestUnknownPlanIsRejected() {
	s.seedTenant(types.SubscriptionPlanBasic)

	_, err := s.service.ChangePlan(s.GetContext(), s.tenantID, &dto.ChangePlanRequest{
		NewPlan: types.SubscriptionPlan("PLATINUM"),
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *PlanServiceSuite) TestUpgradeEmailFailureDoesNotBlock() {
	s.seedTenant(types.SubscriptionPlanFree)
	s.GetEmailSender().Err = ierr.NewError("smtp down").Mark(ierr.ErrSystem)

	resp, err := s.service.ChangePlan(s.GetContext(), s.tenantID, &dto.ChangePlanRequest{
		NewPlan: types.SubscriptionPlanPremium,
	})
	s.NoError(err)
	s.True(resp.InvoiceCreated)
}
