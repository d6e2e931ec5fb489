package service

import (
	"testing"
	"time"

	"github.com/fleetcore/fleetcore/internal/domain/remittance"
	"github.com/fleetcore/fleetcore/internal/domain/vehicle"
	"github.com/fleetcore/fleetcore/internal/testutil"
	"github.com/fleetcore/fleetcore/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type RemittanceServiceSuite struct {
	testutil.BaseServiceTestSuite
	service RemittanceService
	params  ServiceParams
	// midweek is a fixed Wednesday so weekly periods are stable
	midweek time.Time
}

func TestRemittanceService(t *testing.T) {
	suite.Run(t, new(RemittanceServiceSuite))
}

func (s *RemittanceServiceSuite) SetupTest() {
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
	s.service = NewRemittanceService(s.params)
	s.midweek = time.Date(2025, 3, 12, 14, 0, 0, 0, time.UTC)
}

func (s *RemittanceServiceSuite) seedVehicle(id string, model types.VehiclePaymentModel, cfg vehicle.PaymentConfig) *vehicle.Vehicle {
	v := &vehicle.Vehicle{
		ID:                 id,
		RegistrationNumber: "AEZ-" + id,
		PaymentModel:       model,
		PaymentConfig:      cfg,
		BaseModel:          types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.params.VehicleRepo.Create(s.GetContext(), v))
	return v
}

func (s *RemittanceServiceSuite) seedRemittance(driverID, vehicleID, amount string, date time.Time, status types.RemittanceStatus) {
	s.NoError(s.params.RemittanceRepo.Create(s.GetContext(), &remittance.Remittance{
		ID:               s.GetUUID(),
		DriverID:         driverID,
		VehicleID:        vehicleID,
		Amount:           decimal.RequireFromString(amount),
		Date:             date,
		RemittanceStatus: status,
		BaseModel:        types.GetDefaultBaseModel(s.GetContext()),
	}))
}

func (s *RemittanceServiceSuite) weeklyPeriod() types.Period {
	return types.CalculatePeriod(types.BillingFrequencyWeekly, s.midweek)
}

func (s *RemittanceServiceSuite) TestOwnerPaysVehicleHasNoTarget() {
	v := s.seedVehicle("veh_owner", types.VehiclePaymentModelOwnerPays, vehicle.PaymentConfig{})

	result, err := s.service.ComputeRemainingBalance(s.GetContext(), "drv_1", v, s.weeklyPeriod(), s.midweek)
	s.NoError(err)
	s.Nil(result)
}

func (s *RemittanceServiceSuite) TestUnconfiguredTargetIsNotDue() {
	v := s.seedVehicle("veh_zero", types.VehiclePaymentModelDriverRemits, vehicle.PaymentConfig{
		Frequency:   types.BillingFrequencyWeekly,
		FixedAmount: decimal.Zero,
	})

	result, err := s.service.ComputeRemainingBalance(s.GetContext(), "drv_1", v, s.weeklyPeriod(), s.midweek)
	s.NoError(err)
	s.Nil(result)
}

func (s *RemittanceServiceSuite) TestDriverRemitsFlatTarget() {
	v := s.seedVehicle("veh_flat", types.VehiclePaymentModelDriverRemits, vehicle.PaymentConfig{
		Frequency:   types.BillingFrequencyWeekly,
		FixedAmount: decimal.RequireFromString("200"),
	})
	s.seedRemittance("drv_1", v.ID, "80", s.midweek.AddDate(0, 0, -1), types.RemittanceStatusApproved)
	s.seedRemittance("drv_1", v.ID, "70", s.midweek, types.RemittanceStatusApproved)

	result, err := s.service.ComputeRemainingBalance(s.GetContext(), "drv_1", v, s.weeklyPeriod(), s.midweek)
	s.NoError(err)
	s.Require().NotNil(result)
	s.Equal("200", result.FullTarget.String())
	s.Equal("150", result.Remitted.String())
	s.Equal("50", result.Remaining.String())
	s.True(result.Due)
	// the week is still open, so the balance is due but not yet overdue
	s.False(result.Overdue)
}

func (s *RemittanceServiceSuite) TestDriverRemitsPercentageOnlyTarget() {
	// no flat amount configured; 15% of expected 2000 = 300
	v := s.seedVehicle("veh_pct", types.VehiclePaymentModelDriverRemits, vehicle.PaymentConfig{
		Frequency:       types.BillingFrequencyWeekly,
		RevenuePercent:  decimal.RequireFromString("0.15"),
		ExpectedRevenue: decimal.RequireFromString("2000"),
	})
	s.seedRemittance("drv_1", v.ID, "100", s.midweek, types.RemittanceStatusApproved)

	result, err := s.service.ComputeRemainingBalance(s.GetContext(), "drv_1", v, s.weeklyPeriod(), s.midweek)
	s.NoError(err)
	s.Require().NotNil(result)
	s.Equal("300", result.FullTarget.String())
	s.Equal("200", result.Remaining.String())
	s.True(result.Due)
}

func (s *RemittanceServiceSuite) TestHybridTargetAddsRevenueShare() {
	// fixed 100 plus 10% of expected 1000 = 200
	v := s.seedVehicle("veh_hybrid", types.VehiclePaymentModelHybrid, vehicle.PaymentConfig{
		Frequency:       types.BillingFrequencyWeekly,
		FixedAmount:     decimal.RequireFromString("100"),
		RevenuePercent:  decimal.RequireFromString("0.10"),
		ExpectedRevenue: decimal.RequireFromString("1000"),
	})
	s.seedRemittance("drv_1", v.ID, "150", s.midweek, types.RemittanceStatusApproved)

	result, err := s.service.ComputeRemainingBalance(s.GetContext(), "drv_1", v, s.weeklyPeriod(), s.midweek)
	s.NoError(err)
	s.Require().NotNil(result)
	s.Equal("200", result.FullTarget.String())
	s.Equal("50", result.Remaining.String())
	s.True(result.Due)
}

func (s *RemittanceServiceSuite) TestOnlyApprovedRemittancesCount() {
	v := s.seedVehicle("veh_status", types.VehiclePaymentModelDriverRemits, vehicle.PaymentConfig{
		Frequency:   types.BillingFrequencyWeekly,
		FixedAmount: decimal.RequireFromString("100"),
	})
	s.seedRemittance("drv_1", v.ID, "40", s.midweek, types.RemittanceStatusApproved)
	s.seedRemittance("drv_1", v.ID, "40", s.midweek, types.RemittanceStatusPending)
	s.seedRemittance("drv_1", v.ID, "40", s.midweek, types.RemittanceStatusRejected)

	result, err := s.service.ComputeRemainingBalance(s.GetContext(), "drv_1", v, s.weeklyPeriod(), s.midweek)
	s.NoError(err)
	s.Require().NotNil(result)
	s.Equal("40", result.Remitted.String())
	s.Equal("60", result.Remaining.String())
}

func (s *RemittanceServiceSuite) TestRemittancesOutsidePeriodAreIgnored() {
	v := s.seedVehicle("veh_window", types.VehiclePaymentModelDriverRemits, vehicle.PaymentConfig{
		Frequency:   types.BillingFrequencyWeekly,
		FixedAmount: decimal.RequireFromString("100"),
	})
	s.seedRemittance("drv_1", v.ID, "100", s.midweek.AddDate(0, 0, -8), types.RemittanceStatusApproved)

	result, err := s.service.ComputeRemainingBalance(s.GetContext(), "drv_1", v, s.weeklyPeriod(), s.midweek)
	s.NoError(err)
	s.Require().NotNil(result)
	s.Equal("0", result.Remitted.String())
	s.Equal("100", result.Remaining.String())
}

func (s *RemittanceServiceSuite) TestSatisfiedTargetIsNotDue() {
	v := s.seedVehicle("veh_paid", types.VehiclePaymentModelDriverRemits, vehicle.PaymentConfig{
		Frequency:   types.BillingFrequencyWeekly,
		FixedAmount: decimal.RequireFromString("100"),
	})
	s.seedRemittance("drv_1", v.ID, "120", s.midweek, types.RemittanceStatusApproved)

	result, err := s.service.ComputeRemainingBalance(s.GetContext(), "drv_1", v, s.weeklyPeriod(), s.midweek)
	s.NoError(err)
	s.Require().NotNil(result)
	// overpayment clamps to zero, never negative
	s.Equal("0", result.Remaining.String())
	s.False(result.Due)
	s.False(result.Overdue)
}

func (s *RemittanceServiceSuite) TestPastPeriodShortfallIsOverdue() {
	v := s.seedVehicle("veh_late", types.VehiclePaymentModelDriverRemits, vehicle.PaymentConfig{
		Frequency:   types.BillingFrequencyWeekly,
		FixedAmount: decimal.RequireFromString("200"),
	})
	lastWeek := types.CalculatePeriod(types.BillingFrequencyWeekly, s.midweek.AddDate(0, 0, -7))
	s.seedRemittance("drv_1", v.ID, "150", s.midweek.AddDate(0, 0, -7), types.RemittanceStatusApproved)

	result, err := s.service.ComputeRemainingBalance(s.GetContext(), "drv_1", v, lastWeek, s.midweek)
	s.NoError(err)
	s.Require().NotNil(result)
	s.Equal("50", result.Remaining.String())
	s.True(result.Due)
	s.True(result.Overdue)
}

func (s *RemittanceServiceSuite) TestBatchMatchesPerAssignmentResults() {
	flat := s.seedVehicle("veh_b1", types.VehiclePaymentModelDriverRemits, vehicle.PaymentConfig{
		Frequency:   types.BillingFrequencyWeekly,
		FixedAmount: decimal.RequireFromString("200"),
	})
	hybrid := s.seedVehicle("veh_b2", types.VehiclePaymentModelHybrid, vehicle.PaymentConfig{
		Frequency:       types.BillingFrequencyDaily,
		FixedAmount:     decimal.RequireFromString("20"),
		RevenuePercent:  decimal.RequireFromString("0.05"),
		ExpectedRevenue: decimal.RequireFromString("400"),
	})
	owner := s.seedVehicle("veh_b3", types.VehiclePaymentModelOwnerPays, vehicle.PaymentConfig{})

	s.seedRemittance("drv_1", flat.ID, "120", s.midweek, types.RemittanceStatusApproved)
	s.seedRemittance("drv_2", hybrid.ID, "15", s.midweek, types.RemittanceStatusApproved)

	assignments := []*vehicle.Assignment{
		{ID: "asgn_1", DriverID: "drv_1", VehicleID: flat.ID, StartDate: s.midweek.AddDate(0, -1, 0)},
		{ID: "asgn_2", DriverID: "drv_2", VehicleID: hybrid.ID, StartDate: s.midweek.AddDate(0, -1, 0)},
		{ID: "asgn_3", DriverID: "drv_3", VehicleID: owner.ID, StartDate: s.midweek.AddDate(0, -1, 0)},
	}

	batch, err := s.service.ComputeRemainingBalances(s.GetContext(), assignments, s.midweek)
	s.NoError(err)
	// the OWNER_PAYS assignment contributes nothing
	s.Require().Len(batch, 2)

	for _, got := range batch {
		v, err := s.params.VehicleRepo.Get(s.GetContext(), got.VehicleID)
		s.NoError(err)
		period := types.CalculatePeriod(v.PaymentConfig.Frequency, s.midweek)

		want, err := s.service.ComputeRemainingBalance(s.GetContext(), got.DriverID, v, period, s.midweek)
		s.NoError(err)
		s.Require().NotNil(want)
		s.Equal(want.FullTarget.String(), got.FullTarget.String())
		s.Equal(want.Remitted.String(), got.Remitted.String())
		s.Equal(want.Remaining.String(), got.Remaining.String())
		s.Equal(want.Due, got.Due)
		s.Equal(want.Overdue, got.Overdue)
		s.Equal(want.Period, got.Period)
	}
}

func (s *RemittanceServiceSuite) TestBatchIssuesSingleBulkQuery() {
	v := s.seedVehicle("veh_single", types.VehiclePaymentModelDriverRemits, vehicle.PaymentConfig{
		Frequency:   types.BillingFrequencyWeekly,
		FixedAmount: decimal.RequireFromString("100"),
	})
	assignments := []*vehicle.Assignment{
		{ID: "asgn_1", DriverID: "drv_1", VehicleID: v.ID, StartDate: s.midweek.AddDate(0, -1, 0)},
	}

	batch, err := s.service.ComputeRemainingBalances(s.GetContext(), assignments, s.midweek)
	s.NoError(err)
	s.Require().Len(batch, 1)
	s.Equal("100", batch[0].Remaining.String())
	s.True(batch[0].Due)
}
