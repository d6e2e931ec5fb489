package service

import (
	"context"
	"testing"
	"time"

	"github.com/fleetcore/fleetcore/internal/domain/remittance"
	"github.com/fleetcore/fleetcore/internal/domain/vehicle"
	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/fleetcore/fleetcore/internal/testutil"
	"github.com/fleetcore/fleetcore/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type DueBalanceServiceSuite struct {
	testutil.BaseServiceTestSuite
	service DueBalanceService
	params  ServiceParams
	now     time.Time
}

func TestDueBalanceService(t *testing.T) {
	suite.Run(t, new(DueBalanceServiceSuite))
}

func (s *DueBalanceServiceSuite) SetupTest() {
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
	s.service = NewDueBalanceService(s.params)
	s.now = time.Date(2025, 3, 12, 14, 0, 0, 0, time.UTC)
}

func (s *DueBalanceServiceSuite) seedAssignment(driverID string, v *vehicle.Vehicle) {
	s.NoError(s.params.AssignmentRepo.Create(s.GetContext(), &vehicle.Assignment{
		ID:        s.GetUUID(),
		DriverID:  driverID,
		VehicleID: v.ID,
		StartDate: s.now.AddDate(0, -1, 0),
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}))
}

func (s *DueBalanceServiceSuite) seedVehicle(id string, cfg vehicle.PaymentConfig) *vehicle.Vehicle {
	v := &vehicle.Vehicle{
		ID:                 id,
		RegistrationNumber: "AEZ-" + id,
		PaymentModel:       types.VehiclePaymentModelDriverRemits,
		PaymentConfig:      cfg,
		BaseModel:          types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.params.VehicleRepo.Create(s.GetContext(), v))
	return v
}

func (s *DueBalanceServiceSuite) TestFeedSurfacesOutstandingBalances() {
	v := s.seedVehicle("veh_due", vehicle.PaymentConfig{
		Frequency:   types.BillingFrequencyWeekly,
		FixedAmount: decimal.RequireFromString("200"),
	})
	s.seedAssignment("drv_1", v)
	s.NoError(s.params.RemittanceRepo.Create(s.GetContext(), &remittance.Remittance{
		ID:               s.GetUUID(),
		DriverID:         "drv_1",
		VehicleID:        v.ID,
		Amount:           decimal.RequireFromString("150"),
		Date:             s.now,
		RemittanceStatus: types.RemittanceStatusApproved,
		BaseModel:        types.GetDefaultBaseModel(s.GetContext()),
	}))

	feed, err := s.service.GetFeed(s.GetContext(), s.now)
	s.NoError(err)
	s.Require().Len(feed.DueBalances, 1)

	item := feed.DueBalances[0]
	s.Equal("drv_1", item.DriverID)
	s.Equal("50", item.Remaining.String())
	s.False(item.Overdue)
	s.Equal(types.DueSeverityWarning, item.Severity)
}

func (s *DueBalanceServiceSuite) TestFeedOmitsSatisfiedAssignments() {
	v := s.seedVehicle("veh_ok", vehicle.PaymentConfig{
		Frequency:   types.BillingFrequencyWeekly,
		FixedAmount: decimal.RequireFromString("100"),
	})
	s.seedAssignment("drv_1", v)
	s.NoError(s.params.RemittanceRepo.Create(s.GetContext(), &remittance.Remittance{
		ID:               s.GetUUID(),
		DriverID:         "drv_1",
		VehicleID:        v.ID,
		Amount:           decimal.RequireFromString("100"),
		Date:             s.now,
		RemittanceStatus: types.RemittanceStatusApproved,
		BaseModel:        types.GetDefaultBaseModel(s.GetContext()),
	}))

	feed, err := s.service.GetFeed(s.GetContext(), s.now)
	s.NoError(err)
	s.Empty(feed.DueBalances)
}

func (s *DueBalanceServiceSuite) TestFeedSurfacesExpiringDocuments() {
	soon := s.now.AddDate(0, 0, 10)
	past := s.now.AddDate(0, 0, -5)
	farFuture := s.now.AddDate(1, 0, 0)

	v := s.seedVehicle("veh_docs", vehicle.PaymentConfig{})
	v.PaymentModel = types.VehiclePaymentModelOwnerPays
	v.LicenseExpiresAt = &soon
	v.InsuranceExpiresAt = &past
	s.NoError(s.params.VehicleRepo.Update(s.GetContext(), v))

	fresh := s.seedVehicle("veh_fresh", vehicle.PaymentConfig{})
	fresh.PaymentModel = types.VehiclePaymentModelOwnerPays
	fresh.LicenseExpiresAt = &farFuture
	s.NoError(s.params.VehicleRepo.Update(s.GetContext(), fresh))

	feed, err := s.service.GetFeed(s.GetContext(), s.now)
	s.NoError(err)
	s.Require().Len(feed.ExpiringDocuments, 2)

	bySeverity := map[types.DueSeverity]string{}
	for _, doc := range feed.ExpiringDocuments {
		s.Equal("veh_docs", doc.VehicleID)
		bySeverity[doc.Severity] = doc.DocumentType
	}
	// within the warning window is WARNING, already expired is CRITICAL
	s.Equal("LICENSE", bySeverity[types.DueSeverityWarning])
	s.Equal("INSURANCE", bySeverity[types.DueSeverityCritical])
}

func (s *DueBalanceServiceSuite) TestFeedRejectsMissingTenantScope() {
	_, err := s.service.GetFeed(context.Background(), s.now)
	s.Error(err)
	s.True(ierr.IsPermissionDenied(err))
}

func (s *DueBalanceServiceSuite) TestFeedIsCachedPerTenant() {
	v := s.seedVehicle("veh_cache", vehicle.PaymentConfig{
		Frequency:   types.BillingFrequencyWeekly,
		FixedAmount: decimal.RequireFromString("200"),
	})
	s.seedAssignment("drv_1", v)

	first, err := s.service.GetFeed(s.GetContext(), s.now)
	s.NoError(err)
	s.Require().Len(first.DueBalances, 1)

	// new data does not appear until the cache entry expires
	s.seedAssignment("drv_2", v)
	second, err := s.service.GetFeed(s.GetContext(), s.now.Add(time.Second))
	s.NoError(err)
	s.Len(second.DueBalances, 1)
	s.Equal(first.GeneratedAt, second.GeneratedAt)
}
