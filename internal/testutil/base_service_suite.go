package testutil

import (
	"context"
	"time"

	"github.com/fleetcore/fleetcore/internal/config"
	"github.com/fleetcore/fleetcore/internal/domain/auditlog"
	"github.com/fleetcore/fleetcore/internal/domain/invoice"
	"github.com/fleetcore/fleetcore/internal/domain/payment"
	"github.com/fleetcore/fleetcore/internal/domain/remittance"
	"github.com/fleetcore/fleetcore/internal/domain/tenant"
	"github.com/fleetcore/fleetcore/internal/domain/user"
	"github.com/fleetcore/fleetcore/internal/domain/vehicle"
	"github.com/fleetcore/fleetcore/internal/logger"
	"github.com/fleetcore/fleetcore/internal/types"
	"github.com/fleetcore/fleetcore/internal/validator"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	TenantRepo     tenant.Repository
	UserRepo       user.Repository
	InvoiceRepo    invoice.Repository
	PaymentRepo    payment.Repository
	RemittanceRepo remittance.Repository
	VehicleRepo    vehicle.Repository
	AssignmentRepo vehicle.AssignmentRepository
	AuditLogRepo   auditlog.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	stores Stores
	// auditStore keeps the concrete type so tests can inspect entries by action
	auditStore  *InMemoryAuditLogStore
	gateway     *MockGateway
	emailSender *MockEmailSender
	logger      *logger.Logger
	config      *config.Configuration
	now         time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	var err error
	s.logger, err = logger.NewLogger()
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
	s.config = config.GetDefaultConfig()
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.auditStore = NewInMemoryAuditLogStore()
	s.stores = Stores{
		TenantRepo:     NewInMemoryTenantStore(),
		UserRepo:       NewInMemoryUserStore(),
		InvoiceRepo:    NewInMemoryInvoiceStore(),
		PaymentRepo:    NewInMemoryPaymentStore(),
		RemittanceRepo: NewInMemoryRemittanceStore(),
		VehicleRepo:    NewInMemoryVehicleStore(),
		AssignmentRepo: NewInMemoryAssignmentStore(),
		AuditLogRepo:   s.auditStore,
	}
	s.gateway = NewMockGateway()
	s.emailSender = NewMockEmailSender()
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.TenantRepo.(*InMemoryTenantStore).Clear()
	s.stores.UserRepo.(*InMemoryUserStore).Clear()
	s.stores.InvoiceRepo.(*InMemoryInvoiceStore).Clear()
	s.stores.PaymentRepo.(*InMemoryPaymentStore).Clear()
	s.stores.RemittanceRepo.(*InMemoryRemittanceStore).Clear()
	s.stores.VehicleRepo.(*InMemoryVehicleStore).Clear()
	s.stores.AssignmentRepo.(*InMemoryAssignmentStore).Clear()
	s.auditStore.Clear()
	s.gateway.Clear()
	s.emailSender.Clear()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetStores returns the test stores
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetAuditStore returns the concrete audit store for assertions
func (s *BaseServiceTestSuite) GetAuditStore() *InMemoryAuditLogStore {
	return s.auditStore
}

// GetGateway returns the mock payment gateway
func (s *BaseServiceTestSuite) GetGateway() *MockGateway {
	return s.gateway
}

// GetEmailSender returns the capturing email sender
func (s *BaseServiceTestSuite) GetEmailSender() *MockEmailSender {
	return s.emailSender
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}

// GetUUID returns a new UUID for testing
func (s *BaseServiceTestSuite) GetUUID() string {
	return types.GenerateUUID()
}
