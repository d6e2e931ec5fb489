package service

import (
	"github.com/fleetcore/fleetcore/internal/config"
	"github.com/fleetcore/fleetcore/internal/domain/auditlog"
	"github.com/fleetcore/fleetcore/internal/domain/invoice"
	"github.com/fleetcore/fleetcore/internal/domain/payment"
	"github.com/fleetcore/fleetcore/internal/domain/remittance"
	"github.com/fleetcore/fleetcore/internal/domain/tenant"
	"github.com/fleetcore/fleetcore/internal/domain/user"
	"github.com/fleetcore/fleetcore/internal/domain/vehicle"
	"github.com/fleetcore/fleetcore/internal/email"
	"github.com/fleetcore/fleetcore/internal/gateway"
	"github.com/fleetcore/fleetcore/internal/logger"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration

	// Repositories
	TenantRepo     tenant.Repository
	UserRepo       user.Repository
	InvoiceRepo    invoice.Repository
	PaymentRepo    payment.Repository
	RemittanceRepo remittance.Repository
	VehicleRepo    vehicle.Repository
	AssignmentRepo vehicle.AssignmentRepository
	AuditLogRepo   auditlog.Repository

	// External collaborators
	Gateway     gateway.Provider
	EmailSender email.Sender
}

// NewServiceParams bundles the dependency graph for constructor injection
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	tenantRepo tenant.Repository,
	userRepo user.Repository,
	invoiceRepo invoice.Repository,
	paymentRepo payment.Repository,
	remittanceRepo remittance.Repository,
	vehicleRepo vehicle.Repository,
	assignmentRepo vehicle.AssignmentRepository,
	auditLogRepo auditlog.Repository,
	gateway gateway.Provider,
	emailSender email.Sender,
) ServiceParams {
	return ServiceParams{
		Logger:         logger,
		Config:         config,
		TenantRepo:     tenantRepo,
		UserRepo:       userRepo,
		InvoiceRepo:    invoiceRepo,
		PaymentRepo:    paymentRepo,
		RemittanceRepo: remittanceRepo,
		VehicleRepo:    vehicleRepo,
		AssignmentRepo: assignmentRepo,
		AuditLogRepo:   auditLogRepo,
		Gateway:        gateway,
		EmailSender:    emailSender,
	}
}
