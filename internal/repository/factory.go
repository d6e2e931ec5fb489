package repository

import (
	"github.com/fleetcore/fleetcore/internal/domain/auditlog"
	"github.com/fleetcore/fleetcore/internal/domain/invoice"
	"github.com/fleetcore/fleetcore/internal/domain/payment"
	"github.com/fleetcore/fleetcore/internal/domain/remittance"
	"github.com/fleetcore/fleetcore/internal/domain/tenant"
	"github.com/fleetcore/fleetcore/internal/domain/user"
	"github.com/fleetcore/fleetcore/internal/domain/vehicle"
	"github.com/fleetcore/fleetcore/internal/logger"
	"github.com/fleetcore/fleetcore/internal/postgres"
	postgresRepo "github.com/fleetcore/fleetcore/internal/repository/postgres"
)

func NewTenantRepository(db *postgres.DB, logger *logger.Logger) tenant.Repository {
	return postgresRepo.NewTenantRepository(db, logger)
}

func NewUserRepository(db *postgres.DB, logger *logger.Logger) user.Repository {
	return postgresRepo.NewUserRepository(db, logger)
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return postgresRepo.NewInvoiceRepository(db, logger)
}

func NewPaymentRepository(db *postgres.DB, logger *logger.Logger) payment.Repository {
	return postgresRepo.NewPaymentRepository(db, logger)
}

func NewRemittanceRepository(db *postgres.DB, logger *logger.Logger) remittance.Repository {
	return postgresRepo.NewRemittanceRepository(db, logger)
}

func NewVehicleRepository(db *postgres.DB, logger *logger.Logger) vehicle.Repository {
	return postgresRepo.NewVehicleRepository(db, logger)
}

func NewAssignmentRepository(db *postgres.DB, logger *logger.Logger) vehicle.AssignmentRepository {
	return postgresRepo.NewAssignmentRepository(db, logger)
}

func NewAuditLogRepository(db *postgres.DB, logger *logger.Logger) auditlog.Repository {
	return postgresRepo.NewAuditLogRepository(db, logger)
}
