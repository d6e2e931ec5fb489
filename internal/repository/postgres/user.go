package postgres

import (
	"context"

	"github.com/fleetcore/fleetcore/internal/domain/user"
	ierr "github.com/fleetcore/fleetcore/internal/errors"
	"github.com/fleetcore/fleetcore/internal/logger"
	"github.com/fleetcore/fleetcore/internal/postgres"
)

type userRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewUserRepository(db *postgres.DB, logger *logger.Logger) user.Repository {
	return &userRepository{db: db, logger: logger}
}

func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	query := `
	INSERT INTO users (id, tenant_id, email, name, role, created_at)
	VALUES (:id, :tenant_id, :email, :name, :role, :created_at)`

	_, err := r.db.NamedExecContext(ctx, query, u)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create user").
			WithReportableDetails(map[string]any{"user_id": u.ID}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, id string) (*user.User, error) {
	query := `SELECT * FROM users WHERE id = $1`

	var u user.User
	err := r.db.GetQuerier(ctx).GetContext(ctx, &u, query, id)
	if err != nil {
		if isNoRows(err) {
			return nil, ierr.WithError(err).
				WithHintf("User with ID %s was not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get user").
			Mark(ierr.ErrDatabase)
	}
	return &u, nil
}

func (r *userRepository) GetFirstAdmin(ctx context.Context, tenantID string) (*user.User, error) {
	query := `
	SELECT * FROM users
	WHERE tenant_id = $1 AND role = $2
	ORDER BY created_at ASC
	LIMIT 1`

	var u user.User
	err := r.db.GetQuerier(ctx).GetContext(ctx, &u, query, tenantID, user.RoleAdmin)
	if err != nil {
		if isNoRows(err) {
			return nil, ierr.WithError(err).
				WithHintf("Tenant %s has no admin user", tenantID).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get tenant admin").
			Mark(ierr.ErrDatabase)
	}
	return &u, nil
}
