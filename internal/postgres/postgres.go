package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/fleetcore/fleetcore/internal/config"
	"github.com/fleetcore/fleetcore/internal/logger"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// DB wraps sqlx.DB to provide transaction management. Repositories never
// touch the raw pool directly; they go through GetQuerier so that a
// transaction started higher up the call stack is picked up transparently.
type DB struct {
	*sqlx.DB
	logger *logger.Logger
}

// Querier defines the database operations repositories depend on.
// Both *sqlx.DB and *sqlx.Tx implement these methods.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	NamedExec(query string, arg interface{}) (sql.Result, error)
	NamedQuery(query string, arg interface{}) (*sqlx.Rows, error)
}

// NewDB connects to postgres and configures the connection pool
func NewDB(cfg *config.Configuration, logger *logger.Logger) (*DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Postgres.GetDSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Postgres.ConnMaxLifetimeMinutes) * time.Minute)

	return &DB{DB: db, logger: logger}, nil
}

// Close closes the database connection
func (db *DB) Close() {
	if err := db.DB.Close(); err != nil {
		db.logger.Errorw("closing database", "error", err)
	}
}

// GetQuerier returns the transaction from context if present, else the base DB
func (db *DB) GetQuerier(ctx context.Context) Querier {
	if tx, ok := TxFromContext(ctx); ok {
		return newTracedQuerier(tx.Tx, db.logger, tx.ID)
	}
	return newTracedQuerier(db.DB, db.logger, "")
}

// NamedExecContext runs a named exec against the context's querier
func (db *DB) NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error) {
	return db.GetQuerier(ctx).NamedExec(query, arg)
}

// NamedQueryContext runs a named query against the context's querier
func (db *DB) NamedQueryContext(ctx context.Context, query string, arg interface{}) (*sqlx.Rows, error) {
	return db.GetQuerier(ctx).NamedQuery(query, arg)
}
