package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fleetcore/fleetcore/internal/types"
	"github.com/jmoiron/sqlx"
)

type txKey struct{}

// Tx wraps sqlx.Tx with an ID for query tracing
type Tx struct {
	*sqlx.Tx
	ID string
}

// TxFromContext retrieves a transaction from the context if one exists
func TxFromContext(ctx context.Context) (*Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*Tx)
	return tx, ok
}

// WithTx executes fn within a transaction. If the context already carries a
// transaction the function joins it; only the outermost call commits or
// rolls back.
func (db *DB) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := TxFromContext(ctx); ok {
		return fn(ctx)
	}

	sqlxTx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	tx := &Tx{Tx: sqlxTx, ID: types.GenerateUUID()}
	db.logger.Debugw("starting transaction", "tx_id", tx.ID)

	txCtx := context.WithValue(ctx, txKey{}, tx)

	defer func() {
		if r := recover(); r != nil {
			db.logger.Errorw("panic in transaction", "tx_id", tx.ID, "panic", r)
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("error rolling back transaction: %v (original error: %w)", rbErr, err)
		}
		db.logger.Debugw("rolled back transaction", "tx_id", tx.ID, "error", err)
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	db.logger.Debugw("committed transaction", "tx_id", tx.ID)
	return nil
}
