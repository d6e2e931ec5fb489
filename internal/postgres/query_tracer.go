package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/fleetcore/fleetcore/internal/logger"
	"github.com/jmoiron/sqlx"
)

// tracedQuerier wraps a Querier and logs query durations and failures
type tracedQuerier struct {
	Querier
	logger *logger.Logger
	txID   string
}

func newTracedQuerier(q Querier, logger *logger.Logger, txID string) *tracedQuerier {
	return &tracedQuerier{Querier: q, logger: logger, txID: txID}
}

func (tq *tracedQuerier) trace(query string, start time.Time, err error) {
	fields := []interface{}{
		"duration_ms", time.Since(start).Milliseconds(),
		"query", query,
	}
	if tq.txID != "" {
		fields = append(fields, "tx_id", tq.txID)
	}
	if err != nil && err != sql.ErrNoRows {
		fields = append(fields, "error", err.Error())
		tq.logger.Errorw("database query failed", fields...)
		return
	}
	tq.logger.Debugw("database query completed", fields...)
}

func (tq *tracedQuerier) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	result, err := tq.Querier.ExecContext(ctx, query, args...)
	tq.trace(query, start, err)
	return result, err
}

func (tq *tracedQuerier) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	start := time.Now()
	err := tq.Querier.GetContext(ctx, dest, query, args...)
	tq.trace(query, start, err)
	return err
}

func (tq *tracedQuerier) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	start := time.Now()
	err := tq.Querier.SelectContext(ctx, dest, query, args...)
	tq.trace(query, start, err)
	return err
}

func (tq *tracedQuerier) NamedExec(query string, arg interface{}) (sql.Result, error) {
	start := time.Now()
	result, err := tq.Querier.NamedExec(query, arg)
	tq.trace(query, start, err)
	return result, err
}

func (tq *tracedQuerier) NamedQuery(query string, arg interface{}) (*sqlx.Rows, error) {
	start := time.Now()
	rows, err := tq.Querier.NamedQuery(query, arg)
	tq.trace(query, start, err)
	return rows, err
}
