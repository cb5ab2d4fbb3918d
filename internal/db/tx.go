package db

import (
	"context"
	"database/sql"
	"errors"

	"daladala/internal/domain"
	"daladala/internal/utils"
)

// WithTx runs fn inside a read-committed transaction. Any error from fn
// rolls the whole unit back; a panic rolls back and re-panics.
func WithTx(ctx context.Context, conn *sql.DB, fn func(*sql.Tx) error) (err error) {
	tx, err := conn.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return domain.InternalError{Msg: "begin tx", Err: err}
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			utils.Logger().WithError(rbErr).Warn("rollback failed")
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return domain.InternalError{Msg: "commit tx", Err: err}
	}
	return nil
}
