package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	intdb "daladala/internal/db"
	"daladala/internal/domain"

	"github.com/go-sql-driver/mysql"
)

const (
	mysqlDuplicateEntry   = 1062
	mysqlLockWaitTimeout  = 1205
	mysqlDeadlockDetected = 1213
)

// SQLStore runs the repositories against MySQL/InnoDB.
type SQLStore struct {
	DB        *sql.DB
	TxTimeout time.Duration
}

type sqlRepos struct {
	q intdb.DBTX
}

func (r sqlRepos) Trips() TripStore             { return TripRepository{DB: r.q} }
func (r sqlRepos) Seats() SeatStore             { return SeatRepository{DB: r.q} }
func (r sqlRepos) Bookings() BookingStore       { return BookingRepository{DB: r.q} }
func (r sqlRepos) Assignments() AssignmentStore { return SeatAssignmentRepository{DB: r.q} }

func (s SQLStore) Trips() TripStore             { return sqlRepos{q: s.DB}.Trips() }
func (s SQLStore) Seats() SeatStore             { return sqlRepos{q: s.DB}.Seats() }
func (s SQLStore) Bookings() BookingStore       { return sqlRepos{q: s.DB}.Bookings() }
func (s SQLStore) Assignments() AssignmentStore { return sqlRepos{q: s.DB}.Assignments() }

func (s SQLStore) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// WithinTx bounds the transaction by TxTimeout. Lock conflicts reported
// by InnoDB surface as conflicts for the caller to retry.
func (s SQLStore) WithinTx(ctx context.Context, fn func(Repos) error) error {
	if s.TxTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.TxTimeout)
		defer cancel()
	}
	err := intdb.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		return fn(sqlRepos{q: tx})
	})
	return translateMySQLError(err)
}

func translateMySQLError(err error) error {
	var myErr *mysql.MySQLError
	if err == nil || !errors.As(err, &myErr) {
		return err
	}
	switch myErr.Number {
	case mysqlDuplicateEntry:
		return domain.ConflictError{Kind: domain.KindSeatAlreadyReserved, Resource: "seat", Msg: "seat already reserved for an overlapping segment", Err: err}
	case mysqlLockWaitTimeout, mysqlDeadlockDetected:
		return domain.ConflictError{Resource: "seat", Msg: "concurrent reservation in progress, retry", Err: err}
	default:
		return err
	}
}
