package repositories

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"daladala/internal/domain"
	"daladala/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return SQLStore{DB: db, TxTimeout: time.Second}, mock
}

var bookingRowColumns = []string{
	"id", "user_id", "trip_id", "pickup_stop_id", "dropoff_stop_id", "passenger_count",
	"travel_date", "status", "payment_status", "total_amount", "seat_numbers", "created_at", "updated_at",
}

func TestSQLStoreWithinTxCommits(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM bookings WHERE id = ? LIMIT 1 FOR UPDATE")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(bookingRowColumns).
			AddRow(5, 100, 9, 1, 4, 2, "2026-10-19", "pending", "unpaid", 3000, "", now, now))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET status = ?")).
		WithArgs(models.BookingConfirmed, sqlmock.AnyArg(), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.WithinTx(context.Background(), func(r Repos) error {
		b, err := r.Bookings().LockByID(context.Background(), 5)
		if err != nil {
			return err
		}
		require.Equal(t, domain.StopID(4), b.DropoffStopID)
		require.Equal(t, models.BookingPending, b.Status)
		return r.Bookings().UpdateStatus(context.Background(), b.ID, models.BookingConfirmed)
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreTranslatesDuplicateEntry(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO seat_assignments")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	err := store.WithinTx(context.Background(), func(r Repos) error {
		_, err := r.Assignments().Insert(context.Background(), &models.SeatAssignment{
			SeatID: 1, BookingID: 2, TripID: 3, TravelDate: "2026-10-19", PickupStopID: 1, DropoffStopID: 2, IsOccupied: true,
		})
		return err
	})
	require.Equal(t, domain.KindSeatAlreadyReserved, domain.KindOf(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreTranslatesLockConflicts(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM seats WHERE vehicle_id = ? ORDER BY id ASC FOR UPDATE")).
		WithArgs(int64(3)).
		WillReturnError(&mysql.MySQLError{Number: 1213, Message: "Deadlock found"})
	mock.ExpectRollback()

	err := store.WithinTx(context.Background(), func(r Repos) error {
		_, err := r.Seats().LockByVehicle(context.Background(), 3)
		return err
	})
	require.Equal(t, domain.KindConflict, domain.KindOf(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreRollsBackDomainErrors(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	want := domain.SeatAlreadyReserved(9, "3")
	err := store.WithinTx(context.Background(), func(Repos) error { return want })
	require.Equal(t, want, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTripRepositoryNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM trips t")).
		WithArgs(int64(42)).
		WillReturnError(sql.ErrNoRows)

	_, err := store.Trips().GetByID(context.Background(), 42)
	require.True(t, domain.IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatRepositoryLockByNumbers(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("seat_number IN (?,?) ORDER BY id ASC FOR UPDATE")).
		WithArgs(int64(3), "1", "2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "vehicle_id", "seat_number", "seat_type", "is_available"}).
			AddRow(11, 3, "1", "standard", true).
			AddRow(12, 3, "2", "standard", false))

	seats, err := store.Seats().LockByNumbers(context.Background(), 3, []string{"1", "2"})
	require.NoError(t, err)
	require.Len(t, seats, 2)
	require.False(t, seats[1].IsAvailable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatAssignmentMarkAlightedReportsRepeat(t *testing.T) {
	store, mock := newMockStore(t)
	at := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("WHERE id = ? AND alighted_at IS NULL AND is_occupied = 1")).
		WithArgs(at, int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := store.Assignments().MarkAlighted(context.Background(), 8, at)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatAssignmentListOccupiedScansTimestamps(t *testing.T) {
	store, mock := newMockStore(t)
	boarded := time.Date(2026, 10, 19, 6, 40, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE sa.trip_id = ? AND sa.travel_date = ? AND sa.is_occupied = 1")).
		WithArgs(int64(9), "2026-10-19").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "seat_id", "seat_number", "booking_id", "trip_id", "travel_date", "pickup_stop_id",
			"dropoff_stop_id", "passenger_name", "is_occupied", "boarded_at", "alighted_at", "created_at",
		}).AddRow(1, 11, "1", 5, 9, "2026-10-19", 1, 4, "Asha", true, boarded, nil, boarded))

	rows, err := store.Assignments().ListOccupied(context.Background(), 9, "2026-10-19")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].BoardedAt)
	require.Nil(t, rows[0].AlightedAt)
	require.Equal(t, "1", rows[0].SeatNumber)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingUpdateSeatNumbersMissingRow(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE bookings SET seat_numbers = ?")).
		WithArgs(nil, sqlmock.AnyArg(), int64(77)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Bookings().UpdateSeatNumbers(context.Background(), 77, "")
	require.True(t, domain.IsNotFound(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingCreateReturnsInsertID(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bookings")).
		WillReturnResult(sqlmock.NewResult(31, 1))

	b := models.Booking{UserID: 1, TripID: 9, PickupStopID: 1, DropoffStopID: 2, PassengerCount: 1, TravelDate: "2026-10-19", Status: models.BookingPending}
	id, err := store.Bookings().Create(context.Background(), &b)
	require.NoError(t, err)
	require.Equal(t, int64(31), id)
	require.False(t, b.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTranslateMySQLErrorPassesOtherErrors(t *testing.T) {
	plain := errors.New("boom")
	require.Equal(t, plain, translateMySQLError(plain))
	require.Nil(t, translateMySQLError(nil))
}

func TestSQLStoreBeginFailureIsInternal(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	called := false
	err := store.WithinTx(context.Background(), func(Repos) error {
		called = true
		return nil
	})
	require.Error(t, err)
	require.False(t, called)
	require.Equal(t, domain.KindInternal, domain.KindOf(err))
	var internal domain.InternalError
	require.ErrorAs(t, err, &internal)
	require.Equal(t, "begin tx", internal.Msg)
}
