package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	intdb "daladala/internal/db"
	"daladala/internal/domain"
	"daladala/internal/domain/models"
)

type BookingRepository struct {
	DB intdb.DBTX
}

const bookingColumns = `
	id, user_id, trip_id, pickup_stop_id, dropoff_stop_id, passenger_count,
	DATE_FORMAT(travel_date, '%Y-%m-%d'), status, COALESCE(payment_status, ''),
	COALESCE(total_amount, 0), COALESCE(seat_numbers, ''), created_at, updated_at`

func (r BookingRepository) Create(ctx context.Context, b *models.Booking) (int64, error) {
	now := time.Now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO bookings (user_id, trip_id, pickup_stop_id, dropoff_stop_id, passenger_count,
			travel_date, status, payment_status, total_amount, seat_numbers, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		b.UserID, b.TripID, b.PickupStopID, b.DropoffStopID, b.PassengerCount,
		b.TravelDate, b.Status, b.PaymentStatus, b.TotalAmount, intdb.NullIfEmpty(b.SeatNumbers),
		b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create booking: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return id, nil
}

func (r BookingRepository) GetByID(ctx context.Context, id int64) (models.Booking, error) {
	return r.get(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ? LIMIT 1`, id)
}

// LockByID loads the booking and holds its row lock until the
// transaction ends.
func (r BookingRepository) LockByID(ctx context.Context, id int64) (models.Booking, error) {
	return r.get(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ? LIMIT 1 FOR UPDATE`, id)
}

func (r BookingRepository) get(ctx context.Context, query string, id int64) (models.Booking, error) {
	if id <= 0 {
		return models.Booking{}, domain.ValidationError{Field: "booking_id", Msg: "invalid id"}
	}
	var b models.Booking
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.UserID, &b.TripID, &b.PickupStopID, &b.DropoffStopID, &b.PassengerCount,
		&b.TravelDate, &b.Status, &b.PaymentStatus, &b.TotalAmount, &b.SeatNumbers,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Booking{}, domain.NotFoundError{Resource: "booking", ID: id, Err: err}
	}
	if err != nil {
		return models.Booking{}, fmt.Errorf("failed to load booking %d: %w", id, err)
	}
	return b, nil
}

func (r BookingRepository) UpdateStatus(ctx context.Context, id int64, status models.BookingStatus) error {
	return r.exec(ctx, id, `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`, status, time.Now(), id)
}

func (r BookingRepository) UpdateSeatNumbers(ctx context.Context, id int64, summary string) error {
	return r.exec(ctx, id, `UPDATE bookings SET seat_numbers = ?, updated_at = ? WHERE id = ?`,
		intdb.NullIfEmpty(summary), time.Now(), id)
}

// CompleteByTrip marks every confirmed or in-progress booking of the
// trip date completed.
func (r BookingRepository) CompleteByTrip(ctx context.Context, tripID int64, travelDate string) (int, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE bookings SET status = ?, updated_at = ?
		WHERE trip_id = ? AND travel_date = ? AND status IN (?, ?)
	`, models.BookingCompleted, time.Now(), tripID, travelDate, models.BookingConfirmed, models.BookingInProgress)
	if err != nil {
		return 0, fmt.Errorf("failed to complete bookings: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(n), nil
}

// CancelPendingByTrip cancels the bookings of the trip date that were
// never confirmed and clears their seat summary.
func (r BookingRepository) CancelPendingByTrip(ctx context.Context, tripID int64, travelDate string) (int, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE bookings SET status = ?, seat_numbers = NULL, updated_at = ?
		WHERE trip_id = ? AND travel_date = ? AND status = ?
	`, models.BookingCancelled, time.Now(), tripID, travelDate, models.BookingPending)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel pending bookings: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(n), nil
}

func (r BookingRepository) exec(ctx context.Context, id int64, query string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update booking %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return domain.NotFoundError{Resource: "booking", ID: id}
	}
	return nil
}
