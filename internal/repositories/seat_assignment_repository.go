package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	intdb "daladala/internal/db"
	"daladala/internal/domain"
	"daladala/internal/domain/models"
)

type SeatAssignmentRepository struct {
	DB intdb.DBTX
}

const assignmentSelect = `
	SELECT sa.id, sa.seat_id, s.seat_number, sa.booking_id, sa.trip_id,
		DATE_FORMAT(sa.travel_date, '%Y-%m-%d'), sa.pickup_stop_id, sa.dropoff_stop_id,
		COALESCE(sa.passenger_name, ''), sa.is_occupied, sa.boarded_at, sa.alighted_at, sa.created_at
	FROM seat_assignments sa
	JOIN seats s ON s.id = sa.seat_id`

func (r SeatAssignmentRepository) GetByID(ctx context.Context, id int64) (models.SeatAssignment, error) {
	if id <= 0 {
		return models.SeatAssignment{}, domain.ValidationError{Field: "assignment_id", Msg: "invalid id"}
	}
	rows, err := r.list(ctx, assignmentSelect+` WHERE sa.id = ? LIMIT 1`, id)
	if err != nil {
		return models.SeatAssignment{}, err
	}
	if len(rows) == 0 {
		return models.SeatAssignment{}, domain.NotFoundError{Resource: "seat_assignment", ID: id, Err: sql.ErrNoRows}
	}
	return rows[0], nil
}

func (r SeatAssignmentRepository) ListOccupied(ctx context.Context, tripID int64, travelDate string) ([]models.SeatAssignment, error) {
	return r.list(ctx, assignmentSelect+`
		WHERE sa.trip_id = ? AND sa.travel_date = ? AND sa.is_occupied = 1
		ORDER BY sa.seat_id ASC, sa.id ASC`, tripID, travelDate)
}

// LockOccupiedBySeats re-reads occupied rows for the given seats under
// lock. Callers must already hold the seat row locks.
func (r SeatAssignmentRepository) LockOccupiedBySeats(ctx context.Context, tripID int64, travelDate string, seatIDs []int64) ([]models.SeatAssignment, error) {
	if len(seatIDs) == 0 {
		return []models.SeatAssignment{}, nil
	}
	args := []any{tripID, travelDate}
	for _, id := range seatIDs {
		args = append(args, id)
	}
	return r.list(ctx, assignmentSelect+`
		WHERE sa.trip_id = ? AND sa.travel_date = ? AND sa.is_occupied = 1
		  AND sa.seat_id IN (`+intdb.Placeholders(len(seatIDs))+`)
		ORDER BY sa.seat_id ASC, sa.id ASC
		FOR UPDATE`, args...)
}

func (r SeatAssignmentRepository) ListByBooking(ctx context.Context, bookingID int64) ([]models.SeatAssignment, error) {
	return r.list(ctx, assignmentSelect+` WHERE sa.booking_id = ? ORDER BY sa.id ASC`, bookingID)
}

func (r SeatAssignmentRepository) Insert(ctx context.Context, a *models.SeatAssignment) (int64, error) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO seat_assignments (seat_id, booking_id, trip_id, travel_date, pickup_stop_id,
			dropoff_stop_id, passenger_name, is_occupied, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		a.SeatID, a.BookingID, a.TripID, a.TravelDate, a.PickupStopID,
		a.DropoffStopID, intdb.NullIfEmpty(a.PassengerName), a.IsOccupied, a.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert seat assignment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return id, nil
}

// MarkBoarded sets boarded_at once. It reports false when the row was
// already boarded or released.
func (r SeatAssignmentRepository) MarkBoarded(ctx context.Context, id int64, at time.Time) (bool, error) {
	return r.update(ctx, `
		UPDATE seat_assignments SET boarded_at = ?
		WHERE id = ? AND boarded_at IS NULL AND is_occupied = 1`, at, id)
}

// MarkAlighted releases the seat once. It reports false when the row was
// already released.
func (r SeatAssignmentRepository) MarkAlighted(ctx context.Context, id int64, at time.Time) (bool, error) {
	return r.update(ctx, `
		UPDATE seat_assignments SET alighted_at = ?, is_occupied = 0
		WHERE id = ? AND alighted_at IS NULL AND is_occupied = 1`, at, id)
}

func (r SeatAssignmentRepository) ReleaseByBooking(ctx context.Context, bookingID int64, at time.Time) (int, error) {
	return r.release(ctx, `
		UPDATE seat_assignments SET is_occupied = 0, alighted_at = COALESCE(alighted_at, ?)
		WHERE booking_id = ? AND is_occupied = 1`, at, bookingID)
}

func (r SeatAssignmentRepository) ReleaseByTrip(ctx context.Context, tripID int64, travelDate string, at time.Time) (int, error) {
	return r.release(ctx, `
		UPDATE seat_assignments SET is_occupied = 0, alighted_at = COALESCE(alighted_at, ?)
		WHERE trip_id = ? AND travel_date = ? AND is_occupied = 1`, at, tripID, travelDate)
}

func (r SeatAssignmentRepository) update(ctx context.Context, query string, args ...any) (bool, error) {
	n, err := r.release(ctx, query, args...)
	return n > 0, err
}

func (r SeatAssignmentRepository) release(ctx context.Context, query string, args ...any) (int, error) {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to update seat assignments: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(n), nil
}

func (r SeatAssignmentRepository) list(ctx context.Context, query string, args ...any) ([]models.SeatAssignment, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query seat assignments: %w", err)
	}
	defer rows.Close()

	out := []models.SeatAssignment{}
	for rows.Next() {
		var (
			a                 models.SeatAssignment
			boarded, alighted sql.NullTime
		)
		if err := rows.Scan(
			&a.ID, &a.SeatID, &a.SeatNumber, &a.BookingID, &a.TripID,
			&a.TravelDate, &a.PickupStopID, &a.DropoffStopID,
			&a.PassengerName, &a.IsOccupied, &boarded, &alighted, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan seat assignment: %w", err)
		}
		a.BoardedAt = intdb.TimePtr(boarded)
		a.AlightedAt = intdb.TimePtr(alighted)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read seat assignments: %w", err)
	}
	return out, nil
}
