package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	intdb "daladala/internal/db"
	"daladala/internal/domain"
	"daladala/internal/domain/models"
)

type TripRepository struct {
	DB intdb.DBTX
}

// GetByID loads a trip with the seat capacity of its vehicle.
func (r TripRepository) GetByID(ctx context.Context, id int64) (models.Trip, error) {
	return r.get(ctx, id, "")
}

// LockShared holds a shared lock on the trip row. Reservations take it
// so that completion, which locks the row exclusively, waits for them.
func (r TripRepository) LockShared(ctx context.Context, id int64) (models.Trip, error) {
	return r.get(ctx, id, " LOCK IN SHARE MODE")
}

// LockByID holds the trip row exclusively until the transaction ends.
func (r TripRepository) LockByID(ctx context.Context, id int64) (models.Trip, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r TripRepository) MarkCompleted(ctx context.Context, id int64) error {
	if _, err := r.DB.ExecContext(ctx, `UPDATE trips SET status = ? WHERE id = ?`, models.TripCompleted, id); err != nil {
		return fmt.Errorf("failed to complete trip %d: %w", id, err)
	}
	return nil
}

func (r TripRepository) get(ctx context.Context, id int64, lock string) (models.Trip, error) {
	if id <= 0 {
		return models.Trip{}, domain.ValidationError{Field: "trip_id", Msg: "invalid id"}
	}
	var t models.Trip
	err := r.DB.QueryRowContext(ctx, `
		SELECT t.id, t.vehicle_id, COALESCE(t.route_id, 0), COALESCE(t.driver_id, 0),
			DATE_FORMAT(t.departure_date, '%Y-%m-%d'),
			COALESCE(TIME_FORMAT(t.departure_time, '%H:%i'), ''),
			COALESCE(t.status, ''), COALESCE(v.seat_capacity, 0)
		FROM trips t
		JOIN vehicles v ON v.id = t.vehicle_id
		WHERE t.id = ?
		LIMIT 1`+lock, id).Scan(
		&t.ID, &t.VehicleID, &t.RouteID, &t.DriverID,
		&t.DepartureDate, &t.DepartureTime, &t.Status, &t.SeatCapacity,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Trip{}, domain.NotFoundError{Resource: "trip", ID: id, Err: err}
	}
	if err != nil {
		return models.Trip{}, fmt.Errorf("failed to load trip %d: %w", id, err)
	}
	return t, nil
}
