package repositories

import (
	"context"
	"fmt"

	intdb "daladala/internal/db"
	"daladala/internal/domain/models"
)

type SeatRepository struct {
	DB intdb.DBTX
}

const seatColumns = `id, vehicle_id, seat_number, COALESCE(seat_type, ''), is_available`

func (r SeatRepository) ListByVehicle(ctx context.Context, vehicleID int64) ([]models.Seat, error) {
	return r.query(ctx, `SELECT `+seatColumns+` FROM seats WHERE vehicle_id = ? ORDER BY id ASC`, vehicleID)
}

// LockByVehicle locks every seat of the vehicle, in id order.
func (r SeatRepository) LockByVehicle(ctx context.Context, vehicleID int64) ([]models.Seat, error) {
	return r.query(ctx, `SELECT `+seatColumns+` FROM seats WHERE vehicle_id = ? ORDER BY id ASC FOR UPDATE`, vehicleID)
}

// LockByNumbers locks the named seats, in id order. Unknown numbers are
// simply absent from the result.
func (r SeatRepository) LockByNumbers(ctx context.Context, vehicleID int64, numbers []string) ([]models.Seat, error) {
	if len(numbers) == 0 {
		return []models.Seat{}, nil
	}
	args := make([]any, 0, len(numbers)+1)
	args = append(args, vehicleID)
	for _, n := range numbers {
		args = append(args, n)
	}
	query := `SELECT ` + seatColumns + ` FROM seats WHERE vehicle_id = ? AND seat_number IN (` +
		intdb.Placeholders(len(numbers)) + `) ORDER BY id ASC FOR UPDATE`
	return r.query(ctx, query, args...)
}

func (r SeatRepository) query(ctx context.Context, query string, args ...any) ([]models.Seat, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query seats: %w", err)
	}
	defer rows.Close()

	seats := []models.Seat{}
	for rows.Next() {
		var s models.Seat
		if err := rows.Scan(&s.ID, &s.VehicleID, &s.SeatNumber, &s.SeatType, &s.IsAvailable); err != nil {
			return nil, fmt.Errorf("failed to scan seat: %w", err)
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}
