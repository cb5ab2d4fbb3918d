package db

import (
	"context"
	"database/sql"
	"fmt"

	"daladala/internal/utils"
)

// occupied_key is NULL for released rows so the unique keys only bind
// occupied assignments. They back up the row-lock check for the two
// same-endpoint cases of the overlap rule.
var schemaDDL = []struct {
	table string
	ddl   string
}{
	{"vehicles", `
CREATE TABLE IF NOT EXISTS vehicles (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	plate_number VARCHAR(32) NOT NULL,
	seat_capacity INT NOT NULL DEFAULT 0,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_plate (plate_number)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"seats", `
CREATE TABLE IF NOT EXISTS seats (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	vehicle_id BIGINT NOT NULL,
	seat_number VARCHAR(16) NOT NULL,
	seat_type VARCHAR(32) NOT NULL DEFAULT 'standard',
	is_available TINYINT(1) NOT NULL DEFAULT 1,
	UNIQUE KEY uniq_vehicle_seat (vehicle_id, seat_number),
	KEY idx_vehicle (vehicle_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"trips", `
CREATE TABLE IF NOT EXISTS trips (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	vehicle_id BIGINT NOT NULL,
	route_id BIGINT NULL,
	driver_id BIGINT NULL,
	departure_date DATE NOT NULL,
	departure_time TIME NULL,
	status VARCHAR(32) NOT NULL DEFAULT 'scheduled',
	KEY idx_vehicle_date (vehicle_id, departure_date)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"bookings", `
CREATE TABLE IF NOT EXISTS bookings (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	user_id BIGINT NOT NULL,
	trip_id BIGINT NOT NULL,
	pickup_stop_id BIGINT NOT NULL,
	dropoff_stop_id BIGINT NOT NULL,
	passenger_count INT NOT NULL DEFAULT 1,
	travel_date DATE NOT NULL,
	status VARCHAR(16) NOT NULL DEFAULT 'pending',
	payment_status VARCHAR(16) NOT NULL DEFAULT 'pending',
	total_amount BIGINT NOT NULL DEFAULT 0,
	seat_numbers VARCHAR(255) NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	KEY idx_trip_date (trip_id, travel_date),
	KEY idx_user (user_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"seat_assignments", `
CREATE TABLE IF NOT EXISTS seat_assignments (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	seat_id BIGINT NOT NULL,
	booking_id BIGINT NOT NULL,
	trip_id BIGINT NOT NULL,
	travel_date DATE NOT NULL,
	pickup_stop_id BIGINT NOT NULL,
	dropoff_stop_id BIGINT NOT NULL,
	passenger_name VARCHAR(255) NULL,
	is_occupied TINYINT(1) NOT NULL DEFAULT 1,
	occupied_key TINYINT AS (IF(is_occupied = 1, 1, NULL)) STORED,
	boarded_at DATETIME NULL,
	alighted_at DATETIME NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_seat_pickup (seat_id, trip_id, travel_date, pickup_stop_id, occupied_key),
	UNIQUE KEY uniq_seat_dropoff (seat_id, trip_id, travel_date, dropoff_stop_id, occupied_key),
	KEY idx_trip_date (trip_id, travel_date, is_occupied),
	KEY idx_booking (booking_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
}

// EnsureSchema creates the seat engine tables that are missing.
func EnsureSchema(ctx context.Context, conn *sql.DB) error {
	for _, t := range schemaDDL {
		exists, err := HasTable(ctx, conn, t.table)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if _, err := conn.ExecContext(ctx, t.ddl); err != nil {
			return fmt.Errorf("create table %s: %w", t.table, err)
		}
		utils.LogEvent("", "schema", "create_table", t.table)
	}
	return nil
}
