package models

// TripCompleted is the status of a run closed by its driver.
const TripCompleted = "completed"

// Trip is a scheduled run of a vehicle on a route. SeatCapacity is read
// from the vehicle.
type Trip struct {
	ID            int64  `json:"id"`
	VehicleID     int64  `json:"vehicle_id"`
	RouteID       int64  `json:"route_id"`
	DriverID      int64  `json:"driver_id"`
	DepartureDate string `json:"departure_date"`
	DepartureTime string `json:"departure_time"`
	Status        string `json:"status"`
	SeatCapacity  int    `json:"seat_capacity"`
}

// TravelDateOr returns date, or the trip's departure date when date is empty.
func (t Trip) TravelDateOr(date string) string {
	if date != "" {
		return date
	}
	return t.DepartureDate
}

// IsCompleted reports whether the run was closed and takes no more
// reservations.
func (t Trip) IsCompleted() bool {
	return t.Status == TripCompleted
}
