package models

// Vehicle is provisioned externally together with its seats.
type Vehicle struct {
	ID           int64  `json:"id"`
	PlateNumber  string `json:"plate_number"`
	SeatCapacity int    `json:"seat_capacity"`
}

// Seat belongs to exactly one vehicle. Seats are never deleted while
// assignments reference them; IsAvailable=false takes one out of service.
type Seat struct {
	ID          int64  `json:"id"`
	VehicleID   int64  `json:"vehicle_id"`
	SeatNumber  string `json:"seat_number"`
	SeatType    string `json:"seat_type"`
	IsAvailable bool   `json:"is_available"`
}

// SeatInfo is the public projection of a seat in availability payloads.
type SeatInfo struct {
	SeatID     int64  `json:"seat_id"`
	SeatNumber string `json:"seat_number"`
	SeatType   string `json:"seat_type"`
}

func (s Seat) Info() SeatInfo {
	return SeatInfo{SeatID: s.ID, SeatNumber: s.SeatNumber, SeatType: s.SeatType}
}
