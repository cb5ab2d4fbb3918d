package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"daladala/internal/cache"
	"daladala/internal/domain"
	"daladala/internal/domain/models"
	"daladala/internal/repositories"
	"daladala/internal/seating"
	"daladala/internal/utils"
)

// resolveTravelDate defaults an empty date to the trip's departure date
// and rejects anything that is not YYYY-MM-DD.
func resolveTravelDate(trip models.Trip, date string) (string, error) {
	date = trip.TravelDateOr(strings.TrimSpace(date))
	if date == "" {
		return "", domain.ValidationError{Field: "travel_date", Msg: "required"}
	}
	if _, err := utils.ParseDate(date); err != nil {
		return "", domain.ValidationError{Field: "travel_date", Msg: "must be YYYY-MM-DD", Err: err}
	}
	return date, nil
}

// optionalSegment returns nil when neither stop is given. A half given
// or degenerate segment is a validation error.
func optionalSegment(pickup, dropoff domain.StopID) (*seating.Segment, error) {
	if pickup == 0 && dropoff == 0 {
		return nil, nil
	}
	seg, err := requiredSegment(pickup, dropoff)
	if err != nil {
		return nil, err
	}
	return &seg, nil
}

func requiredSegment(pickup, dropoff domain.StopID) (seating.Segment, error) {
	seg := seating.Segment{Pickup: pickup, Dropoff: dropoff}
	if !seg.Valid() {
		return seg, domain.ValidationError{Field: "segment", Msg: "pickup_stop_id and dropoff_stop_id must be distinct positive stop ids"}
	}
	return seg, nil
}

// buildAvailability partitions the vehicle's seats. A seat with an
// occupant overlapping seg is occupied even when it is also flagged out
// of service, so the three lists always add up to the seat count.
func buildAvailability(trip models.Trip, date string, seg *seating.Segment, seats []models.Seat, occupied []models.SeatAssignment) models.SeatAvailability {
	bySeat := map[int64][]models.SeatOccupant{}
	for _, a := range occupied {
		if seg != nil && !seating.Overlaps(*seg, a.Segment()) {
			continue
		}
		bySeat[a.SeatID] = append(bySeat[a.SeatID], models.SeatOccupant{
			AssignmentID:  a.ID,
			BookingID:     a.BookingID,
			PassengerName: a.PassengerName,
			PickupStopID:  a.PickupStopID,
			DropoffStopID: a.DropoffStopID,
			BoardedAt:     a.BoardedAt,
		})
	}

	ordered := orderSeats(seats)
	out := models.SeatAvailability{
		TripID:       trip.ID,
		TravelDate:   date,
		Segment:      seg,
		TotalSeats:   len(ordered),
		Available:    []models.SeatInfo{},
		Occupied:     []models.OccupiedSeat{},
		OutOfService: []models.SeatInfo{},
	}
	for _, s := range ordered {
		switch occ := bySeat[s.ID]; {
		case len(occ) > 0:
			out.Occupied = append(out.Occupied, models.OccupiedSeat{SeatInfo: s.Info(), Occupants: occ})
		case !s.IsAvailable:
			out.OutOfService = append(out.OutOfService, s.Info())
		default:
			out.Available = append(out.Available, s.Info())
		}
	}
	return out
}

// orderSeats sorts a copy of seats by numeric seat number.
func orderSeats(seats []models.Seat) []models.Seat {
	numbers := make([]string, 0, len(seats))
	byNumber := make(map[string]models.Seat, len(seats))
	for _, s := range seats {
		numbers = append(numbers, s.SeatNumber)
		byNumber[s.SeatNumber] = s
	}
	seating.SortSeatNumbers(numbers)
	out := make([]models.Seat, 0, len(numbers))
	for _, n := range numbers {
		out = append(out, byNumber[n])
	}
	return out
}

func statsFrom(a models.SeatAvailability) models.TripSeatStats {
	stats := models.TripSeatStats{
		TripID:       a.TripID,
		TravelDate:   a.TravelDate,
		TotalSeats:   a.TotalSeats,
		Available:    len(a.Available),
		Occupied:     len(a.Occupied),
		OutOfService: len(a.OutOfService),
	}
	if a.TotalSeats > 0 {
		stats.OccupancyRate = math.Round(float64(stats.Occupied)/float64(a.TotalSeats)*10000) / 10000
	}
	return stats
}

// withTrip fills TripID on a capacity error coming out of the selector.
func withTrip(err error, tripID int64) error {
	if capErr, ok := err.(domain.CapacityError); ok {
		capErr.TripID = tripID
		return capErr
	}
	return err
}

type reservationRequest struct {
	booking models.Booking
	trip    models.Trip
	seats   []string
	names   []string
	now     time.Time
}

// reserveInTx attaches seats to an already locked booking. It must run
// inside Store.WithinTx: the seat rows and every occupied assignment on
// them are locked before the overlap check, so two racing reservations
// for the same seat and segment serialise and the loser sees the
// winner's row.
func reserveInTx(ctx context.Context, repos repositories.Repos, req reservationRequest) ([]models.ReservedSeat, error) {
	b := req.booking
	if req.trip.IsCompleted() {
		return nil, domain.TripClosed(req.trip.ID)
	}
	if !b.Status.AcceptsReservation() {
		return nil, domain.InvalidTransition(b.ID, string(b.Status), "reserved")
	}
	seats := utils.NormalizeSeats(req.seats)
	if len(seats) == 0 {
		return nil, domain.ValidationError{Field: "seat_numbers", Msg: "at least one seat is required"}
	}
	if utils.HasDuplicates(seats) {
		return nil, domain.ValidationError{Field: "seat_numbers", Msg: "duplicate seat number"}
	}

	held, err := repos.Assignments().ListByBooking(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	if occupiedCount(held)+len(seats) > b.PassengerCount {
		return nil, domain.ValidationError{
			Field: "seat_numbers",
			Msg:   fmt.Sprintf("booking %d has %d passenger(s) and %d seat(s) already held", b.ID, b.PassengerCount, occupiedCount(held)),
		}
	}

	locked, err := repos.Seats().LockByNumbers(ctx, req.trip.VehicleID, seats)
	if err != nil {
		return nil, err
	}
	// Requested numbers are upper-cased; catalog labels keep their own
	// case and are matched case-insensitively.
	byNumber := make(map[string]models.Seat, len(locked))
	for _, s := range locked {
		byNumber[utils.SeatKey(s.SeatNumber)] = s
	}
	seatIDs := make([]int64, 0, len(seats))
	for _, n := range seats {
		s, ok := byNumber[n]
		if !ok {
			return nil, domain.NotFoundError{Resource: "seat", ID: n}
		}
		if !s.IsAvailable {
			return nil, domain.SeatUnavailableError{VehicleID: req.trip.VehicleID, SeatNumber: s.SeatNumber}
		}
		seatIDs = append(seatIDs, s.ID)
	}

	occupied, err := repos.Assignments().LockOccupiedBySeats(ctx, b.TripID, b.TravelDate, seatIDs)
	if err != nil {
		return nil, err
	}
	for _, n := range seats {
		seat := byNumber[n]
		for _, a := range occupied {
			if a.SeatID == seat.ID && seating.Overlaps(a.Segment(), b.Segment()) {
				return nil, domain.SeatAlreadyReserved(b.TripID, seat.SeatNumber)
			}
		}
	}

	reserved := make([]models.ReservedSeat, 0, len(seats))
	for i, n := range seats {
		seat := byNumber[n]
		a := models.SeatAssignment{
			SeatID:        seat.ID,
			SeatNumber:    seat.SeatNumber,
			BookingID:     b.ID,
			TripID:        b.TripID,
			TravelDate:    b.TravelDate,
			PickupStopID:  b.PickupStopID,
			DropoffStopID: b.DropoffStopID,
			PassengerName: passengerName(req.names, i),
			IsOccupied:    true,
			CreatedAt:     req.now,
		}
		id, err := repos.Assignments().Insert(ctx, &a)
		if err != nil {
			return nil, err
		}
		reserved = append(reserved, models.ReservedSeat{
			AssignmentID:  id,
			SeatID:        a.SeatID,
			SeatNumber:    a.SeatNumber,
			PassengerName: a.PassengerName,
		})
	}

	if err := rewriteSeatSummary(ctx, repos, b.ID); err != nil {
		return nil, err
	}
	return reserved, nil
}

// lockBookingForReservation takes the trip's shared lock before the
// booking row lock. Completion locks the trip first too, so the two
// never wait on each other in opposite order.
func lockBookingForReservation(ctx context.Context, repos repositories.Repos, bookingID int64) (models.Booking, models.Trip, error) {
	b, err := repos.Bookings().GetByID(ctx, bookingID)
	if err != nil {
		return models.Booking{}, models.Trip{}, err
	}
	trip, err := repos.Trips().LockShared(ctx, b.TripID)
	if err != nil {
		return models.Booking{}, models.Trip{}, err
	}
	b, err = repos.Bookings().LockByID(ctx, bookingID)
	if err != nil {
		return models.Booking{}, models.Trip{}, err
	}
	return b, trip, nil
}

// autoReserveInTx locks the whole vehicle seat map, picks n free seats
// for the booking's segment and reserves them.
func autoReserveInTx(ctx context.Context, repos repositories.Repos, req reservationRequest, n int) ([]models.ReservedSeat, error) {
	seats, err := repos.Seats().LockByVehicle(ctx, req.trip.VehicleID)
	if err != nil {
		return nil, err
	}
	occupied, err := repos.Assignments().ListOccupied(ctx, req.booking.TripID, req.booking.TravelDate)
	if err != nil {
		return nil, err
	}
	seg := req.booking.Segment()
	snap := buildAvailability(req.trip, req.booking.TravelDate, &seg, seats, occupied)
	picked, err := seating.Select(snap.AvailableNumbers(), n)
	if err != nil {
		return nil, withTrip(err, req.trip.ID)
	}
	req.seats = picked
	return reserveInTx(ctx, repos, req)
}

// rewriteSeatSummary recomputes the booking's seat_numbers text from its
// occupied assignments.
func rewriteSeatSummary(ctx context.Context, repos repositories.Repos, bookingID int64) error {
	held, err := repos.Assignments().ListByBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	numbers := make([]string, 0, len(held))
	for _, a := range held {
		if a.IsOccupied {
			numbers = append(numbers, a.SeatNumber)
		}
	}
	seating.SortSeatNumbers(numbers)
	return repos.Bookings().UpdateSeatNumbers(ctx, bookingID, utils.JoinSeatList(numbers))
}

func occupiedCount(assignments []models.SeatAssignment) int {
	n := 0
	for _, a := range assignments {
		if a.IsOccupied {
			n++
		}
	}
	return n
}

// passengerName returns names[i], the first name when the list is
// shorter than the seat list, or "" when no names were given.
func passengerName(names []string, i int) string {
	if i < len(names) {
		if n := utils.NormalizeSpace(names[i]); n != "" {
			return n
		}
	}
	if len(names) > 0 {
		return utils.NormalizeSpace(names[0])
	}
	return ""
}

// canManageBooking allows the booking owner and admins.
func canManageBooking(caller domain.RequestContext, b models.Booking) bool {
	return caller.UserID == b.UserID || caller.Role == domain.RoleAdmin
}

// canOperateTrip allows admins and the driver assigned to the trip.
func canOperateTrip(caller domain.RequestContext, trip models.Trip) bool {
	if caller.Role == domain.RoleAdmin {
		return true
	}
	return caller.Role == domain.RoleDriver && trip.DriverID != 0 && caller.UserID == trip.DriverID
}

func cacheOrNoop(c cache.AvailabilityCache) cache.AvailabilityCache {
	if c == nil {
		return cache.Noop{}
	}
	return c
}

func clockOrNow(clock func() time.Time) time.Time {
	if clock == nil {
		return utils.NowUTC()
	}
	return clock().UTC()
}
