package repositories

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"daladala/internal/domain"
	"daladala/internal/domain/models"
	"daladala/internal/utils"
)

type memState struct {
	vehicles    map[int64]models.Vehicle
	seats       map[int64]models.Seat
	trips       map[int64]models.Trip
	bookings    map[int64]models.Booking
	assignments map[int64]models.SeatAssignment

	nextVehicleID    int64
	nextSeatID       int64
	nextTripID       int64
	nextBookingID    int64
	nextAssignmentID int64
}

func newMemState() *memState {
	return &memState{
		vehicles:    map[int64]models.Vehicle{},
		seats:       map[int64]models.Seat{},
		trips:       map[int64]models.Trip{},
		bookings:    map[int64]models.Booking{},
		assignments: map[int64]models.SeatAssignment{},
	}
}

func (s *memState) clone() *memState {
	c := *s
	c.vehicles = cloneMap(s.vehicles)
	c.seats = cloneMap(s.seats)
	c.trips = cloneMap(s.trips)
	c.bookings = cloneMap(s.bookings)
	c.assignments = cloneMap(s.assignments)
	return &c
}

func cloneMap[V any](m map[int64]V) map[int64]V {
	out := make(map[int64]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// MemoryStore keeps the whole catalog and ledger in process. Writers
// run one at a time on a private copy that replaces the live state on
// commit, so a failed transaction leaves nothing behind.
type MemoryStore struct {
	writeMu sync.Mutex
	mu      sync.RWMutex
	state   *memState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemState()}
}

func (m *MemoryStore) Trips() TripStore               { return m.live().Trips() }
func (m *MemoryStore) Seats() SeatStore               { return m.live().Seats() }
func (m *MemoryStore) Bookings() BookingStore         { return m.live().Bookings() }
func (m *MemoryStore) Assignments() AssignmentStore   { return m.live().Assignments() }
func (m *MemoryStore) Ping(ctx context.Context) error { return ctx.Err() }

func (m *MemoryStore) live() memRepos {
	return memRepos{
		view: func(fn func(*memState)) {
			m.mu.RLock()
			defer m.mu.RUnlock()
			fn(m.state)
		},
		update: func(fn func(*memState)) {
			m.writeMu.Lock()
			defer m.writeMu.Unlock()
			m.mu.Lock()
			defer m.mu.Unlock()
			fn(m.state)
		},
	}
}

func (m *MemoryStore) WithinTx(ctx context.Context, fn func(Repos) error) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	work := m.state.clone()
	m.mu.RUnlock()

	direct := func(f func(*memState)) { f(work) }
	if err := fn(memRepos{view: direct, update: direct}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	m.state = work
	m.mu.Unlock()
	return nil
}

// AddVehicle provisions a vehicle with one available standard seat per number.
func (m *MemoryStore) AddVehicle(plate string, seatNumbers ...string) (models.Vehicle, []models.Seat) {
	var (
		v     models.Vehicle
		seats []models.Seat
	)
	m.live().update(func(st *memState) {
		st.nextVehicleID++
		v = models.Vehicle{ID: st.nextVehicleID, PlateNumber: plate, SeatCapacity: len(seatNumbers)}
		st.vehicles[v.ID] = v
		for _, n := range seatNumbers {
			st.nextSeatID++
			s := models.Seat{ID: st.nextSeatID, VehicleID: v.ID, SeatNumber: n, SeatType: "standard", IsAvailable: true}
			st.seats[s.ID] = s
			seats = append(seats, s)
		}
	})
	return v, seats
}

// SetSeatAvailable flips the maintenance flag of a seat.
func (m *MemoryStore) SetSeatAvailable(seatID int64, available bool) {
	m.live().update(func(st *memState) {
		if s, ok := st.seats[seatID]; ok {
			s.IsAvailable = available
			st.seats[seatID] = s
		}
	})
}

// AddTrip schedules a trip; ID and SeatCapacity are filled in.
func (m *MemoryStore) AddTrip(t models.Trip) models.Trip {
	m.live().update(func(st *memState) {
		st.nextTripID++
		t.ID = st.nextTripID
		t.SeatCapacity = st.vehicles[t.VehicleID].SeatCapacity
		if t.Status == "" {
			t.Status = "scheduled"
		}
		st.trips[t.ID] = t
	})
	return t
}

// AssignmentCount returns the number of ledger rows, released ones included.
func (m *MemoryStore) AssignmentCount() int {
	var n int
	m.live().view(func(st *memState) { n = len(st.assignments) })
	return n
}

// SeedDemo provisions a 14-seat vehicle and a trip departing on date.
func (m *MemoryStore) SeedDemo(date string) models.Trip {
	numbers := make([]string, 0, 14)
	for i := 1; i <= 14; i++ {
		numbers = append(numbers, strconv.Itoa(i))
	}
	v, _ := m.AddVehicle("T 123 DAR", numbers...)
	return m.AddTrip(models.Trip{VehicleID: v.ID, RouteID: 1, DriverID: 1, DepartureDate: date, DepartureTime: "06:30"})
}

// memRepos binds the stores to either the live state or a transaction copy.
type memRepos struct {
	view   func(func(*memState))
	update func(func(*memState))
}

func (r memRepos) Trips() TripStore             { return memTrips{r} }
func (r memRepos) Seats() SeatStore             { return memSeats{r} }
func (r memRepos) Bookings() BookingStore       { return memBookings{r} }
func (r memRepos) Assignments() AssignmentStore { return memAssignments{r} }

type memTrips struct{ memRepos }

func (r memTrips) GetByID(ctx context.Context, id int64) (models.Trip, error) {
	var (
		t  models.Trip
		ok bool
	)
	r.view(func(st *memState) {
		t, ok = st.trips[id]
		if ok {
			t.SeatCapacity = st.vehicles[t.VehicleID].SeatCapacity
		}
	})
	if !ok {
		return models.Trip{}, domain.NotFoundError{Resource: "trip", ID: id}
	}
	return t, nil
}

func (r memTrips) LockShared(ctx context.Context, id int64) (models.Trip, error) {
	return r.GetByID(ctx, id)
}

func (r memTrips) LockByID(ctx context.Context, id int64) (models.Trip, error) {
	return r.GetByID(ctx, id)
}

func (r memTrips) MarkCompleted(ctx context.Context, id int64) error {
	r.update(func(st *memState) {
		if t, ok := st.trips[id]; ok {
			t.Status = models.TripCompleted
			st.trips[id] = t
		}
	})
	return nil
}

type memSeats struct{ memRepos }

func (r memSeats) ListByVehicle(ctx context.Context, vehicleID int64) ([]models.Seat, error) {
	out := []models.Seat{}
	r.view(func(st *memState) {
		for _, s := range st.seats {
			if s.VehicleID == vehicleID {
				out = append(out, s)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memSeats) LockByVehicle(ctx context.Context, vehicleID int64) ([]models.Seat, error) {
	return r.ListByVehicle(ctx, vehicleID)
}

func (r memSeats) LockByNumbers(ctx context.Context, vehicleID int64, numbers []string) ([]models.Seat, error) {
	want := make(map[string]struct{}, len(numbers))
	for _, n := range numbers {
		want[utils.SeatKey(n)] = struct{}{}
	}
	all, _ := r.ListByVehicle(ctx, vehicleID)
	out := []models.Seat{}
	for _, s := range all {
		if _, ok := want[utils.SeatKey(s.SeatNumber)]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

type memBookings struct{ memRepos }

func (r memBookings) Create(ctx context.Context, b *models.Booking) (int64, error) {
	r.update(func(st *memState) {
		st.nextBookingID++
		now := time.Now()
		b.ID = st.nextBookingID
		if b.CreatedAt.IsZero() {
			b.CreatedAt = now
		}
		b.UpdatedAt = now
		st.bookings[b.ID] = *b
	})
	return b.ID, nil
}

func (r memBookings) GetByID(ctx context.Context, id int64) (models.Booking, error) {
	var (
		b  models.Booking
		ok bool
	)
	r.view(func(st *memState) { b, ok = st.bookings[id] })
	if !ok {
		return models.Booking{}, domain.NotFoundError{Resource: "booking", ID: id}
	}
	return b, nil
}

func (r memBookings) LockByID(ctx context.Context, id int64) (models.Booking, error) {
	return r.GetByID(ctx, id)
}

func (r memBookings) UpdateStatus(ctx context.Context, id int64, status models.BookingStatus) error {
	return r.modify(id, func(b *models.Booking) { b.Status = status })
}

func (r memBookings) UpdateSeatNumbers(ctx context.Context, id int64, summary string) error {
	return r.modify(id, func(b *models.Booking) { b.SeatNumbers = summary })
}

func (r memBookings) CompleteByTrip(ctx context.Context, tripID int64, travelDate string) (int, error) {
	n := 0
	r.update(func(st *memState) {
		for id, b := range st.bookings {
			if b.TripID != tripID || b.TravelDate != travelDate {
				continue
			}
			if b.Status != models.BookingConfirmed && b.Status != models.BookingInProgress {
				continue
			}
			b.Status = models.BookingCompleted
			b.UpdatedAt = time.Now()
			st.bookings[id] = b
			n++
		}
	})
	return n, nil
}

func (r memBookings) CancelPendingByTrip(ctx context.Context, tripID int64, travelDate string) (int, error) {
	n := 0
	r.update(func(st *memState) {
		for id, b := range st.bookings {
			if b.TripID != tripID || b.TravelDate != travelDate || b.Status != models.BookingPending {
				continue
			}
			b.Status = models.BookingCancelled
			b.SeatNumbers = ""
			b.UpdatedAt = time.Now()
			st.bookings[id] = b
			n++
		}
	})
	return n, nil
}

func (r memBookings) modify(id int64, fn func(*models.Booking)) error {
	found := false
	r.update(func(st *memState) {
		b, ok := st.bookings[id]
		if !ok {
			return
		}
		fn(&b)
		b.UpdatedAt = time.Now()
		st.bookings[id] = b
		found = true
	})
	if !found {
		return domain.NotFoundError{Resource: "booking", ID: id}
	}
	return nil
}

type memAssignments struct{ memRepos }

func (r memAssignments) GetByID(ctx context.Context, id int64) (models.SeatAssignment, error) {
	var (
		a  models.SeatAssignment
		ok bool
	)
	r.view(func(st *memState) {
		a, ok = st.assignments[id]
		if ok {
			a.SeatNumber = st.seats[a.SeatID].SeatNumber
		}
	})
	if !ok {
		return models.SeatAssignment{}, domain.NotFoundError{Resource: "seat_assignment", ID: id}
	}
	return a, nil
}

func (r memAssignments) ListOccupied(ctx context.Context, tripID int64, travelDate string) ([]models.SeatAssignment, error) {
	return r.filter(func(a models.SeatAssignment) bool {
		return a.TripID == tripID && a.TravelDate == travelDate && a.IsOccupied
	}), nil
}

func (r memAssignments) LockOccupiedBySeats(ctx context.Context, tripID int64, travelDate string, seatIDs []int64) ([]models.SeatAssignment, error) {
	want := make(map[int64]struct{}, len(seatIDs))
	for _, id := range seatIDs {
		want[id] = struct{}{}
	}
	return r.filter(func(a models.SeatAssignment) bool {
		_, ok := want[a.SeatID]
		return ok && a.TripID == tripID && a.TravelDate == travelDate && a.IsOccupied
	}), nil
}

func (r memAssignments) ListByBooking(ctx context.Context, bookingID int64) ([]models.SeatAssignment, error) {
	return r.filter(func(a models.SeatAssignment) bool { return a.BookingID == bookingID }), nil
}

func (r memAssignments) Insert(ctx context.Context, a *models.SeatAssignment) (int64, error) {
	r.update(func(st *memState) {
		st.nextAssignmentID++
		a.ID = st.nextAssignmentID
		if a.CreatedAt.IsZero() {
			a.CreatedAt = time.Now()
		}
		st.assignments[a.ID] = *a
	})
	return a.ID, nil
}

func (r memAssignments) MarkBoarded(ctx context.Context, id int64, at time.Time) (bool, error) {
	return r.modify(func(a models.SeatAssignment) bool { return a.ID == id && a.BoardedAt == nil && a.IsOccupied },
		func(a *models.SeatAssignment) { a.BoardedAt = &at }) > 0, nil
}

func (r memAssignments) MarkAlighted(ctx context.Context, id int64, at time.Time) (bool, error) {
	return r.modify(func(a models.SeatAssignment) bool { return a.ID == id && a.AlightedAt == nil && a.IsOccupied },
		release(at)) > 0, nil
}

func (r memAssignments) ReleaseByBooking(ctx context.Context, bookingID int64, at time.Time) (int, error) {
	return r.modify(func(a models.SeatAssignment) bool { return a.BookingID == bookingID && a.IsOccupied }, release(at)), nil
}

func (r memAssignments) ReleaseByTrip(ctx context.Context, tripID int64, travelDate string, at time.Time) (int, error) {
	return r.modify(func(a models.SeatAssignment) bool {
		return a.TripID == tripID && a.TravelDate == travelDate && a.IsOccupied
	}, release(at)), nil
}

func release(at time.Time) func(*models.SeatAssignment) {
	return func(a *models.SeatAssignment) {
		a.IsOccupied = false
		if a.AlightedAt == nil {
			a.AlightedAt = &at
		}
	}
}

func (r memAssignments) modify(match func(models.SeatAssignment) bool, fn func(*models.SeatAssignment)) int {
	n := 0
	r.update(func(st *memState) {
		for id, a := range st.assignments {
			if !match(a) {
				continue
			}
			fn(&a)
			st.assignments[id] = a
			n++
		}
	})
	return n
}

func (r memAssignments) filter(match func(models.SeatAssignment) bool) []models.SeatAssignment {
	out := []models.SeatAssignment{}
	r.view(func(st *memState) {
		for _, a := range st.assignments {
			if match(a) {
				a.SeatNumber = st.seats[a.SeatID].SeatNumber
				out = append(out, a)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].SeatID != out[j].SeatID {
			return out[i].SeatID < out[j].SeatID
		}
		return out[i].ID < out[j].ID
	})
	return out
}
