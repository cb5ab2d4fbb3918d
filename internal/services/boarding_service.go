package services

import (
	"context"
	"fmt"
	"time"

	"daladala/internal/cache"
	"daladala/internal/domain"
	"daladala/internal/domain/models"
	"daladala/internal/repositories"
	"daladala/internal/utils"
)

// BoardingService records boarding and alighting. Both calls reject a
// repeat instead of succeeding twice.
type BoardingService struct {
	Store     repositories.Store
	Cache     cache.AvailabilityCache
	Clock     func() time.Time
	RequestID string
}

type BoardingResult struct {
	AssignmentID int64     `json:"assignment_id"`
	BookingID    int64     `json:"booking_id"`
	SeatNumber   string    `json:"seat_number"`
	BoardedAt    time.Time `json:"boarded_at"`
}

type ReleaseResult struct {
	AssignmentID int64     `json:"assignment_id"`
	BookingID    int64     `json:"booking_id"`
	SeatNumber   string    `json:"seat_number"`
	AlightedAt   time.Time `json:"alighted_at"`
}

type assignmentScope struct {
	assignment models.SeatAssignment
	booking    models.Booking
	trip       models.Trip
}

// loadForCaller locks the owning booking and checks the caller is its
// owner, an admin or the trip's driver.
func loadForCaller(ctx context.Context, repos repositories.Repos, caller domain.RequestContext, assignmentID int64) (assignmentScope, error) {
	if assignmentID <= 0 {
		return assignmentScope{}, domain.ValidationError{Field: "assignment_id", Msg: "invalid id"}
	}
	a, err := repos.Assignments().GetByID(ctx, assignmentID)
	if err != nil {
		return assignmentScope{}, err
	}
	b, err := repos.Bookings().LockByID(ctx, a.BookingID)
	if err != nil {
		return assignmentScope{}, err
	}
	trip, err := repos.Trips().GetByID(ctx, b.TripID)
	if err != nil {
		return assignmentScope{}, err
	}
	if !canManageBooking(caller, b) && !canOperateTrip(caller, trip) {
		return assignmentScope{}, domain.AccessDeniedError{Resource: fmt.Sprintf("seat assignment %d", a.ID), UserID: caller.UserID}
	}
	// Re-read under the booking lock.
	a, err = repos.Assignments().GetByID(ctx, assignmentID)
	if err != nil {
		return assignmentScope{}, err
	}
	return assignmentScope{assignment: a, booking: b, trip: trip}, nil
}

// BoardPassenger stamps boarded_at. The first boarding on a confirmed
// booking moves it to in_progress.
func (s BoardingService) BoardPassenger(ctx context.Context, caller domain.RequestContext, assignmentID int64) (BoardingResult, error) {
	now := clockOrNow(s.Clock)
	var scope assignmentScope
	err := s.Store.WithinTx(ctx, func(repos repositories.Repos) error {
		var err error
		scope, err = loadForCaller(ctx, repos, caller, assignmentID)
		if err != nil {
			return err
		}
		a, b := scope.assignment, scope.booking
		switch {
		case !a.IsOccupied:
			return domain.AlreadyAlighted(a.ID)
		case a.BoardedAt != nil:
			return domain.AlreadyBoarded(a.ID)
		case b.Status != models.BookingConfirmed && b.Status != models.BookingInProgress:
			return domain.InvalidTransition(b.ID, string(b.Status), string(models.BookingInProgress))
		}
		ok, err := repos.Assignments().MarkBoarded(ctx, a.ID, now)
		if err != nil {
			return err
		}
		if !ok {
			return domain.AlreadyBoarded(a.ID)
		}
		if b.Status == models.BookingConfirmed {
			return repos.Bookings().UpdateStatus(ctx, b.ID, models.BookingInProgress)
		}
		return nil
	})
	if err != nil {
		utils.LogFailure(s.RequestID, "boarding", "board", err)
		return BoardingResult{}, err
	}

	cacheOrNoop(s.Cache).Invalidate(ctx, scope.assignment.TripID, scope.assignment.TravelDate)
	utils.LogEvent(s.RequestID, "boarding", "board",
		fmt.Sprintf("assignment_id=%d booking_id=%d seat=%s", scope.assignment.ID, scope.booking.ID, scope.assignment.SeatNumber))
	return BoardingResult{
		AssignmentID: scope.assignment.ID,
		BookingID:    scope.booking.ID,
		SeatNumber:   scope.assignment.SeatNumber,
		BoardedAt:    now,
	}, nil
}

// ReleaseSeat frees the seat: alighted_at is stamped and the assignment
// stops counting as occupied. The booking's seat summary is rewritten.
func (s BoardingService) ReleaseSeat(ctx context.Context, caller domain.RequestContext, assignmentID int64) (ReleaseResult, error) {
	now := clockOrNow(s.Clock)
	var scope assignmentScope
	err := s.Store.WithinTx(ctx, func(repos repositories.Repos) error {
		var err error
		scope, err = loadForCaller(ctx, repos, caller, assignmentID)
		if err != nil {
			return err
		}
		if !scope.assignment.IsOccupied {
			return domain.AlreadyAlighted(scope.assignment.ID)
		}
		ok, err := repos.Assignments().MarkAlighted(ctx, scope.assignment.ID, now)
		if err != nil {
			return err
		}
		if !ok {
			return domain.AlreadyAlighted(scope.assignment.ID)
		}
		return rewriteSeatSummary(ctx, repos, scope.booking.ID)
	})
	if err != nil {
		utils.LogFailure(s.RequestID, "boarding", "release", err)
		return ReleaseResult{}, err
	}

	cacheOrNoop(s.Cache).Invalidate(ctx, scope.assignment.TripID, scope.assignment.TravelDate)
	utils.LogEvent(s.RequestID, "boarding", "release",
		fmt.Sprintf("assignment_id=%d booking_id=%d seat=%s", scope.assignment.ID, scope.booking.ID, scope.assignment.SeatNumber))
	return ReleaseResult{
		AssignmentID: scope.assignment.ID,
		BookingID:    scope.booking.ID,
		SeatNumber:   scope.assignment.SeatNumber,
		AlightedAt:   now,
	}, nil
}
