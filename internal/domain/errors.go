package domain

import (
	"errors"
	"fmt"
)

// Kind is the machine-readable failure class returned to callers.
type Kind string

const (
	KindNotFound             Kind = "not_found"
	KindValidation           Kind = "validation_error"
	KindInsufficientCapacity Kind = "insufficient_capacity"
	KindSeatAlreadyReserved  Kind = "seat_already_reserved"
	KindSeatUnavailable      Kind = "seat_unavailable"
	KindAlreadyBoarded       Kind = "already_boarded"
	KindAlreadyAlighted      Kind = "already_alighted"
	KindAccessDenied         Kind = "access_denied"
	KindInvalidTransition    Kind = "invalid_transition"
	KindConflict             Kind = "conflict"
	KindInternal             Kind = "internal_error"
)

type NotFoundError struct {
	Resource string
	ID       any
	Err      error
}

func (e NotFoundError) Error() string {
	switch {
	case e.Resource == "":
		return "not found"
	case e.ID != nil:
		return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
	default:
		return fmt.Sprintf("%s not found", e.Resource)
	}
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

// ConflictError covers state conflicts. Kind narrows it to one of the
// seat/boarding/transition kinds; empty means a generic conflict.
type ConflictError struct {
	Kind     Kind
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// CapacityError reports that fewer seats are free than were requested.
type CapacityError struct {
	TripID    int64
	Requested int
	Available int
}

func (e CapacityError) Error() string {
	return fmt.Sprintf("trip %d: %d seat(s) requested, %d available", e.TripID, e.Requested, e.Available)
}

// SeatUnavailableError is returned for seats taken out of service.
type SeatUnavailableError struct {
	VehicleID  int64
	SeatNumber string
}

func (e SeatUnavailableError) Error() string {
	return fmt.Sprintf("seat %s on vehicle %d is out of service", e.SeatNumber, e.VehicleID)
}

type AccessDeniedError struct {
	Resource string
	UserID   int64
}

func (e AccessDeniedError) Error() string {
	if e.Resource == "" {
		return "access denied"
	}
	return fmt.Sprintf("user %d may not access %s", e.UserID, e.Resource)
}

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func SeatAlreadyReserved(tripID int64, seatNumber string) error {
	return ConflictError{
		Kind:     KindSeatAlreadyReserved,
		Resource: "seat",
		Msg:      fmt.Sprintf("seat %s on trip %d is already reserved for an overlapping segment", seatNumber, tripID),
	}
}

func AlreadyBoarded(assignmentID int64) error {
	return ConflictError{
		Kind:     KindAlreadyBoarded,
		Resource: "seat_assignment",
		Msg:      fmt.Sprintf("assignment %d already boarded", assignmentID),
	}
}

func AlreadyAlighted(assignmentID int64) error {
	return ConflictError{
		Kind:     KindAlreadyAlighted,
		Resource: "seat_assignment",
		Msg:      fmt.Sprintf("assignment %d already released", assignmentID),
	}
}

func InvalidTransition(bookingID int64, from, to string) error {
	return ConflictError{
		Kind:     KindInvalidTransition,
		Resource: "booking",
		Msg:      fmt.Sprintf("booking %d cannot move from %s to %s", bookingID, from, to),
	}
}

// TripClosed rejects reservations on a run that was already completed.
func TripClosed(tripID int64) error {
	return ConflictError{
		Kind:     KindInvalidTransition,
		Resource: "trip",
		Msg:      fmt.Sprintf("trip %d is completed and takes no more reservations", tripID),
	}
}

// KindOf classifies err. Unknown errors are internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var (
		notFound    NotFoundError
		validation  ValidationError
		conflict    ConflictError
		capacity    CapacityError
		unavailable SeatUnavailableError
		denied      AccessDeniedError
	)
	switch {
	case errors.As(err, &notFound):
		return KindNotFound
	case errors.As(err, &validation):
		return KindValidation
	case errors.As(err, &capacity):
		return KindInsufficientCapacity
	case errors.As(err, &unavailable):
		return KindSeatUnavailable
	case errors.As(err, &denied):
		return KindAccessDenied
	case errors.As(err, &conflict):
		if conflict.Kind != "" {
			return conflict.Kind
		}
		return KindConflict
	default:
		return KindInternal
	}
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
