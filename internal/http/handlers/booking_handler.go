package handlers

import (
	"net/http"
	"strings"

	"daladala/internal/domain"
	"daladala/internal/http/middleware"
	"daladala/internal/services"

	"github.com/gin-gonic/gin"
)

type createBookingRequest struct {
	TripID         int64         `json:"trip_id"`
	PickupStopID   domain.StopID `json:"pickup_stop_id"`
	DropoffStopID  domain.StopID `json:"dropoff_stop_id"`
	PassengerCount int           `json:"passenger_count"`
	TravelDate     string        `json:"travel_date"`
	TotalAmount    int64         `json:"total_amount"`
	AutoApprove    bool          `json:"auto_approve"`
	SeatNumbers    SeatList      `json:"seat_numbers"`
	PassengerNames []string      `json:"passenger_names"`
}

type seatSelectionRequest struct {
	SeatNumbers    SeatList `json:"seat_numbers"`
	PassengerNames []string `json:"passenger_names"`
}

// CreateBooking handles POST /api/bookings.
func (h Handler) CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	d, err := h.bookings(c).CreateBooking(c.Request.Context(), middleware.Caller(c), services.CreateBookingInput{
		TripID:         req.TripID,
		PickupStopID:   req.PickupStopID,
		DropoffStopID:  req.DropoffStopID,
		PassengerCount: req.PassengerCount,
		TravelDate:     strings.TrimSpace(req.TravelDate),
		TotalAmount:    req.TotalAmount,
		AutoApprove:    req.AutoApprove,
		SeatNumbers:    req.SeatNumbers,
		PassengerNames: req.PassengerNames,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

// GetBooking handles GET /api/bookings/:id.
func (h Handler) GetBooking(c *gin.Context) {
	id, ok := idParam(c, "booking_id")
	if !ok {
		return
	}
	d, err := h.bookings(c).GetBooking(c.Request.Context(), middleware.Caller(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// ReserveSeats handles POST /api/bookings/:id/seats.
func (h Handler) ReserveSeats(c *gin.Context) {
	id, ok := idParam(c, "booking_id")
	if !ok {
		return
	}
	var req seatSelectionRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	res, err := h.reservations(c).ReserveSeats(c.Request.Context(), middleware.Caller(c), services.ReserveInput{
		BookingID:      id,
		SeatNumbers:    req.SeatNumbers,
		PassengerNames: req.PassengerNames,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// ConfirmBooking handles POST /api/bookings/:id/confirm. Without seat
// numbers the remaining seats are auto-assigned.
func (h Handler) ConfirmBooking(c *gin.Context) {
	id, ok := idParam(c, "booking_id")
	if !ok {
		return
	}
	var req seatSelectionRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	d, err := h.bookings(c).ConfirmBooking(c.Request.Context(), middleware.Caller(c), services.ConfirmInput{
		BookingID:      id,
		SeatNumbers:    req.SeatNumbers,
		PassengerNames: req.PassengerNames,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// CancelBooking handles POST /api/bookings/:id/cancel.
func (h Handler) CancelBooking(c *gin.Context) {
	id, ok := idParam(c, "booking_id")
	if !ok {
		return
	}
	d, err := h.bookings(c).CancelBooking(c.Request.Context(), middleware.Caller(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
