package handlers

import (
	"net/http"
	"strings"

	"daladala/internal/domain"
	"daladala/internal/http/middleware"
	"daladala/internal/services"

	"github.com/gin-gonic/gin"
)

type autoAssignRequest struct {
	PickupStopID   domain.StopID `json:"pickup_stop_id"`
	DropoffStopID  domain.StopID `json:"dropoff_stop_id"`
	PassengerCount int           `json:"passenger_count"`
	TravelDate     string        `json:"travel_date"`
}

type completeTripRequest struct {
	TravelDate string `json:"travel_date"`
}

// GetTripSeats handles GET /api/trips/:id/seats.
func (h Handler) GetTripSeats(c *gin.Context) {
	tripID, ok := idParam(c, "trip_id")
	if !ok {
		return
	}
	pickup, ok := stopQuery(c, "pickup_stop_id")
	if !ok {
		return
	}
	dropoff, ok := stopQuery(c, "dropoff_stop_id")
	if !ok {
		return
	}
	snap, err := h.availability(c).GetAvailableSeats(c.Request.Context(), services.AvailabilityQuery{
		TripID:        tripID,
		PickupStopID:  pickup,
		DropoffStopID: dropoff,
		TravelDate:    strings.TrimSpace(c.Query("travel_date")),
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// AutoAssignSeats handles POST /api/trips/:id/seats/auto-assign.
func (h Handler) AutoAssignSeats(c *gin.Context) {
	tripID, ok := idParam(c, "trip_id")
	if !ok {
		return
	}
	var req autoAssignRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	seats, err := h.availability(c).AutoAssignSeats(c.Request.Context(), services.AutoAssignQuery{
		TripID:         tripID,
		PickupStopID:   req.PickupStopID,
		DropoffStopID:  req.DropoffStopID,
		PassengerCount: req.PassengerCount,
		TravelDate:     strings.TrimSpace(req.TravelDate),
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trip_id": tripID, "seat_numbers": seats})
}

// GetTripSeatStats handles GET /api/trips/:id/seat-stats.
func (h Handler) GetTripSeatStats(c *gin.Context) {
	tripID, ok := idParam(c, "trip_id")
	if !ok {
		return
	}
	stats, err := h.availability(c).GetTripSeatStats(c.Request.Context(), tripID, strings.TrimSpace(c.Query("travel_date")))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// CompleteTrip handles POST /api/trips/:id/complete.
func (h Handler) CompleteTrip(c *gin.Context) {
	tripID, ok := idParam(c, "trip_id")
	if !ok {
		return
	}
	var req completeTripRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	date := strings.TrimSpace(req.TravelDate)
	if date == "" {
		date = strings.TrimSpace(c.Query("travel_date"))
	}
	out, err := h.bookings(c).CompleteTrip(c.Request.Context(), middleware.Caller(c), tripID, date)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
