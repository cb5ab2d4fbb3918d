package handlers

import (
	"errors"
	"net/http"

	"daladala/internal/domain"
	"daladala/internal/http/middleware"
	"daladala/internal/utils"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

var kindStatus = map[domain.Kind]int{
	domain.KindNotFound:             http.StatusNotFound,
	domain.KindValidation:           http.StatusBadRequest,
	domain.KindInsufficientCapacity: http.StatusUnprocessableEntity,
	domain.KindSeatAlreadyReserved:  http.StatusConflict,
	domain.KindSeatUnavailable:      http.StatusConflict,
	domain.KindAlreadyBoarded:       http.StatusConflict,
	domain.KindAlreadyAlighted:      http.StatusConflict,
	domain.KindInvalidTransition:    http.StatusConflict,
	domain.KindConflict:             http.StatusConflict,
	domain.KindAccessDenied:         http.StatusForbidden,
}

// RespondDomainError maps domain errors to HTTP responses. Internal
// errors are logged and never echoed to the client.
func RespondDomainError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	status, ok := kindStatus[kind]
	if !ok {
		utils.LogFailure(middleware.GetRequestID(c), "http", c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:     "internal error",
			Code:      string(domain.KindInternal),
			RequestID: middleware.GetRequestID(c),
		})
		return
	}
	c.JSON(status, ErrorResponse{
		Error:     err.Error(),
		Code:      string(kind),
		Details:   errorDetails(err),
		RequestID: middleware.GetRequestID(c),
	})
}

// errorDetails exposes the fields a client needs to re-prompt.
func errorDetails(err error) any {
	var (
		capErr      domain.CapacityError
		unavailable domain.SeatUnavailableError
		validation  domain.ValidationError
		notFound    domain.NotFoundError
	)
	switch {
	case errors.As(err, &capErr):
		return gin.H{"trip_id": capErr.TripID, "requested": capErr.Requested, "available": capErr.Available}
	case errors.As(err, &unavailable):
		return gin.H{"seat_number": unavailable.SeatNumber}
	case errors.As(err, &validation) && validation.Field != "":
		return gin.H{"field": validation.Field}
	case errors.As(err, &notFound) && notFound.Resource != "":
		return gin.H{"resource": notFound.Resource, "id": notFound.ID}
	default:
		return nil
	}
}
