package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"daladala/internal/cache"
	"daladala/internal/domain"
	"daladala/internal/http/middleware"
	"daladala/internal/repositories"
	"daladala/internal/services"
	"daladala/internal/utils"

	"github.com/gin-gonic/gin"
)

// Handler carries the dependencies shared by every route.
type Handler struct {
	Store repositories.Store
	Cache cache.AvailabilityCache
}

func (h Handler) availability(c *gin.Context) services.AvailabilityService {
	return services.AvailabilityService{Store: h.Store, Cache: h.Cache, RequestID: middleware.GetRequestID(c)}
}

func (h Handler) reservations(c *gin.Context) services.ReservationService {
	return services.ReservationService{Store: h.Store, Cache: h.Cache, RequestID: middleware.GetRequestID(c)}
}

func (h Handler) boarding(c *gin.Context) services.BoardingService {
	return services.BoardingService{Store: h.Store, Cache: h.Cache, RequestID: middleware.GetRequestID(c)}
}

func (h Handler) bookings(c *gin.Context) services.BookingService {
	return services.BookingService{Store: h.Store, Cache: h.Cache, RequestID: middleware.GetRequestID(c)}
}

func (h Handler) docs(c *gin.Context) services.DocsService {
	return services.DocsService{Store: h.Store, RequestID: middleware.GetRequestID(c)}
}

// RespondError sends standard error payload with request_id included.
func RespondError(c *gin.Context, status int, message string, err error) {
	payload := gin.H{
		"error":      message,
		"code":       "bad_request",
		"request_id": middleware.GetRequestID(c),
	}
	if err != nil {
		payload["details"] = err.Error()
	}
	c.JSON(status, payload)
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		RespondError(c, http.StatusBadRequest, "empty request body", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid payload", err)
		return false
	}
	return true
}

// bindOptionalJSON binds the body only when one was sent.
func bindOptionalJSON[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return true
	}
	return BindJSONOrError(c, dst)
}

func idParam(c *gin.Context, field string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondDomainError(c, domain.ValidationError{Field: field, Msg: "invalid id"})
		return 0, false
	}
	return id, true
}

func stopQuery(c *gin.Context, key string) (domain.StopID, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, true
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		RespondDomainError(c, domain.ValidationError{Field: key, Msg: "must be a positive stop id"})
		return 0, false
	}
	return domain.StopID(n), true
}

// Stringish tolerates string, number or bool JSON values.
type Stringish string

func (s *Stringish) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case string(b) == "null" || len(b) == 0:
		*s = ""
		return nil
	case len(b) >= 2 && b[0] == '"' && b[len(b)-1] == '"':
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = Stringish(str)
		return nil
	default:
		*s = Stringish(strings.Trim(string(b), `"`))
		return nil
	}
}

// SeatList accepts ["1", 2] as well as "1, 2".
type SeatList []string

func (l *SeatList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var items []Stringish
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		out := make([]string, 0, len(items))
		for _, it := range items {
			out = append(out, string(it))
		}
		*l = utils.NormalizeSeats(out)
		return nil
	}
	var s Stringish
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	*l = utils.SplitSeatList(string(s))
	return nil
}
