package handlers

import (
	"net/http"

	"daladala/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// BoardPassenger handles POST /api/seat-assignments/:id/board.
func (h Handler) BoardPassenger(c *gin.Context) {
	id, ok := idParam(c, "assignment_id")
	if !ok {
		return
	}
	res, err := h.boarding(c).BoardPassenger(c.Request.Context(), middleware.Caller(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ReleaseSeat handles POST /api/seat-assignments/:id/release.
func (h Handler) ReleaseSeat(c *gin.Context) {
	id, ok := idParam(c, "assignment_id")
	if !ok {
		return
	}
	res, err := h.boarding(c).ReleaseSeat(c.Request.Context(), middleware.Caller(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
