package handlers

import (
	"net/http"
	"strings"

	"daladala/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// GetTripManifestPDF returns the driver's manifest (inline).
func (h Handler) GetTripManifestPDF(c *gin.Context) {
	tripID, ok := idParam(c, "trip_id")
	if !ok {
		return
	}
	pdfBytes, filename, err := h.docs(c).GenerateTripManifest(c.Request.Context(), middleware.Caller(c), tripID, strings.TrimSpace(c.Query("travel_date")))
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
