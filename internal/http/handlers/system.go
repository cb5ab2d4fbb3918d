package handlers

import (
	"context"
	"net/http"
	"time"

	"daladala/internal/utils"

	"github.com/gin-gonic/gin"
)

func (h Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "daladala seat service is running"})
}

func (h Handler) DBCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database unreachable: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "database OK", "checked_at": utils.FormatDateTime(utils.NowUTC())})
}
