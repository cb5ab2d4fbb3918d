package api

import (
	stdhttp "net/http"

	intconfig "daladala/internal/config"
	"daladala/internal/domain"
	h "daladala/internal/http/handlers"
	"daladala/internal/http/middleware"
	"daladala/internal/utils"

	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env, handler h.Handler) *gin.Engine {
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		utils.Logger().WithError(err).Warn("failed to set trusted proxies")
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	limiter := middleware.NewRateLimiter(env.RateLimitRPS, env.RateLimitBurst)
	limited := limiter.Middleware()
	staff := middleware.RequireRoles(domain.RoleDriver, domain.RoleAdmin)

	api := r.Group("/api")
	{
		api.GET("/health", handler.Health)

		authed := api.Group("", middleware.Auth([]byte(env.JWTSecret)))
		authed.GET("/db-check", middleware.RequireRoles(domain.RoleAdmin), handler.DBCheck)

		trips := authed.Group("/trips")
		trips.GET("/:id/seats", handler.GetTripSeats)
		trips.POST("/:id/seats/auto-assign", limited, handler.AutoAssignSeats)
		trips.GET("/:id/seat-stats", handler.GetTripSeatStats)
		trips.GET("/:id/manifest", staff, handler.GetTripManifestPDF)
		trips.POST("/:id/complete", staff, handler.CompleteTrip)

		bookings := authed.Group("/bookings")
		bookings.POST("", limited, handler.CreateBooking)
		bookings.GET("/:id", handler.GetBooking)
		bookings.POST("/:id/seats", limited, handler.ReserveSeats)
		bookings.POST("/:id/confirm", limited, handler.ConfirmBooking)
		bookings.POST("/:id/cancel", limited, handler.CancelBooking)

		assignments := authed.Group("/seat-assignments")
		assignments.POST("/:id/board", limited, handler.BoardPassenger)
		assignments.POST("/:id/release", limited, handler.ReleaseSeat)
	}

	return r
}
