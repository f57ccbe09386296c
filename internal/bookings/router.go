package bookings

import (
	"github.com/gin-gonic/gin"

	"transitly/internal/shared/config"
	"transitly/internal/shared/middleware"
	"transitly/internal/users"
)

// Router handles hold and booking routes
type Router struct {
	controller *Controller
	config     *config.Config
}

// NewRouter creates a new bookings router
func NewRouter(controller *Controller, cfg *config.Config) *Router {
	return &Router{
		controller: controller,
		config:     cfg,
	}
}

// SetupRoutes registers hold and booking endpoints
func (r *Router) SetupRoutes(rg *gin.RouterGroup) {
	auth := []gin.HandlerFunc{
		middleware.JWTAuthWithConfig(r.config),
		middleware.RequireRole(string(users.RolePassenger)),
	}

	holds := rg.Group("/holds")
	holds.Use(auth...)
	{
		holds.POST("", r.controller.CreateHold)
		holds.GET("", r.controller.ListMyHolds)
		holds.GET("/:id", r.controller.GetHold)
		holds.DELETE("/:id", r.controller.ReleaseHold)
	}

	admin := rg.Group("/holds")
	admin.Use(middleware.JWTAuthWithConfig(r.config), middleware.RequireRole(string(users.RoleAdmin)))
	{
		admin.POST("/reap", r.controller.ReapExpiredHolds)
	}

	bookings := rg.Group("/bookings")
	bookings.Use(auth...)
	{
		bookings.GET("", r.controller.ListMyBookings)
		bookings.GET("/:id", r.controller.GetBooking)
		bookings.POST("/:id/cancel", r.controller.CancelBooking)
	}
}
