package stations

import (
	"transitly/internal/shared/config"
	"transitly/internal/shared/middleware"
	"transitly/internal/users"

	"github.com/gin-gonic/gin"
)

// Router handles station-related routes
type Router struct {
	controller *Controller
	config     *config.Config
}

// NewRouter creates a new stations router
func NewRouter(controller *Controller, cfg *config.Config) *Router {
	return &Router{
		controller: controller,
		config:     cfg,
	}
}

// SetupRoutes registers all station endpoints
func (r *Router) SetupRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/stations")
	{
		group.GET("", r.controller.ListStations)
		group.GET("/:id", r.controller.GetStation)

		admin := group.Group("")
		admin.Use(middleware.JWTAuthWithConfig(r.config), middleware.RequireRole(string(users.RoleAdmin)))
		{
			admin.POST("", r.controller.CreateStation)
			admin.PATCH("/:id", r.controller.UpdateStation)
		}
	}
}
