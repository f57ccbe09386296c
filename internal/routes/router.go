package routes

import (
	"transitly/internal/shared/config"
	"transitly/internal/shared/middleware"
	"transitly/internal/users"

	"github.com/gin-gonic/gin"
)

// Router handles route-related routes
type Router struct {
	controller *Controller
	config     *config.Config
}

// NewRouter creates a new routes router
func NewRouter(controller *Controller, cfg *config.Config) *Router {
	return &Router{
		controller: controller,
		config:     cfg,
	}
}

// SetupRoutes registers all transit route endpoints
func (r *Router) SetupRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/routes")
	{
		group.GET("", r.controller.ListRoutes)
		group.GET("/:id", r.controller.GetRoute)

		admin := group.Group("")
		admin.Use(middleware.JWTAuthWithConfig(r.config), middleware.RequireRole(string(users.RoleAdmin)))
		{
			admin.POST("", r.controller.CreateRoute)
			admin.PATCH("/:id", r.controller.UpdateRoute)
		}
	}
}
