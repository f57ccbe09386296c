package notifications

import (
	"github.com/gin-gonic/gin"

	"transitly/internal/shared/config"
	"transitly/internal/shared/middleware"
)

// Router handles notification routes
type Router struct {
	controller *Controller
	config     *config.Config
}

// NewRouter creates a new notifications router
func NewRouter(controller *Controller, cfg *config.Config) *Router {
	return &Router{
		controller: controller,
		config:     cfg,
	}
}

// SetupRoutes registers notification endpoints
func (r *Router) SetupRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/notifications")
	group.Use(middleware.JWTAuthWithConfig(r.config))
	{
		group.GET("", r.controller.ListNotifications)
		group.POST("/:id/read", r.controller.MarkRead)
	}
}
