package audit

import (
	"github.com/gin-gonic/gin"

	"transitly/internal/shared/config"
	"transitly/internal/shared/middleware"
	"transitly/internal/users"
)

// Router handles audit log routes
type Router struct {
	controller *Controller
	config     *config.Config
}

// NewRouter creates a new audit router
func NewRouter(controller *Controller, cfg *config.Config) *Router {
	return &Router{
		controller: controller,
		config:     cfg,
	}
}

// SetupRoutes registers audit endpoints
func (r *Router) SetupRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/audit-logs")
	group.Use(middleware.JWTAuthWithConfig(r.config), middleware.RequireRole(string(users.RoleAdmin)))
	{
		group.GET("", r.controller.ListLogs)
	}
}
