package drivers

import (
	"github.com/gin-gonic/gin"

	"transitly/internal/shared/config"
	"transitly/internal/shared/middleware"
	"transitly/internal/users"
)

// Router handles driver verification routes
type Router struct {
	controller *Controller
	config     *config.Config
}

// NewRouter creates a new drivers router
func NewRouter(controller *Controller, cfg *config.Config) *Router {
	return &Router{
		controller: controller,
		config:     cfg,
	}
}

// SetupRoutes registers driver verification endpoints
func (r *Router) SetupRoutes(rg *gin.RouterGroup) {
	me := rg.Group("/drivers")
	me.Use(middleware.JWTAuthWithConfig(r.config), middleware.RequireRole(string(users.RoleDriver)))
	{
		me.GET("/me", r.controller.GetMyProfile)
		me.PUT("/me", r.controller.SubmitProfile)
	}

	admin := rg.Group("/drivers")
	admin.Use(middleware.JWTAuthWithConfig(r.config), middleware.RequireRole(string(users.RoleAdmin)))
	{
		admin.GET("", r.controller.ListProfiles)
		admin.POST("/:id/review", r.controller.ReviewProfile)
	}
}
