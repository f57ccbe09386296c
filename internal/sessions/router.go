package sessions

import (
	"github.com/gin-gonic/gin"

	"transitly/internal/shared/config"
	"transitly/internal/shared/middleware"
	"transitly/internal/users"
)

// Router handles session-related routes
type Router struct {
	controller *Controller
	config     *config.Config
}

// NewRouter creates a new sessions router
func NewRouter(controller *Controller, cfg *config.Config) *Router {
	return &Router{
		controller: controller,
		config:     cfg,
	}
}

// SetupRoutes registers all session endpoints
func (r *Router) SetupRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/sessions")
	{
		group.GET("", r.controller.ListSessions)
		group.GET("/:id", r.controller.GetSession)

		driver := group.Group("")
		driver.Use(middleware.JWTAuthWithConfig(r.config), middleware.RequireRole(string(users.RoleDriver)))
		{
			driver.POST("", r.controller.StartSession)
			driver.GET("/mine", r.controller.ListMySessions)
			driver.POST("/:id/close", r.controller.CloseSession)
			driver.POST("/:id/cancel", r.controller.CancelSession)
		}
	}
}
