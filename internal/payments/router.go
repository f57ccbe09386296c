package payments

import (
	"github.com/gin-gonic/gin"

	"transitly/internal/shared/config"
	"transitly/internal/shared/middleware"
	"transitly/internal/users"
)

// Router handles payment routes
type Router struct {
	controller *Controller
	config     *config.Config
}

// NewRouter creates a new payments router
func NewRouter(controller *Controller, cfg *config.Config) *Router {
	return &Router{
		controller: controller,
		config:     cfg,
	}
}

// SetupRoutes registers payment endpoints
func (r *Router) SetupRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/payments")
	group.Use(middleware.JWTAuthWithConfig(r.config), middleware.RequireRole(string(users.RolePassenger)))
	{
		group.POST("", r.controller.ProcessPayment)
		group.GET("", r.controller.ListMyPayments)
		group.GET("/:id", r.controller.GetPayment)
	}

	admin := rg.Group("/payments")
	admin.Use(middleware.JWTAuthWithConfig(r.config), middleware.RequireRole(string(users.RoleAdmin)))
	{
		admin.POST("/:id/refund", r.controller.RefundPayment)
	}
}
