// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"transitly/internal/audit"
	"transitly/internal/auth"
	"transitly/internal/bookings"
	"transitly/internal/drivers"
	"transitly/internal/locks"
	"transitly/internal/notifications"
	"transitly/internal/payments"
	"transitly/internal/realtime"
	transitroutes "transitly/internal/routes"
	"transitly/internal/sessions"
	"transitly/internal/shared/config"
	"transitly/internal/shared/database"
	"transitly/internal/stations"
	"transitly/pkg/cache"
)

// Router holds all route dependencies
type Router struct {
	config      *config.Config
	db          *database.DB
	broadcaster realtime.Broadcaster
	locker      locks.Locker

	// Services kept for cross-feature injection and background jobs
	routeService        transitroutes.Service
	stationService      stations.Service
	driverService       drivers.Service
	bookingRepo         bookings.Repository
	sessionRepo         sessions.Repository
	bookingService      bookings.Service
	notificationService notifications.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, broadcaster realtime.Broadcaster, locker locks.Locker) *Router {
	return &Router{
		config:      cfg,
		db:          db,
		broadcaster: broadcaster,
		locker:      locker,
	}
}

// BookingService exposes the booking service for background jobs
func (r *Router) BookingService() bookings.Service {
	return r.bookingService
}

// NotificationService exposes the notification service for the consumer
func (r *Router) NotificationService() notifications.Service {
	return r.notificationService
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	// Audit trail records every mutating request
	auditRepo := audit.NewRepository(r.db.GetPostgreSQL())
	auditService := audit.NewService(auditRepo)
	engine.Use(audit.Trail(auditService))

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		// Driver verification first: registration files driver profiles
		// and session starts consult the approval gate
		r.setupDriverRoutes(api)
		r.setupAuthRoutes(api)

		// Catalog routes come first: sessions and bookings depend on them
		r.setupRouteRoutes(api)
		r.setupStationRoutes(api)

		r.setupSessionAndBookingRoutes(api)
		r.setupNotificationRoutes(api)

		auditController := audit.NewController(auditService)
		audit.NewRouter(auditController, r.config).SetupRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "transitly-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "transitly-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

// setupDriverRoutes configures driver profile verification
func (r *Router) setupDriverRoutes(rg *gin.RouterGroup) {
	driverRepo := drivers.NewRepository(r.db.GetPostgreSQL())
	r.driverService = drivers.NewService(driverRepo)
	driverController := drivers.NewController(r.driverService)
	drivers.NewRouter(driverController, r.config).SetupRoutes(rg)
}

// setupAuthRoutes configures authentication routes
func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authRepo := auth.NewRepository(r.db.GetPostgreSQL())
	authService := auth.NewService(authRepo, r.config, r.driverService)
	authController := auth.NewController(authService)
	auth.NewRouter(authController, r.config).SetupRoutes(rg)
}

// setupRouteRoutes configures transit route management
func (r *Router) setupRouteRoutes(rg *gin.RouterGroup) {
	routeRepo := transitroutes.NewRepository(r.db.GetPostgreSQL())
	r.routeService = transitroutes.NewService(routeRepo)
	routeController := transitroutes.NewController(r.routeService)
	transitroutes.NewRouter(routeController, r.config).SetupRoutes(rg)
}

// setupStationRoutes configures station management
func (r *Router) setupStationRoutes(rg *gin.RouterGroup) {
	stationRepo := stations.NewRepository(r.db.GetPostgreSQL())
	r.stationService = stations.NewService(stationRepo)
	stationController := stations.NewController(r.stationService)
	stations.NewRouter(stationController, r.config).SetupRoutes(rg)
}

// setupSessionAndBookingRoutes wires the seat inventory core: sessions,
// holds, bookings, and payments share repositories, so they are built
// together.
func (r *Router) setupSessionAndBookingRoutes(rg *gin.RouterGroup) {
	r.sessionRepo = sessions.NewRepository(r.db.GetPostgreSQL())
	r.bookingRepo = bookings.NewRepository(r.db.GetPostgreSQL())

	sessionService := sessions.NewService(
		r.sessionRepo,
		r.routeService,
		r.stationService,
		r.driverService, // approval gate on session start
		r.bookingRepo,   // confirmed booking counts
		r.bookingRepo, // hold sweeping on cancellation
		r.broadcaster,
		cache.NewService(r.db.GetRedisClient()),
	)
	sessionController := sessions.NewController(sessionService)
	sessions.NewRouter(sessionController, r.config).SetupRoutes(rg)

	holdCache := bookings.NewHoldCache(r.db.GetRedisClient())
	r.bookingService = bookings.NewService(
		r.bookingRepo,
		r.sessionRepo,
		r.routeService, // fare lookups
		r.locker,
		holdCache,
		r.broadcaster,
		r.config,
	)
	bookingController := bookings.NewController(r.bookingService)
	bookings.NewRouter(bookingController, r.config).SetupRoutes(rg)

	paymentRepo := payments.NewRepository(r.db.GetPostgreSQL())
	paymentService := payments.NewService(paymentRepo, r.broadcaster, holdCache)
	paymentController := payments.NewController(paymentService)
	payments.NewRouter(paymentController, r.config).SetupRoutes(rg)

	// Cancellation refunds settle on the payment side.
	r.bookingService.SetRefunder(paymentService)
}

// setupNotificationRoutes configures in-app notifications
func (r *Router) setupNotificationRoutes(rg *gin.RouterGroup) {
	notificationRepo := notifications.NewRepository(r.db.GetPostgreSQL())
	r.notificationService = notifications.NewService(notificationRepo)
	notificationController := notifications.NewController(r.notificationService)
	notifications.NewRouter(notificationController, r.config).SetupRoutes(rg)
}
