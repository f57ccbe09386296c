package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"transitly/api/routes"
	"transitly/internal/bookings"
	"transitly/internal/locks"
	"transitly/internal/notifications"
	"transitly/internal/realtime"
	"transitly/internal/shared/config"
	"transitly/internal/shared/database"
	"transitly/pkg/logger"
	"transitly/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	appLogger := logger.GetDefault()

	// Smart environment loading
	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	// Load config
	cfg := config.Load()

	// Set Gin mode (debug/release)
	gin.SetMode(cfg.GinMode)

	// Initialize DB
	db, err := database.InitDB(cfg)
	if err != nil {
		appLogger.Error("failed to connect:", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Advisory locks thin out hold stampedes; the row-locked seat
	// transactions remain correct without them.
	locker := locks.NewService(db.GetRedisClient(), cfg.Lock.FailOpen)

	// Event broadcasting: Kafka when configured, otherwise a no-op.
	var broadcaster realtime.Broadcaster = realtime.NoopBroadcaster{}
	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) > 0 {
		kafkaBroadcaster, err := realtime.NewKafkaBroadcaster(
			realtime.DefaultKafkaConfig(cfg.Kafka.Brokers, cfg.Kafka.TopicPrefix))
		if err != nil {
			appLogger.Error("Failed to initialize Kafka broadcaster", slog.Any("error", err))
			appLogger.Info("Continuing without event broadcasting")
		} else {
			broadcaster = kafkaBroadcaster
			defer kafkaBroadcaster.Close()
			appLogger.Info("Kafka broadcaster initialized",
				slog.Any("brokers", cfg.Kafka.Brokers),
				slog.String("topic_prefix", cfg.Kafka.TopicPrefix),
			)
		}
	}

	// Initialize rate limiter
	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = ratelimit.NewRateLimiter(db.GetRedisClient(), &ratelimit.Config{
			Enabled:         cfg.RateLimit.Enabled,
			WindowDuration:  cfg.RateLimit.WindowDuration,
			DefaultRequests: cfg.RateLimit.DefaultRequests,
			PublicRequests:  cfg.RateLimit.PublicRequests,
			AuthRequests:    cfg.RateLimit.AuthRequests,
			HoldRequests:    cfg.RateLimit.HoldRequests,
			PaymentRequests: cfg.RateLimit.PaymentRequests,
			AdminRequests:   cfg.RateLimit.AdminRequests,
			HealthRequests:  cfg.RateLimit.HealthRequests,
		})
		appLogger.Info("Rate limiter initialized",
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("hold_requests", cfg.RateLimit.HoldRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	// Setup router
	appRouter := routes.NewRouter(cfg, db, broadcaster, locker)
	engine := setupEngine(cfg, rateLimiter)
	appRouter.SetupRoutes(engine)

	jobCtx, jobCancel := context.WithCancel(context.Background())
	defer jobCancel()

	// Start the hold expiry reaper
	reaper := bookings.NewReaper(appRouter.BookingService(), bookings.ReaperConfig{
		Interval: cfg.Booking.ReaperInterval,
	})
	reaper.Start(jobCtx)
	defer reaper.Stop()

	// Notification fan-out from broadcast events
	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) > 0 {
		consumer, err := notifications.NewConsumer(
			notifications.DefaultConsumerConfig(cfg.Kafka.Brokers, cfg.Kafka.TopicPrefix),
			appRouter.NotificationService(),
		)
		if err != nil {
			appLogger.Error("Failed to initialize notification consumer", slog.Any("error", err))
			appLogger.Info("Continuing without notification fan-out")
		} else {
			consumer.Start(jobCtx)
			defer func() {
				if err := consumer.Stop(); err != nil {
					appLogger.Error("Error stopping notification consumer", slog.Any("error", err))
				}
			}()
		}
	}

	// HTTP server
	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        engine,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		appLogger.Info("🚀 Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("api_status", fmt.Sprintf("http://localhost:%s%s/status", cfg.Port, cfg.GetAPIBasePath())),
			slog.String("version", cfg.APIVersion),
			slog.Bool("kafka_events", cfg.Kafka.Enabled),
			slog.Bool("rate_limiting", cfg.RateLimit.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("Server exited gracefully")
}

func setupEngine(cfg *config.Config, rateLimiter *ratelimit.RateLimiter) *gin.Engine {
	engine := gin.New()
	appLogger := logger.GetDefault()

	// Built-in middleware: logs requests + recovers from panics
	engine.Use(RequestLoggerMiddleware(appLogger), gin.Recovery())

	// CORS configuration
	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true // allow every origin dynamically
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-RateLimit-*"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Global rate limiting middleware (applied to all routes)
	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter))
		appLogger.Info("Rate limiting middleware applied to all routes")
	}

	return engine
}

func RequestLoggerMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		l.LogHTTPRequest(c, duration)
	}
}
