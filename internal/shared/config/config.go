package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for our application
type Config struct {
	// Server configuration
	Port           string
	GinMode        string
	APIVersion     string
	APIPrefix      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// JWT configuration
	JWT JWTConfig

	// Seat booking configuration
	Booking BookingConfig

	// Advisory lock configuration
	Lock LockConfig

	// Kafka event broadcasting
	Kafka KafkaConfig

	// Per-client rate limiting
	RateLimit RateLimitConfig

	// Logging
	LogLevel string
}

// DatabaseConfig holds database configuration. LockTimeout caps how
// long a transaction waits on a contended seat row before Postgres
// gives up.
type DatabaseConfig struct {
	Host        string
	Port        string
	Name        string
	User        string
	Password    string
	SSLMode     string
	LockTimeout time.Duration
	DSN         string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Addr     string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	JWTExpiresIn     time.Duration
	RefreshExpiresIn time.Duration
}

// BookingConfig holds the seat hold and payment tuning knobs
type BookingConfig struct {
	HoldTTL         time.Duration // how long a hold keeps seats off the pool
	MaxSeatsPerHold int
	ServiceFee      float64 // flat fee per seat, added on top of the route fare
	ReaperInterval  time.Duration
}

// LockConfig holds per-session advisory lock configuration.
// FailOpen controls behavior when the lock backend is unreachable:
// true lets hold creation proceed (the row-locked transaction is the
// safety net), false rejects new holds until Redis is back.
type LockConfig struct {
	TTL      time.Duration
	FailOpen bool
}

// KafkaConfig holds Kafka broadcasting configuration
type KafkaConfig struct {
	Brokers     []string
	TopicPrefix string
	Enabled     bool
}

// RateLimitConfig holds per-client request budgets
type RateLimitConfig struct {
	Enabled         bool
	WindowDuration  time.Duration
	DefaultRequests int
	PublicRequests  int
	AuthRequests    int
	HoldRequests    int
	PaymentRequests int
	AdminRequests   int
	HealthRequests  int
}

// Load loads configuration from environment variables
func Load() *Config {
	cfg := &Config{
		// Server configuration
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		APIVersion:     getEnv("API_VERSION", "v1"),
		APIPrefix:      getEnv("API_PREFIX", "/api"),
		ReadTimeout:    getDurationEnv("READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getDurationEnv("WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:    getDurationEnv("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes: getIntEnv("MAX_HEADER_BYTES", 1<<20), // 1 MB

		// Database configuration
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			Name:        getEnv("DB_NAME", "transitly_db"),
			User:        getEnv("DB_USER", "transitly_user"),
			Password:    getEnv("DB_PASSWORD", "transitly_password"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			LockTimeout: getDurationEnv("DB_LOCK_TIMEOUT", 5*time.Second),
		},

		// Redis configuration
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},

		// JWT configuration
		JWT: JWTConfig{
			Secret:           getEnv("JWT_SECRET", "your-super-secret-jwt-key"),
			JWTExpiresIn:     getDurationEnvSeconds("JWT_EXPIRES_IN", 15*time.Minute),
			RefreshExpiresIn: getDurationEnvSeconds("JWT_REFRESH_EXPIRES_IN", 24*time.Hour),
		},

		// Seat booking configuration
		Booking: BookingConfig{
			HoldTTL:         getDurationEnvSeconds("HOLD_TTL", 300*time.Second),
			MaxSeatsPerHold: getIntEnv("MAX_SEATS_PER_HOLD", 10),
			ServiceFee:      getFloatEnv("SERVICE_FEE_PER_SEAT", 1.0),
			ReaperInterval:  getDurationEnv("HOLD_REAPER_INTERVAL", 1*time.Minute),
		},

		// Advisory lock configuration
		Lock: LockConfig{
			TTL:      getDurationEnvSeconds("SEAT_LOCK_TTL", 10*time.Second),
			FailOpen: getBoolEnv("LOCK_FAIL_OPEN", true),
		},

		// Kafka configuration
		Kafka: KafkaConfig{
			Brokers:     getStringSliceEnv("KAFKA_BROKERS", []string{}),
			TopicPrefix: getEnv("KAFKA_TOPIC_PREFIX", "transitly"),
			Enabled:     getBoolEnv("KAFKA_ENABLED", false),
		},

		// Rate limiting
		RateLimit: RateLimitConfig{
			Enabled:         getBoolEnv("RATE_LIMIT_ENABLED", false),
			WindowDuration:  getDurationEnv("RATE_LIMIT_WINDOW", 1*time.Minute),
			DefaultRequests: getIntEnv("RATE_LIMIT_DEFAULT", 120),
			PublicRequests:  getIntEnv("RATE_LIMIT_PUBLIC", 300),
			AuthRequests:    getIntEnv("RATE_LIMIT_AUTH", 20),
			HoldRequests:    getIntEnv("RATE_LIMIT_HOLD", 30),
			PaymentRequests: getIntEnv("RATE_LIMIT_PAYMENT", 30),
			AdminRequests:   getIntEnv("RATE_LIMIT_ADMIN", 60),
			HealthRequests:  getIntEnv("RATE_LIMIT_HEALTH", 600),
		},

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "debug"),
	}

	// Build composite values
	cfg.Database.DSN = buildDatabaseDSN(cfg.Database)
	cfg.Redis.Addr = cfg.Redis.Host + ":" + cfg.Redis.Port

	return cfg
}

// buildDatabaseDSN builds the database connection string
func buildDatabaseDSN(db DatabaseConfig) string {
	dsn := "host=" + db.Host +
		" port=" + db.Port +
		" user=" + db.User +
		" password=" + db.Password +
		" dbname=" + db.Name +
		" sslmode=" + db.SSLMode
	if db.LockTimeout > 0 {
		dsn += fmt.Sprintf(" options='-c lock_timeout=%d'", db.LockTimeout.Milliseconds())
	}
	return dsn
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

// getFloatEnv gets a float environment variable with a fallback value
func getFloatEnv(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return fallback
}

// getDurationEnv gets a duration environment variable with a fallback value
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

// getDurationEnvSeconds gets an environment variable as seconds (int) and converts to time.Duration
func getDurationEnvSeconds(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// getBoolEnv gets a boolean environment variable with a fallback value
func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

// getStringSliceEnv gets a comma-separated string environment variable as a slice
func getStringSliceEnv(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		var result []string
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GinMode == "debug"
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return ":" + c.Port
}

// GetAPIBasePath returns the API base path
func (c *Config) GetAPIBasePath() string {
	return c.APIPrefix + "/" + c.APIVersion
}
