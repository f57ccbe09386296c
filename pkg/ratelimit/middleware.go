package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"transitly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

// Middleware enforces per-client rate limits on every request
func Middleware(rateLimiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := getClientIP(c)
		limitType := getLimitType(c.FullPath())

		result, err := rateLimiter.IsAllowed(c.Request.Context(), clientIP, limitType)
		if err != nil {
			// Rate limiting is protective, not load-bearing: let the
			// request through when Redis is unreachable.
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", result.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", result.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", result.ResetTime))

		if !result.Allowed {
			response.RespondJSON(c, "error", http.StatusTooManyRequests,
				"Rate limit exceeded", nil, map[string]interface{}{
					"limit":      result.Limit,
					"reset_time": result.ResetTime,
				})
			c.Abort()
			return
		}

		c.Next()
	}
}

func getLimitType(path string) LimitType {
	switch {
	case strings.HasPrefix(path, "/health"),
		strings.HasPrefix(path, "/ping"),
		strings.HasPrefix(path, "/status"):
		return LimitTypeHealth

	case strings.Contains(path, "/audit-logs"):
		return LimitTypeAdmin

	case strings.Contains(path, "/auth/"):
		return LimitTypeAuth

	// Seat hold flow: the contended path.
	case strings.Contains(path, "/holds"):
		return LimitTypeHold

	case strings.Contains(path, "/payments"),
		strings.Contains(path, "/bookings"):
		return LimitTypePayment

	// Public browsing endpoints
	case strings.Contains(path, "/sessions"),
		strings.Contains(path, "/routes"),
		strings.Contains(path, "/stations"):
		return LimitTypePublic

	default:
		return LimitTypeDefault
	}
}

// getClientIP extracts the real client IP, honoring proxy headers
func getClientIP(c *gin.Context) string {
	xForwardedFor := c.GetHeader("X-Forwarded-For")
	if xForwardedFor != "" {
		ips := strings.Split(xForwardedFor, ",")
		if len(ips) > 0 {
			ip := strings.TrimSpace(ips[0])
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	xRealIP := c.GetHeader("X-Real-IP")
	if xRealIP != "" {
		if net.ParseIP(xRealIP) != nil {
			return xRealIP
		}
	}

	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}

	return ip
}
