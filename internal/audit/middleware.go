package audit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"transitly/internal/shared/middleware"
)

// Trail returns middleware that records every state-changing request
// after it completes.
func Trail(service Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			return
		}

		var actorID *uuid.UUID
		if raw, ok := middleware.UserIDFromContext(c); ok {
			if id, err := uuid.Parse(raw); err == nil {
				actorID = &id
			}
		}

		service.Record(actorID, c.Request.Method, c.Request.URL.Path, c.Writer.Status(), c.ClientIP())
	}
}
