package response

import (
	"time"

	"github.com/gin-gonic/gin"
)

// RespondJSON writes the standard envelope. Every handler replies
// through here so clients can rely on one shape for success and error
// paths alike.
func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
		Timestamp:  time.Now().UTC(),
	})
}
