package audit

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"transitly/internal/shared/utils/response"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// ListLogs handles GET /audit-logs
func (c *Controller) ListLogs(ctx *gin.Context) {
	var query ListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	entries, totalCount, err := c.service.List(ctx.Request.Context(), query)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to list audit logs", nil, nil)
		return
	}

	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 || query.Limit > 200 {
		query.Limit = 50
	}

	payload := gin.H{
		"logs": entries,
		"pagination": gin.H{
			"page":        query.Page,
			"limit":       query.Limit,
			"total":       totalCount,
			"total_pages": int(math.Ceil(float64(totalCount) / float64(query.Limit))),
		},
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Audit logs retrieved successfully", payload, nil)
}
