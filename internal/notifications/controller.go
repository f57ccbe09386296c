package notifications

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"transitly/internal/shared/apperrors"
	"transitly/internal/shared/middleware"
	"transitly/internal/shared/utils/response"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// ListNotifications handles GET /notifications
func (c *Controller) ListNotifications(ctx *gin.Context) {
	userID, ok := userFromContext(ctx)
	if !ok {
		return
	}

	unreadOnly := ctx.Query("unread") == "true"
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))

	notifications, err := c.service.ListForUser(ctx.Request.Context(), userID, unreadOnly, limit)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to list notifications", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Notifications retrieved successfully", notifications, nil)
}

// MarkRead handles POST /notifications/:id/read
func (c *Controller) MarkRead(ctx *gin.Context) {
	userID, ok := userFromContext(ctx)
	if !ok {
		return
	}

	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid notification ID", nil, nil)
		return
	}

	if err := c.service.MarkRead(ctx.Request.Context(), id, userID); err != nil {
		response.RespondJSON(ctx, "error", apperrors.HTTPStatus(err), apperrors.MessageOf(err), nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Notification marked as read", nil, nil)
}

func userFromContext(ctx *gin.Context) (uuid.UUID, bool) {
	raw, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Authentication required", nil, nil)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "Invalid user identity", nil, nil)
		return uuid.Nil, false
	}
	return id, true
}
