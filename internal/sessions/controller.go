package sessions

import (
	"net/http"

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

// StartSession handles POST /sessions
func (c *Controller) StartSession(ctx *gin.Context) {
	driverID, ok := driverFromContext(ctx)
	if !ok {
		return
	}

	var req StartSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	session, err := c.service.StartSession(ctx.Request.Context(), driverID, req)
	if err != nil {
		response.RespondJSON(ctx, "error", apperrors.HTTPStatus(err), apperrors.MessageOf(err), nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Session started successfully", ToResponse(session), nil)
}

// CloseSession handles POST /sessions/:id/close
func (c *Controller) CloseSession(ctx *gin.Context) {
	driverID, ok := driverFromContext(ctx)
	if !ok {
		return
	}

	sessionID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid session ID", nil, nil)
		return
	}

	session, err := c.service.CloseSession(ctx.Request.Context(), sessionID, driverID)
	if err != nil {
		response.RespondJSON(ctx, "error", apperrors.HTTPStatus(err), apperrors.MessageOf(err), nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Session closed successfully", ToResponse(session), nil)
}

// CancelSession handles POST /sessions/:id/cancel
func (c *Controller) CancelSession(ctx *gin.Context) {
	driverID, ok := driverFromContext(ctx)
	if !ok {
		return
	}

	sessionID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid session ID", nil, nil)
		return
	}

	session, err := c.service.CancelSession(ctx.Request.Context(), sessionID, driverID)
	if err != nil {
		response.RespondJSON(ctx, "error", apperrors.HTTPStatus(err), apperrors.MessageOf(err), nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Session cancelled successfully", ToResponse(session), nil)
}

// GetSession handles GET /sessions/:id
func (c *Controller) GetSession(ctx *gin.Context) {
	sessionID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid session ID", nil, nil)
		return
	}

	session, err := c.service.GetSession(ctx.Request.Context(), sessionID)
	if err != nil {
		response.RespondJSON(ctx, "error", apperrors.HTTPStatus(err), apperrors.MessageOf(err), nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Session retrieved successfully", ToResponse(session), nil)
}

// ListSessions handles GET /sessions
func (c *Controller) ListSessions(ctx *gin.Context) {
	var query SessionListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	sessions, err := c.service.ListSessions(ctx.Request.Context(), query)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to list sessions", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Sessions retrieved successfully", ToResponseList(sessions), nil)
}

// ListMySessions handles GET /sessions/mine for drivers
func (c *Controller) ListMySessions(ctx *gin.Context) {
	driverID, ok := driverFromContext(ctx)
	if !ok {
		return
	}

	sessions, err := c.service.ListDriverSessions(ctx.Request.Context(), driverID, ctx.Query("status"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to list sessions", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Sessions retrieved successfully", ToResponseList(sessions), nil)
}

func driverFromContext(ctx *gin.Context) (uuid.UUID, bool) {
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
