package drivers

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

// SubmitProfile handles PUT /drivers/me
func (c *Controller) SubmitProfile(ctx *gin.Context) {
	userID, ok := userFromContext(ctx)
	if !ok {
		return
	}

	var req SubmitProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	profile, err := c.service.SubmitProfile(ctx.Request.Context(), userID, req)
	if err != nil {
		response.RespondJSON(ctx, "error", apperrors.HTTPStatus(err), apperrors.MessageOf(err), nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Driver profile submitted for review", ToProfileResponse(profile), nil)
}

// GetMyProfile handles GET /drivers/me
func (c *Controller) GetMyProfile(ctx *gin.Context) {
	userID, ok := userFromContext(ctx)
	if !ok {
		return
	}

	profile, err := c.service.GetProfileByUser(ctx.Request.Context(), userID)
	if err != nil {
		response.RespondJSON(ctx, "error", apperrors.HTTPStatus(err), apperrors.MessageOf(err), nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Driver profile retrieved successfully", ToProfileResponse(profile), nil)
}

// ListProfiles handles GET /drivers (admin)
func (c *Controller) ListProfiles(ctx *gin.Context) {
	profiles, err := c.service.ListProfiles(ctx.Request.Context(), ctx.Query("status"))
	if err != nil {
		response.RespondJSON(ctx, "error", apperrors.HTTPStatus(err), apperrors.MessageOf(err), nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Driver profiles retrieved successfully", ToProfileResponseList(profiles), nil)
}

// ReviewProfile handles POST /drivers/:id/review (admin)
func (c *Controller) ReviewProfile(ctx *gin.Context) {
	reviewerID, ok := userFromContext(ctx)
	if !ok {
		return
	}

	profileID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid profile ID", nil, nil)
		return
	}

	var req ReviewProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	profile, err := c.service.ReviewProfile(ctx.Request.Context(), profileID, reviewerID, req)
	if err != nil {
		response.RespondJSON(ctx, "error", apperrors.HTTPStatus(err), apperrors.MessageOf(err), nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Driver profile reviewed", ToProfileResponse(profile), nil)
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
