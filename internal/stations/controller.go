package stations

import (
	"net/http"

	"transitly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func (c *Controller) CreateStation(ctx *gin.Context) {
	var req CreateStationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	station, err := c.service.CreateStation(ctx.Request.Context(), req)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to create station", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Station created successfully", station, nil)
}

func (c *Controller) GetStation(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid station ID", nil, nil)
		return
	}

	station, err := c.service.GetStation(ctx.Request.Context(), id)
	if err != nil {
		if err == ErrStationNotFound {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Station not found", nil, nil)
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get station", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Station retrieved successfully", station, nil)
}

func (c *Controller) ListStations(ctx *gin.Context) {
	activeOnly := ctx.Query("active") == "true"

	result, err := c.service.ListStations(ctx.Request.Context(), activeOnly)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to list stations", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Stations retrieved successfully", result, nil)
}

func (c *Controller) UpdateStation(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid station ID", nil, nil)
		return
	}

	var req UpdateStationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	station, err := c.service.UpdateStation(ctx.Request.Context(), id, req)
	if err != nil {
		if err == ErrStationNotFound {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Station not found", nil, nil)
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to update station", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Station updated successfully", station, nil)
}
