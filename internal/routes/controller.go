package routes

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

func (c *Controller) CreateRoute(ctx *gin.Context) {
	var req CreateRouteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	route, err := c.service.CreateRoute(ctx.Request.Context(), req)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to create route", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Route created successfully", route, nil)
}

func (c *Controller) GetRoute(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid route ID", nil, nil)
		return
	}

	route, err := c.service.GetRoute(ctx.Request.Context(), id)
	if err != nil {
		if err == ErrRouteNotFound {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Route not found", nil, nil)
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get route", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Route retrieved successfully", route, nil)
}

func (c *Controller) ListRoutes(ctx *gin.Context) {
	activeOnly := ctx.Query("active") == "true"

	result, err := c.service.ListRoutes(ctx.Request.Context(), activeOnly)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to list routes", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Routes retrieved successfully", result, nil)
}

func (c *Controller) UpdateRoute(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid route ID", nil, nil)
		return
	}

	var req UpdateRouteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	route, err := c.service.UpdateRoute(ctx.Request.Context(), id, req)
	if err != nil {
		if err == ErrRouteNotFound {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Route not found", nil, nil)
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to update route", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Route updated successfully", route, nil)
}
