package bookings

import (
	"math"
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

// CreateHold handles POST /holds
func (c *Controller) CreateHold(ctx *gin.Context) {
	passengerID, ok := passengerFromContext(ctx)
	if !ok {
		return
	}

	var req CreateHoldRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	hold, err := c.service.CreateHold(ctx.Request.Context(), passengerID, req)
	if err != nil {
		response.RespondJSON(ctx, "error", apperrors.HTTPStatus(err), apperrors.MessageOf(err), nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Seats held successfully", ToHoldResponse(hold), nil)
}

// ReleaseHold handles DELETE /holds/:id
func (c *Controller) ReleaseHold(ctx *gin.Context) {
	passengerID, ok := passengerFromContext(ctx)
	if !ok {
		return
	}

	holdID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid hold ID", nil, nil)
		return
	}

	if err := c.service.ReleaseHold(ctx.Request.Context(), holdID, passengerID); err != nil {
		response.RespondJSON(ctx, "error", apperrors.HTTPStatus(err), apperrors.MessageOf(err), nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Hold released successfully", nil, nil)
}

// GetHold handles GET /holds/:id
func (c *Controller) GetHold(ctx *gin.Context) {
	passengerID, ok := passengerFromContext(ctx)
	if !ok {
		return
	}

	holdID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid hold ID", nil, nil)
		return
	}

	hold, err := c.service.GetHold(ctx.Request.Context(), holdID, passengerID)
	if err != nil {
		response.RespondJSON(ctx, "error", apperrors.HTTPStatus(err), apperrors.MessageOf(err), nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Hold retrieved successfully", ToHoldResponse(hold), nil)
}

// ListMyHolds handles GET /holds
func (c *Controller) ListMyHolds(ctx *gin.Context) {
	passengerID, ok := passengerFromContext(ctx)
	if !ok {
		return
	}

	holds, err := c.service.ListUserHolds(ctx.Request.Context(), passengerID)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to list holds", nil, nil)
		return
	}

	result := make([]HoldResponse, 0, len(holds))
	for i := range holds {
		result = append(result, ToHoldResponse(&holds[i]))
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Holds retrieved successfully", result, nil)
}

// GetBooking handles GET /bookings/:id
func (c *Controller) GetBooking(ctx *gin.Context) {
	passengerID, ok := passengerFromContext(ctx)
	if !ok {
		return
	}

	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid booking ID", nil, nil)
		return
	}

	booking, err := c.service.GetBooking(ctx.Request.Context(), bookingID, passengerID)
	if err != nil {
		response.RespondJSON(ctx, "error", apperrors.HTTPStatus(err), apperrors.MessageOf(err), nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking retrieved successfully", ToBookingResponse(booking), nil)
}

// ListMyBookings handles GET /bookings
func (c *Controller) ListMyBookings(ctx *gin.Context) {
	passengerID, ok := passengerFromContext(ctx)
	if !ok {
		return
	}

	var query BookingListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	bookings, totalCount, err := c.service.ListUserBookings(ctx.Request.Context(), passengerID, query)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to list bookings", nil, nil)
		return
	}

	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	payload := gin.H{
		"bookings": ToBookingResponseList(bookings),
		"pagination": gin.H{
			"page":        query.Page,
			"limit":       query.Limit,
			"total":       totalCount,
			"total_pages": int(math.Ceil(float64(totalCount) / float64(query.Limit))),
		},
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Bookings retrieved successfully", payload, nil)
}

// CancelBooking handles POST /bookings/:id/cancel
func (c *Controller) CancelBooking(ctx *gin.Context) {
	passengerID, ok := passengerFromContext(ctx)
	if !ok {
		return
	}

	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid booking ID", nil, nil)
		return
	}

	booking, err := c.service.CancelBooking(ctx.Request.Context(), bookingID, passengerID)
	if err != nil {
		response.RespondJSON(ctx, "error", apperrors.HTTPStatus(err), apperrors.MessageOf(err), nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking cancelled successfully", ToBookingResponse(booking), nil)
}

// ReapExpiredHolds handles POST /holds/reap (admin). The background
// reaper runs the same sweep on an interval; this lets operators force
// one immediately.
func (c *Controller) ReapExpiredHolds(ctx *gin.Context) {
	count, err := c.service.ReclaimExpired(ctx.Request.Context())
	if err != nil {
		response.RespondJSON(ctx, "error", apperrors.HTTPStatus(err), apperrors.MessageOf(err), gin.H{"reclaimed": count}, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Expired holds reclaimed", gin.H{"reclaimed": count}, nil)
}

func passengerFromContext(ctx *gin.Context) (uuid.UUID, bool) {
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
