package payments

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

// ProcessPayment handles POST /payments
func (c *Controller) ProcessPayment(ctx *gin.Context) {
	passengerID, ok := passengerFromContext(ctx)
	if !ok {
		return
	}

	var req ProcessPaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	payment, err := c.service.ProcessPayment(ctx.Request.Context(), passengerID, req)
	if err != nil {
		response.RespondJSON(ctx, "error", apperrors.HTTPStatus(err), apperrors.MessageOf(err), nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Payment processed successfully", ToResponse(payment), nil)
}

// GetPayment handles GET /payments/:id
func (c *Controller) GetPayment(ctx *gin.Context) {
	passengerID, ok := passengerFromContext(ctx)
	if !ok {
		return
	}

	paymentID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid payment ID", nil, nil)
		return
	}

	payment, err := c.service.GetPayment(ctx.Request.Context(), paymentID, passengerID)
	if err != nil {
		response.RespondJSON(ctx, "error", apperrors.HTTPStatus(err), apperrors.MessageOf(err), nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Payment retrieved successfully", ToResponse(payment), nil)
}

// ListMyPayments handles GET /payments
func (c *Controller) ListMyPayments(ctx *gin.Context) {
	passengerID, ok := passengerFromContext(ctx)
	if !ok {
		return
	}

	list, err := c.service.ListUserPayments(ctx.Request.Context(), passengerID)
	if err != nil {
		response.RespondJSON(ctx, "error", apperrors.HTTPStatus(err), apperrors.MessageOf(err), nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Payments retrieved successfully", ToResponseList(list), nil)
}

// RefundPayment handles POST /payments/:id/refund (admin)
func (c *Controller) RefundPayment(ctx *gin.Context) {
	paymentID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid payment ID", nil, nil)
		return
	}

	payment, err := c.service.RefundPayment(ctx.Request.Context(), paymentID)
	if err != nil {
		response.RespondJSON(ctx, "error", apperrors.HTTPStatus(err), apperrors.MessageOf(err), nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Payment refunded successfully", ToResponse(payment), nil)
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
