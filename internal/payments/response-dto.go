package payments

import (
	"time"

	"github.com/google/uuid"

	"transitly/internal/bookings"
)

// PaymentResponse is the API view of a settled payment and the booking
// it produced
type PaymentResponse struct {
	ID               uuid.UUID                 `json:"id"`
	BookingID        uuid.UUID                 `json:"booking_id"`
	IdempotencyKey   string                    `json:"idempotency_key"`
	FareAmount       float64                   `json:"fare_amount"`
	ServiceFee       float64                   `json:"service_fee"`
	TotalAmount      float64                   `json:"total_amount"`
	Method           string                    `json:"method"`
	GatewayReference string                    `json:"gateway_reference,omitempty"`
	Status           Status                    `json:"status"`
	CreatedAt        time.Time                 `json:"created_at"`
	Booking          *bookings.BookingResponse `json:"booking,omitempty"`
}

// ToResponse converts a payment entity to its API representation
func ToResponse(p *Payment) PaymentResponse {
	resp := PaymentResponse{
		ID:               p.ID,
		BookingID:        p.BookingID,
		IdempotencyKey:   p.IdempotencyKey,
		FareAmount:       p.FareAmount,
		ServiceFee:       p.ServiceFee,
		TotalAmount:      p.TotalAmount,
		Method:           p.Method,
		GatewayReference: p.GatewayReference,
		Status:           p.Status,
		CreatedAt:        p.CreatedAt,
	}
	if p.Booking != nil {
		booking := bookings.ToBookingResponse(p.Booking)
		resp.Booking = &booking
	}
	return resp
}

// ToResponseList converts payments to their API representation
func ToResponseList(list []Payment) []PaymentResponse {
	result := make([]PaymentResponse, 0, len(list))
	for i := range list {
		result = append(result, ToResponse(&list[i]))
	}
	return result
}
