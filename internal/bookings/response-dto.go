package bookings

import (
	"time"

	"github.com/google/uuid"
)

// HoldResponse is the API view of a hold, including its price quote.
// The quote is what a converting payment must charge.
type HoldResponse struct {
	ID          uuid.UUID `json:"id"`
	SessionID   uuid.UUID `json:"session_id"`
	SeatsCount  int       `json:"seats_count"`
	BaseFare    float64   `json:"base_fare"`
	ServiceFee  float64   `json:"service_fee"`
	TotalAmount float64   `json:"total_amount"`
	ExpiresAt   time.Time `json:"expires_at"`
	ExpiresIn   int       `json:"expires_in_seconds"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToHoldResponse converts a hold entity to its API representation
func ToHoldResponse(h *SeatHold) HoldResponse {
	expiresIn := int(time.Until(h.ExpiresAt).Seconds())
	if expiresIn < 0 {
		expiresIn = 0
	}
	return HoldResponse{
		ID:          h.ID,
		SessionID:   h.SessionID,
		SeatsCount:  h.SeatsCount,
		BaseFare:    h.BaseFare,
		ServiceFee:  h.ServiceFee,
		TotalAmount: h.TotalAmount,
		ExpiresAt:   h.ExpiresAt,
		ExpiresIn:   expiresIn,
		CreatedAt:   h.CreatedAt,
	}
}

// BookingResponse is the API view of a booking
type BookingResponse struct {
	ID          uuid.UUID  `json:"id"`
	SessionID   uuid.UUID  `json:"session_id"`
	PassengerID uuid.UUID  `json:"passenger_id"`
	SeatsCount  int        `json:"seats_count"`
	TotalAmount float64    `json:"total_amount"`
	Status      Status     `json:"status"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ToBookingResponse converts a booking entity to its API representation
func ToBookingResponse(b *Booking) BookingResponse {
	return BookingResponse{
		ID:          b.ID,
		SessionID:   b.SessionID,
		PassengerID: b.PassengerID,
		SeatsCount:  b.SeatsCount,
		TotalAmount: b.TotalAmount,
		Status:      b.Status,
		CancelledAt: b.CancelledAt,
		CreatedAt:   b.CreatedAt,
	}
}

// ToBookingResponseList converts a slice of bookings
func ToBookingResponseList(list []Booking) []BookingResponse {
	result := make([]BookingResponse, 0, len(list))
	for i := range list {
		result = append(result, ToBookingResponse(&list[i]))
	}
	return result
}
