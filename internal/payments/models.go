package payments

import (
	"time"

	"github.com/google/uuid"

	"transitly/internal/bookings"
)

// Status represents the state of a payment
type Status string

const (
	StatusInitiated Status = "INITIATED"
	StatusSuccess   Status = "SUCCESS"
	StatusFailed    Status = "FAILED"
	StatusRefunded  Status = "REFUNDED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusInitiated, StatusSuccess, StatusFailed, StatusRefunded:
		return true
	default:
		return false
	}
}

// Payment records a charge that converted a hold into a booking. The
// unique idempotency key makes replayed requests return this same row
// instead of charging twice.
type Payment struct {
	ID               uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	BookingID        uuid.UUID `json:"booking_id" gorm:"type:uuid;index;not null"`
	PassengerID      uuid.UUID `json:"passenger_id" gorm:"type:uuid;index;not null"`
	IdempotencyKey   string    `json:"idempotency_key" gorm:"uniqueIndex;size:128;not null"`
	FareAmount       float64   `json:"fare_amount" gorm:"type:decimal(10,2);not null"`
	ServiceFee       float64   `json:"service_fee" gorm:"type:decimal(10,2);not null"`
	TotalAmount      float64   `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	Method           string    `json:"method" gorm:"size:30;not null"`
	GatewayReference string    `json:"gateway_reference,omitempty" gorm:"size:128"`
	Status           Status    `json:"status" gorm:"type:varchar(20);not null;default:'SUCCESS'"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	// Relationships
	Booking *bookings.Booking `json:"booking,omitempty" gorm:"foreignKey:BookingID"`
}

func (Payment) TableName() string {
	return "payments"
}
