package bookings

import (
	"time"

	"github.com/google/uuid"

	"transitly/internal/sessions"
	"transitly/internal/users"
)

// SeatHold is a durable, time-boxed reservation. Its seats are already
// subtracted from the session's available pool; when the hold is
// released, expired, or converted, the row is deleted in the same
// transaction that settles the seats.
type SeatHold struct {
	ID          uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	SessionID   uuid.UUID `json:"session_id" gorm:"type:uuid;index;not null"`
	PassengerID uuid.UUID `json:"passenger_id" gorm:"type:uuid;index;not null"`
	SeatsCount  int       `json:"seats_count" gorm:"not null"`
	BaseFare    float64   `json:"base_fare" gorm:"type:decimal(10,2);not null"`
	ServiceFee  float64   `json:"service_fee" gorm:"type:decimal(10,2);not null"`
	TotalAmount float64   `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	ExpiresAt   time.Time `json:"expires_at" gorm:"index;not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	Session   *sessions.Session `json:"session,omitempty" gorm:"foreignKey:SessionID"`
	Passenger *users.User       `json:"passenger,omitempty" gorm:"foreignKey:PassengerID"`
}

func (SeatHold) TableName() string {
	return "seat_holds"
}

// IsExpired reports whether the hold's window has passed.
func (h *SeatHold) IsExpired() bool {
	return time.Now().After(h.ExpiresAt)
}

// Booking is a confirmed seat purchase, created only by a successful
// payment converting a live hold.
type Booking struct {
	ID          uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	SessionID   uuid.UUID  `json:"session_id" gorm:"type:uuid;index;not null"`
	PassengerID uuid.UUID  `json:"passenger_id" gorm:"type:uuid;index;not null"`
	SeatsCount  int        `json:"seats_count" gorm:"not null"`
	TotalAmount float64    `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	Status      Status     `json:"status" gorm:"type:varchar(20);not null;default:'CONFIRMED'"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relationships
	Session   *sessions.Session `json:"session,omitempty" gorm:"foreignKey:SessionID"`
	Passenger *users.User       `json:"passenger,omitempty" gorm:"foreignKey:PassengerID"`
}

func (Booking) TableName() string {
	return "bookings"
}
