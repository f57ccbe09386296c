package notifications

import (
	"time"

	"github.com/google/uuid"
)

// Type classifies a notification for client rendering
type Type string

const (
	TypeBookingConfirmed Type = "BOOKING_CONFIRMED"
	TypeBookingCancelled Type = "BOOKING_CANCELLED"
	TypeHoldExpired      Type = "HOLD_EXPIRED"
	TypeSessionUpdate    Type = "SESSION_UPDATE"
)

// Notification is a per-user message persisted for in-app delivery.
// Delivery is best-effort: losing one never fails the operation that
// produced it.
type Notification struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;index;not null"`
	Type      Type      `json:"type" gorm:"type:varchar(40);not null"`
	Title     string    `json:"title" gorm:"size:200;not null"`
	Body      string    `json:"body" gorm:"type:text"`
	Read      bool      `json:"read" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
