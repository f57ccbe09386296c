package routes

import (
	"time"

	"github.com/google/uuid"
)

// Route is a transit line between two stops. BaseFare is the per-seat
// price used when quoting holds and finalizing payments.
type Route struct {
	ID          uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	Name        string    `json:"name" gorm:"not null"`
	Origin      string    `json:"origin" gorm:"not null"`
	Destination string    `json:"destination" gorm:"not null"`
	BaseFare    float64   `json:"base_fare" gorm:"not null"`
	IsActive    bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Route) TableName() string {
	return "routes"
}
