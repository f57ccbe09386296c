package stations

import (
	"time"

	"github.com/google/uuid"
)

// Station is a boarding point where driver sessions are opened.
type Station struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	Name      string    `json:"name" gorm:"not null"`
	City      string    `json:"city" gorm:"not null"`
	IsActive  bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Station) TableName() string {
	return "stations"
}
