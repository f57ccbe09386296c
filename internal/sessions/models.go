package sessions

import (
	"time"

	"github.com/google/uuid"

	"transitly/internal/routes"
	"transitly/internal/stations"
	"transitly/internal/users"
)

// Session is a single bookable vehicle run. AvailableSeats is the
// shared counter every hold, conversion, release and refund mutates;
// it is only ever changed inside a storage transaction.
type Session struct {
	ID             uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	DriverID       uuid.UUID  `json:"driver_id" gorm:"type:uuid;index;not null"`
	RouteID        uuid.UUID  `json:"route_id" gorm:"type:uuid;index;not null"`
	StationID      uuid.UUID  `json:"station_id" gorm:"type:uuid;not null"`
	TotalSeats     int        `json:"total_seats" gorm:"not null"`
	AvailableSeats int        `json:"available_seats" gorm:"not null"`
	Status         Status     `json:"status" gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	StartedAt      time.Time  `json:"started_at" gorm:"autoCreateTime"`
	EndedAt        *time.Time `json:"ended_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Relationships
	Driver  *users.User       `json:"driver,omitempty" gorm:"foreignKey:DriverID"`
	Route   *routes.Route     `json:"route,omitempty" gorm:"foreignKey:RouteID"`
	Station *stations.Station `json:"station,omitempty" gorm:"foreignKey:StationID"`
}

func (Session) TableName() string {
	return "sessions"
}

// IsTerminal reports whether the session can no longer accept holds.
func (s *Session) IsTerminal() bool {
	return s.Status == StatusClosed || s.Status == StatusCancelled
}
