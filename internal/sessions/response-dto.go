package sessions

import (
	"time"

	"github.com/google/uuid"
)

// SessionResponse is the public view of a session with live seat counts
type SessionResponse struct {
	ID             uuid.UUID  `json:"id"`
	DriverID       uuid.UUID  `json:"driver_id"`
	RouteID        uuid.UUID  `json:"route_id"`
	StationID      uuid.UUID  `json:"station_id"`
	RouteName      string     `json:"route_name,omitempty"`
	StationName    string     `json:"station_name,omitempty"`
	TotalSeats     int        `json:"total_seats"`
	AvailableSeats int        `json:"available_seats"`
	Status         Status     `json:"status"`
	StartedAt      time.Time  `json:"started_at"`
	EndedAt        *time.Time `json:"ended_at,omitempty"`
}

// ToResponse converts a session entity to its API representation
func ToResponse(s *Session) SessionResponse {
	resp := SessionResponse{
		ID:             s.ID,
		DriverID:       s.DriverID,
		RouteID:        s.RouteID,
		StationID:      s.StationID,
		TotalSeats:     s.TotalSeats,
		AvailableSeats: s.AvailableSeats,
		Status:         s.Status,
		StartedAt:      s.StartedAt,
		EndedAt:        s.EndedAt,
	}
	if s.Route != nil {
		resp.RouteName = s.Route.Name
	}
	if s.Station != nil {
		resp.StationName = s.Station.Name
	}
	return resp
}

// ToResponseList converts a slice of sessions
func ToResponseList(list []Session) []SessionResponse {
	result := make([]SessionResponse, 0, len(list))
	for i := range list {
		result = append(result, ToResponse(&list[i]))
	}
	return result
}
