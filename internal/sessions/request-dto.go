package sessions

// StartSessionRequest represents session start payload
type StartSessionRequest struct {
	RouteID    string `json:"route_id" binding:"required,uuid"`
	StationID  string `json:"station_id" binding:"required,uuid"`
	TotalSeats int    `json:"total_seats" binding:"required,min=1,max=100"`
}

// SessionListQuery represents session listing filters
type SessionListQuery struct {
	RouteID   string `form:"route_id"`
	StationID string `form:"station_id"`
	Status    string `form:"status"`
}
