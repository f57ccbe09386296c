package routes

// CreateRouteRequest represents route creation payload
type CreateRouteRequest struct {
	Name        string  `json:"name" binding:"required,min=2,max=100"`
	Origin      string  `json:"origin" binding:"required,min=2,max=100"`
	Destination string  `json:"destination" binding:"required,min=2,max=100"`
	BaseFare    float64 `json:"base_fare" binding:"required,gt=0"`
}

// UpdateRouteRequest represents route update payload
type UpdateRouteRequest struct {
	Name        *string  `json:"name,omitempty"`
	Origin      *string  `json:"origin,omitempty"`
	Destination *string  `json:"destination,omitempty"`
	BaseFare    *float64 `json:"base_fare,omitempty"`
	IsActive    *bool    `json:"is_active,omitempty"`
}
