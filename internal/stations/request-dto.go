package stations

// CreateStationRequest represents station creation payload
type CreateStationRequest struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
	City string `json:"city" binding:"required,min=2,max=100"`
}

// UpdateStationRequest represents station update payload
type UpdateStationRequest struct {
	Name     *string `json:"name,omitempty"`
	City     *string `json:"city,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}
