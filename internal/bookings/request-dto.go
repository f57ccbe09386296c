package bookings

// CreateHoldRequest represents the seat hold payload
type CreateHoldRequest struct {
	SessionID  string `json:"session_id" binding:"required,uuid"`
	SeatsCount int    `json:"seats_count" binding:"required,min=1"`
}

// BookingListQuery represents booking listing filters
type BookingListQuery struct {
	Status string `form:"status"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}
