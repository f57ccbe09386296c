package drivers

import (
	"time"

	"github.com/google/uuid"
)

// ProfileResponse is the API view of a driver profile
type ProfileResponse struct {
	ID            uuid.UUID          `json:"id"`
	UserID        uuid.UUID          `json:"user_id"`
	LicenseNumber string             `json:"license_number"`
	VehicleModel  string             `json:"vehicle_model"`
	VehiclePlate  string             `json:"vehicle_plate"`
	Status        VerificationStatus `json:"status"`
	ReviewNote    string             `json:"review_note,omitempty"`
	ReviewedAt    *time.Time         `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	DriverName    string             `json:"driver_name,omitempty"`
	DriverEmail   string             `json:"driver_email,omitempty"`
}

// ToProfileResponse converts a profile entity to its API representation
func ToProfileResponse(p *Profile) ProfileResponse {
	resp := ProfileResponse{
		ID:            p.ID,
		UserID:        p.UserID,
		LicenseNumber: p.LicenseNumber,
		VehicleModel:  p.VehicleModel,
		VehiclePlate:  p.VehiclePlate,
		Status:        p.Status,
		ReviewNote:    p.ReviewNote,
		ReviewedAt:    p.ReviewedAt,
		CreatedAt:     p.CreatedAt,
	}
	if p.User != nil {
		resp.DriverName = p.User.FirstName + " " + p.User.LastName
		resp.DriverEmail = p.User.Email
	}
	return resp
}

// ToProfileResponseList converts profiles to their API representation
func ToProfileResponseList(list []Profile) []ProfileResponse {
	result := make([]ProfileResponse, 0, len(list))
	for i := range list {
		result = append(result, ToProfileResponse(&list[i]))
	}
	return result
}
